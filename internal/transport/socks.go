package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// checkProxyTimeout is the timeout for the SOCKS5 handshake check.
const checkProxyTimeout = 2 * time.Second

// SOCKS5 protocol constants
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthUserPass = 0x02
	socks5AuthNoAccept = 0xFF
)

// CheckSOCKS5 verifies that a SOCKS5 proxy is listening at address by
// performing the method negotiation step of the handshake. It offers
// "no authentication" and "username/password" and accepts either.
func CheckSOCKS5(ctx context.Context, address string) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// version + number of methods + methods
	if _, err := conn.Write([]byte{socks5Version, 0x02, socks5AuthNone, socks5AuthUserPass}); err != nil {
		return ProxyStatusCannotConnect
	}

	// version + selected method
	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if resp[0] != socks5Version {
		return ProxyStatusWrongType
	}
	if resp[1] == socks5AuthNoAccept {
		return ProxyStatusWrongType
	}
	if resp[1] != socks5AuthNone && resp[1] != socks5AuthUserPass {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}
