package transport

import (
	"errors"
	"net"
	"testing"
)

// startMockProxy accepts one connection, reads the greeting and replies.
func startMockProxy(t *testing.T, reply []byte) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4)
		_, _ = conn.Read(buf)
		_, _ = conn.Write(reply)
	}()

	return listener.Addr().String()
}

// TestCheckSOCKS5 tests the SOCKS5 method negotiation check.
func TestCheckSOCKS5(t *testing.T) {
	t.Parallel()

	t.Run("returns CannotConnect for non-existent proxy", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatalf("failed to reserve port: %v", err)
		}
		addr := listener.Addr().String()
		_ = listener.Close()

		if status := CheckSOCKS5(t.Context(), addr); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", status)
		}
	})

	t.Run("returns WrongType for HTTP server", func(t *testing.T) {
		t.Parallel()
		addr := startMockProxy(t, []byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
		if status := CheckSOCKS5(t.Context(), addr); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns WrongType when no method is acceptable", func(t *testing.T) {
		t.Parallel()
		addr := startMockProxy(t, []byte{0x05, 0xFF})
		if status := CheckSOCKS5(t.Context(), addr); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns OK without authentication", func(t *testing.T) {
		t.Parallel()
		addr := startMockProxy(t, []byte{0x05, 0x00})
		if status := CheckSOCKS5(t.Context(), addr); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
	})

	t.Run("returns OK with username and password authentication", func(t *testing.T) {
		t.Parallel()
		addr := startMockProxy(t, []byte{0x05, 0x02})
		if status := CheckSOCKS5(t.Context(), addr); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
	})
}

// TestProxyStatus tests the String and Error methods of ProxyStatus.
func TestProxyStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status  ProxyStatus
		str     string
		wantErr error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.str, func(t *testing.T) {
			t.Parallel()
			if tc.status.String() != tc.str {
				t.Errorf("got %q, expected %q", tc.status.String(), tc.str)
			}
			if err := tc.status.Error(); !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, expected %v", err, tc.wantErr)
			}
		})
	}

	if ProxyStatus(99).String() != "unknown" || ProxyStatus(99).Error() == nil {
		t.Error("expected unknown status handling")
	}
}
