package probe

import (
	"mime"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// decodeBody converts body to UTF-8 text. The charset named in the
// Content-Type header wins; otherwise the encoding is sniffed from BOMs and
// <meta> tags. Sniffing only looks at the first 1024 bytes and defaults to
// windows-1252, so a body that is valid UTF-8 as a whole is kept as is in
// that case. Bodies that cannot be decoded are returned unchanged.
func decodeBody(body []byte, contentType string) string {
	if enc := headerEncoding(contentType); enc != nil {
		if text, ok := decodeWith(enc, body); ok {
			return text
		}
	}

	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || (name == "windows-1252" && utf8.Valid(body)) {
		return string(body)
	}
	if text, ok := decodeWith(enc, body); ok {
		return text
	}
	return string(body)
}

// headerEncoding returns the encoding named by the charset parameter of
// contentType, or nil.
func headerEncoding(contentType string) encoding.Encoding {
	if contentType == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	name := params["charset"]
	if name == "" {
		return nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil
	}
	return enc
}

func decodeWith(enc encoding.Encoding, body []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", false
	}
	return string(out), true
}
