package pipeline

import (
	"net/url"
	"strings"
)

// URLJoin appends segment to base. A base ending in "/" has segment resolved
// against it; otherwise a "/" is inserted, so the result never carries a
// doubled separator.
func URLJoin(base *url.URL, segment string) (*url.URL, error) {
	segment = escapeInvalid(strings.TrimPrefix(segment, "/"))
	raw := base.String()
	if strings.HasSuffix(raw, "/") {
		ref, err := url.Parse(segment)
		if err != nil {
			return nil, err
		}
		return base.ResolveReference(ref), nil
	}
	return url.Parse(raw + "/" + segment)
}

const hexDigits = "0123456789ABCDEF"

// escapeInvalid percent-encodes the bytes that may never appear in a URL:
// controls, space, non-ASCII, `"<>\^`{|}` and a "%" that does not start an
// escape. Reserved characters such as "+", ",", "&" and "/" are kept.
func escapeInvalid(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(c)
			continue
		}
		if !mustEscape(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0xF])
	}
	return b.String()
}

func mustEscape(c byte) bool {
	if c <= 0x20 || c >= 0x7F {
		return true
	}
	return c == '%' || strings.IndexByte("\"<>\\^`{|}", c) >= 0
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
