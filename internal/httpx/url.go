package httpx

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/adrg/httpio/internal/parse"
)

// Scheme is the URL scheme. Unlike the original crate's closed enum
// (Http/Https/File/Other), this keeps arbitrary schemes as plain
// strings — a URL library has no business rejecting schemes it doesn't
// special-case.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeFile  Scheme = "file"
)

// URL is a fully parsed absolute or relative URL: scheme, optional
// userinfo, authority (host), optional port, a path of decoded
// segments (plus whether the original had a trailing slash), and
// optional query/fragment.
type URL struct {
	Scheme Scheme

	UserInfo    string
	HasUserInfo bool

	Host string

	Port    int
	HasPort bool

	PathSegments  []string
	TrailingSlash bool
	Asterisk      bool // true for the OPTIONS * request-target

	RawQuery string
	HasQuery bool

	Fragment    string
	HasFragment bool
}

// isUnreserved reports whether c may appear unescaped per RFC 3986's
// unreserved character class.
func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// PercentEncode escapes every byte of s outside the unreserved class as
// %XX, operating byte-wise so multi-byte UTF-8 sequences are encoded
// one byte at a time.
func PercentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02x", c)
		}
	}
	return b.String()
}

// PercentDecode reverses PercentEncode, validating that the decoded
// bytes form valid UTF-8.
func PercentDecode(s string) (string, error) {
	c := parse.NewCursor(s)
	var raw []byte
	for !c.Done() {
		ch, err := c.ParseChar()
		if err != nil {
			break
		}
		if ch == '%' {
			h1, err := c.ParseChar()
			if err != nil {
				return "", &Error{Kind: KindURLError, Op: "percent-decode", Cause: err}
			}
			h2, err := c.ParseChar()
			if err != nil {
				return "", &Error{Kind: KindURLError, Op: "percent-decode", Cause: err}
			}
			n, err := strconv.ParseUint(string([]byte{h1, h2}), 16, 8)
			if err != nil {
				return "", &Error{Kind: KindURLError, Op: "percent-decode", Cause: err}
			}
			raw = append(raw, byte(n))
		} else {
			raw = append(raw, ch)
		}
	}
	if !utf8.Valid(raw) {
		return "", &Error{Kind: KindUTF8, Op: "percent-decode", Cause: fmt.Errorf("invalid utf-8 sequence")}
	}
	return string(raw), nil
}

// parsePath splits a percent-encoded path into decoded segments,
// dropping empty segments the way the original crate's Uri::from_str
// does, and records whether the raw path ended in "/".
func parsePath(raw string) ([]string, bool, error) {
	trailing := strings.HasSuffix(raw, "/") && raw != "/"
	if raw == "/" || raw == "" {
		return nil, raw == "/", nil
	}
	parts := strings.Split(raw, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		decoded, err := PercentDecode(p)
		if err != nil {
			return nil, false, err
		}
		segments = append(segments, decoded)
	}
	return segments, trailing, nil
}

// Path renders the decoded path segments back to wire form, percent-
// encoding each segment independently.
func (u *URL) Path() string {
	if u.Asterisk {
		return "*"
	}
	if len(u.PathSegments) == 0 {
		return "/"
	}
	encoded := make([]string, len(u.PathSegments))
	for i, s := range u.PathSegments {
		encoded[i] = PercentEncode(s)
	}
	p := "/" + strings.Join(encoded, "/")
	if u.TrailingSlash && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// ParseURL parses a complete absolute URL of the form
// "scheme://[user@]host[:port][/path][?query][#fragment]", grounded on
// the original crate's UrlBuf::from_str grammar.
func ParseURL(s string) (*URL, error) {
	c := parse.NewCursor(s)

	schemeStr, err := c.ParseUntil(":")
	if err != nil {
		return nil, &Error{Kind: KindURLError, Op: "parse url scheme", Cause: err}
	}
	if err := c.Expect("://"); err != nil {
		return nil, &Error{Kind: KindURLError, Op: "parse url", Cause: err}
	}

	u := &URL{Scheme: Scheme(strings.ToLower(schemeStr))}

	if info, err := c.ParseUntil("@"); err == nil {
		_ = c.Expect("@")
		u.UserInfo = info
		u.HasUserInfo = true
	}

	authority, err := c.ParseUntilAny("/?#:")
	if err != nil {
		authority, err = c.ParseRemaining()
		if err != nil {
			return nil, &Error{Kind: KindURLError, Op: "parse url authority", Cause: err}
		}
	}
	u.Host = strings.ToLower(authority)

	if c.Expect(":") == nil {
		portStr, err := c.ParseUntilAny("/?#")
		if err != nil {
			portStr, err = c.ParseRemaining()
			if err != nil {
				return nil, &Error{Kind: KindURLError, Op: "parse url port", Cause: err}
			}
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, &Error{Kind: KindParseInt, Op: "parse url port", Cause: err}
		}
		u.Port = port
		u.HasPort = true
	}

	_ = c.Expect("/")

	rawPath, err := c.ParseUntilAny("?#")
	if err != nil {
		rawPath, _ = c.ParseRemaining()
	}
	segments, trailing, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	u.PathSegments = segments
	u.TrailingSlash = trailing

	if c.Expect("?") == nil {
		query, err := c.ParseUntil("#")
		if err != nil {
			query, err = c.ParseRemaining()
			if err != nil {
				return nil, &Error{Kind: KindURLError, Op: "parse url query", Cause: err}
			}
		}
		u.RawQuery = query
		u.HasQuery = true
	}

	if c.Expect("#") == nil {
		fragment, err := c.ParseRemaining()
		if err != nil {
			return nil, &Error{Kind: KindURLError, Op: "parse url fragment", Cause: err}
		}
		u.Fragment = fragment
		u.HasFragment = true
	}

	return u, nil
}

// String reconstructs the wire form of the URL. For a well-formed URL,
// ParseURL(u.String()) round-trips to an equal URL.
func (u *URL) String() string {
	var b strings.Builder
	b.WriteString(string(u.Scheme))
	b.WriteString("://")
	if u.HasUserInfo {
		b.WriteString(u.UserInfo)
		b.WriteByte('@')
	}
	b.WriteString(u.Host)
	if u.HasPort {
		fmt.Fprintf(&b, ":%d", u.Port)
	}
	b.WriteString(u.Path())
	if u.HasQuery {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	if u.HasFragment {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}
	return b.String()
}

// ParseRequestURI parses the request-target of a request line per RFC
// 7230 §5.3: origin-form (/path?query), absolute-form
// (http://host/path?query), or asterisk-form ("*" for OPTIONS).
// Authority-form (host:port, used by CONNECT) is not recognized: such a
// target is parsed as an origin-form path.
func ParseRequestURI(raw string) (*URL, error) {
	if raw == "" {
		return nil, &Error{Kind: KindURLError, Op: "parse request-target", Cause: fmt.Errorf("empty request-target")}
	}
	if strings.ContainsAny(raw, " \r\n") {
		return nil, &Error{Kind: KindURLError, Op: "parse request-target", Cause: fmt.Errorf("invalid characters in request-target")}
	}

	if raw == "*" {
		return &URL{Asterisk: true}, nil
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return ParseURL(raw)
	}

	u := &URL{}
	qmark := strings.IndexByte(raw, '?')
	rawPath := raw
	if qmark >= 0 {
		rawPath = raw[:qmark]
		u.RawQuery = raw[qmark+1:]
		u.HasQuery = true
	}
	segments, trailing, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	u.PathSegments = segments
	u.TrailingSlash = trailing
	return u, nil
}
