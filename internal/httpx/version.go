package httpx

import "fmt"

// Version is an HTTP message version, "HTTP/major.minor".
type Version struct {
	Major int
	Minor int
}

// Version11 is the version this library speaks by default.
var Version11 = Version{Major: 1, Minor: 1}

// Version10 is offered for servers and clients that need to downgrade.
var Version10 = Version{Major: 1, Minor: 0}

// String formats the version as it appears on the wire, e.g. "HTTP/1.1".
func (v Version) String() string {
	return fmt.Sprintf("HTTP/%d.%d", v.Major, v.Minor)
}

// ParseVersion parses a wire-format version string such as "HTTP/1.1".
func ParseVersion(s string) (Version, error) {
	var v Version
	if len(s) < 8 || s[:5] != "HTTP/" {
		return v, &Error{Kind: KindParseError, Op: "parse version", Cause: fmt.Errorf("not an HTTP version: %q", s)}
	}
	rest := s[5:]
	dot := -1
	for i := 0; i < len(rest); i++ {
		if rest[i] == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return v, &Error{Kind: KindParseError, Op: "parse version", Cause: fmt.Errorf("missing '.' in version: %q", s)}
	}
	major, err := parseDigits(rest[:dot])
	if err != nil {
		return v, &Error{Kind: KindParseInt, Op: "parse version major", Cause: err}
	}
	minor, err := parseDigits(rest[dot+1:])
	if err != nil {
		return v, &Error{Kind: KindParseInt, Op: "parse version minor", Cause: err}
	}
	return Version{Major: major, Minor: minor}, nil
}

func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty integer")
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid digit %q", string(c))
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
