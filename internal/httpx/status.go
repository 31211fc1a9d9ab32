package httpx

import "fmt"

// Status is an HTTP response status code together with its reason
// phrase. The original Rust crate modeled this as an enum with two
// named variants (MovedPermanently, OK) plus an Unknown(u32) catch-all;
// this widens that to the full table a complete implementation needs
// while keeping the same "numeric code is always authoritative, reason
// phrase is informational" behavior.
type Status struct {
	Code   int
	Reason string
}

// Category classifies a status code into one of the five RFC 7231
// classes.
type Category int

const (
	CategoryInformational Category = iota + 1
	CategorySuccess
	CategoryRedirection
	CategoryClientError
	CategoryServerError
	CategoryUnknown
)

// Category returns which of the five status classes s.Code falls in.
func (s Status) Category() Category {
	switch {
	case s.Code >= 100 && s.Code < 200:
		return CategoryInformational
	case s.Code >= 200 && s.Code < 300:
		return CategorySuccess
	case s.Code >= 300 && s.Code < 400:
		return CategoryRedirection
	case s.Code >= 400 && s.Code < 500:
		return CategoryClientError
	case s.Code >= 500 && s.Code < 600:
		return CategoryServerError
	default:
		return CategoryUnknown
	}
}

// String formats the status as it appears on the wire, e.g. "200 OK".
func (s Status) String() string {
	return fmt.Sprintf("%d %s", s.Code, s.Reason)
}

var reasonPhrases = map[int]string{
	100: "Continue",
	101: "Switching Protocols",
	200: "OK",
	201: "Created",
	202: "Accepted",
	203: "Non-Authoritative Information",
	204: "No Content",
	205: "Reset Content",
	206: "Partial Content",
	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	305: "Use Proxy",
	307: "Temporary Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Payload Too Large",
	414: "URI Too Long",
	415: "Unsupported Media Type",
	416: "Range Not Satisfiable",
	417: "Expectation Failed",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
}

// NewStatus returns the Status for code, filling in the standard reason
// phrase if one is known and "Unknown" otherwise — codes outside the
// table are still representable, matching the original's Unknown(u32)
// catch-all.
func NewStatus(code int) Status {
	if reason, ok := reasonPhrases[code]; ok {
		return Status{Code: code, Reason: reason}
	}
	return Status{Code: code, Reason: "Unknown"}
}

// Well-known statuses used throughout the library and its tests.
var (
	StatusOK              = NewStatus(200)
	StatusMovedPermanently = NewStatus(301)
	StatusBadRequest      = NewStatus(400)
	StatusLengthRequired  = NewStatus(411)
	StatusInternalError   = NewStatus(500)
	StatusNotImplemented  = NewStatus(501)
)
