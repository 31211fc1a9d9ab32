package httpx

import "fmt"

// Kind classifies what went wrong, matching the closed error taxonomy of
// the original http_io crate's Error enum: callers that need to branch
// on failure type switch on Kind rather than string-matching messages.
type Kind int

const (
	KindParseError Kind = iota
	KindParseInt
	KindUTF8
	KindUnexpectedScheme
	KindUnexpectedEOF
	KindUnexpectedStatus
	KindUnexpectedMethod
	KindURLError
	KindLengthRequired
	KindIO
	KindTLS
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindParseError:
		return "ParseError"
	case KindParseInt:
		return "ParseIntError"
	case KindUTF8:
		return "Utf8Error"
	case KindUnexpectedScheme:
		return "UnexpectedScheme"
	case KindUnexpectedEOF:
		return "UnexpectedEof"
	case KindUnexpectedStatus:
		return "UnexpectedStatus"
	case KindUnexpectedMethod:
		return "UnexpectedMethod"
	case KindURLError:
		return "UrlError"
	case KindLengthRequired:
		return "LengthRequired"
	case KindIO:
		return "IoError"
	case KindTLS:
		return "SslError"
	default:
		return "Other"
	}
}

// Error is the library's structured error type: parse, framing and
// client failures are wrapped in an *Error whose Kind callers can branch
// on. Some paths return the underlying error unwrapped (context
// cancellation, ValidateHeader, the netx line reader, and transport
// dial/accept errors). Op names the operation that failed (e.g. "parse
// request line", "dial"), Cause is the underlying error when one exists.
type Error struct {
	Kind  Kind
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil httpx.Error>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("httpx: %s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("httpx: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is lets errors.Is match on Kind alone: errors.Is(err, &Error{Kind: KindIO})
// reports true for any *Error carrying that Kind, regardless of Op/Cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Wrap produces an *Error of kind for op, wrapping cause.
func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}
