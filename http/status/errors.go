package status

import "fmt"

// HTTPError is an error which can be answered with a status line. Unless Public is set,
// the Message is meant for logs only and never reaches the peer.
type HTTPError struct {
	Message string
	Code    Code
	Public  bool
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

// NewPublicError returns an HTTPError whose message is sent to the peer as the response
// body.
func NewPublicError(code Code, format string, args ...any) error {
	return HTTPError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Public:  true,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrBadRequest       = NewError(BadRequest, "bad request")
	ErrTooLongLine      = NewError(BadRequest, "line is too long")
	ErrBadHeader        = NewError(BadRequest, "malformed header field")
	ErrBadContentLength = NewError(BadRequest, "malformed content-length")
	ErrTooManyHeaders   = NewError(RequestHeaderFieldsTooLarge, "too many headers")
	ErrBodyTooLarge     = NewError(RequestEntityTooLarge, "request body is too large")
)
