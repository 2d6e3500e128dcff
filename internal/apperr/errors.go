package apperr

import (
	"errors"
	"fmt"
)

const (
	CodeUsage           = "USAGE"
	CodeNoData          = "NO_DATA"
	CodeNotFound        = "NOT_FOUND"
	CodeUpstream        = "UPSTREAM"
	CodeDecode          = "DECODE"
	CodeCapture         = "CAPTURE"
	CodeArchiveDisabled = "ARCHIVE_DISABLED"
)

// CodedError is a typed error used for stable reply and API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// New builds a CodedError.
func New(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// CodeOf returns the code of the first CodedError in err's chain, or "".
func CodeOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// UserVisible reports whether err carries a message meant for the chat user
// and returns it. Everything else is answered with a generic failure.
func UserVisible(err error) (string, bool) {
	var coded *CodedError
	if !errors.As(err, &coded) {
		return "", false
	}
	switch coded.Code {
	case CodeUsage, CodeNoData, CodeNotFound:
		return coded.Message, true
	}
	return "", false
}
