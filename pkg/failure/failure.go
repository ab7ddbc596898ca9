package failure

import (
	"context"
	"errors"
	"fmt"
)

// Kind names the origin of a failed extraction.
type Kind string

const (
	KindRequest Kind = "RequestError"
	KindFetch   Kind = "FetchError"
	KindPdf     Kind = "PdfParseError"
	KindWord    Kind = "WordParseError"
	KindExcel   Kind = "ExcelParseError"
	KindIO      Kind = "IoError"
	KindTimeout Kind = "TimeoutError"
)

// Error is a classified extraction failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps cause with a kind and a human-readable message.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Newf is New without a cause.
func Newf(kind Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// KindOf returns the kind of the first *Error in err's chain, or fallback.
// Context deadlines are always reported as timeouts.
func KindOf(err error, fallback Kind) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return fallback
}

// Envelope is the wire shape of a failure returned instead of a result.
type Envelope struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Wrap converts any error into an Envelope. Unclassified errors take fallback as kind.
func Wrap(err error, fallback Kind) *Envelope {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		env := &Envelope{Kind: fe.Kind, Message: fe.Message}
		if fe.Err != nil {
			env.Details = fe.Err.Error()
		}
		return env
	}
	kind := KindOf(err, fallback)
	return &Envelope{Kind: kind, Message: defaultMessage(kind), Details: err.Error()}
}

func defaultMessage(kind Kind) string {
	switch kind {
	case KindRequest:
		return "invalid extraction request"
	case KindFetch:
		return "failed to process the URL"
	case KindPdf, KindWord, KindExcel:
		return "failed to process the file"
	case KindIO:
		return "transient file operation failed"
	case KindTimeout:
		return "operation timed out"
	}
	return "extraction failed"
}

func (e *Envelope) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
