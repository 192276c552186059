package outcome

import (
	"fmt"
	"time"
)

// Kind classifies how a conversion request ended.
type Kind int

const (
	// Success means the encoder exited cleanly and produced its output.
	Success Kind = iota
	// NoFileUploaded means the request carried no usable file.
	NoFileUploaded
	// InvalidFormat means the target format is empty or not in the catalog.
	InvalidFormat
	// ProcessNonZeroExit means the encoder ran and exited with a non-zero status.
	ProcessNonZeroExit
	// Timeout means the encoder exceeded its wall-clock budget and was killed.
	Timeout
	// InternalError covers launch failures, I/O errors and cancellation.
	InternalError
)

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case NoFileUploaded:
		return "no_file_uploaded"
	case InvalidFormat:
		return "invalid_format"
	case ProcessNonZeroExit:
		return "process_non_zero_exit"
	case Timeout:
		return "timeout"
	case InternalError:
		return "internal_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Kinds lists every kind, in declaration order.
func Kinds() []Kind {
	return []Kind{Success, NoFileUploaded, InvalidFormat, ProcessNonZeroExit, Timeout, InternalError}
}

// Outcome is the result of running one conversion plan.
type Outcome struct {
	Kind       Kind
	OutputPath string
	Diagnostic string
	ExitCode   int
	Elapsed    time.Duration
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Kind == Success
}

// Err converts a failed outcome into an *Error. It returns nil on success.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return &Error{
		Kind:       o.Kind,
		Message:    DefaultMessage(o.Kind),
		Diagnostic: o.Diagnostic,
	}
}

// Error is the failure type returned by the conversion service.
type Error struct {
	Kind       Kind
	Message    string
	Diagnostic string
	Err        error
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that wraps err. The diagnostic defaults to err's text.
func Wrap(kind Kind, err error, message string) *Error {
	e := &Error{Kind: kind, Message: message, Err: err}
	if err != nil {
		e.Diagnostic = err.Error()
	}
	return e
}

func (e *Error) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Diagnostic)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DefaultMessage returns the client-facing message for a kind.
func DefaultMessage(k Kind) string {
	switch k {
	case NoFileUploaded:
		return "No file uploaded"
	case InvalidFormat:
		return "Unsupported format"
	case ProcessNonZeroExit:
		return "Conversion failed"
	case Timeout:
		return "Timeout"
	case InternalError:
		return "Internal error"
	default:
		return ""
	}
}
