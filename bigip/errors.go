package bigip

import (
	"errors"
	"strings"

	"github.com/smnsjas/go-icontrol/soap"
)

// Kind classifies a call failure.
type Kind int

const (
	// KindServer is an appliance-reported fault: the call reached the
	// portal and the portal rejected it.
	KindServer Kind = iota

	// KindConnection is a network, transport, or authentication failure.
	KindConnection

	// KindParse is a malformed WSDL or response body.
	KindParse

	// KindMethodNotFound is a call to an operation the namespace does not
	// declare.
	KindMethodNotFound

	// KindArgument is caller-supplied arguments the declared schema
	// rejects, detected locally before any network traffic.
	KindArgument
)

// String returns the kind description used in error text.
func (k Kind) String() string {
	switch k {
	case KindServer:
		return "server fault"
	case KindConnection:
		return "connection error"
	case KindParse:
		return "parse error"
	case KindMethodNotFound:
		return "method not found"
	case KindArgument:
		return "argument error"
	default:
		return "operation failed"
	}
}

// Sentinel errors for matching with errors.Is. Every error this package
// returns is an *Error matching ErrOperationFailed plus exactly one of the
// five kind sentinels.
var (
	// ErrOperationFailed matches any error produced by this package.
	ErrOperationFailed = errors.New("icontrol: operation failed")

	// ErrServer matches appliance-reported faults.
	ErrServer = errors.New("icontrol: server fault")

	// ErrConnection matches network, transport, and authentication failures.
	ErrConnection = errors.New("icontrol: connection error")

	// ErrParse matches malformed WSDL documents and response bodies.
	ErrParse = errors.New("icontrol: parse error")

	// ErrMethodNotFound matches calls to undeclared operations.
	ErrMethodNotFound = errors.New("icontrol: method not found")

	// ErrArgument matches locally-rejected argument errors.
	ErrArgument = errors.New("icontrol: argument error")
)

// Error is the error type for every failure this package reports.
type Error struct {
	// Kind tags which failure class this is.
	Kind Kind

	// Path is the namespace path the failure belongs to, when known.
	Path string

	// Method is the method name, when the failure is method-scoped.
	Method string

	// Msg describes the failure.
	Msg string

	// Fault carries the portal's fault payload when Kind is KindServer.
	Fault *soap.Fault

	// Err is the underlying cause, when one exists.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("icontrol: ")
	if e.Path != "" {
		b.WriteString(e.Path)
		if e.Method != "" {
			b.WriteByte('.')
			b.WriteString(e.Method)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is maps the error onto the package sentinels so callers can match kinds
// with errors.Is without holding the concrete type.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrOperationFailed:
		return true
	case ErrServer:
		return e.Kind == KindServer
	case ErrConnection:
		return e.Kind == KindConnection
	case ErrParse:
		return e.Kind == KindParse
	case ErrMethodNotFound:
		return e.Kind == KindMethodNotFound
	case ErrArgument:
		return e.Kind == KindArgument
	}
	return false
}

// opError builds an *Error in one line at translation sites.
func opError(kind Kind, path, method, msg string, err error) *Error {
	return &Error{Kind: kind, Path: path, Method: method, Msg: msg, Err: err}
}

// serverError wraps a portal fault. The fault text rides in Msg so the
// message an operator sees matches what the appliance said; the fault also
// remains reachable through errors.As for code-level inspection.
func serverError(path, method string, fault *soap.Fault) *Error {
	return &Error{
		Kind:   KindServer,
		Path:   path,
		Method: method,
		Msg:    fault.String,
		Fault:  fault,
		Err:    fault,
	}
}
