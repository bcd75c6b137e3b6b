// Package errkind classifies the error kinds a convergence tick can produce,
// per the propagation policy in the core design: configuration errors are
// fatal to a load and never retried, runtime conflicts let the planner tell
// start from restart, transient I/O aborts the current tick, kernel rule
// failures are batched by the proxy controller, and ownership errors are
// programming errors fatal to the tick.
package errkind

import "fmt"

// Kind tags an Error with the handling policy a caller should apply.
type Kind int

const (
	Configuration Kind = iota
	RuntimeConflict
	TransientIO
	KernelRule
	Ownership
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "ConfigurationError"
	case RuntimeConflict:
		return "RuntimeConflict"
	case TransientIO:
		return "TransientIOError"
	case KernelRule:
		return "KernelRuleError"
	case Ownership:
		return "OwnershipError"
	default:
		return "UnknownError"
	}
}

// Error carries a Kind plus whatever context the caller deciding how to
// react needs — the offending application name for configuration errors,
// the wrapped cause for anything that came from a collaborator call.
type Error struct {
	Kind        Kind
	Application string
	Message     string
	Cause       error
}

func (e *Error) Error() string {
	if e.Application != "" {
		return fmt.Sprintf("%s: %s (application %q)", e.Kind, e.Message, e.Application)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether err is an *Error of the given Kind, following Unwrap chains.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func NewConfigurationError(application, message string) *Error {
	return &Error{Kind: Configuration, Application: application, Message: message}
}

func NewRuntimeConflict(application string, cause error) *Error {
	return &Error{Kind: RuntimeConflict, Application: application, Message: "container name already in use", Cause: cause}
}

func NewTransientIO(message string, cause error) *Error {
	return &Error{Kind: TransientIO, Message: message, Cause: cause}
}

func NewKernelRuleError(message string, cause error) *Error {
	return &Error{Kind: KernelRule, Message: message, Cause: cause}
}

func NewOwnershipError(volume string) *Error {
	return &Error{Kind: Ownership, Message: fmt.Sprintf("volume %q is not locally owned", volume)}
}

func NewCreateConfigurationError(path string, cause error) *Error {
	return &Error{Kind: Configuration, Message: fmt.Sprintf("cannot write configuration at %q", path), Cause: cause}
}
