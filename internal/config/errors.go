package config

import (
	"fmt"

	"github.com/schevalier/flocker/internal/errkind"
)

// ParseError describes one configuration-parsing failure: the application it
// occurred under (empty for document-level problems), a human-readable
// description, and the offending value's type or content.
type ParseError struct {
	Application string
	Description string
	Offending   any
}

func (e *ParseError) Error() string {
	if e.Application != "" {
		return fmt.Sprintf("application %q: %s (got %#v)", e.Application, e.Description, e.Offending)
	}
	return fmt.Sprintf("%s (got %#v)", e.Description, e.Offending)
}

// AsConfigurationError lifts a ParseError into the errkind.Kind used by the
// rest of the system's propagation policy.
func (e *ParseError) AsConfigurationError() *errkind.Error {
	return errkind.NewConfigurationError(e.Application, e.Error())
}

func newParseError(application, description string, offending any) error {
	return &ParseError{Application: application, Description: description, Offending: offending}
}
