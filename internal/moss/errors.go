package moss

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound = errors.New("moss: file does not exist")
	ErrEmptyFile    = errors.New("moss: file is empty")
	ErrNoFiles      = errors.New("moss: no submission files registered")
)

// RegistrationError reports a rejected base or submission file. Earlier
// registrations are unaffected.
type RegistrationError struct {
	Path string
	Base bool
	Err  error
}

func (e *RegistrationError) Error() string {
	kind := "file"
	if e.Base {
		kind = "base file"
	}
	return fmt.Sprintf("moss: register %s %q: %v", kind, e.Path, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}
