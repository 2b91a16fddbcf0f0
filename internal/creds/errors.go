package creds

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the resolution failure cases. The set is closed:
// callers branch on kind, never on message text.
type ErrorKind int

const (
	// ErrCredentialsFileMissing: the shared credentials file does not exist.
	ErrCredentialsFileMissing ErrorKind = iota + 1
	// ErrProfileNotFoundInCredentials: no section for the profile in the
	// credentials file.
	ErrProfileNotFoundInCredentials
	// ErrMissingCredentialField: the profile section lacks one of the three
	// required credential keys. Field names which one.
	ErrMissingCredentialField
	// ErrConfigFileMissing: the shared config file does not exist.
	ErrConfigFileMissing
	// ErrProfileNotFoundInConfig: no "profile <name>" section in the config
	// file.
	ErrProfileNotFoundInConfig
	// ErrMissingRegionField: the config section lacks the region key.
	ErrMissingRegionField
)

// Error is a resolution failure. It carries everything an operator needs to
// fix the problem: which file, which profile and, where relevant, which key.
type Error struct {
	Kind    ErrorKind
	Path    string
	Profile string
	Field   string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrCredentialsFileMissing:
		return fmt.Sprintf("credentials file not found at %s", e.Path)
	case ErrProfileNotFoundInCredentials:
		return fmt.Sprintf("profile %q not found in %s", e.Profile, e.Path)
	case ErrMissingCredentialField:
		return fmt.Sprintf("missing %q in profile %q in %s", e.Field, e.Profile, e.Path)
	case ErrConfigFileMissing:
		return fmt.Sprintf("config file not found at %s", e.Path)
	case ErrProfileNotFoundInConfig:
		return fmt.Sprintf("profile %q not found in %s", e.Profile, e.Path)
	case ErrMissingRegionField:
		return fmt.Sprintf("missing \"region\" in profile %q in %s", e.Profile, e.Path)
	}
	return fmt.Sprintf("credential resolution failed for profile %q", e.Profile)
}

// KindOf returns the ErrorKind of err if it is a resolution failure,
// and 0 otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}
	return e.Kind
}
