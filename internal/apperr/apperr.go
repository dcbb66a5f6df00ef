package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad caller input. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing or foreign-owned record.
	ErrNotFound = errors.New("not found")
	// ErrFetch marks a failed page retrieval. No analysis is recorded behind it.
	ErrFetch = errors.New("fetch failed")
	// ErrBackendUnavailable marks a generation backend failure. Recovered
	// locally by the rule-based suggestion path, never surfaced to callers.
	ErrBackendUnavailable = errors.New("generation backend unavailable")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

func Fetchf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrFetch}, args...)...)
}

func BackendUnavailablef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrBackendUnavailable}, args...)...)
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsFetch(err error) bool      { return errors.Is(err, ErrFetch) }

func IsBackendUnavailable(err error) bool { return errors.Is(err, ErrBackendUnavailable) }
