package domain

import "errors"

// SkipError is returned by a body to mark its descriptor as ignored.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	if e.Reason == "" {
		return "skipped"
	}
	return "skipped: " + e.Reason
}

// Skip returns an explicit skip directive.
func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// IsSkip reports whether err carries an explicit skip directive.
func IsSkip(err error) bool {
	var skip *SkipError
	return errors.As(err, &skip)
}
