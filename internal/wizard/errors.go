package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// Session state errors.
var (
	ErrSessionCancelled = errors.New("upload session cancelled")
	ErrNoFileSelected   = errors.New("no file selected")
	ErrNotValidated     = errors.New("validation has not run")
	ErrAlreadyUploading = errors.New("upload already started")
)

// MappingIncompleteError reports required target fields with no source
// column assigned; progression past the mapping step is blocked until the
// user resolves or explicitly ignores them.
type MappingIncompleteError struct {
	Missing []string
}

func (e *MappingIncompleteError) Error() string {
	return fmt.Sprintf("unmapped required fields: %s", strings.Join(e.Missing, ", "))
}

// ValidationBlockedError reports invalid rows preventing the upload when
// skip-invalid is disabled. Recoverable by fixing the file or enabling the
// skip policy.
type ValidationBlockedError struct {
	InvalidRows int
}

func (e *ValidationBlockedError) Error() string {
	return fmt.Sprintf("%d rows failed validation; fix the file or enable skipping invalid rows", e.InvalidRows)
}
