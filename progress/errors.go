package progress

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Requirement clause identifiers reported to callers when a completion check
// fails, so the API layer can tell the student what is still missing.
const (
	ClauseVideo  = "VIDEO"
	ClauseAssets = "ASSETS"
	ClauseTime   = "TIME"
	ClauseQuiz   = "QUIZ"
)

// NotFoundError indicates the target lesson/module/quiz does not exist or is
// deleted.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InvalidAssetError indicates the asset id is not declared on the lesson.
type InvalidAssetError struct {
	LessonID uint
	AssetID  uint
}

func (e *InvalidAssetError) Error() string {
	return fmt.Sprintf("asset %d is not declared on lesson %d", e.AssetID, e.LessonID)
}

// ConcurrencyError indicates a transaction conflict. Safe to retry: completion
// marking is idempotent, but the retry decision belongs to the caller.
type ConcurrencyError struct {
	Err error
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("progress update conflicted, retry: %v", e.Err)
}

func (e *ConcurrencyError) Unwrap() error { return e.Err }

// InfrastructureError indicates the store failed or timed out. It must never be
// interpreted as "requirement unmet".
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// storeErr wraps any non-domain database error. gorm.ErrRecordNotFound is never
// passed here; callers translate it to NotFoundError or to absence semantics.
func storeErr(op string, err error) error {
	return &InfrastructureError{Op: op, Err: err}
}

// txErr classifies an error escaping a ledger transaction. Conflict-shaped
// failures become ConcurrencyError; domain errors pass through untouched.
func txErr(err error) error {
	var nfe *NotFoundError
	var iae *InvalidAssetError
	var cce *ConcurrencyError
	if errors.As(err, &nfe) || errors.As(err, &iae) || errors.As(err, &cce) {
		return err
	}
	// The conflict sniff runs before the InfrastructureError pass-through:
	// store errors arrive wrapped by storeErr, and a duplicate key from two
	// racing first-completions lazily creating the same entry is a retryable
	// conflict, not an outage.
	msg := strings.ToLower(err.Error())
	if errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "serialization") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") {
		return &ConcurrencyError{Err: err}
	}
	var ife *InfrastructureError
	if errors.As(err, &ife) {
		return err
	}
	return &InfrastructureError{Op: "progress ledger update", Err: err}
}
