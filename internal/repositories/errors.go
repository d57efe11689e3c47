package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error describes a rejected operation on one resource.
type Error struct {
	Kind     error
	Resource string
	ID       string
	Reason   string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Resource != "" {
		b.WriteString(": ")
		b.WriteString(e.Resource)
		if e.ID != "" {
			b.WriteString(" ")
			b.WriteString(e.ID)
		}
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound reports a missing resource.
func NotFound(resource, id string) error {
	return &Error{Kind: ErrNotFound, Resource: resource, ID: id}
}

// Conflict reports a request that contradicts the current state of a resource.
func Conflict(resource, id, reason string) error {
	return &Error{Kind: ErrConflict, Resource: resource, ID: id, Reason: reason}
}

// Invalid reports a malformed request.
func Invalid(resource, id, reason string) error {
	return &Error{Kind: ErrValidation, Resource: resource, ID: id, Reason: reason}
}

// isUniqueViolation recognizes duplicate-key errors from sqlite and postgres.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
