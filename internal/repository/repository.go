package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrRecordNotFound is returned by every finder when nothing matches.
var ErrRecordNotFound = gorm.ErrRecordNotFound

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a bounded limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// NewPage converts a 1-based page number and size into a bounded window.
func NewPage(page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	return Page{Limit: pageSize, Offset: (page - 1) * pageSize}
}

const pgUniqueViolation = "23505"

// isUniqueViolation recognizes unique constraint failures from Postgres and SQLite,
// with or without gorm's error translation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
