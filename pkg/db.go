package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeUniqueViolation = "23505"
	pgCodeCheckViolation  = "23514"
	pgCodeInvalidText     = "22P02"
	pgCodeInvalidDatetime = "22007"
	pgCodeDatetimeRange   = "22008"
	pgCodeNoDataFound     = "P0002"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolationError checks if the error is a unique violation error
func IsUniqueViolationError(err error) bool {
	return pgErrorCode(err) == pgCodeUniqueViolation
}

// IsCheckViolationError reports a rejected row, e.g. an interval that ends before it starts
func IsCheckViolationError(err error) bool {
	return pgErrorCode(err) == pgCodeCheckViolation
}

// IsInvalidInputError reports values postgres could not parse, e.g. a malformed timestamp
func IsInvalidInputError(err error) bool {
	switch pgErrorCode(err) {
	case pgCodeInvalidText, pgCodeInvalidDatetime, pgCodeDatetimeRange:
		return true
	}
	return false
}

// IsNoDataFoundError checks if a stored function raised NO_DATA_FOUND
func IsNoDataFoundError(err error) bool {
	return pgErrorCode(err) == pgCodeNoDataFound
}
