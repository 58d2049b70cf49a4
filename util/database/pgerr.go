package database

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func IsNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// Violation returns the pg error code and constraint name for constraint
// violations (class 23), or empty strings.
func Violation(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func IsUniqueViolation(err error) bool {
	c, _ := Violation(err)
	return c == pgerrcode.UniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	c, _ := Violation(err)
	return c == pgerrcode.ForeignKeyViolation
}

func IsCheckViolation(err error) bool {
	c, _ := Violation(err)
	return c == pgerrcode.CheckViolation
}
