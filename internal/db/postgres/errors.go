package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/praxis-cloud/ragcore/internal/db"
)

// SQLSTATE class 23: integrity constraint violation.
const codeUniqueViolation = "23505"

// translate maps driver errors onto the db package sentinels. Not-found and
// unique-violation come back bare so callers can errors.Is them directly;
// everything else keeps the operation name for diagnostics.
func translate(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return db.ErrUniqueViolation
	}

	return &db.Error{Op: op, Err: err}
}
