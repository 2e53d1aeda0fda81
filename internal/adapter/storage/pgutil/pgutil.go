package pgutil

import (
	"database/sql"
	"errors"
	"github.com/burenotti/nutrition_counselling/internal/adapter/storage"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
)

func ViolatesConstraint(err error, constraintName string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) &&
		pgErr.ConstraintName == constraintName
}

// IsUndefinedColumn reports whether a query selected a column that does not
// exist, which happens when a field spec names an unknown field.
func IsUndefinedColumn(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedColumn
}

// SelectInto adds one column per field to stmt, scanning into the
// destination target returns for it. Fields without a destination are
// reported back.
func SelectInto(stmt *sqlf.Stmt, alias string, fields []string, target func(string) any) (unknown []string) {
	for _, f := range fields {
		dest := target(f)
		if dest == nil {
			unknown = append(unknown, f)
			continue
		}
		stmt.Select(alias + "." + f).To(dest)
	}
	return unknown
}

func AssertUpdated(res sql.Result, err error, notUpdatedError error) error {
	if err != nil {
		return storage.InternalError(err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return storage.InternalError(err)
	}

	if affected == 0 {
		return notUpdatedError
	}
	return nil
}
