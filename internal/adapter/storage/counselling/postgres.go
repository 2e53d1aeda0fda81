package counsellingstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/burenotti/nutrition_counselling/internal/adapter/storage"
	"github.com/burenotti/nutrition_counselling/internal/adapter/storage/pgutil"
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
	"strings"
)

var (
	ErrUnknownField = errors.New("unknown field in field spec")
	errNotUpdated   = errors.New("fixture row was not updated")
)

// PostgresStorage reads counselling records from a Postgres mirror of the
// data platform tables. Tables are named after entities, primary keys are
// <entity>id and the member lookup column is the lower-cased navigation name.
type PostgresStorage struct {
	db storage.DBContext
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) Retrieve(
	ctx context.Context,
	counsellingID string,
	spec metabolic.FieldSpec,
) (*metabolic.RawRecord, error) {
	var (
		raw      metabolic.RawRecord
		memberID *string
	)

	q, err := buildRetrieve(counsellingID, spec, &raw, &memberID)
	if err != nil {
		return nil, err
	}

	if err := q.QueryRowAndClose(ctx, s.db); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, metabolic.ErrRecordNotFound
		}
		if pgutil.IsUndefinedColumn(err) {
			return nil, errors.Join(err, ErrUnknownField)
		}
		return nil, storage.InternalError(err)
	}

	if memberID == nil {
		raw.Member = nil
	}
	return &raw, nil
}

func buildRetrieve(
	counsellingID string,
	spec metabolic.FieldSpec,
	raw *metabolic.RawRecord,
	memberID **string,
) (*sqlf.Stmt, error) {
	q := sqlf.From(spec.Entity+" c").
		Where("c."+spec.Entity+"id = ?", counsellingID)

	unknown := pgutil.SelectInto(q, "c", spec.Select, raw.Target)

	if spec.Expand != "" {
		q.LeftJoin(spec.ExpandEntity+" m", "m."+spec.ExpandEntity+"id = c."+strings.ToLower(spec.Expand)).
			Select("m." + spec.ExpandEntity + "id").To(memberID)
		unknown = append(unknown, pgutil.SelectInto(q, "m", spec.ExpandSelect, raw.Target)...)
	}

	if len(unknown) != 0 {
		q.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
	}
	return q, nil
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
