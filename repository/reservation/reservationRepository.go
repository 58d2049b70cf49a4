// repository/reservation/repo.go
package reservationrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"

	"library/model"
	"library/util/apperr"
	"library/util/database"
)

var ErrBuildingQueryFailed = errors.New("building reservation query failed")

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	UserID *int64
	Status model.ReservationStatus
	// DueBefore keeps rows whose expected return date is strictly earlier.
	DueBefore *time.Time
}

type Repo interface {
	Insert(ctx context.Context, tx pgx.Tx, r *model.Reservation) error
	LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error)
	MarkClosed(ctx context.Context, tx pgx.Tx, r *model.Reservation) error

	ByID(ctx context.Context, id int64) (*model.Reservation, error)
	List(ctx context.Context, f Filter) ([]model.Reservation, error)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

var dialect = goqu.Dialect("postgres")

func baseSelect() *goqu.SelectDataset {
	return dialect.
		From(goqu.T("reservations").As("r")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("r.user_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.external_id").Eq(goqu.I("r.book_external_id")))).
		Select(
			"r.id", "r.user_id", "r.book_external_id", "r.rental_days",
			"r.start_date", "r.expected_return_date", "r.actual_return_date",
			"r.daily_rate", "r.total_fee", "r.late_fee", "r.status", "r.created_at",
			"u.name", "b.title",
		).
		Prepared(true)
}

func buildByIDQuery(id int64, lock bool) (string, []any, error) {
	ds := baseSelect().Where(goqu.I("r.id").Eq(id))
	if lock {
		ds = ds.ForUpdate(exp.Wait, goqu.T("r"))
	}
	q, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}
	return q, args, nil
}

func buildListQuery(f Filter) (string, []any, error) {
	ds := baseSelect()
	if f.UserID != nil {
		ds = ds.Where(goqu.I("r.user_id").Eq(*f.UserID))
	}
	if f.Status != "" {
		ds = ds.Where(goqu.I("r.status").Eq(string(f.Status)))
	}
	if f.DueBefore != nil {
		ds = ds.Where(goqu.I("r.expected_return_date").Lt(model.DateOnly(*f.DueBefore)))
	}
	q, args, err := ds.Order(goqu.I("r.id").Asc()).ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}
	return q, args, nil
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var r model.Reservation
	err := row.Scan(
		&r.ID, &r.UserID, &r.BookExternalID, &r.RentalDays,
		&r.StartDate, &r.ExpectedReturnDate, &r.ActualReturnDate,
		&r.DailyRate, &r.TotalFee, &r.LateFee, &r.Status, &r.CreatedAt,
		&r.UserName, &r.BookTitle,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func byID(ctx context.Context, q querier, id int64, lock bool) (*model.Reservation, error) {
	sql, args, err := buildByIDQuery(id, lock)
	if err != nil {
		return nil, err
	}
	r, err := scanReservation(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperr.Newf(apperr.NotFound, "reservation %d not found", id)
		}
		return nil, err
	}
	return r, nil
}

func (r *repo) Insert(ctx context.Context, tx pgx.Tx, res *model.Reservation) error {
	const q = `
		INSERT INTO reservations (user_id, book_external_id, rental_days, start_date,
			expected_return_date, daily_rate, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := tx.QueryRow(ctx, q,
		res.UserID, res.BookExternalID, res.RentalDays, res.StartDate,
		res.ExpectedReturnDate, res.DailyRate, string(res.Status),
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.NotFound, "user or book not found", err)
		}
		return err
	}
	return nil
}

func (r *repo) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error) {
	return byID(ctx, tx, id, true)
}

// MarkClosed persists the return outcome. Only ACTIVE rows are updated.
func (r *repo) MarkClosed(ctx context.Context, tx pgx.Tx, res *model.Reservation) error {
	const q = `
		UPDATE reservations
		SET actual_return_date = $2,
			total_fee = $3,
			late_fee = $4,
			status = $5
		WHERE id = $1
		  AND status = 'ACTIVE'`
	tag, err := tx.Exec(ctx, q, res.ID, res.ActualReturnDate, res.TotalFee, res.LateFee, string(res.Status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.InvalidState, "reservation %d is not active", res.ID)
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return byID(ctx, r.db.Pool, id, false)
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.Reservation, error) {
	sql, args, err := buildListQuery(f)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
