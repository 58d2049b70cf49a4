package bookrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"library/model"
	"library/util/apperr"
	"library/util/database"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, externalID int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Update(ctx context.Context, b *model.Book, stockDelta int) error
	Delete(ctx context.Context, externalID int64) error

	// Tx-scoped, used by the reservation lifecycle.
	LockForUpdate(ctx context.Context, tx pgx.Tx, externalID int64) (*model.Book, error)
	DecreaseAvailable(ctx context.Context, tx pgx.Tx, externalID int64) error
	IncreaseAvailable(ctx context.Context, tx pgx.Tx, externalID int64) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const selectBook = `
SELECT external_id, title, price, stock_quantity, available_quantity, created_at
FROM books`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	if err := row.Scan(&b.ExternalID, &b.Title, &b.Price, &b.StockQuantity, &b.AvailableQuantity, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func notFound(id int64) error { return apperr.Newf(apperr.NotFound, "book %d not found", id) }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
INSERT INTO books (external_id, title, price, stock_quantity, available_quantity)
VALUES ($1,$2,$3,$4,$4)
RETURNING available_quantity, created_at`
	err := r.db.Pool.QueryRow(ctx, q, b.ExternalID, b.Title, b.Price, b.StockQuantity).
		Scan(&b.AvailableQuantity, &b.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Wrap(apperr.Conflict, "book already exists", err)
		}
		return err
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, externalID int64) (*model.Book, error) {
	b, err := scanBook(r.db.Pool.QueryRow(ctx, selectBook+` WHERE external_id = $1`, externalID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, notFound(externalID)
		}
		return nil, err
	}
	return b, nil
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.db.Pool.Query(ctx, selectBook+` ORDER BY external_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Update rewrites title/price/stock and shifts available by stockDelta.
// The CHECK constraint on books rejects a negative availability.
func (r *repo) Update(ctx context.Context, b *model.Book, stockDelta int) error {
	const q = `
UPDATE books
SET title = $2,
    price = $3,
    stock_quantity = stock_quantity + $4,
    available_quantity = available_quantity + $4
WHERE external_id = $1
RETURNING stock_quantity, available_quantity, created_at`
	err := r.db.Pool.QueryRow(ctx, q, b.ExternalID, b.Title, b.Price, stockDelta).
		Scan(&b.StockQuantity, &b.AvailableQuantity, &b.CreatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return notFound(b.ExternalID)
		}
		if database.IsCheckViolation(err) {
			return apperr.Wrap(apperr.InvalidState, "stock would drop below copies on loan", err)
		}
		return err
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, externalID int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM books WHERE external_id = $1`, externalID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.Conflict, "book has reservations", err)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound(externalID)
	}
	return nil
}

func (r *repo) LockForUpdate(ctx context.Context, tx pgx.Tx, externalID int64) (*model.Book, error) {
	b, err := scanBook(tx.QueryRow(ctx, selectBook+` WHERE external_id = $1 FOR UPDATE`, externalID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, notFound(externalID)
		}
		return nil, err
	}
	return b, nil
}

func (r *repo) DecreaseAvailable(ctx context.Context, tx pgx.Tx, externalID int64) error {
	// Guard: never below zero.
	const q = `
UPDATE books
SET available_quantity = available_quantity - 1
WHERE external_id = $1
  AND available_quantity > 0`
	tag, err := tx.Exec(ctx, q, externalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.Unavailable, "book %d has no available copies", externalID)
	}
	return nil
}

func (r *repo) IncreaseAvailable(ctx context.Context, tx pgx.Tx, externalID int64) error {
	// Guard: never above stock.
	const q = `
UPDATE books
SET available_quantity = available_quantity + 1
WHERE external_id = $1
  AND available_quantity < stock_quantity`
	tag, err := tx.Exec(ctx, q, externalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.InvalidState, "book %d is already fully stocked", externalID)
	}
	return nil
}
