package userrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"library/model"
	"library/util/apperr"
	"library/util/database"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error

	// LockShared reads the user inside tx and holds it against deletion
	// until tx ends.
	LockShared(ctx context.Context, tx pgx.Tx, id int64) (*model.User, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users(name, email, phone_number)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`,
		u.Name, u.Email, u.Phone,
	).Scan(&u.ID, &u.CreatedAt)
	return mapWriteErr(err)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, email, phone_number, created_at
		FROM users
		WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperr.Newf(apperr.NotFound, "user %d not found", id)
		}
		return nil, err
	}
	return u, nil
}

func (r *repo) LockShared(ctx context.Context, tx pgx.Tx, id int64) (*model.User, error) {
	u := &model.User{}
	err := tx.QueryRow(ctx, `
		SELECT id, name, email, phone_number, created_at
		FROM users
		WHERE id = $1
		FOR SHARE`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperr.Newf(apperr.NotFound, "user %d not found", id)
		}
		return nil, err
	}
	return u, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, email, phone_number, created_at
		FROM users
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, u *model.User) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, email = $3, phone_number = $4
		WHERE id = $1
		RETURNING created_at`,
		u.ID, u.Name, u.Email, u.Phone,
	).Scan(&u.CreatedAt)
	if database.IsNoRows(err) {
		return apperr.Newf(apperr.NotFound, "user %d not found", u.ID)
	}
	return mapWriteErr(err)
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.Conflict, "user has reservations", err)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.NotFound, "user %d not found", id)
	}
	return nil
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if database.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.Conflict, "email already registered", err)
	}
	return err
}
