package usersvc

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"library/model"
	userrepo "library/repository/user"
	"library/util/apperr"
)

type Service interface {
	Create(ctx context.Context, req model.UserReq) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id int64, req model.UserReq) (*model.User, error)
	Delete(ctx context.Context, id int64) error

	// Lookup fetches the user inside the caller's transaction.
	Lookup(ctx context.Context, tx pgx.Tx, id int64) (*model.User, error)
}

type service struct{ ur userrepo.Repo }

func New(ur userrepo.Repo) Service { return &service{ur} }

func normalize(req model.UserReq) (model.UserReq, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Email == "" {
		return req, apperr.New(apperr.BadInput, "name and email are required")
	}
	return req, nil
}

func (s *service) Create(ctx context.Context, req model.UserReq) (*model.User, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}
	u := &model.User{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := s.ur.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, apperr.Newf(apperr.NotFound, "user %d not found", id)
	}
	return s.ur.ByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]model.User, error) { return s.ur.List(ctx) }

func (s *service) Update(ctx context.Context, id int64, req model.UserReq) (*model.User, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}
	u := &model.User{ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := s.ur.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, id int64) error { return s.ur.Delete(ctx, id) }

func (s *service) Lookup(ctx context.Context, tx pgx.Tx, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, apperr.Newf(apperr.NotFound, "user %d not found", id)
	}
	return s.ur.LockShared(ctx, tx, id)
}
