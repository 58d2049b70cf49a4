package booksvc

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"library/model"
	"library/util/apperr"
)

type Book = model.Book

// Input is the create/update payload. On update ExternalID is ignored.
type Input struct {
	ExternalID    int64
	Title         string
	Price         decimal.Decimal
	StockQuantity int
}

type Repo interface {
	Create(ctx context.Context, b *Book) error
	ByID(ctx context.Context, externalID int64) (*Book, error)
	List(ctx context.Context) ([]Book, error)
	Update(ctx context.Context, b *Book, stockDelta int) error
	Delete(ctx context.Context, externalID int64) error

	LockForUpdate(ctx context.Context, tx pgx.Tx, externalID int64) (*Book, error)
	DecreaseAvailable(ctx context.Context, tx pgx.Tx, externalID int64) error
	IncreaseAvailable(ctx context.Context, tx pgx.Tx, externalID int64) error
}

// Availability is the stock side of the reservation lifecycle. All calls run
// inside the caller's transaction.
type Availability interface {
	Lock(ctx context.Context, tx pgx.Tx, externalID int64) (*Book, error)
	DecreaseAvailable(ctx context.Context, tx pgx.Tx, externalID int64) error
	IncreaseAvailable(ctx context.Context, tx pgx.Tx, externalID int64) error
}

type Service interface {
	Availability

	Create(ctx context.Context, in Input) (*Book, error)
	Detail(ctx context.Context, externalID int64) (*Book, error)
	List(ctx context.Context) ([]Book, error)
	Update(ctx context.Context, externalID int64, in Input) (*Book, error)
	Delete(ctx context.Context, externalID int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func validate(in Input) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.Price.IsNegative() || in.StockQuantity < 0 {
		return in, apperr.New(apperr.BadInput, "invalid payload")
	}
	in.Price = in.Price.Round(2)
	return in, nil
}

func (s *service) Create(ctx context.Context, in Input) (*Book, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}
	if in.ExternalID <= 0 {
		return nil, apperr.New(apperr.BadInput, "external id must be positive")
	}
	b := &Book{ExternalID: in.ExternalID, Title: in.Title, Price: in.Price, StockQuantity: in.StockQuantity}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Detail(ctx context.Context, externalID int64) (*Book, error) {
	return s.r.ByID(ctx, externalID)
}

func (s *service) List(ctx context.Context) ([]Book, error) { return s.r.List(ctx) }

// Update keeps copies on loan constant: a stock change moves available by
// the same amount.
func (s *service) Update(ctx context.Context, externalID int64, in Input) (*Book, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}
	cur, err := s.r.ByID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	delta := in.StockQuantity - cur.StockQuantity
	if cur.AvailableQuantity+delta < 0 {
		return nil, apperr.Newf(apperr.InvalidState,
			"stock %d is below the %d copies on loan", in.StockQuantity, cur.StockQuantity-cur.AvailableQuantity)
	}
	b := &Book{ExternalID: externalID, Title: in.Title, Price: in.Price}
	if err := s.r.Update(ctx, b, delta); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, externalID int64) error {
	return s.r.Delete(ctx, externalID)
}

func (s *service) Lock(ctx context.Context, tx pgx.Tx, externalID int64) (*Book, error) {
	return s.r.LockForUpdate(ctx, tx, externalID)
}

func (s *service) DecreaseAvailable(ctx context.Context, tx pgx.Tx, externalID int64) error {
	return s.r.DecreaseAvailable(ctx, tx, externalID)
}

func (s *service) IncreaseAvailable(ctx context.Context, tx pgx.Tx, externalID int64) error {
	return s.r.IncreaseAvailable(ctx, tx, externalID)
}
