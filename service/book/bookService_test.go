// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	booksvc "library/service/book"
	"library/util/apperr"
)

type repoMock struct {
	createFn   func(ctx context.Context, b *booksvc.Book) error
	byIDFn     func(ctx context.Context, id int64) (*booksvc.Book, error)
	listFn     func(ctx context.Context) ([]booksvc.Book, error)
	updateFn   func(ctx context.Context, b *booksvc.Book, delta int) error
	deleteFn   func(ctx context.Context, id int64) error
	lockFn     func(ctx context.Context, tx pgx.Tx, id int64) (*booksvc.Book, error)
	decreaseFn func(ctx context.Context, tx pgx.Tx, id int64) error
	increaseFn func(ctx context.Context, tx pgx.Tx, id int64) error
}

func (m *repoMock) Create(ctx context.Context, b *booksvc.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) ByID(ctx context.Context, id int64) (*booksvc.Book, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) List(ctx context.Context) ([]booksvc.Book, error) { return m.listFn(ctx) }
func (m *repoMock) Update(ctx context.Context, b *booksvc.Book, delta int) error {
	return m.updateFn(ctx, b, delta)
}
func (m *repoMock) Delete(ctx context.Context, id int64) error { return m.deleteFn(ctx, id) }
func (m *repoMock) LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*booksvc.Book, error) {
	return m.lockFn(ctx, tx, id)
}
func (m *repoMock) DecreaseAvailable(ctx context.Context, tx pgx.Tx, id int64) error {
	return m.decreaseFn(ctx, tx, id)
}
func (m *repoMock) IncreaseAvailable(ctx context.Context, tx pgx.Tx, id int64) error {
	return m.increaseFn(ctx, tx, id)
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	ctx := context.Background()

	cases := []booksvc.Input{
		{ExternalID: 1, Title: "", Price: price("10"), StockQuantity: 1},
		{ExternalID: 1, Title: "Dune", Price: price("-1"), StockQuantity: 1},
		{ExternalID: 1, Title: "Dune", Price: price("10"), StockQuantity: -1},
		{ExternalID: 0, Title: "Dune", Price: price("10"), StockQuantity: 1},
	}
	for _, in := range cases {
		_, err := s.Create(ctx, in)
		require.Error(t, err)
		require.Equal(t, apperr.BadInput, apperr.Code(err))
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *booksvc.Book) error {
			if b.ExternalID != 258027 || b.Title != "The Lord of the Rings" || !b.Price.Equal(price("15.99")) {
				return errors.New("bad args")
			}
			b.AvailableQuantity = b.StockQuantity
			return nil
		},
	}
	s := booksvc.New(m)
	b, err := s.Create(context.Background(), booksvc.Input{
		ExternalID: 258027, Title: " The Lord of the Rings ", Price: price("15.99"), StockQuantity: 10,
	})
	require.NoError(t, err)
	require.Equal(t, 10, b.AvailableQuantity)
}

func TestUpdate_ShiftsAvailableByStockDelta(t *testing.T) {
	var gotDelta int
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*booksvc.Book, error) {
			return &booksvc.Book{ExternalID: id, StockQuantity: 10, AvailableQuantity: 5}, nil
		},
		updateFn: func(ctx context.Context, b *booksvc.Book, delta int) error {
			gotDelta = delta
			b.StockQuantity, b.AvailableQuantity = 12, 7
			return nil
		},
	}
	s := booksvc.New(m)

	b, err := s.Update(context.Background(), 258027, booksvc.Input{Title: "LOTR", Price: price("15.99"), StockQuantity: 12})
	require.NoError(t, err)
	require.Equal(t, 2, gotDelta)
	require.Equal(t, 7, b.AvailableQuantity)
}

func TestUpdate_RejectsStockBelowLoans(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*booksvc.Book, error) {
			return &booksvc.Book{ExternalID: id, StockQuantity: 10, AvailableQuantity: 2}, nil
		},
		updateFn: func(ctx context.Context, b *booksvc.Book, delta int) error {
			t.Fatal("update must not run")
			return nil
		},
	}
	s := booksvc.New(m)

	_, err := s.Update(context.Background(), 1, booksvc.Input{Title: "LOTR", Price: price("1"), StockQuantity: 7})
	require.Equal(t, apperr.InvalidState, apperr.Code(err))
}

func TestPassThroughs(t *testing.T) {
	calls := map[string]int{}
	m := &repoMock{
		listFn:   func(ctx context.Context) ([]booksvc.Book, error) { return nil, nil },
		byIDFn:   func(ctx context.Context, id int64) (*booksvc.Book, error) { return &booksvc.Book{}, nil },
		deleteFn: func(ctx context.Context, id int64) error { calls["delete"]++; return nil },
		lockFn: func(ctx context.Context, tx pgx.Tx, id int64) (*booksvc.Book, error) {
			calls["lock"]++
			return &booksvc.Book{ExternalID: id}, nil
		},
		decreaseFn: func(ctx context.Context, tx pgx.Tx, id int64) error { calls["decrease"]++; return nil },
		increaseFn: func(ctx context.Context, tx pgx.Tx, id int64) error { calls["increase"]++; return nil },
	}
	s := booksvc.New(m)
	ctx := context.Background()

	_, err := s.List(ctx)
	require.NoError(t, err)
	_, err = s.Detail(ctx, 99)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, 99))
	_, err = s.Lock(ctx, nil, 99)
	require.NoError(t, err)
	require.NoError(t, s.DecreaseAvailable(ctx, nil, 99))
	require.NoError(t, s.IncreaseAvailable(ctx, nil, 99))

	require.Equal(t, map[string]int{"delete": 1, "lock": 1, "decrease": 1, "increase": 1}, calls)
}
