// service/reservation/reservationService_test.go
package reservationsvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"library/model"
	eventsrepo "library/repository/events"
	"library/util/apperr"
)

// --- fakes ---

type fakeTx struct {
	runs       int
	rolledBack int
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.runs++
	if err := fn(nil); err != nil {
		f.rolledBack++
		return err
	}
	return nil
}

type repoMock struct {
	insertFn func(ctx context.Context, r *model.Reservation) error
	lockFn   func(ctx context.Context, id int64) (*model.Reservation, error)
	closeFn  func(ctx context.Context, r *model.Reservation) error
	byIDFn   func(ctx context.Context, id int64) (*model.Reservation, error)
	listFn   func(ctx context.Context, f Filter) ([]model.Reservation, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) Insert(ctx context.Context, tx pgx.Tx, r *model.Reservation) error {
	return m.insertFn(ctx, r)
}
func (m *repoMock) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Reservation, error) {
	return m.lockFn(ctx, id)
}
func (m *repoMock) MarkClosed(ctx context.Context, tx pgx.Tx, r *model.Reservation) error {
	return m.closeFn(ctx, r)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) List(ctx context.Context, f Filter) ([]model.Reservation, error) {
	return m.listFn(ctx, f)
}

type usersMock struct {
	users map[int64]*model.User
}

func (m *usersMock) Lookup(ctx context.Context, tx pgx.Tx, id int64) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperr.Newf(apperr.NotFound, "user %d not found", id)
}

// booksFake keeps availability in memory.
type booksFake struct {
	books     map[int64]*model.Book
	decreased int
	increased int
}

func (b *booksFake) Lock(ctx context.Context, tx pgx.Tx, id int64) (*model.Book, error) {
	bk, ok := b.books[id]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "book %d not found", id)
	}
	cp := *bk
	return &cp, nil
}
func (b *booksFake) DecreaseAvailable(ctx context.Context, tx pgx.Tx, id int64) error {
	b.books[id].AvailableQuantity--
	b.decreased++
	return nil
}
func (b *booksFake) IncreaseAvailable(ctx context.Context, tx pgx.Tx, id int64) error {
	b.books[id].AvailableQuantity++
	b.increased++
	return nil
}

type published struct {
	eventType string
	id        int64
	payload   any
}

type pubFake struct {
	events []published
	err    error
}

func (p *pubFake) Publish(ctx context.Context, eventType string, id int64, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{eventType, id, payload})
	return nil
}

// --- fixtures ---

var startDate = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	tx    *fakeTx
	repo  *repoMock
	users *usersMock
	books *booksFake
	pub   *pubFake
	svc   Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tx:   &fakeTx{},
		repo: &repoMock{},
		users: &usersMock{users: map[int64]*model.User{
			1: {ID: 1, Name: "Juan Pérez", Email: "juan@example.com"},
		}},
		books: &booksFake{books: map[int64]*model.Book{
			258027: {ExternalID: 258027, Title: "The Lord of the Rings", Price: dec("15.99"), StockQuantity: 10, AvailableQuantity: 5},
		}},
		pub: &pubFake{},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = New(f.tx, f.repo, f.users, f.books, f.pub, log,
		WithClock(func() time.Time { return time.Date(2025, time.March, 20, 9, 30, 0, 0, time.UTC) }))
	return f
}

func activeFixtureReservation() *model.Reservation {
	return &model.Reservation{
		ID:                 1,
		UserID:             1,
		BookExternalID:     258027,
		RentalDays:         7,
		StartDate:          startDate,
		ExpectedReturnDate: model.ExpectedReturn(startDate, 7),
		DailyRate:          dec("15.99"),
		Status:             model.ReservationActive,
		UserName:           "Juan Pérez",
		BookTitle:          "The Lord of the Rings",
	}
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)
	var inserted *model.Reservation
	f.repo.insertFn = func(ctx context.Context, r *model.Reservation) error {
		r.ID = 11
		inserted = r
		return nil
	}

	res, err := f.svc.Create(context.Background(), CreateInput{
		UserID: 1, BookExternalID: 258027, RentalDays: 7, StartDate: startDate.Add(10 * time.Hour),
	})
	require.NoError(t, err)
	require.Same(t, inserted, res)

	require.Equal(t, int64(11), res.ID)
	require.Equal(t, model.ReservationActive, res.Status)
	require.Equal(t, 7, res.RentalDays)
	require.Equal(t, startDate, res.StartDate)
	require.Equal(t, time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC), res.ExpectedReturnDate)
	require.Equal(t, "15.99", res.DailyRate.StringFixed(2))
	require.False(t, res.TotalFee.Valid)
	require.False(t, res.LateFee.Valid)
	require.Equal(t, "Juan Pérez", res.UserName)
	require.Equal(t, "The Lord of the Rings", res.BookTitle)

	require.Equal(t, 4, f.books.books[258027].AvailableQuantity)
	require.Equal(t, 1, f.books.decreased)

	require.Len(t, f.pub.events, 1)
	require.Equal(t, eventsrepo.EventReservationCreated, f.pub.events[0].eventType)
	require.Equal(t, int64(11), f.pub.events[0].id)
}

func TestCreate_UserNotFound(t *testing.T) {
	f := newFixture(t)
	f.repo.insertFn = func(ctx context.Context, r *model.Reservation) error {
		t.Fatal("insert must not run")
		return nil
	}

	_, err := f.svc.Create(context.Background(), CreateInput{UserID: 99, BookExternalID: 258027, RentalDays: 7, StartDate: startDate})
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.Code(err))
	require.Equal(t, 1, f.tx.runs)
	require.Equal(t, 1, f.tx.rolledBack)
	require.Equal(t, 5, f.books.books[258027].AvailableQuantity)
	require.Empty(t, f.pub.events)
}

func TestCreate_BookNotFound(t *testing.T) {
	f := newFixture(t)
	f.repo.insertFn = func(ctx context.Context, r *model.Reservation) error {
		t.Fatal("insert must not run")
		return nil
	}

	_, err := f.svc.Create(context.Background(), CreateInput{UserID: 1, BookExternalID: 1, RentalDays: 7, StartDate: startDate})
	require.Equal(t, apperr.NotFound, apperr.Code(err))
	require.Equal(t, 1, f.tx.rolledBack)
	require.Equal(t, 0, f.books.decreased)
}

func TestCreate_NoAvailableCopies(t *testing.T) {
	f := newFixture(t)
	f.books.books[258027].AvailableQuantity = 0
	f.repo.insertFn = func(ctx context.Context, r *model.Reservation) error {
		t.Fatal("insert must not run")
		return nil
	}

	_, err := f.svc.Create(context.Background(), CreateInput{UserID: 1, BookExternalID: 258027, RentalDays: 7, StartDate: startDate})
	require.Equal(t, apperr.Unavailable, apperr.Code(err))
	require.Equal(t, 0, f.books.books[258027].AvailableQuantity)
	require.Equal(t, 0, f.books.decreased)
}

func TestCreate_BadInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{UserID: 1, BookExternalID: 258027, RentalDays: 0, StartDate: startDate})
	require.Equal(t, apperr.BadInput, apperr.Code(err))

	_, err = f.svc.Create(context.Background(), CreateInput{UserID: 1, BookExternalID: 258027, RentalDays: 3})
	require.Equal(t, apperr.BadInput, apperr.Code(err))
	require.Equal(t, 0, f.tx.runs)
}

func TestCreate_InsertErrorRollsBack(t *testing.T) {
	f := newFixture(t)
	dbErr := errors.New("db down")
	f.repo.insertFn = func(ctx context.Context, r *model.Reservation) error { return dbErr }

	_, err := f.svc.Create(context.Background(), CreateInput{UserID: 1, BookExternalID: 258027, RentalDays: 7, StartDate: startDate})
	require.ErrorIs(t, err, dbErr)
	require.Equal(t, 1, f.tx.rolledBack)
	require.Equal(t, 0, f.books.decreased)
	require.Empty(t, f.pub.events)
}

func TestCreate_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	f.repo.insertFn = func(ctx context.Context, r *model.Reservation) error { r.ID = 3; return nil }

	res, err := f.svc.Create(context.Background(), CreateInput{UserID: 1, BookExternalID: 258027, RentalDays: 7, StartDate: startDate})
	require.NoError(t, err)
	require.Equal(t, int64(3), res.ID)
}

// --- Return ---

func TestReturn_OnTime(t *testing.T) {
	f := newFixture(t)
	var closed *model.Reservation
	f.repo.lockFn = func(ctx context.Context, id int64) (*model.Reservation, error) { return activeFixtureReservation(), nil }
	f.repo.closeFn = func(ctx context.Context, r *model.Reservation) error { closed = r; return nil }

	returnDate := startDate.AddDate(0, 0, 5)
	res, err := f.svc.Return(context.Background(), 1, returnDate)
	require.NoError(t, err)
	require.Same(t, closed, res)

	require.Equal(t, model.ReservationReturned, res.Status)
	require.Equal(t, "111.93", res.TotalFee.Decimal.StringFixed(2))
	require.True(t, res.TotalFee.Valid)
	require.False(t, res.LateFee.Valid)
	require.Equal(t, returnDate, *res.ActualReturnDate)

	require.Equal(t, 6, f.books.books[258027].AvailableQuantity)
	require.Equal(t, 1, f.books.increased)

	require.Len(t, f.pub.events, 1)
	p := f.pub.events[0].payload.(eventsrepo.BookReturnedPayload)
	require.Equal(t, "RETURNED", p.Status)
	require.Equal(t, "111.93", p.TotalFee)
	require.Empty(t, p.LateFee)
}

func TestReturn_Overdue(t *testing.T) {
	f := newFixture(t)
	f.repo.lockFn = func(ctx context.Context, id int64) (*model.Reservation, error) { return activeFixtureReservation(), nil }
	f.repo.closeFn = func(ctx context.Context, r *model.Reservation) error { return nil }

	returnDate := model.ExpectedReturn(startDate, 7).AddDate(0, 0, 3)
	res, err := f.svc.Return(context.Background(), 1, returnDate)
	require.NoError(t, err)

	require.Equal(t, model.ReservationOverdue, res.Status)
	require.True(t, res.LateFee.Valid)
	require.Equal(t, "7.20", res.LateFee.Decimal.StringFixed(2))
	require.False(t, res.TotalFee.Valid)
	require.Equal(t, 1, f.books.increased)
}

func TestReturn_AlreadyClosed(t *testing.T) {
	for _, st := range []model.ReservationStatus{model.ReservationReturned, model.ReservationOverdue} {
		t.Run(string(st), func(t *testing.T) {
			f := newFixture(t)
			f.repo.lockFn = func(ctx context.Context, id int64) (*model.Reservation, error) {
				r := activeFixtureReservation()
				r.Status = st
				return r, nil
			}
			f.repo.closeFn = func(ctx context.Context, r *model.Reservation) error {
				t.Fatal("must not persist")
				return nil
			}

			_, err := f.svc.Return(context.Background(), 1, startDate.AddDate(0, 0, 2))
			require.Equal(t, apperr.InvalidState, apperr.Code(err))
			require.Equal(t, 0, f.books.increased)
			require.Equal(t, 5, f.books.books[258027].AvailableQuantity)
			require.Empty(t, f.pub.events)
		})
	}
}

func TestReturn_NotFound(t *testing.T) {
	f := newFixture(t)
	f.repo.lockFn = func(ctx context.Context, id int64) (*model.Reservation, error) {
		return nil, apperr.Newf(apperr.NotFound, "reservation %d not found", id)
	}

	_, err := f.svc.Return(context.Background(), 404, startDate)
	require.Equal(t, apperr.NotFound, apperr.Code(err))
}

func TestReturn_MissingDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Return(context.Background(), 1, time.Time{})
	require.Equal(t, apperr.BadInput, apperr.Code(err))
	require.Equal(t, 0, f.tx.runs)
}

// --- Queries ---

func TestGet_Idempotent(t *testing.T) {
	f := newFixture(t)
	stored := activeFixtureReservation()
	f.repo.byIDFn = func(ctx context.Context, id int64) (*model.Reservation, error) {
		cp := *stored
		return &cp, nil
	}

	a, err := f.svc.Get(context.Background(), 1)
	require.NoError(t, err)
	b, err := f.svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	var got []Filter
	f.repo.listFn = func(ctx context.Context, fl Filter) ([]model.Reservation, error) {
		got = append(got, fl)
		return []model.Reservation{}, nil
	}
	ctx := context.Background()

	_, err := f.svc.List(ctx)
	require.NoError(t, err)
	_, err = f.svc.ListByUser(ctx, 1)
	require.NoError(t, err)
	_, err = f.svc.ListActive(ctx)
	require.NoError(t, err)
	out, err := f.svc.ListOverdue(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)

	require.Len(t, got, 4)
	require.Equal(t, Filter{}, got[0])
	require.Equal(t, int64(1), *got[1].UserID)
	require.Equal(t, model.ReservationActive, got[2].Status)
	require.Nil(t, got[2].DueBefore)
	require.Equal(t, model.ReservationActive, got[3].Status)
	require.Equal(t, time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC), *got[3].DueBefore)
}
