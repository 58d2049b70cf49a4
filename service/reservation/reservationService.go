package reservationsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"library/model"
	eventsrepo "library/repository/events"
	rrepo "library/repository/reservation"
	booksvc "library/service/book"
	"library/util/apperr"
	"library/util/database"
)

type Reservation = model.Reservation

type Filter = rrepo.Filter

type Repo interface {
	Insert(ctx context.Context, tx pgx.Tx, r *Reservation) error
	LockByID(ctx context.Context, tx pgx.Tx, id int64) (*Reservation, error)
	MarkClosed(ctx context.Context, tx pgx.Tx, r *Reservation) error

	ByID(ctx context.Context, id int64) (*Reservation, error)
	List(ctx context.Context, f Filter) ([]Reservation, error)
}

// UserLookup validates that the borrower exists, inside the create transaction.
type UserLookup interface {
	Lookup(ctx context.Context, tx pgx.Tx, id int64) (*model.User, error)
}

type CreateInput struct {
	UserID         int64
	BookExternalID int64
	RentalDays     int
	StartDate      time.Time
}

type Service interface {
	// Create opens an ACTIVE reservation and takes one copy off the shelf.
	Create(ctx context.Context, in CreateInput) (*Reservation, error)

	// Return closes an ACTIVE reservation, computes its fee and restocks the copy.
	Return(ctx context.Context, reservationID int64, returnDate time.Time) (*Reservation, error)

	Get(ctx context.Context, id int64) (*Reservation, error)
	List(ctx context.Context) ([]Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]Reservation, error)
	ListActive(ctx context.Context) ([]Reservation, error)
	ListOverdue(ctx context.Context) ([]Reservation, error)
}

// ----- Service implementation -----

type service struct {
	tx    database.TxRunner
	r     Repo
	users UserLookup
	books booksvc.Availability
	pub   eventsrepo.Publisher
	log   *slog.Logger
	now   func() time.Time
}

type Option func(*service)

// WithClock overrides the clock used for the overdue cut-off.
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

func New(tx database.TxRunner, r Repo, users UserLookup, books booksvc.Availability,
	pub eventsrepo.Publisher, log *slog.Logger, opts ...Option) Service {
	s := &service{tx: tx, r: r, users: users, books: books, pub: pub, log: log, now: time.Now}
	if s.pub == nil {
		s.pub = eventsrepo.Noop{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Reservation, error) {
	if in.RentalDays <= 0 {
		return nil, apperr.New(apperr.BadInput, "rental days must be positive")
	}
	if in.StartDate.IsZero() {
		return nil, apperr.New(apperr.BadInput, "start date is required")
	}

	var res *Reservation
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		// check user exists
		user, err := s.users.Lookup(ctx, tx, in.UserID)
		if err != nil {
			return err
		}

		// lock the book row: concurrent creations serialize here
		book, err := s.books.Lock(ctx, tx, in.BookExternalID)
		if err != nil {
			return err
		}
		if !book.CanLend() {
			return apperr.Newf(apperr.Unavailable, "book %d has no available copies", book.ExternalID)
		}

		start := model.DateOnly(in.StartDate)
		res = &Reservation{
			UserID:             user.ID,
			BookExternalID:     book.ExternalID,
			RentalDays:         in.RentalDays,
			StartDate:          start,
			ExpectedReturnDate: model.ExpectedReturn(start, in.RentalDays),
			DailyRate:          book.Price,
			Status:             model.ReservationActive,
			UserName:           user.Name,
			BookTitle:          book.Title,
		}
		if err := s.r.Insert(ctx, tx, res); err != nil {
			return err
		}
		return s.books.DecreaseAvailable(ctx, tx, book.ExternalID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventsrepo.EventReservationCreated, res.ID, eventsrepo.ReservationCreatedPayload{
		ReservationID:      res.ID,
		UserID:             res.UserID,
		BookExternalID:     res.BookExternalID,
		RentalDays:         res.RentalDays,
		StartDate:          res.StartDate.Format(time.DateOnly),
		ExpectedReturnDate: res.ExpectedReturnDate.Format(time.DateOnly),
		DailyRate:          res.DailyRate.StringFixed(moneyScale),
	})
	return res, nil
}

func (s *service) Return(ctx context.Context, reservationID int64, returnDate time.Time) (*Reservation, error) {
	if returnDate.IsZero() {
		return nil, apperr.New(apperr.BadInput, "return date is required")
	}

	var res *Reservation
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		res, err = s.r.LockByID(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if err := settle(res, returnDate); err != nil {
			return err
		}
		if err := s.r.MarkClosed(ctx, tx, res); err != nil {
			return err
		}
		return s.books.IncreaseAvailable(ctx, tx, res.BookExternalID)
	})
	if err != nil {
		return nil, err
	}

	payload := eventsrepo.BookReturnedPayload{
		ReservationID:    res.ID,
		BookExternalID:   res.BookExternalID,
		Status:           string(res.Status),
		ActualReturnDate: res.ActualReturnDate.Format(time.DateOnly),
	}
	if res.TotalFee.Valid {
		payload.TotalFee = res.TotalFee.Decimal.StringFixed(moneyScale)
	}
	if res.LateFee.Valid {
		payload.LateFee = res.LateFee.Decimal.StringFixed(moneyScale)
	}
	s.publish(ctx, eventsrepo.EventBookReturned, res.ID, payload)
	return res, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Reservation, error) {
	return s.r.ByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]Reservation, error) {
	return s.r.List(ctx, Filter{})
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]Reservation, error) {
	return s.r.List(ctx, Filter{UserID: &userID})
}

func (s *service) ListActive(ctx context.Context) ([]Reservation, error) {
	return s.r.List(ctx, Filter{Status: model.ReservationActive})
}

// ListOverdue returns ACTIVE reservations whose expected return date is
// before today.
func (s *service) ListOverdue(ctx context.Context) ([]Reservation, error) {
	today := model.DateOnly(s.now())
	return s.r.List(ctx, Filter{Status: model.ReservationActive, DueBefore: &today})
}

// publish runs after commit; a broker failure never undoes a reservation.
func (s *service) publish(ctx context.Context, eventType string, id int64, payload any) {
	if err := s.pub.Publish(ctx, eventType, id, payload); err != nil {
		s.log.Warn("publish event failed", "event", eventType, "reservation_id", id, "err", err)
	}
}
