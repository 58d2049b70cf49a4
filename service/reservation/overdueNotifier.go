package reservationsvc

import (
	"context"
	"log/slog"
	"time"

	"library/model"
	eventsrepo "library/repository/events"
	"library/util/redisx"
)

// Claimer deduplicates notices; Claim reports whether key was not yet taken.
type Claimer interface {
	Claim(ctx context.Context, key string) (bool, error)
}

type Notifier interface {
	// NotifyOverdue publishes one ReservationOverdue event per overdue
	// reservation per day and returns how many were sent.
	NotifyOverdue(ctx context.Context) (int, error)
	Run(ctx context.Context, every time.Duration)
}

type notifier struct {
	r     Repo
	pub   eventsrepo.Publisher
	dedup Claimer
	log   *slog.Logger
	now   func() time.Time
}

// NewNotifier never changes reservation state. dedup may be nil.
func NewNotifier(r Repo, pub eventsrepo.Publisher, dedup Claimer, log *slog.Logger) Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &notifier{r: r, pub: pub, dedup: dedup, log: log, now: time.Now}
}

func (n *notifier) NotifyOverdue(ctx context.Context) (int, error) {
	today := model.DateOnly(n.now())
	rows, err := n.r.List(ctx, Filter{Status: model.ReservationActive, DueBefore: &today})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, res := range rows {
		if n.dedup != nil {
			first, err := n.dedup.Claim(ctx, redisx.OverdueNoticeKey(res.ID, today))
			if err != nil {
				n.log.Warn("overdue dedup failed", "reservation_id", res.ID, "err", err)
				continue
			}
			if !first {
				continue
			}
		}
		err := n.pub.Publish(ctx, eventsrepo.EventReservationOverdue, res.ID, eventsrepo.ReservationOverduePayload{
			ReservationID:      res.ID,
			UserID:             res.UserID,
			BookExternalID:     res.BookExternalID,
			ExpectedReturnDate: res.ExpectedReturnDate.Format(time.DateOnly),
			DaysLate:           DaysBetween(res.ExpectedReturnDate, today),
		})
		if err != nil {
			n.log.Warn("publish overdue failed", "reservation_id", res.ID, "err", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (n *notifier) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sent, err := n.NotifyOverdue(ctx)
			if err != nil {
				n.log.Error("overdue scan failed", "err", err)
				continue
			}
			if sent > 0 {
				n.log.Info("overdue notices sent", "count", sent)
			}
		}
	}
}
