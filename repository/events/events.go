package eventsrepo

import (
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	EventReservationCreated = "ReservationCreated"
	EventBookReturned       = "BookReturned"
	EventReservationOverdue = "ReservationOverdue"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Envelope struct {
	EventID       string              `json:"event_id"`
	EventType     string              `json:"event_type"`
	EventVersion  int                 `json:"event_version"`
	OccurredAt    time.Time           `json:"occurred_at"`
	Producer      string              `json:"producer"`
	TraceID       string              `json:"trace_id,omitempty"`
	CorrelationID string              `json:"correlation_id,omitempty"` // reservation id
	Payload       jsoniter.RawMessage `json:"payload"`
}

type ReservationCreatedPayload struct {
	ReservationID      int64  `json:"reservation_id"`
	UserID             int64  `json:"user_id"`
	BookExternalID     int64  `json:"book_external_id"`
	RentalDays         int    `json:"rental_days"`
	StartDate          string `json:"start_date"`
	ExpectedReturnDate string `json:"expected_return_date"`
	DailyRate          string `json:"daily_rate"`
}

type BookReturnedPayload struct {
	ReservationID    int64  `json:"reservation_id"`
	BookExternalID   int64  `json:"book_external_id"`
	Status           string `json:"status"` // RETURNED | OVERDUE
	ActualReturnDate string `json:"actual_return_date"`
	TotalFee         string `json:"total_fee,omitempty"`
	LateFee          string `json:"late_fee,omitempty"`
}

type ReservationOverduePayload struct {
	ReservationID      int64  `json:"reservation_id"`
	UserID             int64  `json:"user_id"`
	BookExternalID     int64  `json:"book_external_id"`
	ExpectedReturnDate string `json:"expected_return_date"`
	DaysLate           int64  `json:"days_late"`
}

func Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func Unmarshal(b []byte, out any) error { return json.Unmarshal(b, out) }

// PartitionKey keeps every event of one reservation on the same partition.
func PartitionKey(reservationID int64) []byte {
	return []byte(strconv.FormatInt(reservationID, 10))
}
