// model/reservation.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationActive   ReservationStatus = "ACTIVE"
	ReservationReturned ReservationStatus = "RETURNED"
	ReservationOverdue  ReservationStatus = "OVERDUE"
)

var validNext = map[ReservationStatus]map[ReservationStatus]bool{
	ReservationActive:   {ReservationReturned: true, ReservationOverdue: true},
	ReservationReturned: {},
	ReservationOverdue:  {},
}

// CanTransition reports whether a reservation may move from one status to another.
func CanTransition(from, to ReservationStatus) bool {
	return validNext[from][to]
}

// Reservation holds foreign keys, not object references. UserName and
// BookTitle are filled by joined reads for the response projection.
type Reservation struct {
	ID                 int64               `json:"id"`
	UserID             int64               `json:"user_id"`
	BookExternalID     int64               `json:"book_external_id"`
	RentalDays         int                 `json:"rental_days"`
	StartDate          time.Time           `json:"start_date"`
	ExpectedReturnDate time.Time           `json:"expected_return_date"`
	ActualReturnDate   *time.Time          `json:"actual_return_date,omitempty"`
	DailyRate          decimal.Decimal     `json:"daily_rate"`
	TotalFee           decimal.NullDecimal `json:"total_fee"`
	LateFee            decimal.NullDecimal `json:"late_fee"`
	Status             ReservationStatus   `json:"status"`
	CreatedAt          time.Time           `json:"created_at"`

	UserName  string `json:"user_name"`
	BookTitle string `json:"book_title"`
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpectedReturn is start plus rentalDays calendar days.
func ExpectedReturn(start time.Time, rentalDays int) time.Time {
	return DateOnly(start).AddDate(0, 0, rentalDays)
}
