package reservationsvc

import (
	"time"

	"github.com/shopspring/decimal"

	"library/model"
	"library/util/apperr"
)

// LateFeeRate is charged per day late, as a fraction of the daily rate.
var LateFeeRate = decimal.RequireFromString("0.15")

const moneyScale = 2

// TotalFee is dailyRate × rentalDays at 2 decimals, half-up.
func TotalFee(dailyRate decimal.Decimal, rentalDays int) decimal.Decimal {
	if rentalDays <= 0 || !dailyRate.IsPositive() {
		return decimal.Zero
	}
	return dailyRate.Mul(decimal.NewFromInt(int64(rentalDays))).Round(moneyScale)
}

// LateFee is price × 15% × daysLate at 2 decimals, half-up.
func LateFee(price decimal.Decimal, daysLate int64) decimal.Decimal {
	if daysLate <= 0 || !price.IsPositive() {
		return decimal.Zero
	}
	return price.Mul(LateFeeRate).Mul(decimal.NewFromInt(daysLate)).Round(moneyScale)
}

// DaysBetween counts calendar days from `from` (exclusive) to `to` (inclusive).
func DaysBetween(from, to time.Time) int64 {
	return int64(model.DateOnly(to).Sub(model.DateOnly(from)) / (24 * time.Hour))
}

// settle closes r as of returnDate. Overdue returns only carry a late fee;
// on-time returns only carry the total fee. r is untouched when its status
// cannot move to the closing one.
func settle(r *model.Reservation, returnDate time.Time) error {
	rd := model.DateOnly(returnDate)
	late := rd.After(r.ExpectedReturnDate)

	to := model.ReservationReturned
	if late {
		to = model.ReservationOverdue
	}
	if !model.CanTransition(r.Status, to) {
		return apperr.Newf(apperr.InvalidState, "reservation %d was already returned (%s)", r.ID, r.Status)
	}

	r.ActualReturnDate = &rd
	if late {
		daysLate := DaysBetween(r.ExpectedReturnDate, rd)
		r.LateFee = decimal.NewNullDecimal(LateFee(r.DailyRate, daysLate))
		r.TotalFee = decimal.NullDecimal{}
	} else {
		r.TotalFee = decimal.NewNullDecimal(TotalFee(r.DailyRate, r.RentalDays))
		r.LateFee = decimal.NullDecimal{}
	}
	r.Status = to
	return nil
}
