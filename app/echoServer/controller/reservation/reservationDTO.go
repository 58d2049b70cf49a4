package reservation

import (
	"time"

	"library/app/echoServer/controller"
	"library/model"
)

type CreateReservationReq struct {
	UserID         int64  `json:"user_id" validate:"required,gt=0"`
	BookExternalID int64  `json:"book_external_id" validate:"required,gt=0"`
	RentalDays     int    `json:"rental_days" validate:"required,gt=0"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

type ReturnBookReq struct {
	ReturnDate string `json:"return_date" validate:"required,datetime=2006-01-02"`
}

// ReservationResp is the public projection; dates are YYYY-MM-DD and money
// is a decimal string.
type ReservationResp struct {
	ID                 int64                `json:"id"`
	UserID             int64                `json:"user_id"`
	UserName           string               `json:"user_name"`
	BookExternalID     int64                `json:"book_external_id"`
	BookTitle          string               `json:"book_title"`
	RentalDays         int                  `json:"rental_days"`
	StartDate          string               `json:"start_date"`
	ExpectedReturnDate string               `json:"expected_return_date"`
	ActualReturnDate   *string              `json:"actual_return_date"`
	DailyRate          controller.Money     `json:"daily_rate"`
	TotalFee           controller.NullMoney `json:"total_fee"`
	LateFee            controller.NullMoney `json:"late_fee"`
	Status             string               `json:"status"`
	CreatedAt          time.Time            `json:"created_at"`
}

func toResp(r *model.Reservation) ReservationResp {
	out := ReservationResp{
		ID:                 r.ID,
		UserID:             r.UserID,
		UserName:           r.UserName,
		BookExternalID:     r.BookExternalID,
		BookTitle:          r.BookTitle,
		RentalDays:         r.RentalDays,
		StartDate:          r.StartDate.Format(time.DateOnly),
		ExpectedReturnDate: r.ExpectedReturnDate.Format(time.DateOnly),
		DailyRate:          controller.Money(r.DailyRate),
		TotalFee:           controller.NullMoney(r.TotalFee),
		LateFee:            controller.NullMoney(r.LateFee),
		Status:             string(r.Status),
		CreatedAt:          r.CreatedAt,
	}
	if r.ActualReturnDate != nil {
		d := r.ActualReturnDate.Format(time.DateOnly)
		out.ActualReturnDate = &d
	}
	return out
}

func toList(rows []model.Reservation) []ReservationResp {
	out := make([]ReservationResp, 0, len(rows))
	for i := range rows {
		out = append(out, toResp(&rows[i]))
	}
	return out
}
