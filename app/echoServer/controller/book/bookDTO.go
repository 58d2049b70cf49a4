package book

import (
	"time"

	"github.com/shopspring/decimal"

	"library/app/echoServer/controller"
	"library/model"
)

// Price accepts both 15.99 and "15.99".
type CreateBookReq struct {
	ExternalID    int64           `json:"external_id" validate:"required,gt=0"`
	Title         string          `json:"title" validate:"required,max=255"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
}

type UpdateBookReq struct {
	Title         string          `json:"title" validate:"required,max=255"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
}

type BookResp struct {
	ExternalID        int64            `json:"external_id"`
	Title             string           `json:"title"`
	Price             controller.Money `json:"price"`
	StockQuantity     int              `json:"stock_quantity"`
	AvailableQuantity int              `json:"available_quantity"`
	CreatedAt         time.Time        `json:"created_at"`
}

func toResp(b *model.Book) BookResp {
	return BookResp{
		ExternalID:        b.ExternalID,
		Title:             b.Title,
		Price:             controller.Money(b.Price),
		StockQuantity:     b.StockQuantity,
		AvailableQuantity: b.AvailableQuantity,
		CreatedAt:         b.CreatedAt,
	}
}

func toList(rows []model.Book) []BookResp {
	out := make([]BookResp, 0, len(rows))
	for i := range rows {
		out = append(out, toResp(&rows[i]))
	}
	return out
}
