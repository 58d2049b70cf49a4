// model/book.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is keyed by its external catalogue id.
type Book struct {
	ExternalID        int64           `json:"external_id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     int             `json:"stock_quantity"`
	AvailableQuantity int             `json:"available_quantity"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CanLend reports whether at least one copy is on the shelf.
func (b Book) CanLend() bool { return b.AvailableQuantity > 0 }
