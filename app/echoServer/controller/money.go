package controller

import "github.com/shopspring/decimal"

const moneyScale = 2

// Money renders as a quoted decimal with two places: "7.20", "16.00".
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + decimal.Decimal(m).StringFixed(moneyScale) + `"`), nil
}

// NullMoney is Money or null.
type NullMoney decimal.NullDecimal

func (m NullMoney) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return Money(m.Decimal).MarshalJSON()
}
