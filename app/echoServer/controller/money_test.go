package controller

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMoneyJSON_KeepsTwoPlaces(t *testing.T) {
	out, err := json.Marshal(struct {
		Rate    Money     `json:"rate"`
		Late    NullMoney `json:"late"`
		Total   NullMoney `json:"total"`
		Rounded Money     `json:"rounded"`
	}{
		Rate:    Money(decimal.RequireFromString("16")),
		Late:    NullMoney(decimal.NewNullDecimal(decimal.RequireFromString("7.2"))),
		Rounded: Money(decimal.RequireFromString("7.1955")),
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"rate":"16.00","late":"7.20","total":null,"rounded":"7.20"}`, string(out))
}
