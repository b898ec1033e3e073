package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_PlusAndPercent(t *testing.T) {
	subtotal := Pesos(44000)
	tax := subtotal.Percent(decimal.NewFromInt(19))
	assert.True(t, tax.Equals(Pesos(8360)))

	total, err := subtotal.Plus(tax)
	require.NoError(t, err)
	assert.True(t, total.Equals(Pesos(52360)))

	usd, err := NewMoney(decimal.NewFromInt(1), USD)
	require.NoError(t, err)
	_, err = subtotal.Plus(usd)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = NewMoney(decimal.NewFromInt(1), "")
	assert.Error(t, err)
}

func TestMoney_Display(t *testing.T) {
	cases := map[string]string{
		"52360":   "$52.360",
		"1250000": "$1.250.000",
		"21999.6": "$22.000",
		"65747.5": "$65.748",
		"850":     "$850",
	}
	for amount, want := range cases {
		assert.Equal(t, want, NewMoneyCOP(decimal.RequireFromString(amount)).Display(), amount)
	}
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(Pesos(11250))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"11250","currency":"COP"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"11250"}`), &back))
	assert.True(t, back.Equals(Pesos(11250)))
	assert.Equal(t, "11250.00 COP", back.String())

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"eleven"}`), &back))
}
