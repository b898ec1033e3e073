package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is an ISO 4217 code
type Currency string

const (
	COP Currency = "COP"
	USD Currency = "USD"
)

// DefaultCurrency is what the storefront prices and invoices in
const DefaultCurrency = COP

var (
	// es-CO groups thousands with dots: 52.360
	pesoPrinter = message.NewPrinter(language.MustParse("es-CO"))
	hundred     = decimal.NewFromInt(100)
)

// ErrCurrencyMismatch is returned when combining amounts in different currencies
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is an exact amount in one currency. The zero value is not usable;
// build one with NewMoney, NewMoneyCOP or Pesos.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney validates the currency and builds a Money
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("money: currency is required")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyCOP wraps a peso amount
func NewMoneyCOP(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: COP}
}

// Pesos wraps a whole-peso amount
func Pesos(n int64) Money {
	return NewMoneyCOP(decimal.NewFromInt(n))
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() Currency { return m.currency }

// Plus adds two amounts of the same currency
func (m Money) Plus(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Percent returns pct percent of m, unrounded
func (m Money) Percent(pct decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(pct).Div(hundred), currency: m.currency}
}

func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Display renders the amount as printed on documents: whole units, half away
// from zero, es-CO grouping, e.g. "$52.360"
func (m Money) Display() string {
	return pesoPrinter.Sprintf("$%d", m.amount.Round(0).IntPart())
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// MarshalJSON writes the amount as an exact decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.currency})
}

// UnmarshalJSON reads {"amount","currency"}; a missing currency means COP
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	if v.Currency == "" {
		v.Currency = DefaultCurrency
	}
	m.amount, m.currency = v.Amount, v.Currency
	return nil
}
