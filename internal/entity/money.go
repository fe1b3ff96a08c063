package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money wraps decimal.Decimal so that amounts serialize as bare JSON numbers.
// Downstream consumers key off `"amount": 1234.56`, not a quoted string.
type Money struct {
	decimal.Decimal
}

// NewMoney returns a Money pointer for the given decimal.
func NewMoney(d decimal.Decimal) *Money {
	return &Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return fmt.Errorf("money: cannot decode %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	m.Decimal = d
	return nil
}
