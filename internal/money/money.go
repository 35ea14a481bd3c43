// Package money converts between integer cents and decimal text.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// Parse reads "1200", "1200.5" or "1,200.50" into cents. More than two
// fractional digits are rounded half away from zero.
func Parse(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return d.Mul(hundred).Round(0).IntPart(), nil
}

// Format renders cents with exactly two decimals.
func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Amount is a cent value that travels as a decimal string in JSON.
type Amount int64

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Format(int64(a)) + `"`), nil
}

// UnmarshalJSON accepts "12.50" as well as a bare 12.5.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*a = 0
		return nil
	}

	cents, err := Parse(s)
	if err != nil {
		return err
	}

	*a = Amount(cents)

	return nil
}
