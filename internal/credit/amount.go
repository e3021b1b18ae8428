// AngelaMos | 2026
// amount.go

package credit

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a signed, exact number of credits. Stored amounts and API
// input may be numbers or numeric strings; anything that does not parse
// counts as 0. The zero value is 0.
type Amount struct {
	d decimal.Decimal
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func NewAmount(credits int64) Amount {
	return Amount{d: decimal.NewFromInt(credits)}
}

// ParseAmount coerces v to an Amount. Strings are read up to the first
// character that cannot continue a number, so "12abc" is 12 and "abc" is 0.
func ParseAmount(v any) Amount {
	switch x := v.(type) {
	case nil:
		return Amount{}
	case Amount:
		return x
	case decimal.Decimal:
		return Amount{d: x}
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return NewAmount(int64(x))
	case int32:
		return NewAmount(int64(x))
	case int64:
		return NewAmount(x)
	case json.Number:
		return ParseAmount(string(x))
	case []byte:
		return ParseAmount(string(x))
	case string:
		prefix := leadingNumber.FindString(strings.TrimSpace(x))
		if prefix == "" {
			return Amount{}
		}
		d, err := decimal.NewFromString(strings.TrimSuffix(prefix, "."))
		if err != nil {
			return Amount{}
		}
		return Amount{d: d}
	default:
		return Amount{}
	}
}

func fromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}
	}
	return Amount{d: decimal.NewFromFloat(f)}
}

func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

func (a Amount) Neg() Amount {
	return Amount{d: a.d.Neg()}
}

func (a Amount) LessThan(b Amount) bool {
	return a.d.LessThan(b.d)
}

// Equal compares values, so 1 and 1.00 are equal.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// String renders the amount without trailing zeros: 3.00 is "3".
func (a Amount) String() string {
	return a.d.String()
}

// Float64 is for telemetry attributes only.
func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

func (a *Amount) Scan(src any) error {
	*a = ParseAmount(src)
	return nil
}

func (a Amount) Value() (driver.Value, error) {
	return a.d.String(), nil
}

// MarshalJSON writes a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

// UnmarshalJSON accepts 3, 3.5 and "3.5".
func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		*a = Amount{}
		return nil //nolint:nilerr // malformed amounts coerce to zero
	}
	*a = ParseAmount(raw)
	return nil
}

// Sum adds the amounts of credits.
func Sum(credits []Credit) Amount {
	var total Amount
	for _, c := range credits {
		total = total.Add(c.Amount)
	}
	return total
}
