package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a currency amount in major units. The backend serialises decimals
// as strings ("12500.00") on some endpoints and as numbers on others; both
// decode.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", s, err)
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

// FormValue renders the amount for a form field, with two decimals.
func (a Amount) FormValue() string {
	return strconv.FormatFloat(float64(a), 'f', 2, 64)
}

// Minor converts to minor units (paise, cents), rounding to the nearest unit.
func (a Amount) Minor() int64 {
	f := float64(a) * 100
	if f < 0 {
		return int64(f - 0.5)
	}
	return int64(f + 0.5)
}

// FromMinor converts minor units back to an Amount.
func FromMinor(minor int64) Amount {
	return Amount(float64(minor) / 100)
}

// Format renders the amount with a currency symbol and thousands separators.
func Format(a Amount, currency string) string {
	s := strconv.FormatFloat(float64(a), 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := symbol(currency) + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func symbol(currency string) string {
	switch strings.ToUpper(currency) {
	case "", "INR":
		return "₹"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return strings.ToUpper(currency) + " "
	}
}
