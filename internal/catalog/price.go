package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Price is an amount in minor units (cents). It travels as a decimal
// number with two fraction digits, e.g. 1299.99.
type Price int64

// ParsePrice parses a decimal with at most two fraction digits.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty price", ErrInvalidInput)
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || strings.ContainsAny(whole+frac, "+-") || (hasFrac && frac == "") || len(frac) > 2 {
		return 0, fmt.Errorf("%w: malformed price %q", ErrInvalidInput, s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed price %q", ErrInvalidInput, s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents < 0 {
		return 0, fmt.Errorf("%w: malformed price %q", ErrInvalidInput, s)
	}
	v := units*100 + cents
	if neg {
		v = -v
	}
	return Price(v), nil
}

func (p Price) String() string {
	v := int64(p)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	v, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
