// Package source fetches the city and product datasets the pages are built from.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// City is one delivery city. Slug is derived later and never stored here.
type City struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

// Product is one catalog item.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Price is a decimal amount kept in its textual form so that no float rounding
// reaches the rendered page. Trailing fractional zeros are dropped: 3500.00 -> 3500.
type Price string

var decimalPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// ParsePrice normalizes a decimal literal.
func ParsePrice(raw string) (Price, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if !decimalPattern.MatchString(raw) {
		// exponent notation is legal JSON; fall back to a shortest float rendering
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", fmt.Errorf("invalid price %q", raw)
		}
		raw = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = strings.TrimRight(raw, "0")
		raw = strings.TrimSuffix(raw, ".")
	}
	return Price(raw), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null. Anything else
// is kept verbatim so that one bad row does not fail the whole list; Valid
// reports it.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	parsed, err := ParsePrice(raw)
	if err != nil {
		*p = Price(strings.TrimSpace(raw))
		return nil
	}
	*p = parsed
	return nil
}

// Valid reports whether p is empty or a normalized decimal.
func (p Price) Valid() bool {
	return p == "" || decimalPattern.MatchString(string(p))
}

func (p Price) String() string { return string(p) }

// flexID decodes identifiers sent either as numbers or as numeric strings.
// Unparseable values decode to 0, which no entity accepts as an id.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(bytes.Trim(data, `"`))
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		n = 0
	}
	*f = flexID(n)
	return nil
}
