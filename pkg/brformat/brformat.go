// Package brformat converts between Brazilian-formatted decimal strings
// (comma decimal separator, dot thousand separator) and float64 values.
// Formatting is strictly a boundary concern; everything internal computes on
// plain numerics.
package brformat

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseDecimal accepts both plain ("1234.56") and Brazilian ("1.234,56")
// notation. A comma marks the string as Brazilian-formatted; dots are then
// treated as thousand separators.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return v, nil
}

// FormatDecimal renders a value in Brazilian notation with the given number of
// decimal places.
func FormatDecimal(v float64, decimals int) string {
	plain := strconv.FormatFloat(v, 'f', decimals, 64)

	neg := strings.HasPrefix(plain, "-")
	if neg {
		plain = plain[1:]
	}

	intPart := plain
	fracPart := ""
	if i := strings.IndexByte(plain, '.'); i >= 0 {
		intPart, fracPart = plain[:i], plain[i+1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// Number is a float64 that unmarshals from either a JSON number or a
// Brazilian-formatted string, for payloads coming straight from the UI layer.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseDecimal(s)
		if err != nil {
			return err
		}
		*n = Number(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}
