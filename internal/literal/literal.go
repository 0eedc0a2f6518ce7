// Package literal converts literal token text into values.
package literal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrEmpty = errors.New("empty literal")

// ParseNumber reads an optionally signed number in one of the forms
// 0b101, 0o17, 0x1F, 12, 12.5, 1e3, 1.5E-2.
func ParseNumber(text string) (float64, error) {
	body := text
	sign := 1.0
	if strings.HasPrefix(body, "+") {
		body = body[1:]
	} else if strings.HasPrefix(body, "-") {
		sign = -1
		body = body[1:]
	}
	if body == "" {
		return 0, ErrEmpty
	}

	var (
		v   float64
		err error
	)
	switch {
	case strings.HasPrefix(body, "0b"):
		v, err = parseRadix(body[2:], 2)
	case strings.HasPrefix(body, "0o"):
		v, err = parseRadix(body[2:], 8)
	case strings.HasPrefix(body, "0x"):
		v, err = parseRadix(body[2:], 16)
	default:
		v, err = parseDecimal(body)
	}
	if err != nil {
		return 0, fmt.Errorf("number %q: %w", text, err)
	}
	return sign * v, nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// parseRadix accumulates in float64 so that long literals lose precision
// instead of overflowing.
func parseRadix(digits string, radix int) (float64, error) {
	if digits == "" {
		return 0, fmt.Errorf("missing digits after radix prefix")
	}
	v := 0.0
	for i := 0; i < len(digits); i++ {
		d := digitValue(digits[i])
		if d < 0 || d >= radix {
			return 0, fmt.Errorf("invalid base-%d digit %q", radix, digits[i])
		}
		v = v*float64(radix) + float64(d)
	}
	return v, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseDecimal accepts digits ['.' digits] [('e'|'E') ['+'|'-'] digits].
func parseDecimal(s string) (float64, error) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("expected digit, got %q", s[0])
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j == i+1 {
			return 0, fmt.Errorf("missing digits after decimal point")
		}
		i = j
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k == j {
			return 0, fmt.Errorf("missing exponent digits")
		}
		i = k
	}
	if i != len(s) {
		return 0, fmt.Errorf("unexpected %q", s[i:])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			// Out-of-range exponents saturate like the float arithmetic would.
			return v, nil
		}
		return 0, err
	}
	return v, nil
}

// ParseString decodes a double-quoted string literal including its quotes.
// Recognised escapes are \" \n \t \r; any other escaped character stands for itself.
func ParseString(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", fmt.Errorf("string %q: missing quotes", text)
	}
	body := text[1 : len(text)-1]
	var out strings.Builder
	out.Grow(len(body))
	escaped := false
	for _, c := range body {
		if escaped {
			switch c {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case 'r':
				out.WriteRune('\r')
			default:
				out.WriteRune(c)
			}
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		out.WriteRune(c)
	}
	if escaped {
		return "", fmt.Errorf("string %q: dangling escape", text)
	}
	return out.String(), nil
}
