// Package isbn validates and canonicalizes ISBN-10 and ISBN-13 strings.
package isbn

import (
	"strings"
)

// Canonical strips separators and anything that cannot be part of an ISBN.
// A trailing x is upper-cased so ISBN-10 check digits compare equal.
func Canonical(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case (r == 'X' || r == 'x') && i == len(s)-1:
			b.WriteRune('X')
		}
	}
	return b.String()
}

// IsISBN10 reports whether s is a canonical ISBN-10 with a valid check digit.
func IsISBN10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c == 'X' && i == 9:
			v = 10
		default:
			return false
		}
		sum += (10 - i) * v
	}
	return sum%11 == 0
}

// IsISBN13 reports whether s is a canonical ISBN-13 with a valid check digit.
func IsISBN13(s string) bool {
	if len(s) != 13 {
		return false
	}
	if !strings.HasPrefix(s, "978") && !strings.HasPrefix(s, "979") {
		return false
	}
	for i := 0; i < 13; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return checkDigit13(s[:12]) == s[12]
}

// IsValid reports whether s canonicalizes to a valid ISBN-10 or ISBN-13.
func IsValid(s string) bool {
	c := Canonical(s)
	return IsISBN10(c) || IsISBN13(c)
}

// NotISBN is the negation of IsValid.
func NotISBN(s string) bool {
	return !IsValid(s)
}

// ToISBN13 converts an ISBN-10 to its 978-prefixed ISBN-13 form. ISBN-13 input
// is returned canonicalized; anything else yields "".
func ToISBN13(s string) string {
	c := Canonical(s)
	if IsISBN13(c) {
		return c
	}
	if !IsISBN10(c) {
		return ""
	}
	body := "978" + c[:9]
	return body + string(checkDigit13(body))
}

// Equivalent reports whether a and b name the same book, treating an ISBN-10
// and its ISBN-13 form as equal.
func Equivalent(a, b string) bool {
	ca, cb := Canonical(a), Canonical(b)
	if ca == "" || cb == "" {
		return false
	}
	if ca == cb {
		return true
	}
	a13, b13 := ToISBN13(ca), ToISBN13(cb)
	return a13 != "" && a13 == b13
}

func checkDigit13(body string) byte {
	sum := 0
	for i := 0; i < 12; i++ {
		v := int(body[i] - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return byte('0' + (10-sum%10)%10)
}
