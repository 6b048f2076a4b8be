// File: /utils/validators.go
package utils

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ISO 4217 style three letter code
var currencyRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPassword requires at least six characters mixing letters and digits.
func IsValidPassword(password string) bool {
	if len(password) < 6 {
		return false
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}
	return hasLetter && hasNumber
}

func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func IsValidCurrency(code string) bool {
	return currencyRegex.MatchString(code)
}

// ParseFee reads an optional non-negative fee query value.
func ParseFee(raw string) (*float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, false
	}
	return &v, true
}
