package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Operator names: letters, spaces, hyphens, apostrophes only.
var fullnameRe = regexp.MustCompile(`^[A-Za-z\s\-']+$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(strings.TrimSpace(email))
}

const MinPasswordLength = 8

// IsValidPassword requires MinPasswordLength characters that are not all whitespace.
func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength && strings.TrimSpace(password) != ""
}

func IsValidFullname(fullname string) bool {
	return fullname != "" && fullnameRe.MatchString(fullname)
}

// PhoneDigits strips everything but digits; used for tel: links and duplicate checks.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsPlausiblePhone accepts 7 to 15 digits once formatting is removed.
func IsPlausiblePhone(phone string) bool {
	n := len(PhoneDigits(phone))
	return n >= 7 && n <= 15
}
