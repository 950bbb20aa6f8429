package student

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// NormalizePhone strips non-digits and keeps the trailing 10 digits, the
// subscriber part of an Indian number with any prefix.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// FormatPhoneDisplay renders a stored contact as "+91 XXXXX XXXXX".
func FormatPhoneDisplay(phone string) string {
	digits := NormalizePhone(phone)
	if len(digits) == 10 {
		return fmt.Sprintf("+91 %s %s", digits[:5], digits[5:])
	}
	return phone
}

// FormatDate renders dates as DD-MM-YYYY for display.
func FormatDate(t time.Time) string {
	return t.Format("02-01-2006")
}

// FormatAmount renders a rupee amount with thousands separators (15000 -> "15,000").
func FormatAmount(amount int) string {
	s := fmt.Sprintf("%d", amount)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(parts, ",")
}
