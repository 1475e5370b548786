package checkout

import "strings"

// maxDisplayDigits caps the formatted card field. Longer numbers are still accepted on submit.
const maxDisplayDigits = 16

type Brand string

const (
	BrandNone       Brand = ""
	BrandVisa       Brand = "Visa"
	BrandMastercard Brand = "Mastercard"
	BrandAmex       Brand = "American Express"
	BrandDiscover   Brand = "Discover"
)

// CardBrand guesses the network from the leading digit. Display only.
func CardBrand(number string) Brand {
	digits := DigitsOnly(number)
	if digits == "" {
		return BrandNone
	}
	switch digits[0] {
	case '4':
		return BrandVisa
	case '5', '2':
		return BrandMastercard
	case '3':
		return BrandAmex
	case '6':
		return BrandDiscover
	default:
		return BrandNone
	}
}

// FormatCardNumber renders digits in groups of four, e.g. "4111 1111 1111 1111".
func FormatCardNumber(raw string) string {
	digits := DigitsOnly(raw)
	if len(digits) > maxDisplayDigits {
		digits = digits[:maxDisplayDigits]
	}

	var b strings.Builder
	for i := 0; i < len(digits); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		b.WriteString(digits[i:end])
	}
	return b.String()
}

// DigitsOnly drops every non-digit rune.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// StripWhitespace removes spaces and tabs but keeps every other character,
// so malformed input still fails validation instead of being silently repaired.
func StripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// LastFour is the only part of a card number allowed in logs.
func LastFour(number string) string {
	digits := DigitsOnly(number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
