package utils

import "strings"

// NormalizeCardNumber strips every non-digit rune from a card number.
func NormalizeCardNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LuhnValid reports whether a digits-only string passes the mod-10
// checksum: doubling every second digit from the rightmost and subtracting
// 9 whenever the doubled digit exceeds 9.
func LuhnValid(number string) bool {
	if number == "" {
		return false
	}

	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}

		digit := int(c - '0')
		if alternate {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		alternate = !alternate
	}

	return sum%10 == 0
}
