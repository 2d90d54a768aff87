// Package validation содержит проверки платёжных реквизитов.
package validation

import "strings"

const (
	minCardDigits = 12
	maxCardDigits = 19
)

var cardSeparators = strings.NewReplacer(" ", "", "-", "")

// IsValidCardNumber проверяет номер банковской карты по алгоритму Луна.
// Пробелы и дефисы между группами цифр допускаются.
func IsValidCardNumber(number string) bool {
	digits := cardSeparators.Replace(number)
	if len(digits) < minCardDigits || len(digits) > maxCardDigits {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}

		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	return sum%10 == 0
}
