package stability

import (
	"unicode/utf8"

	"credflow/internal/domain"
)

// MinLength is the minimal password length considered stable
const MinLength = 6

// MaxBytes is the longest password bcrypt accepts
const MaxBytes = 72

// Evaluate builds a strength report for password.
// A nil password yields a report with every criterion unknown.
func Evaluate(password *string) domain.PasswordStability {
	if password == nil {
		return domain.PasswordStability{}
	}

	var hasDigit, hasUpper bool
	for _, r := range *password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		}
	}
	minLength := utf8.RuneCountInString(*password) >= MinLength

	return domain.PasswordStability{
		HasDigit:       &hasDigit,
		HasUppercase:   &hasUpper,
		MeetsMinLength: &minLength,
	}
}
