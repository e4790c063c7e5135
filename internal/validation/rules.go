package validation

import "credflow/internal/domain"

// Rule checks a candidate value and returns the error kinds it violates
type Rule func(value *string) []domain.ErrorKind

// Required reports domain.ErrorRequired for an absent or empty value
func Required() Rule {
	return func(value *string) []domain.ErrorKind {
		if value == nil || *value == "" {
			return []domain.ErrorKind{domain.ErrorRequired}
		}
		return nil
	}
}

// MaxBytes reports domain.ErrorTooLong for a value longer than limit bytes
func MaxBytes(limit int) Rule {
	return func(value *string) []domain.ErrorKind {
		if value != nil && len(*value) > limit {
			return []domain.ErrorKind{domain.ErrorTooLong}
		}
		return nil
	}
}

// Match reports domain.ErrorNotMatch when the value differs from the current value of counterpart.
// Absent values compare as empty strings.
func Match(form *Form, counterpart domain.FieldID) Rule {
	return func(value *string) []domain.ErrorKind {
		candidate := ""
		if value != nil {
			candidate = *value
		}
		if candidate != form.StringValue(counterpart) {
			return []domain.ErrorKind{domain.ErrorNotMatch}
		}
		return nil
	}
}
