package domain

// PasswordStability describes which strength criteria a password meets.
// A nil field means the password has not been entered yet, as opposed to false
// which means the criterion fails.
type PasswordStability struct {
	HasDigit       *bool
	HasUppercase   *bool
	MeetsMinLength *bool
}

// Known reports whether the report was computed from an entered password
func (s PasswordStability) Known() bool {
	return s.HasDigit != nil && s.HasUppercase != nil && s.MeetsMinLength != nil
}
