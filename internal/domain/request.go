package domain

// ChangePasswordRequest is sent to the credential backend on submit
type ChangePasswordRequest struct {
	Token    string
	Password string
}

// Credentials is a login/password pair
type Credentials struct {
	Login    string
	Password string
}
