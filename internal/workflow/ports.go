// Package workflow drives the login and change-password sessions: field edits,
// validation, and one in-flight submission per session.
package workflow

import (
	"context"

	"credflow/internal/domain"
)

// CredentialChangeService performs the password change on the backend
type CredentialChangeService interface {
	ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error
}

// AuthService checks a login/password pair on the backend
type AuthService interface {
	Login(ctx context.Context, creds domain.Credentials) error
}

// Navigator leaves the current workflow for the application root
type Navigator interface {
	NavigateToRoot()
}

// Notifier shows short messages to the user
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// Dispatcher runs continuations on the goroutine that owns the session
type Dispatcher interface {
	Post(fn func()) bool
}

// TokenParam is the query parameter carrying the reset token
const TokenParam = "token"

const (
	msgPasswordChanged = "Пароль успешно изменён"
	msgSomethingWrong  = "Упс, что-то пошло не так"
	msgUnauthorized    = "Неверный логин или пароль"
)

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Failure(string) {}
