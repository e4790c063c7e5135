package workflow

import (
	"context"
	"time"

	"credflow/internal/domain"
	"credflow/internal/validation"

	"go.uber.org/zap"
)

// LoginDeps are the collaborators of a login session
type LoginDeps struct {
	Service    AuthService
	Navigator  Navigator
	Notifier   Notifier
	Dispatcher Dispatcher
	Logger     *zap.Logger
	Timeout    time.Duration
}

// LoginFlow is one login session.
// All methods must be called from the goroutine behind deps.Dispatcher.
type LoginFlow struct {
	deps LoginDeps

	ctx    context.Context
	cancel context.CancelFunc

	form         *validation.Form
	loading      bool
	succeeded    bool
	showPassword bool
	closed       bool
}

// NewLoginFlow creates a login session bound to ctx
func NewLoginFlow(ctx context.Context, deps LoginDeps) *LoginFlow {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}

	sessionCtx, cancel := context.WithCancel(ctx)

	form := validation.NewForm()
	form.AddField(domain.FieldLogin, nil, validation.Required())
	form.AddField(domain.FieldPassword, nil, validation.Required())

	return &LoginFlow{
		deps:   deps,
		ctx:    sessionCtx,
		cancel: cancel,
		form:   form,
	}
}

// SetLogin edits the login
func (f *LoginFlow) SetLogin(value *string) error {
	return f.set(domain.FieldLogin, value)
}

// SetPassword edits the password
func (f *LoginFlow) SetPassword(value *string) error {
	return f.set(domain.FieldPassword, value)
}

func (f *LoginFlow) set(id domain.FieldID, value *string) error {
	if f.closed {
		return domain.ErrSessionClosed
	}
	if f.loading {
		return domain.ErrFieldDisabled
	}
	return f.form.SetValue(id, value)
}

// Submit sends the credentials. It returns false when a login is already in flight,
// the session is over, or a field is invalid.
func (f *LoginFlow) Submit() bool {
	if f.closed || f.loading || f.succeeded {
		return false
	}
	if !f.form.Errors(domain.FieldLogin).Empty() || !f.form.Errors(domain.FieldPassword).Empty() {
		return false
	}

	creds := domain.Credentials{
		Login:    f.form.StringValue(domain.FieldLogin),
		Password: f.form.StringValue(domain.FieldPassword),
	}
	f.loading = true

	ctx := f.ctx
	svc := f.deps.Service
	timeout := f.deps.Timeout

	f.deps.Logger.Info("Submitting login", zap.String("login", creds.Login))

	go func() {
		callCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		err := svc.Login(callCtx, creds)
		f.deps.Dispatcher.Post(func() { f.complete(err) })
	}()

	return true
}

func (f *LoginFlow) complete(err error) {
	if f.ctx.Err() != nil || !f.loading {
		return
	}

	if err != nil {
		f.deps.Logger.Info("Login rejected", zap.Error(err))
		f.form.SetFormError(domain.ErrorUnauthorized)
		f.loading = false
		f.deps.Notifier.Failure(msgUnauthorized)
		return
	}

	f.succeeded = true
	f.deps.Navigator.NavigateToRoot()
}

// Teardown ends the session. A login still in flight is discarded.
func (f *LoginFlow) Teardown() {
	if f.closed {
		return
	}
	f.closed = true
	f.cancel()
	f.form.Close()
}

// Unauthorized reports whether the last login was rejected and nothing was edited since
func (f *LoginFlow) Unauthorized() bool {
	return f.form.FormErrors().Has(domain.ErrorUnauthorized)
}

// Loading reports whether a login is in flight
func (f *LoginFlow) Loading() bool {
	return f.loading
}

// Succeeded reports whether the login was accepted
func (f *LoginFlow) Succeeded() bool {
	return f.succeeded
}

// Field returns a snapshot of field id
func (f *LoginFlow) Field(id domain.FieldID) domain.FieldState {
	return f.form.Field(id)
}

// TogglePasswordVisibility flips whether the password is shown in clear
func (f *LoginFlow) TogglePasswordVisibility() bool {
	f.showPassword = !f.showPassword
	return f.showPassword
}

// ShowPassword reports whether the password is shown in clear
func (f *LoginFlow) ShowPassword() bool {
	return f.showPassword
}

// Closed reports whether Teardown was called
func (f *LoginFlow) Closed() bool {
	return f.closed
}
