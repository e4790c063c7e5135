package workflow

import (
	"context"
	"net/url"
	"time"

	"credflow/internal/domain"
	"credflow/internal/stability"
	"credflow/internal/validation"

	"go.uber.org/zap"
)

// ChangePasswordDeps are the collaborators of a change-password session
type ChangePasswordDeps struct {
	Service    CredentialChangeService
	Navigator  Navigator
	Notifier   Notifier
	Dispatcher Dispatcher
	Logger     *zap.Logger
	// Timeout bounds a single submission, zero means no limit
	Timeout time.Duration
}

// ChangePasswordFlow is one change-password session.
// All methods must be called from the goroutine behind deps.Dispatcher.
type ChangePasswordFlow struct {
	deps ChangePasswordDeps

	ctx    context.Context
	cancel context.CancelFunc

	token        string
	form         *validation.Form
	stability    *stability.Publisher
	state        domain.SubmissionState
	loading      bool
	showPassword bool
	closed       bool
	unsubscribe  []func()
}

// StartChangePassword opens a session for the token found in params.
// Without a token it navigates to root and returns domain.ErrTokenMissing.
func StartChangePassword(ctx context.Context, params url.Values, deps ChangePasswordDeps) (*ChangePasswordFlow, error) {
	token := params.Get(TokenParam)
	if token == "" {
		if deps.Logger != nil {
			deps.Logger.Info("Change password opened without token, leaving")
		}
		deps.Navigator.NavigateToRoot()
		return nil, domain.ErrTokenMissing
	}
	return NewChangePasswordFlow(ctx, token, deps), nil
}

// NewChangePasswordFlow creates a session bound to ctx. Cancelling ctx has the same
// effect on pending submissions as Teardown.
func NewChangePasswordFlow(ctx context.Context, token string, deps ChangePasswordDeps) *ChangePasswordFlow {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}

	sessionCtx, cancel := context.WithCancel(ctx)

	form := validation.NewForm()
	form.AddField(domain.FieldPassword, nil, validation.Required(), validation.MaxBytes(stability.MaxBytes))
	form.AddField(domain.FieldConfirm, nil, validation.Match(form, domain.FieldPassword))

	f := &ChangePasswordFlow{
		deps:      deps,
		ctx:       sessionCtx,
		cancel:    cancel,
		token:     token,
		form:      form,
		stability: stability.NewPublisher(form.Value(domain.FieldPassword)),
		state:     domain.SubmissionIdle,
	}

	f.unsubscribe = append(f.unsubscribe,
		form.DependOn(domain.FieldConfirm, domain.FieldPassword),
		form.OnChange(domain.FieldPassword, func(v *string) { f.stability.Update(v) }),
	)

	return f
}

// SetPassword edits the new password
func (f *ChangePasswordFlow) SetPassword(value *string) error {
	return f.set(domain.FieldPassword, value)
}

// SetConfirm edits the password confirmation
func (f *ChangePasswordFlow) SetConfirm(value *string) error {
	return f.set(domain.FieldConfirm, value)
}

func (f *ChangePasswordFlow) set(id domain.FieldID, value *string) error {
	if f.closed {
		return domain.ErrSessionClosed
	}
	return f.form.SetValue(id, value)
}

// Submit starts the password change. It returns false and changes nothing when
// the session cannot submit: closed, already submitting or done, no token,
// empty password or active validation errors.
func (f *ChangePasswordFlow) Submit() bool {
	if f.closed || !f.state.CanSubmit() {
		return false
	}
	password := f.form.StringValue(domain.FieldPassword)
	if f.token == "" || password == "" || !f.form.Valid() {
		return false
	}

	f.state = domain.SubmissionSubmitting
	f.loading = true
	f.form.Disable()

	req := domain.ChangePasswordRequest{
		Token:    f.token,
		Password: password,
	}
	ctx := f.ctx
	svc := f.deps.Service
	timeout := f.deps.Timeout

	f.deps.Logger.Info("Submitting password change")

	go func() {
		callCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		err := svc.ChangePassword(callCtx, req)
		f.deps.Dispatcher.Post(func() { f.complete(err) })
	}()

	return true
}

func (f *ChangePasswordFlow) complete(err error) {
	if f.ctx.Err() != nil {
		f.deps.Logger.Debug("Dropping password change response after teardown")
		return
	}
	if f.state != domain.SubmissionSubmitting {
		return
	}

	f.loading = false

	if err != nil {
		f.deps.Logger.Warn("Password change failed", zap.Error(err))
		f.state = domain.SubmissionFailed
		f.form.Enable()
		f.deps.Notifier.Failure(msgSomethingWrong)
		return
	}

	f.deps.Logger.Info("Password changed")
	f.state = domain.SubmissionSucceeded
	f.deps.Notifier.Success(msgPasswordChanged)
	f.deps.Navigator.NavigateToRoot()
}

// Teardown ends the session. Responses still in flight are discarded.
func (f *ChangePasswordFlow) Teardown() {
	if f.closed {
		return
	}
	f.closed = true
	f.cancel()
	for _, unsubscribe := range f.unsubscribe {
		unsubscribe()
	}
	f.unsubscribe = nil
	f.form.Close()
	f.stability.Close()
}

// SubscribeStability delivers the current strength report immediately and then every new one
func (f *ChangePasswordFlow) SubscribeStability(fn func(domain.PasswordStability)) func() {
	return f.stability.Subscribe(fn)
}

// Stability returns the last strength report
func (f *ChangePasswordFlow) Stability() domain.PasswordStability {
	return f.stability.Current()
}

// ShowRequiredError reports whether the password required message should be shown
func (f *ChangePasswordFlow) ShowRequiredError() bool {
	return f.form.HasError(domain.FieldPassword, domain.ErrorRequired)
}

// ShowTooLongError reports whether the password exceeds what the backend can hash
func (f *ChangePasswordFlow) ShowTooLongError() bool {
	return f.form.HasError(domain.FieldPassword, domain.ErrorTooLong)
}

// ShowMatchError reports whether the mismatch message should be shown.
// It stays hidden while the required message is shown.
func (f *ChangePasswordFlow) ShowMatchError() bool {
	return f.form.HasError(domain.FieldConfirm, domain.ErrorNotMatch) && !f.ShowRequiredError()
}

// TogglePasswordVisibility flips whether entered passwords are shown in clear
func (f *ChangePasswordFlow) TogglePasswordVisibility() bool {
	f.showPassword = !f.showPassword
	return f.showPassword
}

// ShowPassword reports whether entered passwords are shown in clear
func (f *ChangePasswordFlow) ShowPassword() bool {
	return f.showPassword
}

// State returns the submission state
func (f *ChangePasswordFlow) State() domain.SubmissionState {
	return f.state
}

// Loading reports whether a submission is in flight
func (f *ChangePasswordFlow) Loading() bool {
	return f.loading
}

// Field returns a snapshot of field id
func (f *ChangePasswordFlow) Field(id domain.FieldID) domain.FieldState {
	return f.form.Field(id)
}

// Closed reports whether Teardown was called
func (f *ChangePasswordFlow) Closed() bool {
	return f.closed
}
