package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"credflow/internal/domain"
	"credflow/internal/service"
	"credflow/internal/stability"
	"credflow/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

// recordingSender keeps every text pushed outside of an update
type recordingSender struct {
	mu    sync.Mutex
	texts []string
}

func (s *recordingSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, _ := what.(string)
	s.texts = append(s.texts, text)
	return &tele.Message{}, nil
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func (s *recordingSender) waitFor(t *testing.T, text string) {
	t.Helper()
	assert.Eventually(t, func() bool {
		for _, got := range s.sent() {
			if got == text {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond, "message %q not sent", text)
}

type testHandler struct {
	*Handler
	chats     *testutil.MockChatRepository
	accounts  *testutil.MockAccountRepository
	passwords *testutil.MockCredentialChangeService
	sender    *recordingSender
	chat      *tele.Chat
}

func newTestHandler(t *testing.T) *testHandler {
	chats := new(testutil.MockChatRepository)
	accounts := new(testutil.MockAccountRepository)
	passwords := new(testutil.MockCredentialChangeService)
	sender := &recordingSender{}

	authService := service.NewAuthService(accounts, chats, testutil.NewTestLogger())
	h := NewHandler(context.Background(), nil, authService, passwords, time.Second, testutil.NewTestLogger())
	h.sender = sender
	t.Cleanup(h.Close)

	return &testHandler{
		Handler:   h,
		chats:     chats,
		accounts:  accounts,
		passwords: passwords,
		sender:    sender,
		chat:      &tele.Chat{ID: 42},
	}
}

// expectMenu stubs the chat lookup behind the main menu and returns its text
func (th *testHandler) expectMenu(authorized bool) string {
	chat := testutil.NewTestChat(th.chat.ID, "alice", authorized)
	th.chats.On("EnsureChatExists", th.chat.ID).Return(nil)
	th.chats.On("GetChat", th.chat.ID).Return(chat, nil)
	if !authorized {
		return msgWelcome
	}
	return menuText(chat)
}

func (th *testHandler) text(t *testing.T, text string) reply {
	t.Helper()
	r, _ := th.processText(th.chat, text)
	return r
}

func TestParseResetParams(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{name: "deep link", payload: "reset_abc-123", expected: "abc-123"},
		{name: "query form", payload: "token=abc", expected: "abc"},
		{name: "bare token", payload: " abc ", expected: "abc"},
		{name: "prefix only", payload: "reset_", expected: ""},
		{name: "empty", payload: "", expected: ""},
		{name: "other query", payload: "foo=bar", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseResetParams(tt.payload).Get("token"))
		})
	}
}

func TestIsResetPayload(t *testing.T) {
	assert.True(t, isResetPayload("reset_abc"))
	assert.True(t, isResetPayload(" reset_"))
	assert.False(t, isResetPayload(""))
	assert.False(t, isResetPayload("hello"))
}

func TestRenderStability(t *testing.T) {
	yes, no := true, false

	unknown := renderStability(domain.PasswordStability{})
	assert.Equal(t, 3, strings.Count(unknown, "▫️"))

	mixed := renderStability(domain.PasswordStability{HasDigit: &yes, HasUppercase: &no, MeetsMinLength: &yes})
	assert.Contains(t, mixed, "✅ есть цифра")
	assert.Contains(t, mixed, "❌ есть заглавная буква")
	assert.Contains(t, mixed, "✅ не короче 6 символов")
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "•••", maskPassword("пар", false))
	assert.Equal(t, "пар", maskPassword("пар", true))
	assert.Equal(t, "", maskPassword("", false))
}

func TestBeginReset_WithoutToken(t *testing.T) {
	th := newTestHandler(t)
	th.expectMenu(false)

	r := th.beginReset(th.chat, "reset_")

	assert.Empty(t, r.text)
	assert.Nil(t, th.getSession(th.chat.ID))
	th.sender.waitFor(t, msgWelcome)
	th.passwords.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything)
}

func TestResetDialog_Success(t *testing.T) {
	th := newTestHandler(t)
	menu := th.expectMenu(true)
	th.passwords.On("ChangePassword", mock.Anything, domain.ChangePasswordRequest{
		Token:    "tok",
		Password: "Abc123",
	}).Return(nil).Once()

	r := th.beginReset(th.chat, "reset_tok")
	assert.Contains(t, r.text, msgEnterNewPassword)
	assert.Contains(t, r.text, "▫️ есть цифра")
	require.NotNil(t, th.getSession(th.chat.ID))

	r = th.text(t, "Abc123")
	assert.Contains(t, r.text, "••••••")
	assert.NotContains(t, r.text, "Abc123")
	assert.Contains(t, r.text, "✅ есть цифра")
	assert.Contains(t, r.text, "✅ есть заглавная буква")
	assert.Contains(t, r.text, msgRepeatPassword)

	r = th.text(t, "Abc12")
	assert.Equal(t, msgPasswordsDiffer, r.text)

	r = th.text(t, "Abc123")
	assert.Equal(t, msgPasswordsMatch, r.text)

	r = th.processSubmit(th.chat)
	assert.Equal(t, msgChanging, r.text)

	th.sender.waitFor(t, "✅ Пароль успешно изменён")
	th.sender.waitFor(t, menu)
	assert.Nil(t, th.getSession(th.chat.ID))
	th.passwords.AssertExpectations(t)
}

func TestResetDialog_Failure(t *testing.T) {
	th := newTestHandler(t)
	th.passwords.On("ChangePassword", mock.Anything, mock.Anything).Return(domain.ErrInvalidToken).Once()

	th.beginReset(th.chat, "reset_tok")
	th.text(t, "Abc123")
	th.text(t, "Abc123")

	r := th.processSubmit(th.chat)
	assert.Equal(t, msgChanging, r.text)

	th.sender.waitFor(t, "⚠️ Упс, что-то пошло не так")
	assert.NotNil(t, th.getSession(th.chat.ID), "session stays open for retry")
}

func TestResetDialog_SubmitInFlight(t *testing.T) {
	th := newTestHandler(t)
	release := make(chan struct{})
	th.passwords.On("ChangePassword", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(errors.New("backend down")).Once()

	th.beginReset(th.chat, "reset_tok")
	th.text(t, "Abc123")
	th.text(t, "Abc123")

	assert.Equal(t, msgChanging, th.processSubmit(th.chat).text)
	assert.Equal(t, msgBusy, th.processSubmit(th.chat).text)
	assert.Equal(t, msgBusy, th.text(t, "Other1").text)

	close(release)
	th.sender.waitFor(t, "⚠️ Упс, что-то пошло не так")
	th.passwords.AssertNumberOfCalls(t, "ChangePassword", 1)
}

func TestResetDialog_SubmitRejected(t *testing.T) {
	th := newTestHandler(t)

	th.beginReset(th.chat, "reset_tok")
	th.text(t, "Abc123")
	th.text(t, "xyz")

	r := th.processSubmit(th.chat)
	assert.Equal(t, msgCannotSubmit, r.text)
	th.passwords.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything)
}

func TestResetDialog_ToggleAndReenter(t *testing.T) {
	th := newTestHandler(t)

	th.beginReset(th.chat, "reset_tok")
	th.text(t, "Abc123")

	assert.Equal(t, "Пароль: Abc123", th.processToggle(th.chat).text)
	assert.Equal(t, "Пароль: ••••••", th.processToggle(th.chat).text)

	r := th.processReenter(th.chat)
	assert.Contains(t, r.text, msgEnterNewPassword)
	assert.Contains(t, r.text, "✅ есть цифра")

	r = th.text(t, "short")
	assert.Contains(t, r.text, "❌ есть цифра")
	assert.Contains(t, r.text, "❌ не короче 6 символов")
}

func TestResetDialog_EmptyPassword(t *testing.T) {
	th := newTestHandler(t)

	th.beginReset(th.chat, "reset_tok")
	r := th.text(t, "")
	assert.Equal(t, msgPasswordEmpty, r.text)
}

func TestBeginReset_ReplacesPreviousSession(t *testing.T) {
	th := newTestHandler(t)

	th.beginReset(th.chat, "reset_first")
	first := th.getSession(th.chat.ID)
	require.NotNil(t, first)

	th.beginReset(th.chat, "reset_second")
	second := th.getSession(th.chat.ID)
	require.NotNil(t, second)

	assert.NotSame(t, first, second)
	assert.True(t, first.change.Closed())
	<-first.loop.Done()
}

func TestProcessText_NoSession(t *testing.T) {
	th := newTestHandler(t)

	r, secret := th.processText(th.chat, "hello")
	assert.Equal(t, msgNoSession, r.text)
	assert.False(t, secret)
}

func TestLoginDialog_Success(t *testing.T) {
	th := newTestHandler(t)
	menu := th.expectMenu(true)
	th.accounts.On("GetPasswordHash", mock.Anything, "alice").Return(testutil.HashPassword("secret"), nil)
	th.chats.On("AuthorizeChat", th.chat.ID, "alice").Return(nil).Once()

	r := th.beginLogin(th.chat)
	assert.Equal(t, msgEnterLogin, r.text)

	r, secret := th.processText(th.chat, "alice")
	assert.Equal(t, msgEnterLoginPass, r.text)
	assert.False(t, secret)

	r, secret = th.processText(th.chat, "secret")
	assert.Equal(t, msgCheckingLogin, r.text)
	assert.True(t, secret)

	th.sender.waitFor(t, menu)
	assert.Nil(t, th.getSession(th.chat.ID))
	th.chats.AssertExpectations(t)
}

func TestLoginDialog_WrongPassword(t *testing.T) {
	th := newTestHandler(t)
	th.accounts.On("GetPasswordHash", mock.Anything, "alice").Return(testutil.HashPassword("secret"), nil)

	th.beginLogin(th.chat)
	th.text(t, "alice")
	th.text(t, "wrong")

	th.sender.waitFor(t, "⛔️ Неверный логин или пароль")
	assert.NotNil(t, th.getSession(th.chat.ID))
	th.chats.AssertNotCalled(t, "AuthorizeChat", mock.Anything, mock.Anything)
}

func TestHandler_Close(t *testing.T) {
	th := newTestHandler(t)

	th.beginReset(th.chat, "reset_tok")
	s := th.getSession(th.chat.ID)
	require.NotNil(t, s)

	th.Close()

	assert.Nil(t, th.getSession(th.chat.ID))
	assert.True(t, s.change.Closed())
}

func TestLoginDialog_CancelledWhileInFlight(t *testing.T) {
	th := newTestHandler(t)
	release := make(chan struct{})
	th.accounts.On("GetPasswordHash", mock.Anything, "john").
		Run(func(mock.Arguments) { <-release }).
		Return(testutil.HashPassword("secret123"), nil).Once()

	var authorized atomic.Bool
	th.chats.On("AuthorizeChat", th.chat.ID, "john").
		Run(func(mock.Arguments) { authorized.Store(true) }).
		Return(nil).Maybe()

	th.beginLogin(th.chat)
	th.text(t, "john")
	assert.Equal(t, msgCheckingLogin, th.text(t, "secret123").text)

	th.endSession(th.chat.ID)
	close(release)

	assert.Never(t, authorized.Load, 200*time.Millisecond, 10*time.Millisecond)
	assert.Empty(t, th.sender.sent())
}

func TestHandleText_PasswordKeptVerbatim(t *testing.T) {
	th := newTestHandler(t)

	th.beginReset(th.chat, "reset_tok")
	s := th.getSession(th.chat.ID)
	require.NotNil(t, s)

	c := &updateContext{chat: th.chat, text: " Abc123 "}
	require.NoError(t, th.handleText(c))

	var password string
	require.NoError(t, s.loop.Do(func() {
		password = s.change.Field(domain.FieldPassword).StringValue()
	}))
	assert.Equal(t, " Abc123 ", password)
	assert.Equal(t, 1, c.deleted)
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], msgRepeatPassword)
}

func TestHandleText_LoginTrimmed(t *testing.T) {
	th := newTestHandler(t)

	th.beginLogin(th.chat)
	s := th.getSession(th.chat.ID)
	require.NotNil(t, s)

	c := &updateContext{chat: th.chat, text: "  john \n"}
	require.NoError(t, th.handleText(c))

	var login string
	require.NoError(t, s.loop.Do(func() {
		login = s.login.Field(domain.FieldLogin).StringValue()
	}))
	assert.Equal(t, "john", login)
	assert.Zero(t, c.deleted)
	assert.Equal(t, []interface{}{msgEnterLoginPass}, c.sent)
}

func TestHandleText_IgnoresCommands(t *testing.T) {
	th := newTestHandler(t)

	c := &updateContext{chat: th.chat, text: " /unknown"}
	require.NoError(t, th.handleText(c))

	assert.Empty(t, c.sent)
}

func TestResetDialog_TooLongPassword(t *testing.T) {
	th := newTestHandler(t)

	th.beginReset(th.chat, "reset_tok")

	r := th.text(t, strings.Repeat("A1", 37))
	assert.Equal(t, fmt.Sprintf(msgPasswordTooLong, stability.MaxBytes), r.text)

	r = th.text(t, "Abc123")
	assert.Contains(t, r.text, msgRepeatPassword, "still waiting for a new password")
	th.passwords.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything)
}
