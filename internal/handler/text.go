package handler

import (
	"errors"
	"fmt"
	"strings"

	"credflow/internal/domain"
	"credflow/internal/stability"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgNoSession       = "Отправьте /login, чтобы войти, или откройте ссылку для смены пароля."
	msgBusy            = "⏳ Запрос уже отправлен, подождите."
	msgRepeatPassword  = "Повторите пароль:"
	msgPasswordsDiffer = "❌ Пароли не совпадают. Повторите пароль ещё раз или введите новый."
	msgPasswordsMatch  = "✅ Пароли совпадают."
	msgPasswordEmpty   = "Пароль не может быть пустым."
	msgPasswordTooLong = "Пароль слишком длинный: не больше %d байт."
	msgCheckingLogin   = "⏳ Проверяю..."
	msgChanging        = "⏳ Меняю пароль..."
	msgCannotSubmit    = "Сначала введите пароль и подтверждение."
)

// handleText handles all text messages based on the chat step
func (h *Handler) handleText(c tele.Context) error {
	// Passwords are taken verbatim, surrounding spaces included
	text := c.Text()

	// Ignore commands (starting with /)
	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		return nil
	}

	chat := c.Chat()
	r, secret := h.processText(chat, text)

	// Passwords should not stay in the chat history
	if secret {
		if err := c.Delete(); err != nil {
			h.logger.Debug("Failed to delete password message", zap.Error(err))
		}
	}
	return h.respond(c, r)
}

// processText applies text to the open session of chat. It also reports whether
// the text was a password.
func (h *Handler) processText(chat *tele.Chat, text string) (reply, bool) {
	s := h.getSession(chat.ID)
	if s == nil {
		return reply{text: msgNoSession, markup: mainMenuMarkup(false)}, false
	}

	var (
		out    reply
		secret bool
	)
	err := s.loop.Do(func() {
		switch {
		case s.change != nil:
			out, secret = h.changePasswordText(s, text)
		case s.login != nil:
			out, secret = h.loginText(s, text)
		default:
			out = reply{text: msgNoSession}
		}
	})
	if err != nil {
		// The session ended between lookup and processing
		return reply{text: msgNoSession, markup: mainMenuMarkup(false)}, false
	}
	return out, secret
}

func (h *Handler) changePasswordText(s *session, text string) (reply, bool) {
	flow := s.change

	switch s.step {
	case domain.StepWaitingNewPassword:
		if err := flow.SetPassword(&text); err != nil {
			return h.editRejected(err), true
		}
		if flow.ShowRequiredError() {
			return reply{text: msgPasswordEmpty, markup: cancelMarkup()}, true
		}
		if flow.ShowTooLongError() {
			return reply{text: fmt.Sprintf(msgPasswordTooLong, stability.MaxBytes), markup: cancelMarkup()}, true
		}
		s.step = domain.StepWaitingConfirmation
		return reply{
			text:   h.passwordEcho(flow.Field(domain.FieldPassword).StringValue(), flow.ShowPassword()) + "\n\n" + renderStability(s.report) + "\n\n" + msgRepeatPassword,
			markup: cancelMarkup(),
		}, true

	case domain.StepWaitingConfirmation:
		if err := flow.SetConfirm(&text); err != nil {
			return h.editRejected(err), true
		}
		return confirmationReply(s), true

	default:
		return reply{text: msgBusy}, false
	}
}

// confirmationReply shows whether both entries match
func confirmationReply(s *session) reply {
	if s.change.ShowMatchError() {
		return reply{text: msgPasswordsDiffer, markup: mismatchMarkup()}
	}
	return reply{text: msgPasswordsMatch, markup: confirmMarkup()}
}

func (h *Handler) loginText(s *session, text string) (reply, bool) {
	flow := s.login

	switch s.step {
	case domain.StepWaitingLogin:
		login := strings.TrimSpace(text)
		if err := flow.SetLogin(&login); err != nil {
			return h.editRejected(err), false
		}
		s.step = domain.StepWaitingLoginPassword
		return reply{text: msgEnterLoginPass, markup: cancelMarkup()}, false

	case domain.StepWaitingLoginPassword:
		if err := flow.SetPassword(&text); err != nil {
			return h.editRejected(err), true
		}
		if !flow.Submit() {
			if flow.Loading() {
				return reply{text: msgBusy}, true
			}
			return reply{text: msgEnterLoginPass, markup: cancelMarkup()}, true
		}
		return reply{text: msgCheckingLogin}, true

	default:
		return reply{text: msgBusy}, false
	}
}

func (h *Handler) editRejected(err error) reply {
	switch {
	case errors.Is(err, domain.ErrFieldDisabled):
		return reply{text: msgBusy}
	case errors.Is(err, domain.ErrSessionClosed):
		return reply{text: msgNoSession}
	default:
		h.logger.Error("Failed to apply edit", zap.Error(err))
		return reply{text: msgError}
	}
}

func (h *Handler) passwordEcho(password string, show bool) string {
	return "Пароль: " + maskPassword(password, show)
}
