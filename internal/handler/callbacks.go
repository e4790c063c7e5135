package handler

import (
	"strings"
	"unicode"

	"credflow/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleCallback handles callback queries that were not matched by Unique
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Info("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
		zap.Int64("chat_id", c.Chat().ID),
	)

	key := callback.Unique
	if key == "" {
		key = data
	}

	switch key {
	case btnSubmit.Unique:
		return h.handleSubmit(c)
	case btnTogglePassword.Unique:
		return h.handleTogglePassword(c)
	case btnReenter.Unique:
		return h.handleReenter(c)
	case btnCancel.Unique:
		return h.handleCancel(c)
	case btnLogin.Unique:
		return h.handleLogin(c)
	case btnMainMenu.Unique:
		return h.handleStart(c)
	}

	// If it's not handled, acknowledge it anyway
	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleSubmit submits the password change
func (h *Handler) handleSubmit(c tele.Context) error {
	return h.respond(c, h.processSubmit(c.Chat()))
}

func (h *Handler) processSubmit(chat *tele.Chat) reply {
	s := h.getSession(chat.ID)
	if s == nil {
		return reply{text: msgNoSession, markup: mainMenuMarkup(false)}
	}

	var out reply
	err := s.loop.Do(func() {
		if s.change == nil {
			out = reply{text: msgNoSession}
			return
		}
		switch {
		case s.change.Submit():
			out = reply{text: msgChanging}
		case s.change.Loading():
			out = reply{text: msgBusy}
		default:
			out = reply{text: msgCannotSubmit, markup: cancelMarkup()}
		}
	})
	if err != nil {
		return reply{text: msgNoSession, markup: mainMenuMarkup(false)}
	}
	return out
}

// handleTogglePassword flips password visibility and echoes the entered password
func (h *Handler) handleTogglePassword(c tele.Context) error {
	return h.respond(c, h.processToggle(c.Chat()))
}

func (h *Handler) processToggle(chat *tele.Chat) reply {
	s := h.getSession(chat.ID)
	if s == nil {
		return reply{}
	}

	var out reply
	_ = s.loop.Do(func() {
		switch {
		case s.change != nil:
			show := s.change.TogglePasswordVisibility()
			out = reply{text: h.passwordEcho(s.change.Field(domain.FieldPassword).StringValue(), show)}
		case s.login != nil:
			show := s.login.TogglePasswordVisibility()
			out = reply{text: h.passwordEcho(s.login.Field(domain.FieldPassword).StringValue(), show)}
		}
	})
	return out
}

// handleReenter restarts password entry keeping the session
func (h *Handler) handleReenter(c tele.Context) error {
	return h.respond(c, h.processReenter(c.Chat()))
}

func (h *Handler) processReenter(chat *tele.Chat) reply {
	s := h.getSession(chat.ID)
	if s == nil {
		return reply{text: msgNoSession, markup: mainMenuMarkup(false)}
	}

	var out reply
	_ = s.loop.Do(func() {
		if s.change == nil || s.change.Loading() {
			out = reply{text: msgBusy}
			return
		}
		s.step = domain.StepWaitingNewPassword
		out = reply{
			text:   msgEnterNewPassword + "\n\n" + renderStability(s.report),
			markup: cancelMarkup(),
		}
	})
	return out
}

// handleCancel cancels current workflow and shows main menu
func (h *Handler) handleCancel(c tele.Context) error {
	chatID := c.Chat().ID

	h.endSession(chatID)
	h.logger.Info("Session cancelled", zap.Int64("chat_id", chatID))

	r := h.mainMenu(chatID)
	if c.Callback() != nil {
		if err := c.Edit(r.text, r.markup); err != nil {
			h.logger.Debug("Failed to edit message, sending new", zap.Error(err))
			return h.respond(c, r)
		}
		return c.Respond()
	}
	return h.respond(c, r)
}
