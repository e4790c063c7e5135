package handler

import (
	"errors"
	"fmt"

	"credflow/internal/domain"
	"credflow/internal/workflow"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgError             = "Произошла ошибка. Попробуйте позже."
	msgMainMenu          = "🏠 Главное меню\n\nВыберите действие:"
	msgSignedInAs        = "Вы вошли как %s."
	msgWelcome           = "Привет! Чтобы продолжить, войдите в аккаунт."
	msgEnterLogin        = "Введите логин:"
	msgEnterLoginPass    = "Введите пароль:"
	msgEnterNewPassword  = "🔑 Введите новый пароль."
	msgLoggedOut         = "Вы вышли из аккаунта."
	msgSessionNotStarted = "Не удалось начать. Попробуйте позже."
)

// handleStart handles /start command, optionally carrying a reset deep link
func (h *Handler) handleStart(c tele.Context) error {
	chat := c.Chat()

	h.logger.Info("Chat started bot",
		zap.Int64("chat_id", chat.ID),
		zap.String("username", c.Sender().Username),
	)

	if c.Message() != nil && isResetPayload(c.Message().Payload) {
		return h.respond(c, h.beginReset(chat, c.Message().Payload))
	}

	h.endSession(chat.ID)
	return h.respond(c, h.mainMenu(chat.ID))
}

// handleReset handles /reset <token>
func (h *Handler) handleReset(c tele.Context) error {
	return h.respond(c, h.beginReset(c.Chat(), c.Message().Payload))
}

// handleLogin handles /login command and the login button
func (h *Handler) handleLogin(c tele.Context) error {
	return h.respond(c, h.beginLogin(c.Chat()))
}

// handleLogout handles /logout command and the logout button
func (h *Handler) handleLogout(c tele.Context) error {
	chatID := c.Chat().ID
	h.endSession(chatID)

	if err := h.authService.RevokeChat(chatID); err != nil {
		h.logger.Error("Failed to revoke chat", zap.Error(err))
		return c.Send(msgError)
	}

	h.logger.Info("Chat logged out", zap.Int64("chat_id", chatID))
	return h.respond(c, reply{text: msgLoggedOut, markup: mainMenuMarkup(false)})
}

// mainMenu builds the menu for chat depending on its authorization
func (h *Handler) mainMenu(chatID int64) reply {
	// Ensure chat exists in database
	if err := h.authService.EnsureChatExists(chatID); err != nil {
		h.logger.Error("Failed to ensure chat exists", zap.Error(err))
		return reply{text: msgError}
	}

	chat, err := h.authService.GetChat(chatID)
	if err != nil {
		h.logger.Error("Failed to load chat", zap.Error(err))
		return reply{text: msgError}
	}

	if !chat.Authorized {
		return reply{text: msgWelcome, markup: mainMenuMarkup(false)}
	}
	return reply{text: menuText(chat), markup: mainMenuMarkup(true)}
}

// menuText greets an authorized chat with its account
func menuText(chat *domain.Chat) string {
	if chat.Login == "" {
		return msgMainMenu
	}
	return fmt.Sprintf(msgSignedInAs, chat.Login) + "\n\n" + msgMainMenu
}

// sendMainMenu pushes the main menu outside of an update
func (h *Handler) sendMainMenu(chat *tele.Chat) {
	if h.sender == nil {
		return
	}
	r := h.mainMenu(chat.ID)

	var err error
	if r.markup != nil {
		_, err = h.sender.Send(chat, r.text, r.markup)
	} else {
		_, err = h.sender.Send(chat, r.text)
	}
	if err != nil {
		h.logger.Warn("Failed to send main menu", zap.Error(err), zap.Int64("chat_id", chat.ID))
	}
}

// beginReset opens a change-password session for the token in payload.
// Without a token the flow navigates to the main menu by itself.
func (h *Handler) beginReset(chat *tele.Chat, payload string) reply {
	s := newSession(chat.ID)
	logger := h.logger.With(zap.Int64("chat_id", chat.ID))

	var (
		out      reply
		startErr error
	)
	err := s.loop.Do(func() {
		flow, err := workflow.StartChangePassword(h.ctx, parseResetParams(payload), workflow.ChangePasswordDeps{
			Service:    h.passwordService,
			Navigator:  &chatNavigator{h: h, chat: chat, session: s},
			Notifier:   &chatNotifier{sender: h.sender, chat: chat, logger: logger},
			Dispatcher: s.loop,
			Logger:     logger,
			Timeout:    h.submitTimeout,
		})
		if err != nil {
			startErr = err
			return
		}

		s.change = flow
		s.step = domain.StepWaitingNewPassword
		s.unsubscribe = flow.SubscribeStability(func(report domain.PasswordStability) {
			s.report = report
		})
		out = reply{
			text:   msgEnterNewPassword + "\n\n" + renderStability(s.report),
			markup: cancelMarkup(),
		}
	})

	switch {
	case errors.Is(startErr, domain.ErrTokenMissing):
		s.loop.Stop()
		logger.Info("Reset opened without token")
		return reply{}
	case err != nil || startErr != nil:
		s.loop.Stop()
		logger.Error("Failed to open reset session", zap.Error(errors.Join(err, startErr)))
		return reply{text: msgSessionNotStarted}
	}

	h.replaceSession(s)
	logger.Info("Reset session opened")
	return out
}

// beginLogin opens a login session
func (h *Handler) beginLogin(chat *tele.Chat) reply {
	s := newSession(chat.ID)
	logger := h.logger.With(zap.Int64("chat_id", chat.ID))

	navigator := &chatNavigator{h: h, chat: chat, session: s}
	navigator.before = func() { h.authorizeChat(s, logger) }

	err := s.loop.Do(func() {
		s.login = workflow.NewLoginFlow(h.ctx, workflow.LoginDeps{
			Service:    h.authService,
			Navigator:  navigator,
			Notifier:   &loginNotifier{chatNotifier{sender: h.sender, chat: chat, logger: logger}},
			Dispatcher: s.loop,
			Logger:     logger,
			Timeout:    h.submitTimeout,
		})
		s.step = domain.StepWaitingLogin
	})
	if err != nil {
		s.loop.Stop()
		logger.Error("Failed to open login session", zap.Error(err))
		return reply{text: msgSessionNotStarted}
	}

	h.replaceSession(s)
	return reply{text: msgEnterLogin, markup: cancelMarkup()}
}

// authorizeChat binds the chat to the account accepted by the login flow.
// Runs on the session loop, so a torn down session never gets here.
func (h *Handler) authorizeChat(s *session, logger *zap.Logger) {
	login := s.login.Field(domain.FieldLogin).StringValue()
	if err := h.authService.AuthorizeChat(s.chatID, login); err != nil {
		logger.Error("Failed to authorize chat", zap.Error(err))
	}
}
