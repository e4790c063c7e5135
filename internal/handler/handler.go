package handler

import (
	"context"
	"sync"
	"time"

	"credflow/internal/middleware"
	"credflow/internal/service"
	"credflow/internal/workflow"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Sender pushes messages to a chat outside of an update
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Handler manages all bot interactions
type Handler struct {
	bot             *tele.Bot
	sender          Sender
	authService     *service.AuthService
	passwordService workflow.CredentialChangeService
	submitTimeout   time.Duration
	logger          *zap.Logger

	ctx context.Context

	// One workflow session per chat
	sessions   map[int64]*session
	sessionMux sync.Mutex
}

// NewHandler creates a new handler instance. Sessions live no longer than ctx.
func NewHandler(
	ctx context.Context,
	bot *tele.Bot,
	authService *service.AuthService,
	passwordService workflow.CredentialChangeService,
	submitTimeout time.Duration,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		bot:             bot,
		authService:     authService,
		passwordService: passwordService,
		submitTimeout:   submitTimeout,
		logger:          logger,
		ctx:             ctx,
		sessions:        make(map[int64]*session),
	}
	if bot != nil {
		h.sender = bot
	}
	return h
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/reset", h.handleReset)
	h.bot.Handle("/login", h.handleLogin)
	h.bot.Handle("/logout", h.handleLogout, middleware.AuthMiddleware(h.authService, h.logger))

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnSubmit, h.handleSubmit)
	h.bot.Handle(&btnTogglePassword, h.handleTogglePassword)
	h.bot.Handle(&btnReenter, h.handleReenter)
	h.bot.Handle(&btnCancel, h.handleCancel)
	h.bot.Handle(&btnLogin, h.handleLogin)
	h.bot.Handle(&btnLogout, h.handleLogout, middleware.AuthMiddleware(h.authService, h.logger))
	h.bot.Handle(&btnMainMenu, h.handleStart)

	// Generic callback handler for buttons that lost their Unique
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// Close tears down every open session
func (h *Handler) Close() {
	h.sessionMux.Lock()
	sessions := make([]*session, 0, len(h.sessions))
	for chatID, s := range h.sessions {
		sessions = append(sessions, s)
		delete(h.sessions, chatID)
	}
	h.sessionMux.Unlock()

	for _, s := range sessions {
		s.shutdown()
	}
	h.logger.Info("All sessions closed", zap.Int("count", len(sessions)))
}

// Inline keyboard buttons
var (
	btnSubmit = tele.Btn{
		Unique: "change_submit",
		Text:   "✅ Сменить пароль",
	}
	btnTogglePassword = tele.Btn{
		Unique: "toggle_password",
		Text:   "👁 Показать/скрыть пароль",
	}
	btnReenter = tele.Btn{
		Unique: "reenter_password",
		Text:   "✏️ Ввести заново",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Отменить",
	}
	btnLogin = tele.Btn{
		Unique: "login",
		Text:   "🔐 Войти",
	}
	btnLogout = tele.Btn{
		Unique: "logout",
		Text:   "🚪 Выйти",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Главное меню",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup(authorized bool) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	if authorized {
		menu.Inline(menu.Row(btnLogout))
	} else {
		menu.Inline(menu.Row(btnLogin))
	}
	return menu
}

func cancelMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnCancel))
	return menu
}

func confirmMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnSubmit),
		menu.Row(btnTogglePassword),
		menu.Row(btnReenter, btnCancel),
	)
	return menu
}

func mismatchMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnTogglePassword),
		menu.Row(btnReenter, btnCancel),
	)
	return menu
}

// reply is a message computed on a session loop and sent from the update goroutine
type reply struct {
	text   string
	markup *tele.ReplyMarkup
}

func (h *Handler) respond(c tele.Context, r reply) error {
	if r.text == "" {
		if c.Callback() != nil {
			return c.Respond()
		}
		return nil
	}
	if c.Callback() != nil {
		if err := c.Respond(); err != nil {
			h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
		}
	}
	if r.markup != nil {
		return c.Send(r.text, r.markup)
	}
	return c.Send(r.text)
}
