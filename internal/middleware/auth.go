package middleware

import (
	"credflow/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgError        = "Произошла ошибка. Попробуйте позже."
	msgUnauthorized = "Сначала войдите в аккаунт: /login"
)

// AuthMiddleware lets only authorized chats through
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chatID := c.Chat().ID

			// Ensure chat exists
			if err := authService.EnsureChatExists(chatID); err != nil {
				logger.Error("Failed to ensure chat exists in middleware", zap.Error(err))
				return reject(c, msgError)
			}

			// Check authorization
			authorized, err := authService.IsAuthorized(chatID)
			if err != nil {
				logger.Error("Failed to check authorization in middleware", zap.Error(err))
				return reject(c, msgError)
			}

			if !authorized {
				logger.Info("Unauthorized chat rejected", zap.Int64("chat_id", chatID))
				return reject(c, msgUnauthorized)
			}

			// Chat is authorized, continue
			return next(c)
		}
	}
}

func reject(c tele.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}
	return c.Send(text)
}
