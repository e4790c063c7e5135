package postgres

import (
	"database/sql"

	"credflow/internal/domain"
)

// ChatRepo implements repository.ChatRepository
type ChatRepo struct {
	db *sql.DB
}

// NewChatRepo creates a new chat repository
func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// IsAuthorized checks if chat is authorized
func (r *ChatRepo) IsAuthorized(chatID int64) (bool, error) {
	var authorized bool
	query := `SELECT authorized FROM chats WHERE chat_id = $1`
	err := r.db.QueryRow(query, chatID).Scan(&authorized)

	if err == sql.ErrNoRows {
		// Chat doesn't exist yet
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return authorized, nil
}

// GetChat loads chat record
func (r *ChatRepo) GetChat(chatID int64) (*domain.Chat, error) {
	chat := &domain.Chat{}
	query := `SELECT chat_id, COALESCE(login, ''), authorized, created_at FROM chats WHERE chat_id = $1`
	err := r.db.QueryRow(query, chatID).Scan(&chat.ChatID, &chat.Login, &chat.Authorized, &chat.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return chat, nil
}

// AuthorizeChat binds chat to login and marks it authorized
func (r *ChatRepo) AuthorizeChat(chatID int64, login string) error {
	query := `
		INSERT INTO chats (chat_id, login, authorized)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (chat_id)
		DO UPDATE SET login = EXCLUDED.login, authorized = TRUE
	`
	_, err := r.db.Exec(query, chatID, login)
	return err
}

// EnsureChatExists creates chat if not exists
func (r *ChatRepo) EnsureChatExists(chatID int64) error {
	query := `
		INSERT INTO chats (chat_id, authorized)
		VALUES ($1, FALSE)
		ON CONFLICT (chat_id) DO NOTHING
	`
	_, err := r.db.Exec(query, chatID)
	return err
}

// RevokeChat drops chat authorization
func (r *ChatRepo) RevokeChat(chatID int64) error {
	query := `UPDATE chats SET authorized = FALSE, login = NULL WHERE chat_id = $1`
	_, err := r.db.Exec(query, chatID)
	return err
}
