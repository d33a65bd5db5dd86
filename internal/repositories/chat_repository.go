package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"relay-service/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatRepository is the ChatDirectory: which chats a bot may fan out to.
type ChatRepository interface {
	ActiveRecipients(ctx context.Context, botID int64) ([]int64, error)
	Touch(ctx context.Context, chat models.Chat) (models.Chat, error)
	GetChat(ctx context.Context, chatID, botID int64) (models.Chat, error)
	SetAuthorized(ctx context.Context, chatID, botID int64, authorized bool) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// ActiveRecipients lists authorized chats of a bot. The caller excludes the sender.
func (r *ChatRepo) ActiveRecipients(ctx context.Context, botID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT chat_id FROM chats WHERE bot_id=$1 AND is_authorized = TRUE ORDER BY created_at ASC`, botID)
	return ids, err
}

// Touch upserts a chat, refreshing its title but never its authorization flag.
func (r *ChatRepo) Touch(ctx context.Context, chat models.Chat) (models.Chat, error) {
	var stored models.Chat
	err := r.db.GetContext(ctx, &stored, `INSERT INTO chats (chat_id, bot_id, title) VALUES ($1, $2, $3)
        ON CONFLICT (chat_id, bot_id) DO UPDATE SET title = EXCLUDED.title, updated_at = NOW()
        RETURNING chat_id, bot_id, title, is_authorized, created_at, updated_at`, chat.ChatID, chat.BotID, chat.Title)
	return stored, err
}

// GetChat fetches a directory entry.
func (r *ChatRepo) GetChat(ctx context.Context, chatID, botID int64) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT chat_id, bot_id, title, is_authorized, created_at, updated_at FROM chats WHERE chat_id=$1 AND bot_id=$2`, chatID, botID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// SetAuthorized flips the authorization flag of an existing chat.
func (r *ChatRepo) SetAuthorized(ctx context.Context, chatID, botID int64, authorized bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chats SET is_authorized=$3, updated_at=NOW() WHERE chat_id=$1 AND bot_id=$2`, chatID, botID, authorized)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrChatNotFound
	}
	return nil
}
