package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"relay-service/internal/models"
)

// AllogroomingRepository dedupes private exchanges per (topic, sender, receiver).
type AllogroomingRepository interface {
	CreateAllogrooming(ctx context.Context, a models.Allogrooming) error
	FindAllogrooming(ctx context.Context, topicID string, senderChatID, senderBotID, receiverChatID, receiverBotID int64) (*models.Allogrooming, error)
}

// AllogroomingRepo is a sqlx-backed repository.
type AllogroomingRepo struct {
	db *sqlx.DB
}

// NewAllogroomingRepo constructs AllogroomingRepo.
func NewAllogroomingRepo(db *sqlx.DB) *AllogroomingRepo {
	return &AllogroomingRepo{db: db}
}

// CreateAllogrooming inserts a new pair record.
func (r *AllogroomingRepo) CreateAllogrooming(ctx context.Context, a models.Allogrooming) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO allogroomings (id, topic_id, sender_msg_id, sender_chat_id, sender_bot_id, receiver_chat_id, receiver_bot_id, sender_payload_ref)
        VALUES (:id, :topic_id, :sender_msg_id, :sender_chat_id, :sender_bot_id, :receiver_chat_id, :receiver_bot_id, :sender_payload_ref)`, a)
	return err
}

// FindAllogrooming goes through the (topic_id, sender_chat_id) index and filters
// the rest of the pair key. Several matches are tolerated; the oldest wins.
func (r *AllogroomingRepo) FindAllogrooming(ctx context.Context, topicID string, senderChatID, senderBotID, receiverChatID, receiverBotID int64) (*models.Allogrooming, error) {
	var rows []models.Allogrooming
	err := r.db.SelectContext(ctx, &rows, `SELECT id, topic_id, sender_msg_id, sender_chat_id, sender_bot_id, receiver_chat_id, receiver_bot_id, sender_payload_ref, created_at
        FROM allogroomings
        WHERE topic_id=$1 AND sender_chat_id=$2
        AND sender_bot_id=$3 AND receiver_chat_id=$4 AND receiver_bot_id=$5
        ORDER BY created_at ASC`, topicID, senderChatID, senderBotID, receiverChatID, receiverBotID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		log.Warn().
			Str("topic", topicID).
			Int64("sender_chat_id", senderChatID).
			Int64("receiver_chat_id", receiverChatID).
			Int("count", len(rows)).
			Msg("More than one allogrooming was found for a pair, using the oldest.")
	}
	return &rows[0], nil
}
