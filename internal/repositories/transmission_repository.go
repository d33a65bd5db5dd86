package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"relay-service/internal/models"
)

var ErrTransmissionNotFound = errors.New("transmission not found")

// TransmissionRepository stores relayed copies and resolves them by either side.
type TransmissionRepository interface {
	Create(ctx context.Context, t models.Transmission) error
	Get(ctx context.Context, id string) (models.Transmission, error)
	FindByReceiverCopy(ctx context.Context, receiverMsgID, receiverChatID, receiverBotID int64) (*models.Transmission, error)
	FindAllBySenderCopy(ctx context.Context, senderMsgID, senderChatID, senderBotID int64) ([]models.Transmission, error)
	Supersede(ctx context.Context, oldID string, replacement models.Transmission) error
	Delete(ctx context.Context, id string) error
	PruneSuperseded(ctx context.Context, olderThan time.Time) (int64, error)
}

const transmissionColumns = `id, topic_id, subtopic_id, allogrooming_id, original_transmission_id,
    sender_msg_id, sender_chat_id, sender_bot_id, receiver_msg_id, receiver_chat_id, receiver_bot_id,
    reply_to_msg_id, reply_to_transmission_id, transmission_mode, sender_payload_ref, receiver_payload_ref,
    status, superseded_by, created_at`

const insertTransmission = `INSERT INTO transmissions (id, topic_id, subtopic_id, allogrooming_id, original_transmission_id,
    sender_msg_id, sender_chat_id, sender_bot_id, receiver_msg_id, receiver_chat_id, receiver_bot_id,
    reply_to_msg_id, reply_to_transmission_id, transmission_mode, sender_payload_ref, receiver_payload_ref, status)
    VALUES (:id, :topic_id, :subtopic_id, :allogrooming_id, :original_transmission_id,
    :sender_msg_id, :sender_chat_id, :sender_bot_id, :receiver_msg_id, :receiver_chat_id, :receiver_bot_id,
    :reply_to_msg_id, :reply_to_transmission_id, :transmission_mode, :sender_payload_ref, :receiver_payload_ref, :status)`

// TransmissionRepo is a sqlx-backed repository.
type TransmissionRepo struct {
	db *sqlx.DB
}

// NewTransmissionRepo constructs TransmissionRepo.
func NewTransmissionRepo(db *sqlx.DB) *TransmissionRepo {
	return &TransmissionRepo{db: db}
}

// Create inserts a new active row.
func (r *TransmissionRepo) Create(ctx context.Context, t models.Transmission) error {
	if t.Status == "" {
		t.Status = models.StatusActive
	}
	_, err := r.db.NamedExecContext(ctx, insertTransmission, t)
	return err
}

// Get returns a row by id regardless of its status.
func (r *TransmissionRepo) Get(ctx context.Context, id string) (models.Transmission, error) {
	var t models.Transmission
	err := r.db.GetContext(ctx, &t, `SELECT `+transmissionColumns+` FROM transmissions WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transmission{}, ErrTransmissionNotFound
	}
	return t, err
}

// FindByReceiverCopy resolves the active row for a message a receiver got.
// Duplicates are a data-quality problem, not a failure: the oldest row wins.
func (r *TransmissionRepo) FindByReceiverCopy(ctx context.Context, receiverMsgID, receiverChatID, receiverBotID int64) (*models.Transmission, error) {
	var rows []models.Transmission
	err := r.db.SelectContext(ctx, &rows, `SELECT `+transmissionColumns+` FROM transmissions
        WHERE receiver_msg_id=$1 AND receiver_chat_id=$2 AND receiver_bot_id=$3 AND status='active'
        ORDER BY created_at ASC`, receiverMsgID, receiverChatID, receiverBotID)
	if err != nil {
		return nil, err
	}
	return firstOf(rows, receiverMsgID, receiverChatID, receiverBotID), nil
}

// FindAllBySenderCopy lists every active copy of one sender message.
func (r *TransmissionRepo) FindAllBySenderCopy(ctx context.Context, senderMsgID, senderChatID, senderBotID int64) ([]models.Transmission, error) {
	var rows []models.Transmission
	err := r.db.SelectContext(ctx, &rows, `SELECT `+transmissionColumns+` FROM transmissions
        WHERE sender_msg_id=$1 AND sender_chat_id=$2 AND sender_bot_id=$3 AND status='active'
        ORDER BY created_at ASC`, senderMsgID, senderChatID, senderBotID)
	return rows, err
}

// Supersede stores replacement and retires oldID in one transaction.
func (r *TransmissionRepo) Supersede(ctx context.Context, oldID string, replacement models.Transmission) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE transmissions SET status='superseded', superseded_by=$2 WHERE id=$1 AND status='active'`, oldID, replacement.ID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrTransmissionNotFound
	}

	replacement.Status = models.StatusActive
	if _, err := tx.NamedExecContext(ctx, insertTransmission, replacement); err != nil {
		return fmt.Errorf("insert replacement: %w", err)
	}
	return tx.Commit()
}

// Delete hard-deletes a row.
func (r *TransmissionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transmissions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrTransmissionNotFound
	}
	return nil
}

// PruneSuperseded removes superseded rows created before olderThan.
func (r *TransmissionRepo) PruneSuperseded(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transmissions WHERE status='superseded' AND created_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func firstOf(rows []models.Transmission, msgID, chatID, botID int64) *models.Transmission {
	if len(rows) == 0 {
		return nil
	}
	if len(rows) > 1 {
		log.Warn().
			Int64("receiver_msg_id", msgID).
			Int64("receiver_chat_id", chatID).
			Int64("receiver_bot_id", botID).
			Int("count", len(rows)).
			Msg("More than one active transmission was found for a receiver copy, using the oldest.")
	}
	return &rows[0]
}

// Ancestry walks original_transmission_id links from id back to the first row.
// The returned slice starts with the row for id itself. A link already removed
// by retention ends the walk early and is reported as truncated.
func Ancestry(ctx context.Context, repo TransmissionRepository, id string) (chain []models.Transmission, truncated bool, err error) {
	seen := map[string]bool{}
	for next := &id; next != nil; {
		if seen[*next] {
			return chain, false, fmt.Errorf("transmission ancestry loops at %s", *next)
		}
		seen[*next] = true

		t, err := repo.Get(ctx, *next)
		if errors.Is(err, ErrTransmissionNotFound) && len(chain) > 0 {
			return chain, true, nil
		}
		if err != nil {
			return chain, false, err
		}
		chain = append(chain, t)
		next = t.OriginalTransmissionID
	}
	return chain, false, nil
}
