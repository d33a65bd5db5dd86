package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"relay-service/internal/models"
)

var (
	ErrTopicNotFound    = errors.New("topic not found")
	ErrSubtopicNotFound = errors.New("subtopic not found")
)

// TopicRepository stores broadcast roots.
type TopicRepository interface {
	CreateTopic(ctx context.Context, topic models.Topic) error
	GetTopic(ctx context.Context, id string) (models.Topic, error)
}

// SubtopicRepository stores threads within topics.
type SubtopicRepository interface {
	CreateSubtopic(ctx context.Context, subtopic models.Subtopic) error
	GetSubtopic(ctx context.Context, id string) (models.Subtopic, error)
}

// TopicRepo implements both topic and subtopic persistence with sqlx.
type TopicRepo struct {
	db *sqlx.DB
}

// NewTopicRepo constructs TopicRepo.
func NewTopicRepo(db *sqlx.DB) *TopicRepo {
	return &TopicRepo{db: db}
}

// CreateTopic inserts a topic. Topics are immutable afterwards.
func (r *TopicRepo) CreateTopic(ctx context.Context, topic models.Topic) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO topics (id, sender_msg_id, sender_chat_id, sender_bot_id, sender_payload_ref)
        VALUES (:id, :sender_msg_id, :sender_chat_id, :sender_bot_id, :sender_payload_ref)`, topic)
	return err
}

// GetTopic fetches a topic by id.
func (r *TopicRepo) GetTopic(ctx context.Context, id string) (models.Topic, error) {
	var topic models.Topic
	err := r.db.GetContext(ctx, &topic, `SELECT id, sender_msg_id, sender_chat_id, sender_bot_id, sender_payload_ref, created_at FROM topics WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Topic{}, ErrTopicNotFound
	}
	return topic, err
}

// CreateSubtopic inserts a subtopic.
func (r *TopicRepo) CreateSubtopic(ctx context.Context, subtopic models.Subtopic) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO subtopics (id, topic_id, parent_subtopic_id, sender_msg_id, sender_chat_id, sender_bot_id, sender_payload_ref, autoshare)
        VALUES (:id, :topic_id, :parent_subtopic_id, :sender_msg_id, :sender_chat_id, :sender_bot_id, :sender_payload_ref, :autoshare)`, subtopic)
	return err
}

// GetSubtopic fetches a subtopic by id.
func (r *TopicRepo) GetSubtopic(ctx context.Context, id string) (models.Subtopic, error) {
	var subtopic models.Subtopic
	err := r.db.GetContext(ctx, &subtopic, `SELECT id, topic_id, parent_subtopic_id, sender_msg_id, sender_chat_id, sender_bot_id, sender_payload_ref, autoshare, created_at
        FROM subtopics WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subtopic{}, ErrSubtopicNotFound
	}
	return subtopic, err
}
