package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string, maxOpenConns int) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS chats (
        chat_id BIGINT NOT NULL,
        bot_id BIGINT NOT NULL,
        title TEXT NOT NULL DEFAULT '',
        is_authorized BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY(chat_id, bot_id)
    );`,
	`CREATE INDEX IF NOT EXISTS chats_by_bot_authorized ON chats (bot_id, is_authorized);`,
	`CREATE TABLE IF NOT EXISTS topics (
        id UUID PRIMARY KEY,
        sender_msg_id BIGINT NOT NULL,
        sender_chat_id BIGINT NOT NULL,
        sender_bot_id BIGINT NOT NULL,
        sender_payload_ref TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS subtopics (
        id UUID PRIMARY KEY,
        topic_id UUID NOT NULL REFERENCES topics(id),
        parent_subtopic_id UUID REFERENCES subtopics(id),
        sender_msg_id BIGINT NOT NULL,
        sender_chat_id BIGINT NOT NULL,
        sender_bot_id BIGINT NOT NULL,
        sender_payload_ref TEXT NOT NULL DEFAULT '',
        autoshare BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS allogroomings (
        id UUID PRIMARY KEY,
        topic_id UUID NOT NULL REFERENCES topics(id),
        sender_msg_id BIGINT NOT NULL,
        sender_chat_id BIGINT NOT NULL,
        sender_bot_id BIGINT NOT NULL,
        receiver_chat_id BIGINT NOT NULL,
        receiver_bot_id BIGINT NOT NULL,
        sender_payload_ref TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE INDEX IF NOT EXISTS allogroomings_by_topic_sender ON allogroomings (topic_id, sender_chat_id);`,
	`CREATE TABLE IF NOT EXISTS transmissions (
        id UUID PRIMARY KEY,
        topic_id UUID REFERENCES topics(id),
        subtopic_id UUID REFERENCES subtopics(id),
        allogrooming_id UUID REFERENCES allogroomings(id),
        original_transmission_id UUID,
        sender_msg_id BIGINT NOT NULL,
        sender_chat_id BIGINT NOT NULL,
        sender_bot_id BIGINT NOT NULL,
        receiver_msg_id BIGINT NOT NULL,
        receiver_chat_id BIGINT NOT NULL,
        receiver_bot_id BIGINT NOT NULL,
        reply_to_msg_id BIGINT,
        reply_to_transmission_id UUID,
        transmission_mode TEXT NOT NULL,
        sender_payload_ref TEXT NOT NULL DEFAULT '',
        receiver_payload_ref TEXT NOT NULL DEFAULT '',
        status TEXT NOT NULL DEFAULT 'active',
        superseded_by UUID,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS transmissions_by_receiver_copy
        ON transmissions (receiver_msg_id, receiver_chat_id, receiver_bot_id) WHERE status = 'active';`,
	`CREATE INDEX IF NOT EXISTS transmissions_by_sender_copy
        ON transmissions (sender_msg_id, sender_chat_id) WHERE status = 'active';`,
}

func runMigrations(db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Info().Int("count", len(migrations)).Msg("Database migrations applied.")
	return nil
}
