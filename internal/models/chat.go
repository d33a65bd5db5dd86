package models

import "time"

// Chat is a ChatDirectory entry: one chat that has talked to one bot.
type Chat struct {
	ChatID       int64     `db:"chat_id" json:"chat_id"`
	BotID        int64     `db:"bot_id" json:"bot_id"`
	Title        string    `db:"title" json:"title"`
	IsAuthorized bool      `db:"is_authorized" json:"is_authorized"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
