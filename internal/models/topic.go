package models

import "time"

// Topic is the root of one broadcast.
type Topic struct {
	ID               string    `db:"id" json:"id"`
	SenderMsgID      int64     `db:"sender_msg_id" json:"sender_msg_id"`
	SenderChatID     int64     `db:"sender_chat_id" json:"sender_chat_id"`
	SenderBotID      int64     `db:"sender_bot_id" json:"sender_bot_id"`
	SenderPayloadRef string    `db:"sender_payload_ref" json:"sender_payload_ref"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Subtopic is a thread inside a topic. Autoshare marks threads whose
// follow-ups keep fanning out instead of staying one to one.
type Subtopic struct {
	ID               string    `db:"id" json:"id"`
	TopicID          string    `db:"topic_id" json:"topic_id"`
	ParentSubtopicID *string   `db:"parent_subtopic_id" json:"parent_subtopic_id,omitempty"`
	SenderMsgID      int64     `db:"sender_msg_id" json:"sender_msg_id"`
	SenderChatID     int64     `db:"sender_chat_id" json:"sender_chat_id"`
	SenderBotID      int64     `db:"sender_bot_id" json:"sender_bot_id"`
	SenderPayloadRef string    `db:"sender_payload_ref" json:"sender_payload_ref"`
	Autoshare        bool      `db:"autoshare" json:"autoshare"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Allogrooming caps a (topic, sender, receiver) pair to a single private exchange.
type Allogrooming struct {
	ID               string    `db:"id" json:"id"`
	TopicID          string    `db:"topic_id" json:"topic_id"`
	SenderMsgID      int64     `db:"sender_msg_id" json:"sender_msg_id"`
	SenderChatID     int64     `db:"sender_chat_id" json:"sender_chat_id"`
	SenderBotID      int64     `db:"sender_bot_id" json:"sender_bot_id"`
	ReceiverChatID   int64     `db:"receiver_chat_id" json:"receiver_chat_id"`
	ReceiverBotID    int64     `db:"receiver_bot_id" json:"receiver_bot_id"`
	SenderPayloadRef string    `db:"sender_payload_ref" json:"sender_payload_ref"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
