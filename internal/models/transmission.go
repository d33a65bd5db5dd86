package models

import "time"

// TransmissionMode decides the affordance a receiver gets for a relayed copy.
type TransmissionMode string

const (
	ModeBroadcast    TransmissionMode = "broadcast"
	ModePrivateReply TransmissionMode = "private_reply"
	ModeShared       TransmissionMode = "shared"
)

// TransmissionStatus separates live rows from rows replaced by re-parenting.
type TransmissionStatus string

const (
	StatusActive     TransmissionStatus = "active"
	StatusSuperseded TransmissionStatus = "superseded"
)

// Transmission is one relayed copy of one message.
type Transmission struct {
	ID                     string             `db:"id" json:"id"`
	TopicID                *string            `db:"topic_id" json:"topic_id,omitempty"`
	SubtopicID             *string            `db:"subtopic_id" json:"subtopic_id,omitempty"`
	AllogroomingID         *string            `db:"allogrooming_id" json:"allogrooming_id,omitempty"`
	OriginalTransmissionID *string            `db:"original_transmission_id" json:"original_transmission_id,omitempty"`
	SenderMsgID            int64              `db:"sender_msg_id" json:"sender_msg_id"`
	SenderChatID           int64              `db:"sender_chat_id" json:"sender_chat_id"`
	SenderBotID            int64              `db:"sender_bot_id" json:"sender_bot_id"`
	ReceiverMsgID          int64              `db:"receiver_msg_id" json:"receiver_msg_id"`
	ReceiverChatID         int64              `db:"receiver_chat_id" json:"receiver_chat_id"`
	ReceiverBotID          int64              `db:"receiver_bot_id" json:"receiver_bot_id"`
	ReplyToMsgID           *int64             `db:"reply_to_msg_id" json:"reply_to_msg_id,omitempty"`
	ReplyToTransmissionID  *string            `db:"reply_to_transmission_id" json:"reply_to_transmission_id,omitempty"`
	Mode                   TransmissionMode   `db:"transmission_mode" json:"transmission_mode"`
	SenderPayloadRef       string             `db:"sender_payload_ref" json:"sender_payload_ref"`
	ReceiverPayloadRef     string             `db:"receiver_payload_ref" json:"receiver_payload_ref"`
	Status                 TransmissionStatus `db:"status" json:"status"`
	SupersededBy           *string            `db:"superseded_by" json:"superseded_by,omitempty"`
	CreatedAt              time.Time          `db:"created_at" json:"created_at"`
}

// RelayEvent is published to the event bus after relay operations.
type RelayEvent struct {
	Type           string           `json:"type"`
	Transmission   *Transmission    `json:"transmission,omitempty"`
	TopicID        string           `json:"topic_id,omitempty"`
	Mode           TransmissionMode `json:"mode,omitempty"`
	Attempted      int              `json:"attempted"`
	Delivered      int              `json:"delivered"`
	SenderChatID   int64            `json:"sender_chat_id"`
	SenderMsgID    int64            `json:"sender_msg_id"`
	TransmissionID string           `json:"transmission_id,omitempty"`
}
