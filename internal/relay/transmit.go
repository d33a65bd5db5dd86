package relay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"relay-service/internal/archive"
	"relay-service/internal/models"
	"relay-service/internal/platform"
)

// party identifies one message in one chat of one bot.
type party struct {
	MsgID      int64
	ChatID     int64
	BotID      int64
	PayloadRef string
}

// delivery describes one copy to send and record.
type delivery struct {
	ReceiverChatID        int64
	ReplyToMsgID          *int64
	ReplyToTransmissionID *string
	TopicID               *string
	SubtopicID            *string
	AllogroomingID        *string
	Mode                  models.TransmissionMode
	DisableNotification   bool
	ClearReplyKeyboard    bool
	// Sender overrides the inbound message as the origin of the copy.
	Sender *party
}

// transmit sends one copy and records it. A platform failure or an
// unsupported content kind yields (nil, nil); only store errors are returned.
func (e *Engine) transmit(ctx context.Context, ev *Event, content platform.Content, d delivery) (*models.Transmission, error) {
	sent, err := e.platform.Send(ctx, d.ReceiverChatID, content, platform.SendOptions{
		ReplyToMsgID:        d.ReplyToMsgID,
		Keyboard:            e.texts.keyboard(d.Mode),
		DisableNotification: d.DisableNotification,
		AllowWithoutReply:   true,
	})
	if err != nil {
		log.Warn().Err(err).Int64("receiver_chat_id", d.ReceiverChatID).Msg("Failed to send copy.")
		return nil, nil
	}
	if sent == nil {
		log.Debug().Str("kind", string(content.Kind)).Int64("receiver_chat_id", d.ReceiverChatID).Msg("Content kind not deliverable.")
		return nil, nil
	}

	sender := party{MsgID: platform.MsgID(ev.Message), ChatID: ev.Message.Chat.ID, BotID: e.platform.BotID(), PayloadRef: ev.payloadRef}
	if d.Sender != nil {
		sender = *d.Sender
	}

	id := e.newID()
	row := models.Transmission{
		ID:                    id,
		TopicID:               d.TopicID,
		SubtopicID:            d.SubtopicID,
		AllogroomingID:        d.AllogroomingID,
		SenderMsgID:           sender.MsgID,
		SenderChatID:          sender.ChatID,
		SenderBotID:           sender.BotID,
		ReceiverMsgID:         platform.MsgID(sent),
		ReceiverChatID:        sent.Chat.ID,
		ReceiverBotID:         e.platform.BotID(),
		ReplyToMsgID:          d.ReplyToMsgID,
		ReplyToTransmissionID: d.ReplyToTransmissionID,
		Mode:                  d.Mode,
		SenderPayloadRef:      sender.PayloadRef,
		ReceiverPayloadRef:    e.put(ctx, archive.TransmissionKey(ev.prefix, id), sent),
		Status:                models.StatusActive,
	}
	if err := e.stores.Transmissions.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("record transmission to chat %d: %w", d.ReceiverChatID, err)
	}

	if d.ClearReplyKeyboard && d.ReplyToMsgID != nil {
		e.clearKeyboard(ctx, d.ReceiverChatID, *d.ReplyToMsgID)
	}
	return &row, nil
}

// transmitAll fans deliveries out and returns the recorded rows of the
// successful ones.
func (e *Engine) transmitAll(ctx context.Context, ev *Event, content platform.Content, mode models.TransmissionMode, deliveries []delivery) ([]*models.Transmission, int) {
	results := each(ctx, e.fanout, string(mode), deliveries, func(ctx context.Context, d delivery) (*models.Transmission, bool, error) {
		row, err := e.transmit(ctx, ev, content, d)
		return row, row != nil, err
	})
	rows := make([]*models.Transmission, 0, len(results))
	for _, r := range results {
		if r.OK {
			rows = append(rows, r.Value)
		}
	}
	return rows, len(rows)
}
