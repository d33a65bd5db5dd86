package relay

import (
	"context"
	"fmt"

	"relay-service/internal/models"
	"relay-service/internal/platform"
)

// Edit propagates an edited message to every copy of it. It reports success
// only when every copy was edited; a partial edit is reported separately
// from a complete failure.
func (e *Engine) Edit(ctx context.Context, ev *Event) bool {
	return e.run(ctx, OpEdit, ev, e.edit)
}

func (e *Engine) edit(ctx context.Context, ev *Event) error {
	msg := ev.Message
	copies, err := e.stores.Transmissions.FindAllBySenderCopy(ctx, platform.MsgID(msg), msg.Chat.ID, e.platform.BotID())
	if err != nil {
		return fmt.Errorf("find sent copies: %w", err)
	}
	if len(copies) == 0 {
		return ErrConversationNotFound
	}

	content := platform.ContentOf(msg)
	results := each(ctx, e.fanout, string(OpEdit), copies, func(ctx context.Context, c models.Transmission) (struct{}, bool, error) {
		edited, err := e.platform.Edit(ctx, c.ReceiverChatID, c.ReceiverMsgID, content, e.texts.keyboard(modeOf(c, len(copies))))
		return struct{}{}, edited != nil, err
	})
	edited := countDelivered(results)

	e.emit(ctx, models.RelayEvent{
		Type:         "edit",
		Attempted:    len(copies),
		Delivered:    edited,
		SenderChatID: msg.Chat.ID,
		SenderMsgID:  platform.MsgID(msg),
	})

	switch edited {
	case len(copies):
		return nil
	case 0:
		return ErrEditFailed
	}
	return ErrPartialEdit
}

// modeOf returns the persisted mode of a copy. Rows written before the mode
// was stored fall back to deriving it from the sibling count.
func modeOf(t models.Transmission, siblings int) models.TransmissionMode {
	if t.Mode != "" {
		return t.Mode
	}
	if siblings < 2 {
		return models.ModePrivateReply
	}
	return models.ModeBroadcast
}
