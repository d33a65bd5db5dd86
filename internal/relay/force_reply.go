package relay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"relay-service/internal/archive"
	"relay-service/internal/models"
	"relay-service/internal/platform"
)

// ForceReply turns a tapped Reply button into a reply prompt. The tapped copy
// is re-sent with a force-reply marker, its transmission is superseded by one
// pointing at the prompt, and the tapped message is removed.
func (e *Engine) ForceReply(ctx context.Context, ev *Event) bool {
	return e.run(ctx, OpForceReply, ev, e.forceReply)
}

func (e *Engine) forceReply(ctx context.Context, ev *Event) error {
	e.answerCallback(ctx, ev)

	tapped := ev.Message
	botID := e.platform.BotID()
	hit, err := e.stores.Transmissions.FindByReceiverCopy(ctx, platform.MsgID(tapped), tapped.Chat.ID, botID)
	if err != nil {
		return fmt.Errorf("find tapped copy: %w", err)
	}
	if hit == nil {
		e.clearKeyboard(ctx, tapped.Chat.ID, platform.MsgID(tapped))
		return ErrConversationNotFound
	}

	var threadUnder *int64
	if tapped.ReplyToMessage != nil {
		id := platform.MsgID(tapped.ReplyToMessage)
		threadUnder = &id
	}
	prompt, err := e.platform.Send(ctx, tapped.Chat.ID, platform.ContentOf(tapped), platform.SendOptions{
		ReplyToMsgID:        threadUnder,
		ForceReply:          true,
		DisableNotification: true,
		AllowWithoutReply:   true,
	})
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", tapped.Chat.ID).Msg("Failed to send reply prompt.")
		return ErrNotTransmitted
	}
	if prompt == nil {
		return ErrNotTransmitted
	}

	replacement := *hit
	replacement.ID = e.newID()
	replacement.OriginalTransmissionID = &hit.ID
	replacement.ReceiverMsgID = platform.MsgID(prompt)
	replacement.ReceiverChatID = prompt.Chat.ID
	replacement.ReceiverBotID = botID
	replacement.ReceiverPayloadRef = e.put(ctx, archive.TransmissionKey(ev.prefix, replacement.ID), prompt)
	replacement.Status = models.StatusActive
	replacement.SupersededBy = nil
	if err := e.stores.Transmissions.Supersede(ctx, hit.ID, replacement); err != nil {
		return fmt.Errorf("supersede transmission %s: %w", hit.ID, err)
	}

	if err := e.platform.Delete(ctx, tapped.Chat.ID, platform.MsgID(tapped)); err != nil {
		log.Warn().Err(err).Int64("chat_id", tapped.Chat.ID).Int64("msg_id", platform.MsgID(tapped)).Msg("Failed to delete tapped message.")
		e.clearKeyboard(ctx, tapped.Chat.ID, platform.MsgID(tapped))
	}

	e.emit(ctx, models.RelayEvent{
		Type:           "force_reply",
		Transmission:   &replacement,
		Mode:           replacement.Mode,
		Attempted:      1,
		Delivered:      1,
		SenderChatID:   tapped.Chat.ID,
		SenderMsgID:    platform.MsgID(tapped),
		TransmissionID: hit.ID,
	})
	return nil
}
