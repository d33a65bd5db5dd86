package relay

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"relay-service/internal/models"
	"relay-service/internal/platform"
)

// Share republishes a private reply to the rest of the community. The shared
// copies keep the reply's author as their sender, so replies to them go back
// to the author privately.
func (e *Engine) Share(ctx context.Context, ev *Event) bool {
	return e.run(ctx, OpShare, ev, e.share)
}

func (e *Engine) share(ctx context.Context, ev *Event) error {
	e.answerCallback(ctx, ev)

	tapped := ev.Message
	botID := e.platform.BotID()
	hit, err := e.stores.Transmissions.FindByReceiverCopy(ctx, platform.MsgID(tapped), tapped.Chat.ID, botID)
	if err != nil {
		return fmt.Errorf("find tapped copy: %w", err)
	}
	if hit == nil {
		return ErrConversationNotFound
	}
	if hit.Mode != models.ModePrivateReply || hit.TopicID == nil {
		return ErrNotShareable
	}
	content := platform.ContentOf(tapped)
	if content.Kind == platform.KindUnsupported {
		return ErrNotTransmitted
	}

	sub := models.Subtopic{
		ID:               e.newID(),
		TopicID:          *hit.TopicID,
		ParentSubtopicID: hit.SubtopicID,
		SenderMsgID:      hit.SenderMsgID,
		SenderChatID:     hit.SenderChatID,
		SenderBotID:      hit.SenderBotID,
		SenderPayloadRef: hit.SenderPayloadRef,
	}
	if err := e.stores.Subtopics.CreateSubtopic(ctx, sub); err != nil {
		return fmt.Errorf("create shared subtopic: %w", err)
	}

	recipients, err := e.stores.Chats.ActiveRecipients(ctx, botID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	recipients = lo.Without(lo.Uniq(recipients), tapped.Chat.ID, hit.SenderChatID)

	author := party{MsgID: hit.SenderMsgID, ChatID: hit.SenderChatID, BotID: hit.SenderBotID, PayloadRef: hit.SenderPayloadRef}
	deliveries := lo.Map(recipients, func(chatID int64, _ int) delivery {
		return delivery{
			ReceiverChatID:        chatID,
			ReplyToTransmissionID: &hit.ID,
			TopicID:               hit.TopicID,
			SubtopicID:            &sub.ID,
			Mode:                  models.ModeShared,
			DisableNotification:   e.silentBroadcasts,
			Sender:                &author,
		}
	})
	_, delivered := e.transmitAll(ctx, ev, content, models.ModeShared, deliveries)

	e.emit(ctx, models.RelayEvent{
		Type:           "share",
		TopicID:        *hit.TopicID,
		Mode:           models.ModeShared,
		Attempted:      len(deliveries),
		Delivered:      delivered,
		SenderChatID:   tapped.Chat.ID,
		SenderMsgID:    platform.MsgID(tapped),
		TransmissionID: hit.ID,
	})
	if delivered == 0 {
		return ErrNotTransmitted
	}
	replyTo := platform.MsgID(tapped)
	e.notify(ctx, tapped.Chat.ID, e.texts.Shared, &replyTo)
	return nil
}
