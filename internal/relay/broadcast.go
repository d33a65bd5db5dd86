package relay

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"relay-service/internal/models"
	"relay-service/internal/platform"
)

// Broadcast starts a new topic and fans the message out to every active
// recipient except the sender. It succeeds if at least one copy arrived.
func (e *Engine) Broadcast(ctx context.Context, ev *Event) bool {
	return e.run(ctx, OpBroadcast, ev, e.broadcast)
}

func (e *Engine) broadcast(ctx context.Context, ev *Event) error {
	msg := ev.Message
	content := platform.ContentOf(msg)
	if content.Kind == platform.KindUnsupported {
		return ErrNotTransmitted
	}

	botID := e.platform.BotID()
	topic := models.Topic{
		ID:               e.newID(),
		SenderMsgID:      platform.MsgID(msg),
		SenderChatID:     msg.Chat.ID,
		SenderBotID:      botID,
		SenderPayloadRef: ev.payloadRef,
	}
	if err := e.stores.Topics.CreateTopic(ctx, topic); err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	root := models.Subtopic{
		ID:               e.newID(),
		TopicID:          topic.ID,
		SenderMsgID:      platform.MsgID(msg),
		SenderChatID:     msg.Chat.ID,
		SenderBotID:      botID,
		SenderPayloadRef: ev.payloadRef,
		Autoshare:        true,
	}
	if err := e.stores.Subtopics.CreateSubtopic(ctx, root); err != nil {
		return fmt.Errorf("create root subtopic: %w", err)
	}

	recipients, err := e.stores.Chats.ActiveRecipients(ctx, botID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	recipients = lo.Without(lo.Uniq(recipients), msg.Chat.ID)

	deliveries := lo.Map(recipients, func(chatID int64, _ int) delivery {
		return delivery{
			ReceiverChatID:      chatID,
			TopicID:             &topic.ID,
			SubtopicID:          &root.ID,
			Mode:                models.ModeBroadcast,
			DisableNotification: e.silentBroadcasts,
		}
	})
	_, delivered := e.transmitAll(ctx, ev, content, models.ModeBroadcast, deliveries)

	e.emit(ctx, models.RelayEvent{
		Type:         "broadcast",
		TopicID:      topic.ID,
		Mode:         models.ModeBroadcast,
		Attempted:    len(deliveries),
		Delivered:    delivered,
		SenderChatID: msg.Chat.ID,
		SenderMsgID:  platform.MsgID(msg),
	})

	if delivered == 0 {
		return ErrNotTransmitted
	}
	replyTo := platform.MsgID(msg)
	e.notify(ctx, msg.Chat.ID, e.texts.NewTopicStarted, &replyTo)
	return nil
}
