package relay

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"relay-service/internal/models"
	"relay-service/internal/platform"
)

// Reply routes a reply back through the conversation graph. A reply to a
// received copy goes privately to its author. A reply to one's own message
// goes to everyone who received that message.
func (e *Engine) Reply(ctx context.Context, ev *Event) bool {
	return e.run(ctx, OpReply, ev, e.reply)
}

func (e *Engine) reply(ctx context.Context, ev *Event) error {
	msg := ev.Message
	replied := msg.ReplyToMessage
	botID := e.platform.BotID()
	content := platform.ContentOf(msg)

	hit, err := e.stores.Transmissions.FindByReceiverCopy(ctx, platform.MsgID(replied), replied.Chat.ID, botID)
	if err != nil {
		return fmt.Errorf("find received copy: %w", err)
	}
	if hit != nil {
		return e.replyToAuthor(ctx, ev, content, *hit)
	}

	copies, err := e.stores.Transmissions.FindAllBySenderCopy(ctx, platform.MsgID(replied), replied.Chat.ID, botID)
	if err != nil {
		return fmt.Errorf("find sent copies: %w", err)
	}
	if len(copies) == 0 {
		return ErrConversationNotFound
	}
	return e.replyToReceivers(ctx, ev, content, copies)
}

// replyToAuthor sends the reply privately to the author of the copy that was
// replied to. The first reply of a pair within a topic notifies the author;
// follow-ups are silent.
func (e *Engine) replyToAuthor(ctx context.Context, ev *Event, content platform.Content, hit models.Transmission) error {
	msg := ev.Message
	botID := e.platform.BotID()

	silent := true
	var allogroomingID *string
	if hit.TopicID != nil {
		existing, err := e.stores.Allogroomings.FindAllogrooming(ctx, *hit.TopicID, msg.Chat.ID, botID, hit.SenderChatID, hit.SenderBotID)
		if err != nil {
			return fmt.Errorf("find allogrooming: %w", err)
		}
		if existing != nil {
			allogroomingID = &existing.ID
		} else {
			created := models.Allogrooming{
				ID:               e.newID(),
				TopicID:          *hit.TopicID,
				SenderMsgID:      platform.MsgID(msg),
				SenderChatID:     msg.Chat.ID,
				SenderBotID:      botID,
				ReceiverChatID:   hit.SenderChatID,
				ReceiverBotID:    hit.SenderBotID,
				SenderPayloadRef: ev.payloadRef,
			}
			if err := e.stores.Allogroomings.CreateAllogrooming(ctx, created); err != nil {
				return fmt.Errorf("create allogrooming: %w", err)
			}
			allogroomingID = &created.ID
			silent = false
		}
	}

	replyTo := hit.SenderMsgID
	row, err := e.transmit(ctx, ev, content, delivery{
		ReceiverChatID:        hit.SenderChatID,
		ReplyToMsgID:          &replyTo,
		ReplyToTransmissionID: &hit.ID,
		TopicID:               hit.TopicID,
		SubtopicID:            hit.SubtopicID,
		AllogroomingID:        allogroomingID,
		Mode:                  models.ModePrivateReply,
		DisableNotification:   silent,
	})
	if err != nil {
		return err
	}

	delivered := 0
	if row != nil {
		delivered = 1
	}
	e.emit(ctx, models.RelayEvent{
		Type:         "reply",
		Transmission: row,
		TopicID:      lo.FromPtr(hit.TopicID),
		Mode:         models.ModePrivateReply,
		Attempted:    1,
		Delivered:    delivered,
		SenderChatID: msg.Chat.ID,
		SenderMsgID:  platform.MsgID(msg),
	})
	if row == nil {
		return ErrNotTransmitted
	}
	e.clearKeyboard(ctx, msg.Chat.ID, platform.MsgID(msg.ReplyToMessage))
	return nil
}

// replyToReceivers threads a follow-up under every copy of the sender's own
// message. A follow-up in an autoshare thread opens a child subtopic.
func (e *Engine) replyToReceivers(ctx context.Context, ev *Event, content platform.Content, copies []models.Transmission) error {
	msg := ev.Message
	mode := models.ModeBroadcast
	if len(copies) < 2 {
		mode = models.ModePrivateReply
	}

	childID, err := e.spawnSubtopic(ctx, ev, copies[0].SubtopicID)
	if err != nil {
		return err
	}

	deliveries := lo.Map(copies, func(c models.Transmission, _ int) delivery {
		replyTo := c.ReceiverMsgID
		id := c.ID
		subtopicID := c.SubtopicID
		if childID != nil {
			subtopicID = childID
		}
		return delivery{
			ReceiverChatID:        c.ReceiverChatID,
			ReplyToMsgID:          &replyTo,
			ReplyToTransmissionID: &id,
			TopicID:               c.TopicID,
			SubtopicID:            subtopicID,
			AllogroomingID:        c.AllogroomingID,
			Mode:                  mode,
			DisableNotification:   true,
			ClearReplyKeyboard:    true,
		}
	})
	_, delivered := e.transmitAll(ctx, ev, content, mode, deliveries)

	e.emit(ctx, models.RelayEvent{
		Type:         "reply",
		TopicID:      lo.FromPtr(copies[0].TopicID),
		Mode:         mode,
		Attempted:    len(deliveries),
		Delivered:    delivered,
		SenderChatID: msg.Chat.ID,
		SenderMsgID:  platform.MsgID(msg),
	})
	if delivered == 0 {
		return ErrNotTransmitted
	}
	return nil
}

// spawnSubtopic opens a non-autoshare child under parentID when the parent
// is an autoshare thread. It returns nil when no child is needed.
func (e *Engine) spawnSubtopic(ctx context.Context, ev *Event, parentID *string) (*string, error) {
	if parentID == nil {
		return nil, nil
	}
	parent, err := e.stores.Subtopics.GetSubtopic(ctx, *parentID)
	if err != nil {
		return nil, fmt.Errorf("load subtopic %s: %w", *parentID, err)
	}
	if !parent.Autoshare {
		return nil, nil
	}
	child := models.Subtopic{
		ID:               e.newID(),
		TopicID:          parent.TopicID,
		ParentSubtopicID: &parent.ID,
		SenderMsgID:      platform.MsgID(ev.Message),
		SenderChatID:     ev.Message.Chat.ID,
		SenderBotID:      e.platform.BotID(),
		SenderPayloadRef: ev.payloadRef,
	}
	if err := e.stores.Subtopics.CreateSubtopic(ctx, child); err != nil {
		return nil, fmt.Errorf("create child subtopic: %w", err)
	}
	return &child.ID, nil
}
