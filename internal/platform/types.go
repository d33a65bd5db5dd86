package platform

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Inbound shapes are the Bot API types as decoded by tgbotapi.
type (
	Update        = tgbotapi.Update
	Message       = tgbotapi.Message
	Chat          = tgbotapi.Chat
	User          = tgbotapi.User
	CallbackQuery = tgbotapi.CallbackQuery
	MessageEntity = tgbotapi.MessageEntity
	PhotoSize     = tgbotapi.PhotoSize
	Location      = tgbotapi.Location
	Contact       = tgbotapi.Contact
	Keyboard      = tgbotapi.InlineKeyboardMarkup
)

// EffectiveMessage returns whichever message the update carries.
func EffectiveMessage(u Update) *Message {
	switch {
	case u.Message != nil:
		return u.Message
	case u.EditedMessage != nil:
		return u.EditedMessage
	case u.ChannelPost != nil:
		return u.ChannelPost
	case u.EditedChannelPost != nil:
		return u.EditedChannelPost
	case u.CallbackQuery != nil:
		return u.CallbackQuery.Message
	}
	return nil
}

// IsEdit reports whether the update is an edited message or post.
func IsEdit(u Update) bool {
	return u.EditedMessage != nil || u.EditedChannelPost != nil
}

// MsgID widens a Bot API message id to the int64 the stores keep.
func MsgID(m *Message) int64 {
	return int64(m.MessageID)
}

// DisplayTitle picks a human-readable name for the chat directory.
func DisplayTitle(c *Chat) string {
	switch {
	case c == nil:
		return ""
	case c.Title != "":
		return c.Title
	case c.UserName != "":
		return "@" + c.UserName
	}
	return c.FirstName
}

// NewKeyboard builds a single-row inline keyboard from text/callback pairs.
func NewKeyboard(buttons ...[2]string) *Keyboard {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b[0], b[1]))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(row)
	return &kb
}

// SendOptions tune one outbound message.
type SendOptions struct {
	ReplyToMsgID        *int64
	Keyboard            *Keyboard
	ForceReply          bool
	DisableNotification bool
	AllowWithoutReply   bool
}
