package platform

import "context"

// Client is the messaging platform as seen by the relay. Send and Edit return
// a nil message with a nil error when the content kind cannot be delivered.
type Client interface {
	BotID() int64
	Send(ctx context.Context, chatID int64, content Content, opts SendOptions) (*Message, error)
	Edit(ctx context.Context, chatID, msgID int64, content Content, keyboard *Keyboard) (*Message, error)
	ClearKeyboard(ctx context.Context, chatID, msgID int64) error
	Delete(ctx context.Context, chatID, msgID int64) error
	AnswerCallback(ctx context.Context, callbackID string) error
}
