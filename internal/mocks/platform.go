package mocks

import (
	"context"
	"errors"
	"sync"

	"relay-service/internal/platform"
)

var ErrPlatformUnavailable = errors.New("platform unavailable")

// SentMessage is one message the fake platform accepted.
type SentMessage struct {
	ChatID  int64
	MsgID   int64
	Content platform.Content
	Opts    platform.SendOptions
}

// EditedMessage is one edit the fake platform accepted.
type EditedMessage struct {
	ChatID   int64
	MsgID    int64
	Content  platform.Content
	Keyboard *platform.Keyboard
}

// FakePlatform is an in-memory messaging platform. Message ids are allocated
// per chat, starting at 1000.
type FakePlatform struct {
	Bot int64

	mu        sync.Mutex
	nextID    map[int64]int64
	failSend  map[int64]bool
	failEdit  map[int64]bool
	panicSend map[int64]bool
	sent      []SentMessage
	edited    []EditedMessage
	deleted   [][2]int64
	cleared   [][2]int64
	answered  []string
}

func NewFakePlatform(botID int64) *FakePlatform {
	return &FakePlatform{
		Bot:       botID,
		nextID:    map[int64]int64{},
		failSend:  map[int64]bool{},
		failEdit:  map[int64]bool{},
		panicSend: map[int64]bool{},
	}
}

// FailSendTo makes every Send to chatID fail.
func (p *FakePlatform) FailSendTo(chatID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failSend[chatID] = true
}

// FailEditIn makes every Edit in chatID fail.
func (p *FakePlatform) FailEditIn(chatID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failEdit[chatID] = true
}

// PanicOnSendTo makes Send to chatID panic.
func (p *FakePlatform) PanicOnSendTo(chatID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panicSend[chatID] = true
}

func (p *FakePlatform) BotID() int64 {
	return p.Bot
}

func (p *FakePlatform) Send(_ context.Context, chatID int64, content platform.Content, opts platform.SendOptions) (*platform.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panicSend[chatID] {
		panic("send exploded")
	}
	if p.failSend[chatID] {
		return nil, ErrPlatformUnavailable
	}
	if content.Kind == platform.KindUnsupported {
		return nil, nil
	}
	id, ok := p.nextID[chatID]
	if !ok {
		id = 1000
	}
	p.nextID[chatID] = id + 1
	p.sent = append(p.sent, SentMessage{ChatID: chatID, MsgID: id, Content: content, Opts: opts})
	return &platform.Message{MessageID: int(id), Chat: &platform.Chat{ID: chatID, Type: "private"}, Text: content.Text}, nil
}

func (p *FakePlatform) Edit(_ context.Context, chatID, msgID int64, content platform.Content, keyboard *platform.Keyboard) (*platform.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failEdit[chatID] {
		return nil, ErrPlatformUnavailable
	}
	p.edited = append(p.edited, EditedMessage{ChatID: chatID, MsgID: msgID, Content: content, Keyboard: keyboard})
	return &platform.Message{MessageID: int(msgID), Chat: &platform.Chat{ID: chatID}, Text: content.Text}, nil
}

func (p *FakePlatform) ClearKeyboard(_ context.Context, chatID, msgID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared = append(p.cleared, [2]int64{chatID, msgID})
	return nil
}

func (p *FakePlatform) Delete(_ context.Context, chatID, msgID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, [2]int64{chatID, msgID})
	return nil
}

func (p *FakePlatform) AnswerCallback(_ context.Context, callbackID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answered = append(p.answered, callbackID)
	return nil
}

// SentTo returns the messages delivered to chatID in order.
func (p *FakePlatform) SentTo(chatID int64) []SentMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []SentMessage
	for _, m := range p.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (p *FakePlatform) Sent() []SentMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SentMessage(nil), p.sent...)
}

func (p *FakePlatform) Edited() []EditedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]EditedMessage(nil), p.edited...)
}

func (p *FakePlatform) Deleted() [][2]int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][2]int64(nil), p.deleted...)
}

func (p *FakePlatform) Cleared() [][2]int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][2]int64(nil), p.cleared...)
}

func (p *FakePlatform) Answered() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.answered...)
}
