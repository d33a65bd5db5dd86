package relay

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"relay-service/internal/mocks"
	"relay-service/internal/models"
	"relay-service/internal/platform"
)

const (
	testBot = int64(777)
	alice   = int64(1)
	bob     = int64(2)
	carol   = int64(3)
	dave    = int64(4)
)

type recordedEvents struct {
	mu     sync.Mutex
	events []models.RelayEvent
}

func (r *recordedEvents) Emit(_ context.Context, event models.RelayEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type harness struct {
	engine   *Engine
	store    *mocks.MemoryStore
	platform *mocks.FakePlatform
	events   *recordedEvents
	updates  int
}

func newHarness(t *testing.T, authorized ...int64) *harness {
	t.Helper()
	store := mocks.NewMemoryStore()
	for _, chatID := range authorized {
		store.AddChat(chatID, testBot, true)
	}
	p := mocks.NewFakePlatform(testBot)
	events := &recordedEvents{}
	engine := New(Stores{
		Transmissions: store,
		Topics:        store,
		Subtopics:     store,
		Allogroomings: store,
		Chats:         store,
	}, p, nil, events, Options{
		FanoutWorkers:      2,
		RateLimitPerSecond: 10000,
		RateLimitBurst:     100,
		Language:           "en",
	})
	return &harness{engine: engine, store: store, platform: p, events: events}
}

func (h *harness) nextUpdateID() int {
	h.updates++
	return h.updates
}

func (h *harness) send(chatID, msgID int64, text string) Outcome {
	return h.engine.HandleUpdate(context.Background(), platform.Update{
		UpdateID: h.nextUpdateID(),
		Message:  &platform.Message{MessageID: int(msgID), Chat: &platform.Chat{ID: chatID, Type: "private"}, Text: text},
	})
}

func (h *harness) reply(chatID, msgID int64, text string, to int64) Outcome {
	return h.engine.HandleUpdate(context.Background(), platform.Update{
		UpdateID: h.nextUpdateID(),
		Message: &platform.Message{
			MessageID:      int(msgID),
			Chat:           &platform.Chat{ID: chatID, Type: "private"},
			Text:           text,
			ReplyToMessage: &platform.Message{MessageID: int(to), Chat: &platform.Chat{ID: chatID}},
		},
	})
}

func (h *harness) edit(chatID, msgID int64, text string) Outcome {
	return h.engine.HandleUpdate(context.Background(), platform.Update{
		UpdateID:      h.nextUpdateID(),
		EditedMessage: &platform.Message{MessageID: int(msgID), Chat: &platform.Chat{ID: chatID, Type: "private"}, Text: text},
	})
}

func (h *harness) tap(data string, target mocks.SentMessage, threadUnder *int64) Outcome {
	msg := &platform.Message{MessageID: int(target.MsgID), Chat: &platform.Chat{ID: target.ChatID}, Text: target.Content.Text}
	if threadUnder != nil {
		msg.ReplyToMessage = &platform.Message{MessageID: int(*threadUnder), Chat: &platform.Chat{ID: target.ChatID}}
	}
	return h.engine.HandleUpdate(context.Background(), platform.Update{
		UpdateID:      h.nextUpdateID(),
		CallbackQuery: &platform.CallbackQuery{ID: "cb", Data: data, Message: msg},
	})
}

// relayed returns the copies delivered to chatID, skipping service notices.
func (h *harness) relayed(chatID int64) []mocks.SentMessage {
	var out []mocks.SentMessage
	for _, m := range h.platform.SentTo(chatID) {
		if m.Opts.Keyboard != nil || m.Opts.ForceReply {
			out = append(out, m)
		}
	}
	return out
}

// notices returns the service texts sent to chatID.
func (h *harness) notices(chatID int64) []string {
	var out []string
	for _, m := range h.platform.SentTo(chatID) {
		if m.Opts.Keyboard == nil && !m.Opts.ForceReply {
			out = append(out, m.Content.Text)
		}
	}
	return out
}

func TestHandleUpdateDropsUnauthorizedChat(t *testing.T) {
	h := newHarness(t, alice, bob)

	out := h.send(9, 10, "hello")

	assert.Equal(t, Outcome{Operation: OpAuthorize}, out)
	assert.Empty(t, h.platform.Sent())
	chat, err := h.store.GetChat(context.Background(), 9, testBot)
	require.NoError(t, err)
	assert.False(t, chat.IsAuthorized)
}

func TestHandleUpdateIgnoresUpdateWithoutMessage(t *testing.T) {
	h := newHarness(t, alice)

	out := h.engine.HandleUpdate(context.Background(), platform.Update{UpdateID: 1})

	assert.Equal(t, OpIgnore, out.Operation)
	assert.Empty(t, h.platform.Sent())
}

func TestHandleUpdateIgnoresUnknownCallback(t *testing.T) {
	h := newHarness(t, alice)

	out := h.tap("vote", mocks.SentMessage{ChatID: alice, MsgID: 5}, nil)

	assert.Equal(t, OpIgnore, out.Operation)
}

func TestCommandsAnswerWithHelpAndAbout(t *testing.T) {
	h := newHarness(t, alice, bob)
	texts := TextsFor("en")

	assert.Equal(t, Outcome{Operation: OpCommand, Success: true}, h.send(alice, 10, "/start"))
	assert.Equal(t, Outcome{Operation: OpCommand, Success: true}, h.send(alice, 11, "/about@swipybot"))

	assert.Equal(t, []string{texts.Help, texts.About}, h.notices(alice))
	assert.Empty(t, h.platform.SentTo(bob))
}

func TestCommandOf(t *testing.T) {
	cases := map[string]struct {
		cmd string
		ok  bool
	}{
		"/help":           {CommandHelp, true},
		"/start payload":  {CommandStart, true},
		"/about@some_bot": {CommandAbout, true},
		"/unknown":        {"", false},
		"hello /help":     {"", false},
		"":                {"", false},
	}
	for text, want := range cases {
		cmd, ok := commandOf(&platform.Message{Text: text})
		assert.Equal(t, want.cmd, cmd, text)
		assert.Equal(t, want.ok, ok, text)
	}
}

func TestTextsForFallsBackToUkrainian(t *testing.T) {
	assert.Equal(t, "Відповісти", TextsFor("de").Reply)
	assert.Equal(t, "Reply", TextsFor("en").Reply)
}

func TestKeyboardByMode(t *testing.T) {
	texts := TextsFor("en")

	private := texts.keyboard(models.ModePrivateReply)
	require.Len(t, private.InlineKeyboard, 1)
	require.Len(t, private.InlineKeyboard[0], 2)
	assert.Equal(t, "❤️Reply", private.InlineKeyboard[0][0].Text)
	assert.Equal(t, CallbackShare, *private.InlineKeyboard[0][1].CallbackData)

	for _, mode := range []models.TransmissionMode{models.ModeBroadcast, models.ModeShared} {
		kb := texts.keyboard(mode)
		require.Len(t, kb.InlineKeyboard[0], 1)
		assert.Equal(t, "🖤Reply", kb.InlineKeyboard[0][0].Text)
		assert.Equal(t, CallbackReply, *kb.InlineKeyboard[0][0].CallbackData)
	}
}

func mockCopy(chatID, msgID int64) mocks.SentMessage {
	return mocks.SentMessage{ChatID: chatID, MsgID: msgID, Content: platform.Content{Kind: platform.KindText, Text: "stale"}}
}

func TestStoreFailureIsContained(t *testing.T) {
	store := mocks.NewMemoryStore()
	store.AddChat(alice, testBot, true)
	transmissions := new(mocks.TransmissionRepositoryMock)
	transmissions.On("FindAllBySenderCopy", mock.Anything, int64(10), alice, testBot).
		Return(nil, errors.New("connection reset"))
	p := mocks.NewFakePlatform(testBot)
	engine := New(Stores{
		Transmissions: transmissions,
		Topics:        store,
		Subtopics:     store,
		Allogroomings: store,
		Chats:         store,
	}, p, nil, nil, Options{Language: "en"})

	var out Outcome
	assert.NotPanics(t, func() {
		out = engine.HandleUpdate(context.Background(), platform.Update{
			UpdateID:      1,
			EditedMessage: &platform.Message{MessageID: 10, Chat: &platform.Chat{ID: alice}, Text: "x"},
		})
	})

	assert.Equal(t, Outcome{Operation: OpEdit}, out)
	assert.Empty(t, p.Sent())
	transmissions.AssertExpectations(t)
}

func TestAuthorizationFailureDropsUpdate(t *testing.T) {
	chats := new(mocks.ChatRepositoryMock)
	chats.On("Touch", mock.Anything, mock.MatchedBy(func(c models.Chat) bool {
		return c.ChatID == alice && c.BotID == testBot && c.Title == "Alice"
	})).Return(nil, errors.New("db down"))
	p := mocks.NewFakePlatform(testBot)
	engine := New(Stores{Chats: chats}, p, nil, nil, Options{})

	out := engine.HandleUpdate(context.Background(), platform.Update{
		UpdateID: 1,
		Message:  &platform.Message{MessageID: 10, Chat: &platform.Chat{ID: alice, FirstName: "Alice"}, Text: "hi"},
	})

	assert.Equal(t, Outcome{Operation: OpAuthorize}, out)
	assert.Empty(t, p.Sent())
	chats.AssertExpectations(t)
}

func TestOperationsEmitEvents(t *testing.T) {
	h := newHarness(t, alice, bob)
	h.send(alice, 10, "hello")
	h.edit(alice, 10, "hello!")
	h.reply(bob, 20, "hi", h.relayed(bob)[0].MsgID)

	assert.Equal(t, []string{"broadcast", "edit", "reply"}, h.events.types())
	h.events.mu.Lock()
	defer h.events.mu.Unlock()
	assert.Equal(t, 1, h.events.events[0].Attempted)
	assert.Equal(t, 1, h.events.events[0].Delivered)
	require.NotNil(t, h.events.events[2].Transmission)
	assert.Equal(t, models.ModePrivateReply, h.events.events[2].Mode)
}

func TestCommandSurvivesNotifyFailure(t *testing.T) {
	store := mocks.NewMemoryStore()
	store.AddChat(alice, testBot, true)
	p := new(mocks.PlatformMock)
	p.On("BotID").Return(testBot)
	p.On("Send", mock.Anything, alice, platform.Content{Kind: platform.KindText, Text: TextsFor("en").Help}, mock.Anything).
		Return(nil, errors.New("timeout")).Once()
	engine := New(Stores{Chats: store}, p, nil, nil, Options{Language: "en"})

	out := engine.HandleUpdate(context.Background(), platform.Update{
		UpdateID: 1,
		Message:  &platform.Message{MessageID: 10, Chat: &platform.Chat{ID: alice}, Text: "/help"},
	})

	assert.Equal(t, Outcome{Operation: OpCommand, Success: true}, out)
	p.AssertExpectations(t)
}

func TestBroadcastStopsWhenTopicCannotBeStored(t *testing.T) {
	store := mocks.NewMemoryStore()
	store.AddChat(alice, testBot, true)
	store.AddChat(bob, testBot, true)
	topics := new(mocks.TopicRepositoryMock)
	topics.On("CreateTopic", mock.Anything, mock.MatchedBy(func(topic models.Topic) bool {
		return topic.SenderChatID == alice && topic.SenderMsgID == 10
	})).Return(errors.New("disk full")).Once()
	p := mocks.NewFakePlatform(testBot)
	engine := New(Stores{Transmissions: store, Topics: topics, Subtopics: topics, Chats: store}, p, nil, nil, Options{})

	out := engine.HandleUpdate(context.Background(), platform.Update{
		UpdateID: 1,
		Message:  &platform.Message{MessageID: 10, Chat: &platform.Chat{ID: alice}, Text: "hello"},
	})

	assert.Equal(t, Outcome{Operation: OpBroadcast}, out)
	assert.Empty(t, p.Sent())
	topics.AssertExpectations(t)
	topics.AssertNotCalled(t, "CreateSubtopic", mock.Anything, mock.Anything)
}

func TestReplyStopsWhenAllogroomingLookupFails(t *testing.T) {
	h := newHarness(t, alice, bob)
	h.send(alice, 10, "hello")
	allogroomings := new(mocks.AllogroomingRepositoryMock)
	allogroomings.On("FindAllogrooming", mock.Anything, mock.Anything, bob, testBot, alice, testBot).
		Return(nil, errors.New("db down")).Once()
	h.engine.stores.Allogroomings = allogroomings

	out := h.reply(bob, 20, "hi", h.relayed(bob)[0].MsgID)

	assert.False(t, out.Success)
	assert.Empty(t, h.relayed(alice))
	assert.Empty(t, h.notices(bob))
	allogroomings.AssertExpectations(t)
}
