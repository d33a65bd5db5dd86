package relay

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"relay-service/internal/archive"
	"relay-service/internal/models"
	"relay-service/internal/observability"
	"relay-service/internal/platform"
	"relay-service/internal/repositories"
)

var tracer = otel.Tracer("relay-service/relay")

// Operation names one engine entry point in logs, metrics and spans.
type Operation string

const (
	OpAuthorize  Operation = "authorize"
	OpCommand    Operation = "command"
	OpBroadcast  Operation = "broadcast"
	OpReply      Operation = "reply"
	OpEdit       Operation = "edit"
	OpForceReply Operation = "force_reply"
	OpShare      Operation = "share"
	OpIgnore     Operation = "ignore"
)

// EventSink receives relay events. *telemetry.EventEmitter implements it.
type EventSink interface {
	Emit(ctx context.Context, event models.RelayEvent)
}

// Stores groups the persistence the engine needs.
type Stores struct {
	Transmissions repositories.TransmissionRepository
	Topics        repositories.TopicRepository
	Subtopics     repositories.SubtopicRepository
	Allogroomings repositories.AllogroomingRepository
	Chats         repositories.ChatRepository
}

type Options struct {
	SilentBroadcasts   bool
	FanoutWorkers      int
	RateLimitPerSecond float64
	RateLimitBurst     int
	Language           string
}

// Engine relays messages between chats and keeps track of every copy it
// makes so replies and edits can be routed back.
type Engine struct {
	stores           Stores
	platform         platform.Client
	archive          archive.Archiver
	events           EventSink
	texts            Texts
	fanout           *fanout
	silentBroadcasts bool
	newID            func() string
}

func New(stores Stores, client platform.Client, archiver archive.Archiver, events EventSink, opts Options) *Engine {
	if archiver == nil {
		archiver = archive.Noop{}
	}
	return &Engine{
		stores:           stores,
		platform:         client,
		archive:          archiver,
		events:           events,
		texts:            TextsFor(opts.Language),
		fanout:           newFanout(opts.FanoutWorkers, opts.RateLimitPerSecond, opts.RateLimitBurst),
		silentBroadcasts: opts.SilentBroadcasts,
		newID:            uuid.NewString,
	}
}

// Event is one inbound update together with the archive location of its payload.
type Event struct {
	Update     platform.Update
	Message    *platform.Message
	prefix     string
	payloadRef string
}

// Outcome is what HandleUpdate did with an update.
type Outcome struct {
	Operation Operation
	Success   bool
}

// NewEvent archives the raw update and wraps it for the engine operations.
func (e *Engine) NewEvent(ctx context.Context, upd platform.Update) *Event {
	ev := &Event{
		Update:  upd,
		Message: platform.EffectiveMessage(upd),
		prefix:  archive.UpdatePrefix(int64(upd.UpdateID)),
	}
	ev.payloadRef = e.put(ctx, archive.UpdateKey(ev.prefix), upd)
	return ev
}

// HandleUpdate classifies an update and runs the matching operation. It never
// returns an error: failures are logged and reported to the user instead.
// Cancellation of ctx is ignored so a dropped caller cannot cut a fan-out
// short; platform calls are bounded by the client timeout.
func (e *Engine) HandleUpdate(ctx context.Context, upd platform.Update) Outcome {
	ctx = context.WithoutCancel(ctx)
	msg := platform.EffectiveMessage(upd)
	if msg == nil || msg.Chat == nil {
		log.Debug().Int("update_id", upd.UpdateID).Msg("Update without a message ignored.")
		return Outcome{Operation: OpIgnore}
	}

	ev := e.NewEvent(ctx, upd)
	if !e.authorize(ctx, ev) {
		return Outcome{Operation: OpAuthorize}
	}

	switch {
	case upd.CallbackQuery != nil:
		switch upd.CallbackQuery.Data {
		case CallbackReply:
			return Outcome{Operation: OpForceReply, Success: e.ForceReply(ctx, ev)}
		case CallbackShare:
			return Outcome{Operation: OpShare, Success: e.Share(ctx, ev)}
		}
		log.Debug().Str("data", upd.CallbackQuery.Data).Msg("Unknown callback ignored.")
		return Outcome{Operation: OpIgnore}
	case platform.IsEdit(upd):
		return Outcome{Operation: OpEdit, Success: e.Edit(ctx, ev)}
	}

	if cmd, ok := commandOf(msg); ok {
		return Outcome{Operation: OpCommand, Success: e.Command(ctx, ev, cmd)}
	}
	if msg.ReplyToMessage != nil {
		return Outcome{Operation: OpReply, Success: e.Reply(ctx, ev)}
	}
	return Outcome{Operation: OpBroadcast, Success: e.Broadcast(ctx, ev)}
}

// authorize records the chat in the directory and reports whether it may use the relay.
func (e *Engine) authorize(ctx context.Context, ev *Event) bool {
	chat := ev.Message.Chat
	ok := failSafely(ctx, string(OpAuthorize), false, func() (bool, error) {
		entry, err := e.stores.Chats.Touch(ctx, models.Chat{
			ChatID: chat.ID,
			BotID:  e.platform.BotID(),
			Title:  platform.DisplayTitle(chat),
		})
		if err != nil {
			return false, err
		}
		return entry.IsAuthorized, nil
	})
	if !ok {
		log.Info().Int64("chat_id", chat.ID).Msg("Update from unauthorized chat dropped.")
		observability.IncOperation(string(OpAuthorize), "denied")
	}
	return ok
}

// Command answers /start, /help and /about.
func (e *Engine) Command(ctx context.Context, ev *Event, cmd string) bool {
	return e.run(ctx, OpCommand, ev, func(ctx context.Context, ev *Event) error {
		text := e.texts.Help
		if cmd == CommandAbout {
			text = e.texts.About
		}
		e.notify(ctx, ev.Message.Chat.ID, text, nil)
		return nil
	})
}

func commandOf(msg *platform.Message) (string, bool) {
	if !strings.HasPrefix(msg.Text, "/") {
		return "", false
	}
	name := strings.Fields(msg.Text)[0][1:]
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	switch name {
	case CommandStart, CommandHelp, CommandAbout:
		return name, true
	}
	return "", false
}

// run wraps an operation with a span, metrics and the failure-safe guard.
// Expected failures become a notice to the user.
func (e *Engine) run(ctx context.Context, op Operation, ev *Event, fn func(context.Context, *Event) error) bool {
	ctx, span := tracer.Start(ctx, "relay."+string(op), trace.WithAttributes(
		attribute.Int("relay.update_id", ev.Update.UpdateID),
		attribute.Int64("relay.chat_id", ev.Message.Chat.ID),
	))
	defer span.End()

	ok := failSafely(ctx, string(op), false, func() (bool, error) {
		err := fn(ctx, ev)
		if err == nil {
			return true, nil
		}
		notice, expected := e.noticeFor(err)
		if !expected {
			return false, err
		}
		log.Info().Err(err).Str("operation", string(op)).Int64("chat_id", ev.Message.Chat.ID).Msg("Relay operation not completed.")
		replyTo := platform.MsgID(ev.Message)
		e.notify(ctx, ev.Message.Chat.ID, notice, &replyTo)
		return false, nil
	})

	outcome := "success"
	if !ok {
		outcome = "failure"
		span.SetStatus(codes.Error, "operation failed")
	}
	observability.IncOperation(string(op), outcome)
	return ok
}

// notify sends a service text to a chat. Failures are only logged.
func (e *Engine) notify(ctx context.Context, chatID int64, text string, replyTo *int64) {
	_, err := e.platform.Send(ctx, chatID, platform.Content{Kind: platform.KindText, Text: text}, platform.SendOptions{
		ReplyToMsgID:        replyTo,
		DisableNotification: true,
		AllowWithoutReply:   true,
	})
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to notify chat.")
	}
}

func (e *Engine) clearKeyboard(ctx context.Context, chatID, msgID int64) {
	if err := e.platform.ClearKeyboard(ctx, chatID, msgID); err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Int64("msg_id", msgID).Msg("Keyboard not cleared.")
	}
}

func (e *Engine) answerCallback(ctx context.Context, ev *Event) {
	if ev.Update.CallbackQuery == nil {
		return
	}
	if err := e.platform.AnswerCallback(ctx, ev.Update.CallbackQuery.ID); err != nil {
		log.Debug().Err(err).Msg("Callback not answered.")
	}
}

// put archives a payload and returns its reference. An archive failure never
// blocks relaying.
func (e *Engine) put(ctx context.Context, key string, payload any) string {
	ref, err := e.archive.Put(ctx, key, payload)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to archive payload.")
		return ""
	}
	return ref
}

func (e *Engine) emit(ctx context.Context, event models.RelayEvent) {
	if e.events == nil {
		return
	}
	e.events.Emit(ctx, event)
}
