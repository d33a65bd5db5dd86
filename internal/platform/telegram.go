package platform

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

func init() {
	_ = tgbotapi.SetLogger(botLogger{})
}

// botLogger routes tgbotapi's debug output into zerolog.
type botLogger struct{}

func (botLogger) Println(v ...interface{}) {
	log.Debug().Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (botLogger) Printf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}

// Telegram talks to the Bot API through tgbotapi. The library takes no
// context, so every call is bounded by the HTTP client timeout instead.
type Telegram struct {
	bot   *tgbotapi.BotAPI
	botID int64
}

// NewTelegram builds a client and resolves the bot identity with getMe. A
// non-zero botID overrides the resolved one.
func NewTelegram(apiURL, token string, botID int64, timeout time.Duration) (*Telegram, error) {
	endpoint := strings.TrimRight(apiURL, "/") + "/bot%s/%s"
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("resolve bot identity: %w", err)
	}
	if botID == 0 {
		botID = bot.Self.ID
	}
	return &Telegram{bot: bot, botID: botID}, nil
}

func (t *Telegram) BotID() int64 {
	return t.botID
}

func (t *Telegram) Send(_ context.Context, chatID int64, content Content, opts SendOptions) (*Message, error) {
	base := tgbotapi.BaseChat{ChatID: chatID, DisableNotification: opts.DisableNotification}
	if opts.ReplyToMsgID != nil {
		base.ReplyToMessageID = int(*opts.ReplyToMsgID)
		base.AllowSendingWithoutReply = opts.AllowWithoutReply
	}
	switch {
	case opts.ForceReply:
		base.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true}
	case opts.Keyboard != nil:
		base.ReplyMarkup = *opts.Keyboard
	}

	cfg := outbound(base, content)
	if cfg == nil {
		log.Debug().Int64("chat", chatID).Str("kind", string(content.Kind)).Msg("Skipping content the platform cannot deliver.")
		return nil, nil
	}

	sent, err := t.bot.Send(cfg)
	if err != nil {
		return nil, fmt.Errorf("telegram send %s: %w", content.Kind, err)
	}
	return &sent, nil
}

// outbound maps content onto the tgbotapi config that delivers it, or nil.
func outbound(base tgbotapi.BaseChat, c Content) tgbotapi.Chattable {
	file := tgbotapi.BaseFile{BaseChat: base, File: tgbotapi.FileID(c.FileID)}
	switch c.Kind {
	case KindText:
		return tgbotapi.MessageConfig{BaseChat: base, Text: c.Text, Entities: c.Entities}
	case KindPhoto:
		return tgbotapi.PhotoConfig{BaseFile: file, Caption: c.Text, CaptionEntities: c.Entities}
	case KindSticker:
		return tgbotapi.StickerConfig{BaseFile: file}
	case KindAnimation:
		return tgbotapi.AnimationConfig{BaseFile: file, Caption: c.Text, CaptionEntities: c.Entities}
	case KindVideo:
		return tgbotapi.VideoConfig{BaseFile: file, Caption: c.Text, CaptionEntities: c.Entities}
	case KindAudio:
		return tgbotapi.AudioConfig{BaseFile: file, Caption: c.Text, CaptionEntities: c.Entities}
	case KindVideoNote:
		return tgbotapi.VideoNoteConfig{BaseFile: file}
	case KindVoice:
		return tgbotapi.VoiceConfig{BaseFile: file, Caption: c.Text, CaptionEntities: c.Entities}
	case KindDocument:
		return tgbotapi.DocumentConfig{BaseFile: file, Caption: c.Text, CaptionEntities: c.Entities}
	case KindLocation:
		return tgbotapi.LocationConfig{BaseChat: base, Latitude: c.Location.Latitude, Longitude: c.Location.Longitude}
	case KindContact:
		return tgbotapi.ContactConfig{BaseChat: base, PhoneNumber: c.Contact.PhoneNumber, FirstName: c.Contact.FirstName, LastName: c.Contact.LastName}
	}
	return nil
}

func (t *Telegram) Edit(_ context.Context, chatID, msgID int64, content Content, keyboard *Keyboard) (*Message, error) {
	base := tgbotapi.BaseEdit{ChatID: chatID, MessageID: int(msgID), ReplyMarkup: keyboard}

	var cfg tgbotapi.Chattable
	switch {
	case content.Kind == KindText:
		cfg = tgbotapi.EditMessageTextConfig{BaseEdit: base, Text: content.Text, Entities: content.Entities}
	case content.Captioned():
		// only the caption can change; the media itself stays as sent
		cfg = tgbotapi.EditMessageCaptionConfig{BaseEdit: base, Caption: content.Text, CaptionEntities: content.Entities}
	default:
		return nil, nil
	}

	edited, err := t.bot.Send(cfg)
	if err != nil {
		return nil, fmt.Errorf("telegram edit %s: %w", content.Kind, err)
	}
	return &edited, nil
}

func (t *Telegram) ClearKeyboard(_ context.Context, chatID, msgID int64) error {
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	if _, err := t.bot.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, int(msgID), empty)); err != nil {
		return fmt.Errorf("telegram clear keyboard: %w", err)
	}
	return nil
}

func (t *Telegram) Delete(_ context.Context, chatID, msgID int64) error {
	if _, err := t.bot.Request(tgbotapi.NewDeleteMessage(chatID, int(msgID))); err != nil {
		return fmt.Errorf("telegram delete: %w", err)
	}
	return nil
}

func (t *Telegram) AnswerCallback(_ context.Context, callbackID string) error {
	if _, err := t.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("telegram answer callback: %w", err)
	}
	return nil
}
