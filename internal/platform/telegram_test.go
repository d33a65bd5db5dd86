package platform

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string
	Params map[string]string
}

// fakeBotAPI answers every method with the result registered for it.
type fakeBotAPI struct {
	mu      sync.Mutex
	calls   []recordedCall
	results map[string]string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	_ = r.ParseForm()
	params := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: method, Params: params})
	result, ok := f.results[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: message to edit not found"}`)
		return
	}
	_, _ = io.WriteString(w, `{"ok":true,"result":`+result+`}`)
}

func (f *fakeBotAPI) last() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestClient(t *testing.T, results map[string]string) (*Telegram, *fakeBotAPI) {
	t.Helper()
	if _, ok := results["getMe"]; !ok {
		results["getMe"] = `{"id":777,"is_bot":true,"first_name":"Swipy"}`
	}
	api := &fakeBotAPI{results: results}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	client, err := NewTelegram(srv.URL, "123:abc", 0, 5*time.Second)
	require.NoError(t, err)
	return client, api
}

const sentText = `{"message_id":55,"date":1,"chat":{"id":42,"type":"private"},"text":"hi"}`

func TestNewTelegramResolvesBotID(t *testing.T) {
	client, api := newTestClient(t, map[string]string{})

	assert.Equal(t, int64(777), client.BotID())
	assert.Equal(t, "getMe", api.last().Method)
}

func TestNewTelegramConfiguredBotIDWins(t *testing.T) {
	srv := httptest.NewServer(&fakeBotAPI{results: map[string]string{"getMe": `{"id":777}`}})
	defer srv.Close()

	client, err := NewTelegram(srv.URL, "123:abc", 900, time.Second)

	require.NoError(t, err)
	assert.Equal(t, int64(900), client.BotID())
}

func TestNewTelegramFailsWithoutIdentity(t *testing.T) {
	srv := httptest.NewServer(&fakeBotAPI{results: map[string]string{}})
	defer srv.Close()

	_, err := NewTelegram(srv.URL, "123:abc", 0, time.Second)

	require.Error(t, err)
}

func TestSendTextWithKeyboardAndReply(t *testing.T) {
	client, api := newTestClient(t, map[string]string{"sendMessage": sentText})
	replyTo := int64(9)

	msg, err := client.Send(context.Background(), 42, Content{Kind: KindText, Text: "hi"}, SendOptions{
		ReplyToMsgID:        &replyTo,
		AllowWithoutReply:   true,
		DisableNotification: true,
		Keyboard:            NewKeyboard([2]string{"Reply", "reply"}),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(55), MsgID(msg))
	assert.Equal(t, int64(42), msg.Chat.ID)

	call := api.last()
	assert.Equal(t, "sendMessage", call.Method)
	assert.Equal(t, "42", call.Params["chat_id"])
	assert.Equal(t, "hi", call.Params["text"])
	assert.Equal(t, "9", call.Params["reply_to_message_id"])
	assert.Equal(t, "true", call.Params["allow_sending_without_reply"])
	assert.Equal(t, "true", call.Params["disable_notification"])
	assert.JSONEq(t, `{"inline_keyboard":[[{"text":"Reply","callback_data":"reply"}]]}`, call.Params["reply_markup"])
}

func TestSendForceReply(t *testing.T) {
	client, api := newTestClient(t, map[string]string{"sendMessage": sentText})

	_, err := client.Send(context.Background(), 42, Content{Kind: KindText, Text: "hi"}, SendOptions{ForceReply: true})

	require.NoError(t, err)
	assert.JSONEq(t, `{"force_reply":true}`, api.last().Params["reply_markup"])
}

func TestSendPhotoWithCaption(t *testing.T) {
	client, api := newTestClient(t, map[string]string{"sendPhoto": sentText})

	_, err := client.Send(context.Background(), 42, Content{Kind: KindPhoto, FileID: "file-1", Text: "look"}, SendOptions{})

	require.NoError(t, err)
	call := api.last()
	assert.Equal(t, "sendPhoto", call.Method)
	assert.Equal(t, "file-1", call.Params["photo"])
	assert.Equal(t, "look", call.Params["caption"])
	assert.NotContains(t, call.Params, "reply_to_message_id")
}

func TestSendLocationAndContact(t *testing.T) {
	client, api := newTestClient(t, map[string]string{"sendLocation": sentText, "sendContact": sentText})
	ctx := context.Background()

	_, err := client.Send(ctx, 42, Content{Kind: KindLocation, Location: &Location{Latitude: 50.45, Longitude: 30.52}}, SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "sendLocation", api.last().Method)
	assert.Equal(t, "50.450000", api.last().Params["latitude"])

	_, err = client.Send(ctx, 42, Content{Kind: KindContact, Contact: &Contact{PhoneNumber: "+380", FirstName: "Ann"}}, SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "sendContact", api.last().Method)
	assert.Equal(t, "+380", api.last().Params["phone_number"])
}

func TestSendUnsupportedContentSkipsCall(t *testing.T) {
	client, api := newTestClient(t, map[string]string{})

	msg, err := client.Send(context.Background(), 42, Content{}, SendOptions{})

	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Equal(t, "getMe", api.last().Method)
}

func TestEditWrapsBotAPIError(t *testing.T) {
	client, api := newTestClient(t, map[string]string{})

	_, err := client.Edit(context.Background(), 42, 55, Content{Kind: KindText, Text: "x"}, nil)

	var apiErr *tgbotapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "editMessageText", api.last().Method)
}

func TestEditCaptionKeepsMedia(t *testing.T) {
	client, api := newTestClient(t, map[string]string{"editMessageCaption": sentText})

	_, err := client.Edit(context.Background(), 42, 55, Content{Kind: KindVideo, FileID: "v", Text: "new caption"}, nil)

	require.NoError(t, err)
	call := api.last()
	assert.Equal(t, "editMessageCaption", call.Method)
	assert.Equal(t, "new caption", call.Params["caption"])
	assert.NotContains(t, call.Params, "video")
}

func TestEditUnsupportedContentSkipsCall(t *testing.T) {
	client, api := newTestClient(t, map[string]string{})

	msg, err := client.Edit(context.Background(), 42, 55, Content{Kind: KindSticker, FileID: "st"}, nil)

	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Equal(t, "getMe", api.last().Method)
}

func TestClearDeleteAndAnswer(t *testing.T) {
	client, api := newTestClient(t, map[string]string{
		"editMessageReplyMarkup": sentText,
		"deleteMessage":          `true`,
		"answerCallbackQuery":    `true`,
	})
	ctx := context.Background()

	require.NoError(t, client.ClearKeyboard(ctx, 42, 55))
	assert.JSONEq(t, `{"inline_keyboard":[]}`, api.last().Params["reply_markup"])
	require.NoError(t, client.Delete(ctx, 42, 55))
	assert.Equal(t, "deleteMessage", api.last().Method)
	assert.Equal(t, "55", api.last().Params["message_id"])
	require.NoError(t, client.AnswerCallback(ctx, "cb-1"))
	assert.Equal(t, "cb-1", api.last().Params["callback_query_id"])
}
