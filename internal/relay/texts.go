package relay

import (
	"relay-service/internal/models"
	"relay-service/internal/platform"
)

const (
	CallbackReply = "reply"
	CallbackShare = "share"

	CommandStart = "start"
	CommandHelp  = "help"
	CommandAbout = "about"
)

// Texts holds every user-visible string of one language.
type Texts struct {
	Help                      string
	About                     string
	NewTopicStarted           string
	TalkNotFound              string
	MessageNotTransmitted     string
	FailedToEditAtReceiver    string
	PartiallyEditedAtReceiver string
	NotShareable              string
	Shared                    string

	RedHeart   string
	BlackHeart string
	Reply      string
	Share      string
}

var texts = map[string]Texts{
	"en": {
		Help: "👋 Hi, I am Swipy🙃\n\n" +
			"Send me a message to start a topic for an anonymous conversation with the rest of the community.\n\n" +
			"Text, voice, video, stickers, photos and more are supported.\n\n" +
			"Or just stay around and reply to the topics that arrive.\n\n" +
			"Black heart🖤 - other participants got this message too (a new topic).\n\n" +
			"Red heart❤️ - somebody replied and only you can see it.\n\n" +
			"/help - show this text\n" +
			"/about - about the bot",
		About:                     "https://toporok.medium.com/як-swipy-працює-зараз-404d70a64cfb",
		NewTopicStarted:           "You started a new topic - wait for replies ⏳\n/help",
		TalkNotFound:              "💔 Conversation not found\n/help",
		MessageNotTransmitted:     "Message not transmitted 😞\n/help",
		FailedToEditAtReceiver:    "Could not edit the message at the receiver 😞\n/help",
		PartiallyEditedAtReceiver: "The message was edited only for some of the receivers 😞\n/help",
		NotShareable:              "Only private replies can be shared\n/help",
		Shared:                    "You shared the reply with the community 📣",
		RedHeart:                  "❤️",
		BlackHeart:                "🖤",
		Reply:                     "Reply",
		Share:                     "📣Share",
	},
	"uk": {
		Help: "👋 Привіт, мене звати Свайпі🙃\n\n" +
			"Відправ мені повідомлення, щоб створити тему для анонімного обговорення з іншими учасниками спільноти.\n\n" +
			"Повідомлення може бути текстове, звукове, відео, стікер, світлина тощо.\n\n" +
			"Або ж просто залишайся на зв`язку та відповідай на повідомлення-теми, що надходитимуть.\n\n" +
			"Чорне сердечко🖤 - повідомлення отримали не лише ви, але й інші учасники сервісу (створено нову тему).\n\n" +
			"Червоне сердечко❤️ - вам відповіли і цю відповідь бачите лише ви.\n\n" +
			"/help - показати цей текст\n" +
			"/about - про бота",
		About:                     "https://toporok.medium.com/як-swipy-працює-зараз-404d70a64cfb",
		NewTopicStarted:           "Ви створили нову тему для розмов - очікуйте відповідей ⏳\n/help",
		TalkNotFound:              "💔 Розмову не знайдено\n/help",
		MessageNotTransmitted:     "Повідомлення не відправлено 😞\n/help",
		FailedToEditAtReceiver:    "Не вдалося відредагувати у отримувача 😞\n/help",
		PartiallyEditedAtReceiver: "Вдалося відредагувати лише у частини отримувачів 😞\n/help",
		NotShareable:              "Поширити можна лише особисту відповідь\n/help",
		Shared:                    "Ви поширили відповідь у спільноті 📣",
		RedHeart:                  "❤️",
		BlackHeart:                "🖤",
		Reply:                     "Відповісти",
		Share:                     "📣Поширити",
	},
}

// TextsFor returns the texts of lang, falling back to Ukrainian.
func TextsFor(lang string) Texts {
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts["uk"]
}

// keyboard renders the affordance of a relayed copy: a red heart for private
// replies (which can also be shared), a black heart for everything else.
func (t Texts) keyboard(mode models.TransmissionMode) *platform.Keyboard {
	if mode == models.ModePrivateReply {
		return platform.NewKeyboard(
			[2]string{t.RedHeart + t.Reply, CallbackReply},
			[2]string{t.Share, CallbackShare},
		)
	}
	return platform.NewKeyboard([2]string{t.BlackHeart + t.Reply, CallbackReply})
}
