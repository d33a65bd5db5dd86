package relay

import "errors"

// Expected outcomes. Each one is reported to the user with a notice and is
// never logged as an internal failure.
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotTransmitted       = errors.New("message not transmitted")
	ErrEditFailed           = errors.New("edit failed at every receiver")
	ErrPartialEdit          = errors.New("edit failed at some receivers")
	ErrNotShareable         = errors.New("message cannot be shared")
)

func (e *Engine) noticeFor(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		return e.texts.TalkNotFound, true
	case errors.Is(err, ErrNotTransmitted):
		return e.texts.MessageNotTransmitted, true
	case errors.Is(err, ErrEditFailed):
		return e.texts.FailedToEditAtReceiver, true
	case errors.Is(err, ErrPartialEdit):
		return e.texts.PartiallyEditedAtReceiver, true
	case errors.Is(err, ErrNotShareable):
		return e.texts.NotShareable, true
	}
	return "", false
}
