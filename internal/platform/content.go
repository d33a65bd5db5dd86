package platform

// ContentKind names the payload shapes the relay knows how to deliver.
type ContentKind string

const (
	KindUnsupported ContentKind = ""
	KindText        ContentKind = "text"
	KindPhoto       ContentKind = "photo"
	KindSticker     ContentKind = "sticker"
	KindAnimation   ContentKind = "animation"
	KindVideo       ContentKind = "video"
	KindAudio       ContentKind = "audio"
	KindVideoNote   ContentKind = "video_note"
	KindVoice       ContentKind = "voice"
	KindLocation    ContentKind = "location"
	KindContact     ContentKind = "contact"
	KindDocument    ContentKind = "document"
)

// Content is the deliverable part of a message, detached from its chat.
type Content struct {
	Kind     ContentKind
	Text     string
	Entities []MessageEntity
	FileID   string
	Location *Location
	Contact  *Contact
}

// Captioned reports whether Text is a media caption rather than a message body.
func (c Content) Captioned() bool {
	switch c.Kind {
	case KindPhoto, KindAnimation, KindVideo, KindAudio, KindVoice, KindDocument:
		return true
	}
	return false
}

// ContentOf extracts deliverable content in the same precedence Telegram
// clients use. Polls, games and the like come back as KindUnsupported.
func ContentOf(msg *Message) Content {
	if msg == nil {
		return Content{}
	}
	caption := Content{Text: msg.Caption, Entities: msg.CaptionEntities}
	switch {
	case msg.Text != "":
		return Content{Kind: KindText, Text: msg.Text, Entities: msg.Entities}
	case msg.Sticker != nil:
		return Content{Kind: KindSticker, FileID: msg.Sticker.FileID}
	case len(msg.Photo) > 0:
		caption.Kind = KindPhoto
		caption.FileID = biggestPhoto(msg.Photo).FileID
		return caption
	case msg.Animation != nil:
		caption.Kind = KindAnimation
		caption.FileID = msg.Animation.FileID
		return caption
	case msg.Video != nil:
		caption.Kind = KindVideo
		caption.FileID = msg.Video.FileID
		return caption
	case msg.Audio != nil:
		caption.Kind = KindAudio
		caption.FileID = msg.Audio.FileID
		return caption
	case msg.VideoNote != nil:
		return Content{Kind: KindVideoNote, FileID: msg.VideoNote.FileID}
	case msg.Voice != nil:
		caption.Kind = KindVoice
		caption.FileID = msg.Voice.FileID
		return caption
	case msg.Location != nil:
		return Content{Kind: KindLocation, Location: msg.Location}
	case msg.Contact != nil:
		return Content{Kind: KindContact, Contact: msg.Contact}
	case msg.Document != nil:
		caption.Kind = KindDocument
		caption.FileID = msg.Document.FileID
		return caption
	}
	return Content{}
}

func biggestPhoto(sizes []PhotoSize) PhotoSize {
	best := sizes[0]
	for _, p := range sizes[1:] {
		if p.FileSize > best.FileSize || (p.FileSize == best.FileSize && p.Width*p.Height > best.Width*best.Height) {
			best = p
		}
	}
	return best
}
