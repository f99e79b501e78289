package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"whatsapp-recruiting-funnel/internal/payload"
)

// Render turns a payload into the Telegram messages that show it. Carousels
// become an intro message followed by one photo per card. prefix is put in
// front of the first text or caption.
func Render(chatID int64, p payload.Payload, prefix string) ([]tgbotapi.Chattable, error) {
	switch v := payload.Deref(p).(type) {
	case payload.Text:
		return one(tgbotapi.NewMessage(chatID, prefix+v.Text)), nil
	case payload.Image:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(v.Image))
		photo.Caption = prefix + v.Text
		return one(photo), nil
	case payload.Audio:
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FileURL(v.Audio))
		audio.Caption = prefix + v.Transcription
		return one(audio), nil
	case payload.ButtonActions:
		msg := tgbotapi.NewMessage(chatID, prefix+joinNonEmpty("\n\n", v.Title, v.Text, v.Footer))
		if kb, ok := keyboard(v.Buttons); ok {
			msg.ReplyMarkup = kb
		}
		return one(msg), nil
	case payload.Link:
		msg := tgbotapi.NewMessage(chatID, prefix+joinNonEmpty("\n", v.Text, v.Title, v.LinkDescription, v.LinkURL))
		return one(msg), nil
	case payload.Document:
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileURL(v.DocumentURL))
		doc.Caption = prefix + v.Caption
		return one(doc), nil
	case payload.Carousel:
		out := []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, prefix+v.Text)}
		for _, card := range v.Cards {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(card.Image.Image))
			photo.Caption = joinNonEmpty("\n", card.Image.Text, card.Text)
			if kb, ok := keyboard(card.Buttons); ok {
				photo.ReplyMarkup = kb
			}
			out = append(out, photo)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("telegram: cannot render %T", p)
	}
}

func one(c tgbotapi.Chattable) []tgbotapi.Chattable { return []tgbotapi.Chattable{c} }

// keyboard puts one button per row. Telegram has no dial button, so CALL
// buttons carry the phone number as callback data.
func keyboard(buttons []payload.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(buttons) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		var btn tgbotapi.InlineKeyboardButton
		switch b.Type {
		case payload.ButtonURL:
			btn = tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL)
		case payload.ButtonCall:
			btn = tgbotapi.NewInlineKeyboardButtonData(b.Label+" ("+b.Phone+")", clipData("call:"+b.Phone))
		default:
			data := b.ID
			if data == "" {
				data = b.Label
			}
			btn = tgbotapi.NewInlineKeyboardButtonData(b.Label, clipData(data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

// callback data is limited to 64 bytes
func clipData(s string) string {
	if len(s) <= 64 {
		return s
	}
	return s[:64]
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
