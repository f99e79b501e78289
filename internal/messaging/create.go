package messaging

import (
	"fmt"

	"whatsapp-recruiting-funnel/internal/payload"
)

// Creator builds payloads and rejects any result that fails its schema.
type Creator struct{ reg *payload.Registry }

func build[P payload.Payload](reg *payload.Registry, p P) (P, error) {
	if _, err := reg.ValidateDetailed(p); err != nil {
		var zero P
		return zero, fmt.Errorf("create %s: %w", p.PayloadType(), err)
	}
	return p, nil
}

func (c Creator) Text(text string) (payload.Text, error) {
	return build(c.reg, payload.Text{Text: text})
}

type ImageOption func(*payload.Image)

func ImageText(text string) ImageOption { return func(p *payload.Image) { p.Text = text } }

func ImageTranscription(t string) ImageOption {
	return func(p *payload.Image) { p.Transcription = t }
}

func (c Creator) Image(url string, opts ...ImageOption) (payload.Image, error) {
	p := payload.Image{Image: url}
	for _, o := range opts {
		o(&p)
	}
	return build(c.reg, p)
}

type AudioOption func(*payload.Audio)

func AudioSeconds(s float64) AudioOption { return func(p *payload.Audio) { p.Seconds = &s } }

func AudioMimeType(m string) AudioOption { return func(p *payload.Audio) { p.MimeType = m } }

func AudioTranscription(t string) AudioOption {
	return func(p *payload.Audio) { p.Transcription = t }
}

func (c Creator) Audio(url string, opts ...AudioOption) (payload.Audio, error) {
	p := payload.Audio{Audio: url}
	for _, o := range opts {
		o(&p)
	}
	return build(c.reg, p)
}

type ButtonsOption func(*payload.ButtonActions)

func ButtonsTitle(t string) ButtonsOption { return func(p *payload.ButtonActions) { p.Title = t } }

func ButtonsFooter(f string) ButtonsOption { return func(p *payload.ButtonActions) { p.Footer = f } }

func (c Creator) Buttons(text string, buttons []payload.Button, opts ...ButtonsOption) (payload.ButtonActions, error) {
	p := payload.ButtonActions{Text: text, Buttons: buttons}
	for _, o := range opts {
		o(&p)
	}
	return build(c.reg, p)
}

// Button helpers.

func ReplyButton(id, label string) payload.Button {
	return payload.Button{ID: id, Type: payload.ButtonReply, Label: label}
}

func URLButton(label, url string) payload.Button {
	return payload.Button{Type: payload.ButtonURL, URL: url, Label: label}
}

func CallButton(label, phone string) payload.Button {
	return payload.Button{Type: payload.ButtonCall, Phone: phone, Label: label}
}

type LinkOption func(*payload.Link)

func LinkImage(url string) LinkOption { return func(p *payload.Link) { p.Image = url } }

func LinkTitle(t string) LinkOption { return func(p *payload.Link) { p.Title = t } }

func LinkDescription(d string) LinkOption { return func(p *payload.Link) { p.LinkDescription = d } }

func (c Creator) Link(text, linkURL string, opts ...LinkOption) (payload.Link, error) {
	p := payload.Link{Text: text, LinkURL: linkURL}
	for _, o := range opts {
		o(&p)
	}
	return build(c.reg, p)
}

type DocumentOption func(*payload.Document)

func DocumentMimeType(m string) DocumentOption { return func(p *payload.Document) { p.MimeType = m } }

func DocumentFileName(n string) DocumentOption { return func(p *payload.Document) { p.FileName = n } }

func DocumentCaption(c string) DocumentOption { return func(p *payload.Document) { p.Caption = c } }

func (c Creator) Document(url, extension string, opts ...DocumentOption) (payload.Document, error) {
	p := payload.Document{DocumentURL: url, Extension: extension}
	for _, o := range opts {
		o(&p)
	}
	return build(c.reg, p)
}

func (c Creator) Carousel(text string, cards []payload.Card) (payload.Carousel, error) {
	return build(c.reg, payload.Carousel{Text: text, Cards: cards})
}
