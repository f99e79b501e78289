// Package payload defines the closed set of chat message shapes, their strict
// wire schema and the per-type handlers used for typing simulation, text
// extraction and variable substitution.
package payload

import (
	"encoding/json"
	"strconv"
)

// Type is the wire discriminant stored in the "type" field.
type Type string

const (
	TypeText          Type = "text"
	TypeImage         Type = "image"
	TypeAudio         Type = "audio"
	TypeButtonActions Type = "button-actions"
	TypeLink          Type = "link"
	TypeDocument      Type = "document"
	TypeCarousel      Type = "carousel"
)

// AllTypes lists every payload variant. A registry is complete when it has a
// handler for each of them.
var AllTypes = []Type{
	TypeText,
	TypeImage,
	TypeAudio,
	TypeButtonActions,
	TypeLink,
	TypeDocument,
	TypeCarousel,
}

// Payload is implemented only by the variant types of this package.
type Payload interface {
	PayloadType() Type
	isPayload()
}

type ButtonType string

const (
	ButtonURL   ButtonType = "URL"
	ButtonCall  ButtonType = "CALL"
	ButtonReply ButtonType = "REPLY"
)

// Button requires URL when Type is URL and Phone when Type is CALL.
type Button struct {
	ID    string     `json:"id,omitempty"`
	Type  ButtonType `json:"type" validate:"oneof=URL CALL REPLY"`
	URL   string     `json:"url,omitempty" validate:"omitempty,url"`
	Phone string     `json:"phone,omitempty"`
	Label string     `json:"label"`
}

// ImageFields is the image shape without its discriminant, reused by carousel cards.
type ImageFields struct {
	Image         string `json:"image" validate:"url"`
	Text          string `json:"text,omitempty"`
	Transcription string `json:"transcription,omitempty"`
}

type Card struct {
	Image   ImageFields `json:"image"`
	Text    string      `json:"text,omitempty"`
	Buttons []Button    `json:"buttons,omitempty" validate:"omitempty,dive"`
}

type Text struct {
	Text string `json:"text"`
}

type Image struct {
	Image         string `json:"image" validate:"url"`
	Text          string `json:"text,omitempty"`
	Transcription string `json:"transcription,omitempty"`
}

type Audio struct {
	Audio         string   `json:"audio" validate:"url"`
	Seconds       *float64 `json:"seconds,omitempty" validate:"omitempty,gte=0"`
	MimeType      string   `json:"mimeType,omitempty"`
	Transcription string   `json:"transcription,omitempty"`
}

type ButtonActions struct {
	Text    string   `json:"text"`
	Title   string   `json:"title,omitempty"`
	Footer  string   `json:"footer,omitempty"`
	Buttons []Button `json:"buttons" validate:"min=1,dive"`
}

type Link struct {
	Text            string `json:"text"`
	Image           string `json:"image,omitempty" validate:"omitempty,url"`
	LinkURL         string `json:"linkUrl" validate:"url"`
	Title           string `json:"title,omitempty"`
	LinkDescription string `json:"linkDescription,omitempty"`
}

type Document struct {
	DocumentURL string `json:"documentUrl" validate:"url"`
	Extension   string `json:"extension" validate:"min=1"`
	MimeType    string `json:"mimeType,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	Caption     string `json:"caption,omitempty"`
}

type Carousel struct {
	Text  string `json:"text"`
	Cards []Card `json:"cards" validate:"min=1,dive"`
}

func (Text) PayloadType() Type          { return TypeText }
func (Image) PayloadType() Type         { return TypeImage }
func (Audio) PayloadType() Type         { return TypeAudio }
func (ButtonActions) PayloadType() Type { return TypeButtonActions }
func (Link) PayloadType() Type          { return TypeLink }
func (Document) PayloadType() Type      { return TypeDocument }
func (Carousel) PayloadType() Type      { return TypeCarousel }

func (Text) isPayload()          {}
func (Image) isPayload()         {}
func (Audio) isPayload()         {}
func (ButtonActions) isPayload() {}
func (Link) isPayload()          {}
func (Document) isPayload()      {}
func (Carousel) isPayload()      {}

// The variants marshal with their discriminant as the first key.

func (p Text) MarshalJSON() ([]byte, error) {
	type plain Text
	return withType(TypeText, plain(p))
}

func (p Image) MarshalJSON() ([]byte, error) {
	type plain Image
	return withType(TypeImage, plain(p))
}

func (p Audio) MarshalJSON() ([]byte, error) {
	type plain Audio
	return withType(TypeAudio, plain(p))
}

func (p ButtonActions) MarshalJSON() ([]byte, error) {
	type plain ButtonActions
	return withType(TypeButtonActions, plain(p))
}

func (p Link) MarshalJSON() ([]byte, error) {
	type plain Link
	return withType(TypeLink, plain(p))
}

func (p Document) MarshalJSON() ([]byte, error) {
	type plain Document
	return withType(TypeDocument, plain(p))
}

func (p Carousel) MarshalJSON() ([]byte, error) {
	type plain Carousel
	return withType(TypeCarousel, plain(p))
}

func withType(t Type, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head := `{"type":` + strconv.Quote(string(t))
	if len(body) <= 2 {
		return []byte(head + "}"), nil
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head...)
	out = append(out, ',')
	return append(out, body[1:]...), nil
}
