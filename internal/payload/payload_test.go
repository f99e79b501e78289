package payload_test

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/payload"
)

func seconds(v float64) *float64 { return &v }

func validPayloads() []payload.Payload {
	return []payload.Payload{
		payload.Text{Text: "Olá, tudo bem?"},
		payload.Image{Image: "https://cdn.example.com/vaga.png", Text: "Nova vaga"},
		payload.Audio{Audio: "https://cdn.example.com/a.ogg", Seconds: seconds(2.5), MimeType: "audio/ogg"},
		payload.ButtonActions{
			Text:  "Quer se candidatar?",
			Title: "Atendente",
			Buttons: []payload.Button{
				{ID: "yes", Type: payload.ButtonReply, Label: "Sim"},
				{Type: payload.ButtonURL, URL: "https://example.com/vaga", Label: "Ver vaga"},
				{Type: payload.ButtonCall, Phone: "+5511999990000", Label: "Ligar"},
			},
		},
		payload.Link{Text: "Veja", LinkURL: "https://example.com", Title: "Vaga", LinkDescription: "Detalhes"},
		payload.Document{DocumentURL: "https://cdn.example.com/cv.pdf", Extension: "pdf", FileName: "cv.pdf"},
		payload.Carousel{
			Text: "Vagas perto de você",
			Cards: []payload.Card{
				{Image: payload.ImageFields{Image: "https://cdn.example.com/1.png", Text: "Caixa"}, Text: "Loja Centro"},
				{
					Image:   payload.ImageFields{Image: "https://cdn.example.com/2.png"},
					Buttons: []payload.Button{{Type: payload.ButtonReply, Label: "Quero"}},
				},
			},
		},
	}
}

func TestRegistry_Validate_RoundTrip(t *testing.T) {
	t.Parallel()
	reg := payload.NewDefaultRegistry()

	for _, p := range validPayloads() {
		p := p
		t.Run("should accept "+string(p.PayloadType()), func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			raw, err := json.Marshal(p)
			require.NoError(t, err)

			// --- Act ---
			fromWire := reg.Validate(raw)
			fromValue := reg.Validate(p)

			// --- Assert ---
			assert.Equal(t, p, fromWire)
			assert.Equal(t, p, fromValue)
		})
	}
}

func TestPayload_MarshalJSON_TypeFirst(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(payload.Text{Text: "oi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","text":"oi"}`, string(raw))
	assert.Equal(t, `{"type":"text",`, string(raw[:15]))
}

func TestRegistry_Validate_Strict(t *testing.T) {
	t.Parallel()
	reg := payload.NewDefaultRegistry()

	cases := map[string]string{
		"extra field":               `{"type":"text","text":"oi","extra":1}`,
		"missing required":          `{"type":"image","text":"sem imagem"}`,
		"wrong key case":            `{"type":"text","Text":"oi"}`,
		"null field":                `{"type":"image","image":"https://a.io/x.png","text":null}`,
		"wrong field type":          `{"type":"text","text":5}`,
		"unknown type":              `{"type":"sticker","sticker":"x"}`,
		"non string type":           `{"type":7,"text":"oi"}`,
		"missing type":              `{"text":"oi"}`,
		"not an object":             `["text"]`,
		"invalid json":              `{"type":`,
		"bad url":                   `{"type":"image","image":"not a url"}`,
		"empty buttons":             `{"type":"button-actions","text":"x","buttons":[]}`,
		"empty cards":               `{"type":"carousel","text":"x","cards":[]}`,
		"empty extension":           `{"type":"document","documentUrl":"https://a.io/x.pdf","extension":""}`,
		"negative seconds":          `{"type":"audio","audio":"https://a.io/x.ogg","seconds":-1}`,
		"unknown button type":       `{"type":"button-actions","text":"x","buttons":[{"type":"SHARE","label":"a"}]}`,
		"extra field inside card":   `{"type":"carousel","text":"x","cards":[{"image":{"image":"https://a.io/1.png","alt":"?"}}]}`,
		"extra field inside button": `{"type":"button-actions","text":"x","buttons":[{"type":"REPLY","label":"a","color":"red"}]}`,
	}
	for name, raw := range cases {
		raw := raw
		t.Run("should reject "+name, func(t *testing.T) {
			t.Parallel()
			assert.Nil(t, reg.Validate([]byte(raw)))

			_, err := reg.ValidateDetailed([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidPayload))
			assert.False(t, domain.IsRetryable(err))
		})
	}

	t.Run("should reject values that are not objects", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, reg.Validate(nil))
		assert.Nil(t, reg.Validate("text"))
		assert.Nil(t, reg.Validate(42))
	})

	t.Run("should reject nil variant pointers", func(t *testing.T) {
		t.Parallel()
		nils := []payload.Payload{
			(*payload.Text)(nil),
			(*payload.Image)(nil),
			(*payload.Audio)(nil),
			(*payload.ButtonActions)(nil),
			(*payload.Link)(nil),
			(*payload.Document)(nil),
			(*payload.Carousel)(nil),
		}
		for _, p := range nils {
			assert.NotPanics(t, func() { assert.Nil(t, reg.Validate(p)) })

			_, err := reg.ValidateDetailed(p)
			assert.ErrorIs(t, err, domain.ErrInvalidPayload)

			_, err = reg.CharacterCount(p)
			assert.ErrorIs(t, err, domain.ErrUnregisteredPayloadType)
		}
	})

	t.Run("should accept a decoded map", func(t *testing.T) {
		t.Parallel()
		got := reg.Validate(map[string]any{"type": "text", "text": "oi"})
		assert.Equal(t, payload.Text{Text: "oi"}, got)
	})
}

// requiredKeys lists, per type, the paths that valid payloads must carry.
var requiredKeys = map[payload.Type][]string{
	payload.TypeText:          {"text"},
	payload.TypeImage:         {"image"},
	payload.TypeAudio:         {"audio"},
	payload.TypeButtonActions: {"text", "buttons", "buttons.0.type", "buttons.0.label"},
	payload.TypeLink:          {"text", "linkUrl"},
	payload.TypeDocument:      {"documentUrl", "extension"},
	payload.TypeCarousel:      {"text", "cards", "cards.0.image", "cards.0.image.image"},
}

// without returns a copy of the wire form of p with the value at path removed.
func without(t *testing.T, p payload.Payload, path string) []byte {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var obj map[string]any
	require.NoError(t, json.Unmarshal(raw, &obj))

	parts := strings.Split(path, ".")
	var cur any = obj
	for _, part := range parts[:len(parts)-1] {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[part]
		case []any:
			i, err := strconv.Atoi(part)
			require.NoError(t, err)
			cur = node[i]
		}
	}
	m, ok := cur.(map[string]any)
	require.True(t, ok, "path %s does not end in an object", path)
	_, present := m[parts[len(parts)-1]]
	require.True(t, present, "path %s is absent", path)
	delete(m, parts[len(parts)-1])

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	return out
}

func TestRegistry_Validate_MissingRequired(t *testing.T) {
	t.Parallel()
	reg := payload.NewDefaultRegistry()

	for _, p := range validPayloads() {
		keys, ok := requiredKeys[p.PayloadType()]
		require.True(t, ok, "no required keys listed for %s", p.PayloadType())
		for _, key := range keys {
			p, key := p, key
			t.Run("should reject "+string(p.PayloadType())+" without "+key, func(t *testing.T) {
				t.Parallel()
				raw := without(t, p, key)

				_, err := reg.ValidateDetailed(raw)

				assert.ErrorIs(t, err, domain.ErrInvalidPayload)
				assert.Nil(t, reg.Validate(raw))
			})
		}
	}
}

func TestRegistry_Validate_ButtonRefinement(t *testing.T) {
	t.Parallel()
	reg := payload.NewDefaultRegistry()

	build := func(b payload.Button) payload.Payload {
		return payload.ButtonActions{Text: "x", Buttons: []payload.Button{b}}
	}

	t.Run("should reject URL button without url", func(t *testing.T) {
		t.Parallel()
		_, err := reg.ValidateDetailed(build(payload.Button{Type: payload.ButtonURL, Label: "a"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "url")
	})

	t.Run("should reject CALL button without phone", func(t *testing.T) {
		t.Parallel()
		_, err := reg.ValidateDetailed(build(payload.Button{Type: payload.ButtonCall, Label: "a"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "phone")
	})

	t.Run("should accept REPLY button without url or phone", func(t *testing.T) {
		t.Parallel()
		assert.NotNil(t, reg.Validate(build(payload.Button{Type: payload.ButtonReply, Label: "a"})))
	})

	t.Run("should apply the refinement inside carousel cards", func(t *testing.T) {
		t.Parallel()
		p := payload.Carousel{Text: "x", Cards: []payload.Card{{
			Image:   payload.ImageFields{Image: "https://a.io/1.png"},
			Buttons: []payload.Button{{Type: payload.ButtonCall, Label: "Ligar"}},
		}}}
		assert.Nil(t, reg.Validate(p))
	})
}

func TestRegistry_CharacterCount(t *testing.T) {
	t.Parallel()
	reg := payload.NewDefaultRegistry()

	tests := []struct {
		name string
		p    payload.Payload
		want int
	}{
		{"text counts runes", payload.Text{Text: "olá"}, 3},
		{"audio prefers transcription", payload.Audio{Audio: "https://a.io/a.ogg", Seconds: seconds(10), Transcription: "bom dia"}, 7},
		{"audio falls back to seconds", payload.Audio{Audio: "https://a.io/a.ogg", Seconds: seconds(2.5)}, 30},
		{"audio without hints", payload.Audio{Audio: "https://a.io/a.ogg"}, 0},
		{
			"buttons sum labels and texts",
			payload.ButtonActions{Text: "Escolha", Title: "Vaga", Buttons: []payload.Button{
				{Type: payload.ButtonReply, Label: "Sim"},
				{Type: payload.ButtonURL, URL: "https://example.com", Label: "Ligar"},
			}},
			19,
		},
		{"link skips urls", payload.Link{Text: "ab", LinkURL: "https://example.com", Title: "cd", LinkDescription: "e"}, 5},
		{
			"carousel sums cards",
			payload.Carousel{Text: "ab", Cards: []payload.Card{
				{Image: payload.ImageFields{Image: "https://a.io/1.png", Text: "c"}, Text: "de", Buttons: []payload.Button{{Type: payload.ButtonReply, Label: "f"}}},
			}},
			6,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run("should count "+tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := reg.CharacterCount(tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("should use serialized length for image", func(t *testing.T) {
		t.Parallel()
		p := payload.Image{Image: "https://a.io/1.png"}
		raw, _ := json.Marshal(p)

		got, err := reg.CharacterCount(p)
		require.NoError(t, err)
		assert.Equal(t, len(raw), got)
	})
}

func TestRegistry_PrimaryTextFields(t *testing.T) {
	t.Parallel()
	reg := payload.NewDefaultRegistry()

	t.Run("should enumerate carousel cards", func(t *testing.T) {
		t.Parallel()
		p := payload.Carousel{Text: "Vagas", Cards: []payload.Card{
			{Image: payload.ImageFields{Image: "https://a.io/1.png", Text: "Caixa"}, Text: "Centro"},
			{Image: payload.ImageFields{Image: "https://a.io/2.png"}, Text: "Norte"},
		}}

		got, err := reg.PrimaryTextFields(p)

		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"text":              "Vagas",
			"card_0_text":       "Centro",
			"card_0_image_text": "Caixa",
			"card_1_text":       "Norte",
		}, got)
	})

	t.Run("should expose button labels", func(t *testing.T) {
		t.Parallel()
		p := payload.ButtonActions{Text: "x", Footer: "rodapé", Buttons: []payload.Button{{Type: payload.ButtonReply, Label: "Sim"}}}

		got, err := reg.PrimaryTextFields(p)

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"text": "x", "footer": "rodapé", "button_0_label": "Sim"}, got)
	})

	t.Run("should return empty map for audio without transcription", func(t *testing.T) {
		t.Parallel()
		got, err := reg.PrimaryTextFields(payload.Audio{Audio: "https://a.io/a.ogg"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestRegistry_Variables(t *testing.T) {
	t.Parallel()
	reg := payload.NewDefaultRegistry()

	t.Run("should substitute and consume the placeholder", func(t *testing.T) {
		t.Parallel()

		// --- Arrange ---
		p := payload.Text{Text: "Hello [name]"}

		// --- Act ---
		out, err := reg.ParseVariables(p, map[string]string{"name": "Ana"}, "")
		require.NoError(t, err)

		// --- Assert ---
		assert.Equal(t, payload.Text{Text: "Hello Ana"}, out)
		has, _ := reg.HasVariable(out, "name", "")
		assert.False(t, has)
		has, _ = reg.HasVariable(out, "anythingElse", "")
		assert.False(t, has)
	})

	t.Run("should not expand placeholders inside substituted values", func(t *testing.T) {
		t.Parallel()

		// --- Arrange ---
		p := payload.Text{Text: "Oi [nome], vaga [vaga]"}
		vars := map[string]string{"nome": "[vaga]", "vaga": "Caixa [nome]"}

		// --- Act ---
		out, err := reg.ParseVariables(p, vars, "")

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, payload.Text{Text: "Oi [vaga], vaga Caixa [nome]"}, out)
	})

	t.Run("should leave payload unchanged when variable is absent", func(t *testing.T) {
		t.Parallel()
		for _, p := range validPayloads() {
			has, err := reg.HasVariable(p, "X", payload.DefaultPlaceholder)
			require.NoError(t, err)
			require.False(t, has)

			out, err := reg.ParseVariables(p, map[string]string{"X": "v"}, payload.DefaultPlaceholder)
			require.NoError(t, err)
			assert.Equal(t, p, out, string(p.PayloadType()))
		}
	})

	t.Run("should reach nested card and button fields without mutating the input", func(t *testing.T) {
		t.Parallel()

		// --- Arrange ---
		in := payload.Carousel{Text: "Oi {{nome}}", Cards: []payload.Card{{
			Image:   payload.ImageFields{Image: "https://a.io/{{nome}}.png", Text: "para {{nome}}"},
			Buttons: []payload.Button{{Type: payload.ButtonReply, Label: "Sou {{nome}}"}},
		}}}
		pattern := "{{%s}}"

		// --- Act ---
		has, _ := reg.HasVariable(in, "nome", pattern)
		out, err := reg.ParseVariables(in, map[string]string{"nome": "Ana"}, pattern)

		// --- Assert ---
		require.NoError(t, err)
		assert.True(t, has)
		c := out.(payload.Carousel)
		assert.Equal(t, "Oi Ana", c.Text)
		assert.Equal(t, "para Ana", c.Cards[0].Image.Text)
		assert.Equal(t, "Sou Ana", c.Cards[0].Buttons[0].Label)
		assert.Equal(t, "https://a.io/{{nome}}.png", c.Cards[0].Image.Image, "urls are structural")
		assert.Equal(t, "Sou {{nome}}", in.Cards[0].Buttons[0].Label, "input must not change")
	})

	t.Run("should accept pointer payloads", func(t *testing.T) {
		t.Parallel()
		out, err := reg.ParseVariables(&payload.Document{DocumentURL: "https://a.io/x.pdf", Extension: "pdf", Caption: "CV de [n]"}, map[string]string{"n": "Ana"}, "")
		require.NoError(t, err)
		assert.Equal(t, "CV de Ana", out.(payload.Document).Caption)
	})
}
