package whatsapp

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
	"unicode/utf8"

	"whatsapp-recruiting-funnel/internal/payload"
)

const maxPreviewBytes = 512

// Envelope is the outbound message handed to the WhatsApp gateway.
type Envelope struct {
	OutboundID    string          `json:"outbound_id"`
	To            string          `json:"to"`
	Kind          payload.Type    `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
	TextPreview   string          `json:"text_preview,omitempty"`
	Fingerprint   string          `json:"fingerprint"`
	TypingDelayMs int64           `json:"typing_delay_ms"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	AtHub         time.Time       `json:"at_hub"`
}

// previewOf picks the "text" field when present, else the first key in
// lexical order, clipped to maxPreviewBytes on a rune boundary.
func previewOf(fields map[string]string) string {
	s, ok := fields["text"]
	if !ok {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		if len(keys) == 0 {
			return ""
		}
		sort.Strings(keys)
		s = fields[keys[0]]
	}
	return clip(s, maxPreviewBytes)
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
