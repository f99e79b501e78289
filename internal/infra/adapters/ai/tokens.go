package ai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// encoding is nil when the BPE ranks cannot be loaded; callers fall back to
// a character estimate.
func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding(encodingName)
		if err == nil {
			enc = e
		}
	})
	return enc
}

// CountTokens returns the cl100k token count of s.
func CountTokens(s string) int {
	if e := encoding(); e != nil {
		return len(e.Encode(s, nil, nil))
	}
	return estimateTokens(s)
}

// TruncateTokens keeps at most max tokens of s. max <= 0 means no limit.
func TruncateTokens(s string, max int) string {
	if max <= 0 || s == "" {
		return s
	}
	if e := encoding(); e != nil {
		toks := e.Encode(s, nil, nil)
		if len(toks) <= max {
			return s
		}
		return e.Decode(toks[:max])
	}
	return truncateEstimate(s, max)
}

// roughly four characters per token for Latin text
const charsPerToken = 4

func estimateTokens(s string) int {
	n := len([]rune(s))
	return (n + charsPerToken - 1) / charsPerToken
}

func truncateEstimate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max*charsPerToken {
		return s
	}
	return string(r[:max*charsPerToken])
}
