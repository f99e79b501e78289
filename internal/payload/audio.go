package payload

import "math"

// Roughly how many characters a second of speech stands for.
const charsPerAudioSecond = 12

type audioHandler struct{ base[Audio] }

func NewAudioHandler() Handler { return audioHandler{base[Audio]{TypeAudio}} }

func (audioHandler) refs(p *Audio) []*string { return []*string{&p.Transcription} }

func (audioHandler) CharacterCount(p Payload) int {
	v := cast[Audio](p)
	if v.Transcription != "" {
		return runes(v.Transcription)
	}
	if v.Seconds != nil {
		return int(math.Round(*v.Seconds * charsPerAudioSecond))
	}
	return 0
}

func (audioHandler) PrimaryTextFields(p Payload) map[string]string {
	out := map[string]string{}
	putNonEmpty(out, "transcription", cast[Audio](p).Transcription)
	return out
}

func (h audioHandler) ParseVariables(p Payload, vars map[string]string, pattern string) Payload {
	out := cast[Audio](p)
	substitute(h.refs(&out), vars, pattern)
	return out
}

func (h audioHandler) HasVariable(p Payload, name, pattern string) bool {
	v := cast[Audio](p)
	return containsPlaceholder(h.refs(&v), name, pattern)
}
