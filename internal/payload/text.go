package payload

type textHandler struct{ base[Text] }

func NewTextHandler() Handler { return textHandler{base[Text]{TypeText}} }

func (textHandler) refs(p *Text) []*string { return []*string{&p.Text} }

func (textHandler) CharacterCount(p Payload) int { return runes(cast[Text](p).Text) }

func (textHandler) PrimaryTextFields(p Payload) map[string]string {
	return map[string]string{"text": cast[Text](p).Text}
}

func (h textHandler) ParseVariables(p Payload, vars map[string]string, pattern string) Payload {
	out := cast[Text](p)
	substitute(h.refs(&out), vars, pattern)
	return out
}

func (h textHandler) HasVariable(p Payload, name, pattern string) bool {
	v := cast[Text](p)
	return containsPlaceholder(h.refs(&v), name, pattern)
}
