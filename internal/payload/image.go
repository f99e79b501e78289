package payload

// imageHandler keeps the serialized-length character count.
type imageHandler struct{ base[Image] }

func NewImageHandler() Handler { return imageHandler{base[Image]{TypeImage}} }

func (imageHandler) refs(p *Image) []*string { return []*string{&p.Text, &p.Transcription} }

func (imageHandler) PrimaryTextFields(p Payload) map[string]string {
	v := cast[Image](p)
	out := map[string]string{}
	putNonEmpty(out, "text", v.Text)
	putNonEmpty(out, "transcription", v.Transcription)
	return out
}

func (h imageHandler) ParseVariables(p Payload, vars map[string]string, pattern string) Payload {
	out := cast[Image](p)
	substitute(h.refs(&out), vars, pattern)
	return out
}

func (h imageHandler) HasVariable(p Payload, name, pattern string) bool {
	v := cast[Image](p)
	return containsPlaceholder(h.refs(&v), name, pattern)
}
