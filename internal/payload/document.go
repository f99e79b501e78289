package payload

type documentHandler struct{ base[Document] }

func NewDocumentHandler() Handler { return documentHandler{base[Document]{TypeDocument}} }

func (documentHandler) refs(p *Document) []*string { return []*string{&p.Caption, &p.FileName} }

func (documentHandler) PrimaryTextFields(p Payload) map[string]string {
	v := cast[Document](p)
	out := map[string]string{}
	putNonEmpty(out, "caption", v.Caption)
	putNonEmpty(out, "fileName", v.FileName)
	return out
}

func (h documentHandler) ParseVariables(p Payload, vars map[string]string, pattern string) Payload {
	out := cast[Document](p)
	substitute(h.refs(&out), vars, pattern)
	return out
}

func (h documentHandler) HasVariable(p Payload, name, pattern string) bool {
	v := cast[Document](p)
	return containsPlaceholder(h.refs(&v), name, pattern)
}
