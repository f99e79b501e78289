package payload

type linkHandler struct{ base[Link] }

func NewLinkHandler() Handler { return linkHandler{base[Link]{TypeLink}} }

func (linkHandler) refs(p *Link) []*string {
	return []*string{&p.Text, &p.Title, &p.LinkDescription}
}

func (linkHandler) CharacterCount(p Payload) int {
	v := cast[Link](p)
	return runes(v.Text, v.Title, v.LinkDescription)
}

func (linkHandler) PrimaryTextFields(p Payload) map[string]string {
	v := cast[Link](p)
	out := map[string]string{}
	putNonEmpty(out, "text", v.Text)
	putNonEmpty(out, "title", v.Title)
	putNonEmpty(out, "linkDescription", v.LinkDescription)
	return out
}

func (h linkHandler) ParseVariables(p Payload, vars map[string]string, pattern string) Payload {
	out := cast[Link](p)
	substitute(h.refs(&out), vars, pattern)
	return out
}

func (h linkHandler) HasVariable(p Payload, name, pattern string) bool {
	v := cast[Link](p)
	return containsPlaceholder(h.refs(&v), name, pattern)
}
