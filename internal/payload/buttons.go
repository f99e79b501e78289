package payload

import "fmt"

type buttonActionsHandler struct{ base[ButtonActions] }

func NewButtonActionsHandler() Handler {
	return buttonActionsHandler{base[ButtonActions]{TypeButtonActions}}
}

func (buttonActionsHandler) refs(p *ButtonActions) []*string {
	return append([]*string{&p.Text, &p.Title, &p.Footer}, buttonLabels(p.Buttons)...)
}

func (buttonActionsHandler) CharacterCount(p Payload) int {
	v := cast[ButtonActions](p)
	n := runes(v.Text, v.Title, v.Footer)
	for _, b := range v.Buttons {
		n += runes(b.Label)
	}
	return n
}

func (buttonActionsHandler) PrimaryTextFields(p Payload) map[string]string {
	v := cast[ButtonActions](p)
	out := map[string]string{}
	putNonEmpty(out, "text", v.Text)
	putNonEmpty(out, "title", v.Title)
	putNonEmpty(out, "footer", v.Footer)
	for i, b := range v.Buttons {
		putNonEmpty(out, fmt.Sprintf("button_%d_label", i), b.Label)
	}
	return out
}

func (h buttonActionsHandler) ParseVariables(p Payload, vars map[string]string, pattern string) Payload {
	out := cast[ButtonActions](p)
	out.Buttons = cloneButtons(out.Buttons)
	substitute(h.refs(&out), vars, pattern)
	return out
}

func (h buttonActionsHandler) HasVariable(p Payload, name, pattern string) bool {
	v := cast[ButtonActions](p)
	return containsPlaceholder(h.refs(&v), name, pattern)
}
