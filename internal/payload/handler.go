package payload

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultPlaceholder is the variable pattern; %s is replaced by the variable name.
const DefaultPlaceholder = "[%s]"

// Handler implements the behaviour of one payload type.
type Handler interface {
	Type() Type
	// Decode strictly parses an object whose "type" equals Type().
	Decode(obj map[string]any) (Payload, error)
	// Validate reports whether p is a schema-valid instance of this handler's type.
	Validate(p Payload) bool
	CharacterCount(p Payload) int
	PrimaryTextFields(p Payload) map[string]string
	ParseVariables(p Payload, vars map[string]string, pattern string) Payload
	HasVariable(p Payload, name, pattern string) bool
}

// base supplies the defaults every handler inherits: serialized length as the
// character count, no text fields and no templating.
type base[P Payload] struct{ t Type }

func (b base[P]) Type() Type { return b.t }

func (b base[P]) Decode(obj map[string]any) (Payload, error) {
	p, err := decodeStrict[P](obj)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (b base[P]) Validate(p Payload) bool {
	v, ok := Deref(p).(P)
	if !ok {
		return false
	}
	return checkRules(v) == nil
}

func (b base[P]) CharacterCount(p Payload) int {
	raw, err := json.Marshal(Deref(p))
	if err != nil {
		return 0
	}
	return utf8.RuneCount(raw)
}

func (b base[P]) PrimaryTextFields(Payload) map[string]string { return map[string]string{} }

// ParseVariables returns a copy of p unchanged.
func (b base[P]) ParseVariables(p Payload, _ map[string]string, _ string) Payload {
	return Deref(p)
}

func (b base[P]) HasVariable(Payload, string, string) bool { return false }

// cast asserts the concrete variant; a mismatch means a handler was registered
// under the wrong type.
func cast[P Payload](p Payload) P {
	v, ok := Deref(p).(P)
	if !ok {
		var want P
		panic(fmt.Sprintf("payload: handler for %q received %T", want.PayloadType(), p))
	}
	return v
}

// Deref turns a pointer to a variant into the variant value. A nil pointer
// yields nil.
func Deref(p Payload) Payload {
	switch v := p.(type) {
	case *Text:
		if v != nil {
			return *v
		}
	case *Image:
		if v != nil {
			return *v
		}
	case *Audio:
		if v != nil {
			return *v
		}
	case *ButtonActions:
		if v != nil {
			return *v
		}
	case *Link:
		if v != nil {
			return *v
		}
	case *Document:
		if v != nil {
			return *v
		}
	case *Carousel:
		if v != nil {
			return *v
		}
	default:
		return p
	}
	return nil
}

// Placeholder renders the pattern for one variable name.
func Placeholder(pattern, name string) string {
	if pattern == "" {
		pattern = DefaultPlaceholder
	}
	return strings.ReplaceAll(pattern, "%s", name)
}

// substitute replaces every placeholder in each referenced field in a single
// pass, so substituted values are never expanded again. Keys are sorted so the
// result does not depend on map iteration.
func substitute(refs []*string, vars map[string]string, pattern string) {
	if len(vars) == 0 {
		return
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		if ph := Placeholder(pattern, k); ph != "" {
			pairs = append(pairs, ph, vars[k])
		}
	}
	if len(pairs) == 0 {
		return
	}
	rep := strings.NewReplacer(pairs...)
	for _, ref := range refs {
		if *ref != "" {
			*ref = rep.Replace(*ref)
		}
	}
}

func containsPlaceholder(refs []*string, name, pattern string) bool {
	ph := Placeholder(pattern, name)
	for _, ref := range refs {
		if strings.Contains(*ref, ph) {
			return true
		}
	}
	return false
}

func runes(parts ...string) int {
	n := 0
	for _, s := range parts {
		n += utf8.RuneCountInString(s)
	}
	return n
}

func putNonEmpty(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func cloneButtons(in []Button) []Button {
	if in == nil {
		return nil
	}
	out := make([]Button, len(in))
	copy(out, in)
	return out
}

func buttonLabels(bs []Button) []*string {
	refs := make([]*string, 0, len(bs))
	for i := range bs {
		refs = append(refs, &bs[i].Label)
	}
	return refs
}
