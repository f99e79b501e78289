package payload

import "fmt"

type carouselHandler struct{ base[Carousel] }

func NewCarouselHandler() Handler { return carouselHandler{base[Carousel]{TypeCarousel}} }

func (carouselHandler) refs(p *Carousel) []*string {
	refs := []*string{&p.Text}
	for i := range p.Cards {
		c := &p.Cards[i]
		refs = append(refs, &c.Text, &c.Image.Text, &c.Image.Transcription)
		refs = append(refs, buttonLabels(c.Buttons)...)
	}
	return refs
}

func (carouselHandler) CharacterCount(p Payload) int {
	v := cast[Carousel](p)
	n := runes(v.Text)
	for _, c := range v.Cards {
		n += runes(c.Text, c.Image.Text)
		for _, b := range c.Buttons {
			n += runes(b.Label)
		}
	}
	return n
}

func (carouselHandler) PrimaryTextFields(p Payload) map[string]string {
	v := cast[Carousel](p)
	out := map[string]string{}
	putNonEmpty(out, "text", v.Text)
	for i, c := range v.Cards {
		putNonEmpty(out, fmt.Sprintf("card_%d_text", i), c.Text)
		putNonEmpty(out, fmt.Sprintf("card_%d_image_text", i), c.Image.Text)
	}
	return out
}

func (h carouselHandler) ParseVariables(p Payload, vars map[string]string, pattern string) Payload {
	out := cast[Carousel](p)
	if out.Cards != nil {
		cards := make([]Card, len(out.Cards))
		for i, c := range out.Cards {
			c.Buttons = cloneButtons(c.Buttons)
			cards[i] = c
		}
		out.Cards = cards
	}
	substitute(h.refs(&out), vars, pattern)
	return out
}

func (h carouselHandler) HasVariable(p Payload, name, pattern string) bool {
	v := cast[Carousel](p)
	return containsPlaceholder(h.refs(&v), name, pattern)
}
