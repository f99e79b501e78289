package messaging

import (
	"sync"

	"whatsapp-recruiting-funnel/internal/payload"
)

var (
	globalFacade *Facade
	globalOnce   sync.Once
)

// Global returns the process-wide facade, creating a default one on first use.
func Global() *Facade {
	globalOnce.Do(func() {
		globalFacade = New(nil)
	})
	return globalFacade
}

// InitGlobal installs f as the process-wide facade. Only the first call,
// made before any call to Global, has an effect.
func InitGlobal(f *Facade) {
	globalOnce.Do(func() {
		globalFacade = f
	})
}

// ResetGlobal is for tests only and is not safe for concurrent use.
func ResetGlobal() {
	globalOnce = sync.Once{}
	globalFacade = nil
}

// Create exposes the payload factories of the global facade.
var Create = globalCreator{}

type globalCreator struct{}

func (globalCreator) creator() Creator { return Global().Create() }

func (g globalCreator) Text(text string) (payload.Text, error) { return g.creator().Text(text) }

func (g globalCreator) Image(url string, opts ...ImageOption) (payload.Image, error) {
	return g.creator().Image(url, opts...)
}

func (g globalCreator) Audio(url string, opts ...AudioOption) (payload.Audio, error) {
	return g.creator().Audio(url, opts...)
}

func (g globalCreator) Buttons(text string, buttons []payload.Button, opts ...ButtonsOption) (payload.ButtonActions, error) {
	return g.creator().Buttons(text, buttons, opts...)
}

func (g globalCreator) Link(text, linkURL string, opts ...LinkOption) (payload.Link, error) {
	return g.creator().Link(text, linkURL, opts...)
}

func (g globalCreator) Document(url, extension string, opts ...DocumentOption) (payload.Document, error) {
	return g.creator().Document(url, extension, opts...)
}

func (g globalCreator) Carousel(text string, cards []payload.Card) (payload.Carousel, error) {
	return g.creator().Carousel(text, cards)
}

func Validate(v any) payload.Payload { return Global().Validate(v) }

func Characters(p payload.Payload) (int, error) { return Global().Characters(p) }

func TextFields(p payload.Payload) (map[string]string, error) { return Global().TextFields(p) }

func Delay(p payload.Payload) (int, error) { return Global().Delay(p) }

func Parse(p payload.Payload, vars map[string]string) (payload.Payload, error) {
	return Global().Parse(p, vars)
}

func HasVar(p payload.Payload, name string) (bool, error) { return Global().HasVar(p, name) }
