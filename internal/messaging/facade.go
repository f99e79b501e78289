// Package messaging is the entry point producers use to build, inspect and
// send chat payloads.
package messaging

import (
	"whatsapp-recruiting-funnel/internal/payload"
)

// Facade wraps a payload registry with the service-wide typing speed and
// placeholder pattern.
type Facade struct {
	reg     *payload.Registry
	speed   float64
	pattern string
}

type Option func(*Facade)

func WithTypingSpeed(cps float64) Option { return func(f *Facade) { f.speed = cps } }

func WithPlaceholder(pattern string) Option { return func(f *Facade) { f.pattern = pattern } }

// New builds a facade over reg. A nil reg selects a default registry.
func New(reg *payload.Registry, opts ...Option) *Facade {
	if reg == nil {
		reg = payload.NewDefaultRegistry()
	}
	f := &Facade{reg: reg, speed: payload.DefaultTypingSpeed, pattern: payload.DefaultPlaceholder}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *Facade) Registry() *payload.Registry { return f.reg }

// Create returns the factories bound to this facade's registry.
func (f *Facade) Create() Creator { return Creator{reg: f.reg} }

// Validate returns the typed payload or nil if v is not a valid payload.
func (f *Facade) Validate(v any) payload.Payload { return f.reg.Validate(v) }

func (f *Facade) Characters(p payload.Payload) (int, error) { return f.reg.CharacterCount(p) }

func (f *Facade) TextFields(p payload.Payload) (map[string]string, error) {
	return f.reg.PrimaryTextFields(p)
}

// Delay is the simulated typing time in seconds at the configured speed.
func (f *Facade) Delay(p payload.Payload) (int, error) { return f.reg.TypingDelay(p, f.speed) }

func (f *Facade) Parse(p payload.Payload, vars map[string]string) (payload.Payload, error) {
	return f.reg.ParseVariables(p, vars, f.pattern)
}

func (f *Facade) HasVar(p payload.Payload, name string) (bool, error) {
	return f.reg.HasVariable(p, name, f.pattern)
}
