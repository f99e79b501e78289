package payload

import (
	"errors"
	"fmt"
	"sync"

	"whatsapp-recruiting-funnel/internal/domain"
)

// Registry maps each payload type to its handler.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Type]Handler
	rand     Float64Source
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRand replaces the random source used for typing delays.
func WithRand(src Float64Source) RegistryOption {
	return func(r *Registry) { r.rand = src }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{handlers: make(map[Type]Handler, len(AllTypes)), rand: globalRand{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// DefaultHandlers returns one handler per entry of AllTypes.
func DefaultHandlers() []Handler {
	return []Handler{
		NewTextHandler(),
		NewImageHandler(),
		NewAudioHandler(),
		NewButtonActionsHandler(),
		NewLinkHandler(),
		NewDocumentHandler(),
		NewCarouselHandler(),
	}
}

// NewDefaultRegistry creates a registry with every built-in handler. It
// panics if a payload type is left without a handler.
func NewDefaultRegistry(opts ...RegistryOption) *Registry {
	r := NewRegistry(opts...)
	for _, h := range DefaultHandlers() {
		r.Register(h.Type(), h)
	}
	if missing := r.MissingTypes(); len(missing) > 0 {
		panic(fmt.Sprintf("payload: no handler for %v", missing))
	}
	return r
}

// Register associates h with t. A later registration for the same type
// replaces the earlier one.
func (r *Registry) Register(t Type, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[t] = h
}

// MissingTypes lists the members of AllTypes that have no handler.
func (r *Registry) MissingTypes() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Type
	for _, t := range AllTypes {
		if _, ok := r.handlers[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func (r *Registry) lookup(t Type) (Handler, error) {
	r.mu.RLock()
	h, ok := r.handlers[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnregisteredPayloadType, t)
	}
	return h, nil
}

// Handler returns the handler for p's type.
func (r *Registry) Handler(p Payload) (Handler, error) {
	if p = Deref(p); p == nil {
		return nil, fmt.Errorf("%w: nil payload", domain.ErrUnregisteredPayloadType)
	}
	return r.lookup(p.PayloadType())
}

// Validate returns the typed payload when v is a valid instance of a
// registered type, or nil otherwise. It never panics on bad input.
func (r *Registry) Validate(v any) Payload {
	p, err := r.ValidateDetailed(v)
	if err != nil {
		return nil
	}
	return p
}

// ValidateDetailed is Validate with the reason for rejection. Every error
// matches domain.ErrInvalidPayload.
func (r *Registry) ValidateDetailed(v any) (Payload, error) {
	if p, ok := v.(Payload); ok {
		if p = Deref(p); p == nil {
			return nil, invalid(structural("value", "is null"))
		}
		if h, err := r.Handler(p); err == nil && h.Validate(p) {
			return p, nil
		}
		// re-check through the wire form to collect the issues
	}

	obj, t, _, err := decodeObject(v)
	if err != nil {
		return nil, invalid(err)
	}
	h, err := r.lookup(t)
	if err != nil {
		ve := &domain.ValidationError{}
		ve.Add("type", fmt.Sprintf("unknown payload type %q", t))
		return nil, invalid(ve)
	}
	p, err := h.Decode(obj)
	if err != nil {
		return nil, invalid(err)
	}
	if !h.Validate(p) {
		ve := &domain.ValidationError{}
		ve.Add("value", "rejected by "+string(t)+" handler")
		return nil, invalid(ve)
	}
	return p, nil
}

type invalidPayload struct{ err error }

func (e invalidPayload) Error() string {
	return domain.ErrInvalidPayload.Error() + ": " + e.err.Error()
}
func (e invalidPayload) Unwrap() []error {
	return []error{domain.ErrInvalidPayload, e.err}
}

func invalid(err error) error { return invalidPayload{err: err} }

// Issues extracts the field issues from a ValidateDetailed error.
func Issues(err error) []domain.ValidationIssue {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Issues
	}
	return nil
}

func (r *Registry) CharacterCount(p Payload) (int, error) {
	h, err := r.Handler(p)
	if err != nil {
		return 0, err
	}
	return h.CharacterCount(p), nil
}

func (r *Registry) PrimaryTextFields(p Payload) (map[string]string, error) {
	h, err := r.Handler(p)
	if err != nil {
		return nil, err
	}
	return h.PrimaryTextFields(p), nil
}

// TypingDelay returns the simulated typing time for p in whole seconds.
// A non-positive speed selects DefaultTypingSpeed.
func (r *Registry) TypingDelay(p Payload, speed float64) (int, error) {
	n, err := r.CharacterCount(p)
	if err != nil {
		return 0, err
	}
	return TypingDelay(n, speed, r.rand), nil
}

// ParseVariables substitutes vars in every text-bearing field of p. An empty
// pattern selects DefaultPlaceholder.
func (r *Registry) ParseVariables(p Payload, vars map[string]string, pattern string) (Payload, error) {
	h, err := r.Handler(p)
	if err != nil {
		return nil, err
	}
	return h.ParseVariables(p, vars, pattern), nil
}

func (r *Registry) HasVariable(p Payload, name, pattern string) (bool, error) {
	h, err := r.Handler(p)
	if err != nil {
		return false, err
	}
	return h.HasVariable(p, name, pattern), nil
}
