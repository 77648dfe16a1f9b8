package core

import "sync"

// ── Codec registry ────────────────────────────────────────────────────────────

// DefaultCodecRegistry is a thread-safe implementation of CodecRegistry.
type DefaultCodecRegistry struct {
	mu       sync.RWMutex
	decoders map[Format]Decoder
	encoders map[Format]Encoder
}

// NewCodecRegistry returns an empty DefaultCodecRegistry.
func NewCodecRegistry() *DefaultCodecRegistry {
	return &DefaultCodecRegistry{
		decoders: make(map[Format]Decoder),
		encoders: make(map[Format]Encoder),
	}
}

func (r *DefaultCodecRegistry) RegisterDecoder(f Format, d Decoder) {
	r.mu.Lock()
	r.decoders[f] = d
	r.mu.Unlock()
}

func (r *DefaultCodecRegistry) RegisterEncoder(f Format, e Encoder) {
	r.mu.Lock()
	r.encoders[f] = e
	r.mu.Unlock()
}

func (r *DefaultCodecRegistry) DecoderFor(f Format) (Decoder, bool) {
	r.mu.RLock()
	d, ok := r.decoders[f]
	r.mu.RUnlock()
	return d, ok
}

func (r *DefaultCodecRegistry) EncoderFor(f Format) (Encoder, bool) {
	r.mu.RLock()
	e, ok := r.encoders[f]
	r.mu.RUnlock()
	return e, ok
}

// ── Filter registry ───────────────────────────────────────────────────────────

// FilterRegistry maps stable filter names to transform constructors.
// Names are unique; re-registration overwrites.
type FilterRegistry struct {
	mu      sync.RWMutex
	filters map[string]BuildFunc
}

// NewFilterRegistry returns an empty FilterRegistry.
func NewFilterRegistry() *FilterRegistry {
	return &FilterRegistry{filters: make(map[string]BuildFunc)}
}

// Register binds name to build, replacing any existing binding.
func (r *FilterRegistry) Register(name string, build BuildFunc) {
	r.mu.Lock()
	r.filters[name] = build
	r.mu.Unlock()
}

// Lookup returns the constructor bound to name, or false when unregistered.
func (r *FilterRegistry) Lookup(name string) (BuildFunc, bool) {
	r.mu.RLock()
	b, ok := r.filters[name]
	r.mu.RUnlock()
	return b, ok
}

// Names returns the registered filter names in unspecified order.
func (r *FilterRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.filters))
	for n := range r.filters {
		names = append(names, n)
	}
	return names
}
