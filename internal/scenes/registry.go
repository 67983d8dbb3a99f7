package scenes

import "sync"

// Logger defines the logging interface used by the Engine and Manager.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// GeneratedRegistry remembers the scenes this process created, in creation
// order. It exists only to drive cleanup; existence checks always go to the
// remote. Contents are lost on restart.
//
// All methods are thread-safe.
type GeneratedRegistry struct {
	mu    sync.RWMutex
	names []string
	index map[string]struct{}
}

// NewGeneratedRegistry creates an empty registry.
func NewGeneratedRegistry() *GeneratedRegistry {
	return &GeneratedRegistry{index: make(map[string]struct{})}
}

// Add records name. Adding a name twice has no effect.
func (r *GeneratedRegistry) Add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[name]; ok {
		return
	}
	r.index[name] = struct{}{}
	r.names = append(r.names, name)
}

// Names returns a copy of the recorded names in creation order.
func (r *GeneratedRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Clear forgets every recorded name.
func (r *GeneratedRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.names = nil
	r.index = make(map[string]struct{})
}
