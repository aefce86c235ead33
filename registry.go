package glshader

import "sync"

// Registry maps native program handles back to the Program that owns them.
// The driver only reports the active handle; the registry answers which
// wrapper it belongs to.
//
// Entries are added when a program links successfully and removed when the
// program is deleted or relinked onto a new handle.
type Registry struct {
	mu       sync.Mutex
	programs map[uint32]*Program
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{programs: make(map[uint32]*Program)}
}

// defaultRegistry is used by programs created without WithRegistry.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry { return defaultRegistry }

func (r *Registry) add(handle uint32, p *Program) {
	if handle == 0 {
		return
	}
	r.mu.Lock()
	r.programs[handle] = p
	r.mu.Unlock()
}

// remove drops handle only if it still belongs to p.
func (r *Registry) remove(handle uint32, p *Program) {
	if handle == 0 {
		return
	}
	r.mu.Lock()
	if r.programs[handle] == p {
		delete(r.programs, handle)
	}
	r.mu.Unlock()
}

// Lookup returns the program registered for handle, or nil.
func (r *Registry) Lookup(handle uint32) *Program {
	if handle == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.programs[handle]
}

// Len returns the number of registered programs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.programs)
}

// Current returns the registered program that d reports as active,
// or nil if the active handle is 0 or unknown to r.
func (r *Registry) Current(d Driver) *Program {
	return r.Lookup(d.CurrentProgram())
}

// Current returns the program d reports as active, looked up in the
// default registry.
func Current(d Driver) *Program {
	return defaultRegistry.Current(d)
}
