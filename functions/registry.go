// Package functions holds the tool declarations exposed to the model and the
// handlers that answer its function calls.
package functions

// Handler answers one function call with a response payload.
type Handler func(args map[string]any) map[string]any

// Registry maps function names to declarations and handlers.
type Registry struct {
	declarations []map[string]any
	handlers     map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a function declaration and its handler. The declaration
// follows the service's function_declarations schema and passes through the
// setup message opaquely.
func (r *Registry) Register(name, description string, h Handler) {
	r.declarations = append(r.declarations, map[string]any{
		"name":        name,
		"description": description,
	})
	r.handlers[name] = h
}

// Tools renders the registry as the setup message's tools payload.
// Returns nil when nothing is registered.
func (r *Registry) Tools() []map[string]any {
	if len(r.declarations) == 0 {
		return nil
	}
	return []map[string]any{
		{"function_declarations": r.declarations},
	}
}

// Call invokes the named handler. The second return is false when no such
// function is registered.
func (r *Registry) Call(name string, args map[string]any) (map[string]any, bool) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, false
	}
	return h(args), true
}
