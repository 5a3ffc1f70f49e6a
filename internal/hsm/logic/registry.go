package logic

import (
	"sort"
	"sync"
)

// CommandInfo describes a host command.
type CommandInfo struct {
	Code         string
	ResponseCode string
	Description  string
	Handler      Handler
}

// Registry maps command codes to their handlers.
type Registry struct {
	commands map[string]*CommandInfo
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*CommandInfo)}
}

// DefaultRegistry returns a registry with every built-in command.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CommandInfo{"NC", "ND", "Perform diagnostics", ExecuteNC})
	r.Register(&CommandInfo{"KW", "KX", "Wrap a clear key into a TR-31 key block", ExecuteKW})
	r.Register(&CommandInfo{"KG", "KH", "Generate a random key in a TR-31 key block", ExecuteKG})
	r.Register(&CommandInfo{"KU", "KV", "Unwrap a TR-31 key block", ExecuteKU})
	r.Register(&CommandInfo{"KC", "KD", "Compute the check value of a wrapped key", ExecuteKC})
	r.Register(&CommandInfo{"PE", "PF", "Encipher an ISO 9564 format 4 PIN block", ExecutePE})
	r.Register(&CommandInfo{"PX", "PY", "Decipher an ISO 9564 format 4 PIN block", ExecutePX})

	return r
}

// Register adds or replaces a command.
func (r *Registry) Register(info *CommandInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands[info.Code] = info
}

// Get returns the command registered under code.
func (r *Registry) Get(code string) (*CommandInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.commands[code]

	return info, ok
}

// List returns all commands sorted by code.
func (r *Registry) List() []*CommandInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*CommandInfo, 0, len(r.commands))
	for _, info := range r.commands {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })

	return out
}

// Execute runs the handler registered for code.
func (r *Registry) Execute(code string, input []byte, svc KeyBlockService) ([]byte, error) {
	info, ok := r.Get(code)
	if !ok {
		return nil, errUnknownCommand
	}

	return info.Handler(input, svc)
}

// Description returns the command description or "Unknown command".
func (r *Registry) Description(code string) string {
	if info, ok := r.Get(code); ok {
		return info.Description
	}

	return "Unknown command"
}
