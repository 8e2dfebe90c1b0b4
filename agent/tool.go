package agent

import (
	"context"
	"fmt"
	"sort"
)

// ParamSpec describes a single tool parameter as shown to the model.
type ParamSpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Descriptor is a tool's serializable metadata. Immutable once registered.
type Descriptor struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Params      map[string]ParamSpec `json:"params,omitempty"`
	OutputType  string               `json:"output_type,omitempty"`
}

// Tool is the capability contract for one callable tool. Invoke receives the
// normalized argument mapping and may return an error; the step executor
// converts any error (or panic) into a non-terminal outcome.
type Tool interface {
	Descriptor() Descriptor
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// Registry maps tool names to capabilities. It is populated during agent
// construction and read-only afterwards, so any number of concurrent runs
// can share it safely.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Names must be unique within one registry.
func (r *Registry) Register(tool Tool) error {
	name := tool.Descriptor().Name
	if name == "" {
		return fmt.Errorf("tool has no name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q is already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get returns a tool by name, or nil if not registered.
func (r *Registry) Get(name string) Tool {
	return r.tools[name]
}

// Has reports whether a tool name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Count returns the number of registered tools.
func (r *Registry) Count() int { return len(r.tools) }

// Names returns all registered names in sorted order, for deterministic
// prompts and error messages.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Descriptors returns descriptors in registration order, which the prompt
// builder relies on for stable rendering.
func (r *Registry) Descriptors() []Descriptor {
	descs := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		descs = append(descs, r.tools[name].Descriptor())
	}
	return descs
}

// FuncTool wraps a plain function as a Tool.
type FuncTool struct {
	Desc Descriptor
	Fn   func(ctx context.Context, args map[string]any) (string, error)
}

func (t *FuncTool) Descriptor() Descriptor { return t.Desc }

func (t *FuncTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	return t.Fn(ctx, args)
}
