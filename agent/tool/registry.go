// Package tool holds the ordered registry of capabilities exposed to the
// model backend.
package tool

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/hanumantraders/warehouse-agent/agent/contract"
)

// DefaultDescription is used for tools registered without documentation.
const DefaultDescription = "No description provided"

// Registry maps tool names to handlers and preserves registration order,
// which model backends may use as a hint. Registration happens once at
// startup; afterwards the registry is read-only and safe for concurrent use.
type Registry struct {
	byName map[string]contractx.ToolDescriptor
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]contractx.ToolDescriptor, 8),
	}
}

// Register adds a tool. Duplicate names are rejected, not overwritten.
func (r *Registry) Register(desc contractx.ToolDescriptor) error {
	name := strings.TrimSpace(desc.Name)
	if name == "" {
		return fmt.Errorf("%w: tool name is empty", contractx.ErrValidation)
	}
	if desc.Handler == nil {
		return fmt.Errorf("%w: tool=%s has no handler", contractx.ErrValidation, name)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", contractx.ErrDuplicateTool, name)
	}

	desc.Name = name
	if strings.TrimSpace(desc.Description) == "" {
		desc.Description = DefaultDescription
	}

	r.byName[name] = desc
	r.order = append(r.order, name)
	return nil
}

// MustRegister registers a batch of tools, panicking on the first failure.
// Intended for process startup.
func (r *Registry) MustRegister(descs ...contractx.ToolDescriptor) {
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Describe returns all registered tools in registration order.
func (r *Registry) Describe() []contractx.ToolDescriptor {
	out := make([]contractx.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

func (r *Registry) Lookup(name string) (contractx.ToolDescriptor, bool) {
	desc, ok := r.byName[name]
	return desc, ok
}

// Invoke executes a registered tool. Handler errors and panics are wrapped
// into the result's Error field together with the tool name; nothing
// propagates to the caller as a raw failure.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (result contractx.ToolResult) {
	result.Tool = name

	desc, ok := r.byName[name]
	if !ok {
		result.Error = fmt.Sprintf("tool %s is not registered", name)
		return result
	}

	defer func() {
		if rec := recover(); rec != nil {
			result.Result = nil
			result.Error = fmt.Sprintf("tool %s panicked: %v", name, rec)
		}
	}()

	value, err := desc.Handler(ctx, args)
	if err != nil {
		result.Error = fmt.Sprintf("tool %s failed: %v", name, err)
		return result
	}

	result.Result = value
	return result
}

var _ contractx.ToolInvoker = (*Registry)(nil)
