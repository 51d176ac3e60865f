// Package tool defines the capabilities the LLM can invoke during a
// query and the registry the orchestrator dispatches through.
package tool

import (
	"context"
	"fmt"

	"github.com/ametov/course-rag-backend/internal/entity"
)

// Tool is a single named capability with a declared argument schema.
type Tool interface {
	Definition() entity.ToolDefinition
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// SourceTracker is implemented by tools that record the sources of
// their most recent call for UI citation display.
type SourceTracker interface {
	LastSources() []entity.Source
	ResetSources()
}

// Registry maps tool names to implementations. The orchestrator looks
// tools up by name and never branches on tool identity.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its declared name.
func (r *Registry) Register(t Tool) error {
	name := t.Definition().Name
	if name == "" {
		return fmt.Errorf("tool must declare a name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Definitions returns every registered tool definition in registration
// order, for the LLM request.
func (r *Registry) Definitions() []entity.ToolDefinition {
	defs := make([]entity.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute dispatches by name. An unknown name is information for the
// LLM, not a fault: it comes back as the tool's textual result.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}
	return t.Execute(ctx, args)
}

// LastSources returns the sources recorded by the most recent search,
// checking tools in registration order.
func (r *Registry) LastSources() []entity.Source {
	for _, name := range r.order {
		if tracker, ok := r.tools[name].(SourceTracker); ok {
			if sources := tracker.LastSources(); len(sources) > 0 {
				return sources
			}
		}
	}
	return nil
}

// ResetSources clears recorded sources on every tracking tool.
func (r *Registry) ResetSources() {
	for _, name := range r.order {
		if tracker, ok := r.tools[name].(SourceTracker); ok {
			tracker.ResetSources()
		}
	}
}
