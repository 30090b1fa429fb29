// Package plugin defines the check plugin contract and the registry that
// maps stable command names to plugin factories.
package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/orf53975/sslyze/internal/handshake"
	sharedErrors "github.com/orf53975/sslyze/internal/shared/errors"
	"github.com/orf53975/sslyze/internal/xmltree"
)

// Result is what one plugin run produces for one server.
type Result interface {
	// Command is the plugin's command name, e.g. "fallback".
	Command() string
	Title() string
	// AsText renders the human-readable block, one entry per line.
	AsText() []string
	// AsXML renders one element tagged with the command name.
	AsXML() *xmltree.Element
	// Findings exposes the result as plain values for JSON/YAML output.
	Findings() map[string]any
}

// Plugin is one check against one server.
type Plugin interface {
	ID() string
	Title() string
	Describe() string
	Run(ctx context.Context, server handshake.ServerInfo) (Result, error)
}

// Dependencies are handed to every plugin factory.
type Dependencies struct {
	Dialer handshake.Dialer
	Logger *zap.Logger
}

// Factory builds a fresh plugin instance. Instances are never shared between
// concurrent runs.
type Factory func(deps Dependencies) Plugin

// Registration describes a plugin before it is instantiated.
type Registration struct {
	ID          string
	Title       string
	Description string
	New         Factory
}

// Registry maps plugin IDs to registrations.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
}

// Default is populated once at process startup.
var Default = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register adds reg. IDs must be unique and non-empty.
func (r *Registry) Register(reg Registration) error {
	if reg.ID == "" || reg.New == nil {
		return fmt.Errorf("plugin registration requires an id and a factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[reg.ID]; exists {
		return fmt.Errorf("%w: %s", sharedErrors.ErrDuplicatePlugin, reg.ID)
	}
	r.entries[reg.ID] = reg
	return nil
}

// Lookup returns the registration for id.
func (r *Registry) Lookup(id string) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[id]
	if !ok {
		return Registration{}, fmt.Errorf("%w: %s", sharedErrors.ErrUnknownPlugin, id)
	}
	return reg, nil
}

// New instantiates the plugin registered under id.
func (r *Registry) New(id string, deps Dependencies) (Plugin, error) {
	reg, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return reg.New(deps), nil
}

// Registrations returns every registration sorted by ID.
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, 0, len(r.entries))
	for _, reg := range r.entries {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
