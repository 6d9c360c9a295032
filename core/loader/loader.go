package loader

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Feature is a self-contained module that mounts its routes on the API.
type Feature interface {
	// Name returns the unique feature name.
	Name() string
	// IsEnabled reports whether the feature should be loaded.
	IsEnabled() bool
	// Load registers the feature routes.
	Load(app fiber.Router) error
}

// Manager keeps the registered features in registration order.
type Manager struct {
	features []Feature
	names    map[string]struct{}
}

// NewManager creates an empty feature registry.
func NewManager() *Manager {
	return &Manager{names: make(map[string]struct{})}
}

// Register adds a feature. Registering the same name twice panics.
func (m *Manager) Register(f Feature) {
	if _, dup := m.names[f.Name()]; dup {
		panic(fmt.Sprintf("feature %q registered twice", f.Name()))
	}
	m.names[f.Name()] = struct{}{}
	m.features = append(m.features, f)
}

// LoadAll loads every enabled feature and returns the first failure.
func (m *Manager) LoadAll(app fiber.Router) error {
	for _, f := range m.features {
		if !f.IsEnabled() {
			continue
		}
		if err := f.Load(app); err != nil {
			return fmt.Errorf("failed to load feature %s: %w", f.Name(), err)
		}
	}
	return nil
}

// Enabled returns the names of the enabled features.
func (m *Manager) Enabled() []string {
	var out []string
	for _, f := range m.features {
		if f.IsEnabled() {
			out = append(out, f.Name())
		}
	}
	return out
}
