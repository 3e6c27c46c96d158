package features

import (
	"sort"
	"sync"
)

// FeatureFlag represents a feature flag configuration.
type FeatureFlag struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

// Manager manages feature flags.
type Manager struct {
	mu    sync.RWMutex
	flags map[string]*FeatureFlag
}

// NewManager creates a new feature flag manager.
func NewManager() *Manager {
	return &Manager{
		flags: make(map[string]*FeatureFlag),
	}
}

// Register registers a new feature flag.
func (m *Manager) Register(name string, enabled bool, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.flags[name] = &FeatureFlag{
		Name:        name,
		Enabled:     enabled,
		Description: description,
	}
}

// IsEnabled checks if a feature flag is enabled. Unknown flags are disabled.
func (m *Manager) IsEnabled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flag, exists := m.flags[name]
	return exists && flag.Enabled
}

// Enable enables a registered feature flag.
func (m *Manager) Enable(name string) {
	m.set(name, true)
}

// Disable disables a registered feature flag.
func (m *Manager) Disable(name string) {
	m.set(name, false)
}

func (m *Manager) set(name string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if flag, exists := m.flags[name]; exists {
		flag.Enabled = enabled
	}
}

// All returns a copy of every flag, sorted by name.
func (m *Manager) All() []FeatureFlag {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]FeatureFlag, 0, len(m.flags))
	for _, v := range m.flags {
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Predefined feature flag names
const (
	// FeatureCacheEnabled wraps the price store in the read-through cache
	FeatureCacheEnabled = "cache_enabled"
	// FeatureEventHooksEnabled publishes resolution events
	FeatureEventHooksEnabled = "event_hooks_enabled"
)

// Defaults registers the predefined flags with the given initial states.
func Defaults(cacheEnabled, eventHooksEnabled bool) *Manager {
	m := NewManager()
	m.Register(FeatureCacheEnabled, cacheEnabled, "Cache price store lookups")
	m.Register(FeatureEventHooksEnabled, eventHooksEnabled, "Publish price resolution events")
	return m
}
