package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager(t *testing.T) {
	m := NewManager()
	assert.False(t, m.IsEnabled("unknown"))

	m.Register("x", false, "test flag")
	assert.False(t, m.IsEnabled("x"))

	m.Enable("x")
	assert.True(t, m.IsEnabled("x"))

	m.Disable("x")
	assert.False(t, m.IsEnabled("x"))

	m.Enable("unregistered")
	assert.False(t, m.IsEnabled("unregistered"))
}

func TestDefaults(t *testing.T) {
	m := Defaults(true, false)

	assert.True(t, m.IsEnabled(FeatureCacheEnabled))
	assert.False(t, m.IsEnabled(FeatureEventHooksEnabled))

	all := m.All()
	assert.Len(t, all, 2)
	assert.Equal(t, FeatureCacheEnabled, all[0].Name)
	assert.Equal(t, FeatureEventHooksEnabled, all[1].Name)

	all[0].Enabled = false
	assert.True(t, m.IsEnabled(FeatureCacheEnabled))
}
