package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironment_ScalarRoundTrip(t *testing.T) {
	env := NewEnvironment(nil)
	env.SetString("selected_text", "hello")

	v, ok := env.GetString("selected_text")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	_, ok = env.GetMapping("selected_text")
	assert.False(t, ok)
}

func TestEnvironment_MappingRoundTrip(t *testing.T) {
	env := NewEnvironment(nil)
	env.SetMapping("row", map[string]string{"ICD10": "J45.909"})

	m, ok := env.GetMapping("row")
	assert.True(t, ok)
	assert.Equal(t, "J45.909", m["ICD10"])
}

func TestEnvironment_ResolveScalarAndNested(t *testing.T) {
	env := NewEnvironment(map[string]any{"clipboard": "abc"})
	env.SetMapping("row", map[string]string{"Name": "Jane"})

	v, ok := env.Resolve([]string{"clipboard"})
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	v, ok = env.Resolve([]string{"row", "Name"})
	assert.True(t, ok)
	assert.Equal(t, "Jane", v)

	_, ok = env.Resolve([]string{"row", "Missing"})
	assert.False(t, ok)

	_, ok = env.Resolve([]string{"nonexistent"})
	assert.False(t, ok)

	_, ok = env.Resolve(nil)
	assert.False(t, ok)
}

func TestEnvironment_ResolveTooDeepPathFails(t *testing.T) {
	env := NewEnvironment(nil)
	env.SetMapping("row", map[string]string{"Name": "Jane"})

	_, ok := env.Resolve([]string{"row", "Name", "extra"})
	assert.False(t, ok)
}
