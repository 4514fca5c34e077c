package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.design/x/hotkey"
)

func TestParseCombo_ValidCombo(t *testing.T) {
	mods, key, err := parseCombo("CTRL+ALT+V")
	require.NoError(t, err)
	assert.ElementsMatch(t, []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModOption}, mods)
	assert.Equal(t, hotkey.KeyV, key)
}

func TestParseCombo_MissingModifier(t *testing.T) {
	_, _, err := parseCombo("V")
	assert.Error(t, err)
}

func TestParseCombo_UnknownModifier(t *testing.T) {
	_, _, err := parseCombo("SUPER+V")
	assert.Error(t, err)
}

func TestParseCombo_UnknownKey(t *testing.T) {
	_, _, err := parseCombo("CTRL+F13")
	assert.Error(t, err)
}

func TestParseCombo_CaseInsensitive(t *testing.T) {
	_, key, err := parseCombo("ctrl+shift+p")
	require.NoError(t, err)
	assert.Equal(t, hotkey.KeyP, key)
}
