package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT(t *testing.T) {
	assert.Equal(t, "⬅️ Back", T(En, "back"))
	assert.Equal(t, "⬅️ Назад", T(Ru, "back"))

	// Unknown language falls back to Russian.
	assert.Equal(t, T(Ru, "welcome"), T("de", "welcome"))

	// Missing key stays visible instead of disappearing.
	assert.Equal(t, "no_such_key", T(Ru, "no_such_key"))

	// Formatting arguments are applied.
	assert.Contains(t, T(En, "application_created", int64(7), "25", "acct"), "#7")
}

func TestAllKeysTranslated(t *testing.T) {
	for key := range texts[Ru] {
		if _, ok := texts[En][key]; !ok {
			t.Errorf("key %q missing in the English table", key)
		}
	}
	for key := range texts[En] {
		if _, ok := texts[Ru][key]; !ok {
			t.Errorf("key %q missing in the Russian table", key)
		}
	}
}
