package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMap(t *testing.T) {
	assert.Nil(t, ToMap(nil))

	m := ToMap([]any{"kind", "silence", "reason", "harassment"})
	assert.Equal(t, map[string]string{"kind": "silence", "reason": "harassment"}, m)

	// Malformed pairs and non-string values are skipped.
	m = ToMap([]any{"count", 3, 42, "orphan", "kind", "warning", "dangling"})
	assert.Equal(t, map[string]string{"kind": "warning"}, m)
}
