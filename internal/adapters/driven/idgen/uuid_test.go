package idgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_NewID(t *testing.T) {
	gen := New()
	seen := make(map[string]bool)

	prev := gen.NewID()
	for i := 0; i < 100; i++ {
		id := gen.NewID()
		assert.False(t, id.IsZero())
		assert.False(t, seen[id.String()], "duplicate id %s", id)
		seen[id.String()] = true
		assert.GreaterOrEqual(t, id.Compare(prev), 0)
		prev = id
	}
}

func TestUUID_IsVersion7(t *testing.T) {
	id := New().NewID()

	u, err := uuid.FromBytes(id.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
	assert.Equal(t, uuid.RFC4122, u.Variant())
}
