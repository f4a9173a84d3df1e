package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPairIsOrderIndependent(t *testing.T) {
	a1, b1 := CanonicalPair(7, 3)
	a2, b2 := CanonicalPair(3, 7)

	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, 3, a1)
	assert.Equal(t, 7, b1)
}

func TestCanonicalPairAlreadyOrdered(t *testing.T) {
	a, b := CanonicalPair(1, 2)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestPrefixedColumns(t *testing.T) {
	assert.Equal(t, "m.id, m.seq", prefixed("id, seq"))
}
