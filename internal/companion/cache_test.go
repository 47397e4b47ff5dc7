package companion

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoCacheHitMiss(t *testing.T) {
	c := newMemoCache(4)

	_, ok := c.get("a")
	assert.False(t, ok)

	c.put("a", "one")
	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "one", got)
}

func TestMemoCacheEvictsOldest(t *testing.T) {
	c := newMemoCache(3)

	for i := 0; i < 3; i++ {
		c.put(fmt.Sprintf("k%d", i), "v")
	}
	c.put("k3", "v")

	_, ok := c.get("k0")
	assert.False(t, ok, "oldest entry should be evicted")
	for i := 1; i <= 3; i++ {
		_, ok := c.get(fmt.Sprintf("k%d", i))
		assert.True(t, ok)
	}
}

func TestMemoCacheOverwriteKeepsSize(t *testing.T) {
	c := newMemoCache(2)

	c.put("a", "one")
	c.put("a", "two")
	c.put("b", "three")

	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "two", got)

	_, ok = c.get("b")
	assert.True(t, ok)
}
