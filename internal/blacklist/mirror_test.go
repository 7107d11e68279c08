package blacklist

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMirrorAddRemoveContains(t *testing.T) {
	m := NewMirror()

	assert.False(t, m.Contains("stone"))
	assert.Equal(t, 0, m.Len())

	m.Add("stone")
	assert.True(t, m.Contains("stone"))
	assert.Equal(t, 1, m.Len())

	// Re-adding is idempotent.
	m.Add("stone")
	assert.Equal(t, 1, m.Len())

	m.Remove("stone")
	assert.False(t, m.Contains("stone"))

	// Removing an absent item is harmless.
	m.Remove("stone")
	assert.Equal(t, 0, m.Len())
}

func TestMirrorReplace(t *testing.T) {
	m := NewMirror()
	m.Add("stone")
	m.Add("dirt")

	m.Replace([]string{"bedrock"})
	assert.False(t, m.Contains("stone"))
	assert.False(t, m.Contains("dirt"))
	assert.True(t, m.Contains("bedrock"))
	assert.Equal(t, []string{"bedrock"}, m.Snapshot())

	m.Replace(nil)
	assert.Equal(t, 0, m.Len())
}

func TestMirrorConcurrentAccess(t *testing.T) {
	m := NewMirror()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			item := fmt.Sprintf("item-%d", n)
			for j := 0; j < 100; j++ {
				m.Add(item)
				m.Contains(item)
				m.Remove(item)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, m.Len())
}
