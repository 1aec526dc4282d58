package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("fp", "copy", "prompt", map[string]string{"a": "1", "b": "2"})
	b := CacheKey("fp", "copy", "prompt", map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, CacheKey("other", "copy", "prompt", map[string]string{"a": "1", "b": "2"}))
	assert.NotEqual(t, a, CacheKey("fp", "seo", "prompt", map[string]string{"a": "1", "b": "2"}))
	assert.NotEqual(t, CacheKey("f", "pcopy", "", nil), CacheKey("fp", "copy", "", nil))
}

func TestCache_PutGetReset(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("k")
	assert.False(t, ok)

	value := []byte(`{"x":1}`)
	c.Put("k", value)
	value[0] = '!'

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, `{"x":1}`, string(got))

	c.Reset()
	assert.Equal(t, 0, c.Len())
	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}
