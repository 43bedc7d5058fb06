package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	cache := GetCache()
	cache.Set("cache_test:a", "hello", time.Minute)

	assert.Equal(t, "hello", cache.Get("cache_test:a"))
	assert.Nil(t, cache.Get("cache_test:missing"))
}

func TestCacheExpiry(t *testing.T) {
	cache := GetCache()
	cache.Set("cache_test:expired", "stale", -time.Second)

	assert.Nil(t, cache.Get("cache_test:expired"))
}

func TestCacheDelete(t *testing.T) {
	cache := GetCache()
	cache.Set("cache_test:doomed", 42, time.Minute)
	cache.Delete("cache_test:doomed")

	assert.Nil(t, cache.Get("cache_test:doomed"))
}

func TestCacheDeletePrefix(t *testing.T) {
	cache := GetCache()
	cache.Set("prefix_test:list", 1, time.Minute)
	cache.Set("prefix_test:detail:x", 2, time.Minute)
	cache.Set("other_test:keep", 3, time.Minute)

	cache.DeletePrefix("prefix_test:")

	assert.Nil(t, cache.Get("prefix_test:list"))
	assert.Nil(t, cache.Get("prefix_test:detail:x"))
	assert.Equal(t, 3, cache.Get("other_test:keep"))
}
