package translation

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores translated text by resolution key. Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) (string, bool)
	Add(key, value string) (evicted bool)
	Len() int
	Purge()
}

// NewCache returns a bounded LRU cache. A size of zero or less means unbounded;
// a ttl of zero or less means entries never expire.
func NewCache(size int, ttl time.Duration) Cache {
	if size < 0 {
		size = 0
	}
	if ttl < 0 {
		ttl = 0
	}
	return expirable.NewLRU[string, string](size, nil, ttl)
}
