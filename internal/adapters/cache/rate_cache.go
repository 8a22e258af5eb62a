package cache

import (
	"fmt"
	"math/big"

	"remitledger/internal/domain"

	"github.com/dgraph-io/ristretto"
)

// RistrettoRateCache caches configured exchange rates for the read API.
// Entries are invalidated whenever the owner rewrites a rate; the settlement
// path never reads through this cache.
type RistrettoRateCache struct {
	cache *ristretto.Cache
}

func NewRateCache(maxItems int64) (*RistrettoRateCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create rate cache failed: %w", err)
	}
	return &RistrettoRateCache{cache: c}, nil
}

func (c *RistrettoRateCache) Get(pair domain.AssetPair) (*big.Int, bool) {
	if v, ok := c.cache.Get(toKey(pair)); ok {
		rate, ok := v.(*big.Int)
		if !ok {
			return nil, false
		}
		return new(big.Int).Set(rate), true
	}
	return nil, false
}

func (c *RistrettoRateCache) Set(pair domain.AssetPair, rate *big.Int) {
	c.cache.Set(toKey(pair), new(big.Int).Set(rate), 1)
}

func (c *RistrettoRateCache) Del(pair domain.AssetPair) {
	c.cache.Del(toKey(pair))
}

func (c *RistrettoRateCache) Close() { c.cache.Close() }

func toKey(p domain.AssetPair) string { return p.FromAsset + ":" + p.ToAsset }
