package cache

import (
	"math/big"
	"testing"

	"remitledger/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestRateCache_SetAndGet(t *testing.T) {
	c, err := NewRateCache(128)
	require.NoError(t, err)
	defer c.Close()

	pair := domain.AssetPair{FromAsset: "USDC", ToAsset: "EURC"}
	rate := big.NewInt(920_000_000_000_000_000)

	c.Set(pair, rate)
	c.cache.Wait()

	got, ok := c.Get(pair)
	require.True(t, ok)
	require.Equal(t, rate, got)
}

func TestRateCache_GetMissWhenEmpty(t *testing.T) {
	c, err := NewRateCache(64)
	require.NoError(t, err)
	defer c.Close()

	rate, ok := c.Get(domain.AssetPair{FromAsset: "EURC", ToAsset: "USDC"})
	require.False(t, ok)
	require.Nil(t, rate)
}

func TestRateCache_GetReturnsACopy(t *testing.T) {
	c, err := NewRateCache(64)
	require.NoError(t, err)
	defer c.Close()

	pair := domain.AssetPair{FromAsset: "USDC", ToAsset: "EURC"}
	c.Set(pair, big.NewInt(42))
	c.cache.Wait()

	got, ok := c.Get(pair)
	require.True(t, ok)
	got.SetInt64(7) // mutating the returned value must not poison the cache

	again, ok := c.Get(pair)
	require.True(t, ok)
	require.Equal(t, big.NewInt(42), again)
}

func TestRateCache_DelEvictsOnlySpecifiedPair(t *testing.T) {
	c, err := NewRateCache(256)
	require.NoError(t, err)
	defer c.Close()

	usdeur := domain.AssetPair{FromAsset: "USDC", ToAsset: "EURC"}
	eurusd := domain.AssetPair{FromAsset: "EURC", ToAsset: "USDC"}

	c.Set(usdeur, big.NewInt(92))
	keep := big.NewInt(109)
	c.Set(eurusd, keep)
	c.cache.Wait()

	c.Del(usdeur)

	_, ok := c.Get(usdeur)
	require.False(t, ok)

	rate, ok := c.Get(eurusd)
	require.True(t, ok)
	require.Equal(t, keep, rate)
}
