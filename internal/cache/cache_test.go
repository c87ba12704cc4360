package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorefolk/heritage-ledger/internal/cache"
	"github.com/lorefolk/heritage-ledger/internal/mocks"
	"github.com/lorefolk/heritage-ledger/internal/store"
	"github.com/lorefolk/heritage-ledger/internal/store/schema"
)

func TestCacheExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	c := cache.New[string](30*time.Second, 0, clock)

	clock.EXPECT().Now().Return(base)
	c.Set("k", "v")

	clock.EXPECT().Now().Return(base.Add(29 * time.Second))
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	clock.EXPECT().Now().Return(base.Add(31 * time.Second))
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCacheMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	c := cache.New[int](time.Minute, 0, clock)

	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestCacheBoundedEviction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	c := cache.New[int](time.Minute, 2, clock)

	clock.EXPECT().Now().Return(base)
	c.Set("a", 1)
	clock.EXPECT().Now().Return(base.Add(time.Second))
	c.Set("b", 2)

	// At capacity: the entry closest to expiry ("a") is evicted
	clock.EXPECT().Now().Return(base.Add(2 * time.Second))
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())

	clock.EXPECT().Now().Return(base.Add(3 * time.Second))
	_, ok := c.Get("a")
	assert.False(t, ok)
	got, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestCacheOverwriteAtCapacity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	c := cache.New[int](time.Minute, 1, clock)

	clock.EXPECT().Now().Return(base)
	c.Set("a", 1)

	// Overwriting an existing key never evicts
	clock.EXPECT().Now().Return(base.Add(time.Second))
	c.Set("a", 2)

	clock.EXPECT().Now().Return(base.Add(2 * time.Second))
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestQueriesServeFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	mockStore := mocks.NewMockStore(ctrl)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	q := cache.NewQueries(mockStore, cache.QueriesConfig{
		ListingTTL:      30 * time.Second,
		PriceHistoryTTL: time.Minute,
		MaxEntries:      16,
	}, clock)

	filter := store.ListingFilter{Tribe: "maori", Limit: 10}
	listings := []schema.Listing{{ListingID: "10", TokenID: "1"}}

	// First call hits the store and populates the cache
	clock.EXPECT().Now().Return(base)
	mockStore.EXPECT().SearchListings(gomock.Any(), filter).Return(listings, nil)

	got, err := q.SearchListings(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, listings, got)

	// Second call within the TTL is served from cache
	clock.EXPECT().Now().Return(base.Add(10 * time.Second))
	got, err = q.SearchListings(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, listings, got)

	// After expiry the store is consulted again
	clock.EXPECT().Now().Return(base.Add(40 * time.Second)).Times(2)
	mockStore.EXPECT().SearchListings(gomock.Any(), filter).Return(listings, nil)
	_, err = q.SearchListings(context.Background(), filter)
	require.NoError(t, err)
}

func TestQueriesPriceHistoryInvalidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	mockStore := mocks.NewMockStore(ctrl)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	q := cache.NewQueries(mockStore, cache.QueriesConfig{
		ListingTTL:      30 * time.Second,
		PriceHistoryTTL: time.Minute,
		MaxEntries:      16,
	}, clock)

	points := []schema.PriceHistory{{TokenID: "1", TxHash: "0xsale1"}}

	clock.EXPECT().Now().Return(base)
	mockStore.EXPECT().GetPriceHistory(gomock.Any(), "1", 20).Return(points, nil)
	got, err := q.GetPriceHistory(context.Background(), "1", 20)
	require.NoError(t, err)
	assert.Equal(t, points, got)

	// Settlement invalidates the token's cached history
	q.InvalidateToken("1", 20)

	clock.EXPECT().Now().Return(base.Add(time.Second))
	mockStore.EXPECT().GetPriceHistory(gomock.Any(), "1", 20).Return(points, nil)
	_, err = q.GetPriceHistory(context.Background(), "1", 20)
	require.NoError(t, err)
}
