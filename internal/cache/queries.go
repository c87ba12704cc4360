package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
	"github.com/lorefolk/heritage-ledger/internal/store"
	"github.com/lorefolk/heritage-ledger/internal/store/schema"
)

// QueriesConfig holds TTLs for the cached read paths
type QueriesConfig struct {
	ListingTTL      time.Duration
	PriceHistoryTTL time.Duration
	MaxEntries      int
}

// Queries serves the hot marketplace read paths through TTL caches.
// Writes land through the reconciler, so reads tolerate results up to one
// TTL stale.
type Queries struct {
	store    store.Store
	listings *Cache[[]schema.Listing]
	prices   *Cache[[]schema.PriceHistory]
}

// NewQueries creates a cached read layer over the store
func NewQueries(s store.Store, config QueriesConfig, clock adapter.Clock) *Queries {
	return &Queries{
		store:    s,
		listings: New[[]schema.Listing](config.ListingTTL, config.MaxEntries, clock),
		prices:   New[[]schema.PriceHistory](config.PriceHistoryTTL, config.MaxEntries, clock),
	}
}

// SearchListings returns listings matching the filter, served from cache
// when a recent identical query exists
func (q *Queries) SearchListings(ctx context.Context, filter store.ListingFilter) ([]schema.Listing, error) {
	key := listingKey(filter)
	if cached, ok := q.listings.Get(key); ok {
		return cached, nil
	}

	listings, err := q.store.SearchListings(ctx, filter)
	if err != nil {
		return nil, err
	}

	q.listings.Set(key, listings)
	return listings, nil
}

// GetPriceHistory returns a token's price points, served from cache when fresh
func (q *Queries) GetPriceHistory(ctx context.Context, tokenID string, limit int) ([]schema.PriceHistory, error) {
	key := fmt.Sprintf("%s|%d", tokenID, limit)
	if cached, ok := q.prices.Get(key); ok {
		return cached, nil
	}

	points, err := q.store.GetPriceHistory(ctx, tokenID, limit)
	if err != nil {
		return nil, err
	}

	q.prices.Set(key, points)
	return points, nil
}

// InvalidateToken drops cached price history for a token after a settlement
func (q *Queries) InvalidateToken(tokenID string, limits ...int) {
	for _, limit := range limits {
		q.prices.Invalidate(fmt.Sprintf("%s|%d", tokenID, limit))
	}
	// Listings for the token may appear under any filter combination
	q.listings.Clear()
}

func listingKey(filter store.ListingFilter) string {
	consent, provenance := "", ""
	if filter.ConsentGranted != nil {
		consent = strconv.FormatBool(*filter.ConsentGranted)
	}
	if filter.ProvenanceVerified != nil {
		provenance = strconv.FormatBool(*filter.ProvenanceVerified)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%s|%d|%d",
		filter.TokenID, filter.Seller, filter.Tribe, filter.Status,
		filter.MinPriceMinorUnits, filter.MaxPriceMinorUnits,
		filter.License, consent, provenance,
		filter.Limit, filter.Offset)
}
