package domain

import (
	"fmt"
	"time"
)

// EventKind identifies the type of marketplace event observed on chain
type EventKind string

const (
	EventKindStoryMinted     EventKind = "story_minted"
	EventKindStoryPurchased  EventKind = "story_purchased"
	EventKindOfferCreated    EventKind = "offer_created"
	EventKindBundlePurchased EventKind = "bundle_purchased"
)

// AllEventKinds returns every event kind the ledger reconciles
func AllEventKinds() []EventKind {
	return []EventKind{
		EventKindStoryMinted,
		EventKindStoryPurchased,
		EventKindOfferCreated,
		EventKindBundlePurchased,
	}
}

// EventMeta carries the chain position of an event.
// LogIndex preserves intra-block ordering; Timestamp is the block timestamp.
type EventMeta struct {
	TxHash      string    `json:"tx_hash"`
	BlockNumber uint64    `json:"block_number"`
	LogIndex    uint      `json:"log_index"`
	Timestamp   time.Time `json:"timestamp"`
}

// StoryMinted is emitted when a heritage story token is minted
type StoryMinted struct {
	TokenID string `json:"token_id"`
	CID     string `json:"cid"`
	Author  string `json:"author"`
	Tribe   string `json:"tribe"`
}

// StoryPurchased is emitted when a fixed-price listing is bought out
type StoryPurchased struct {
	ListingID        string `json:"listing_id"`
	TokenID          string `json:"token_id"`
	Seller           string `json:"seller"`
	Buyer            string `json:"buyer"`
	PriceMinorUnits  string `json:"price_minor_units"`
	PlatformFeeMinor string `json:"platform_fee_minor_units"`
	RoyaltyMinor     string `json:"royalty_minor_units"`
}

// OfferCreated is emitted when a buyer places an offer on a token
type OfferCreated struct {
	OfferID         string `json:"offer_id"`
	TokenID         string `json:"token_id"`
	Offerer         string `json:"offerer"`
	PriceMinorUnits string `json:"price_minor_units"`
}

// BundlePurchased is emitted when several listings are bought in one transaction
type BundlePurchased struct {
	Buyer                string   `json:"buyer"`
	TokenIDs             []string `json:"token_ids"`
	TotalPriceMinorUnits string   `json:"total_price_minor_units"`
	DiscountMinorUnits   string   `json:"discount_minor_units"`
	PlatformFeeMinor     string   `json:"platform_fee_minor_units"`
}

// Event is the tagged union of marketplace events delivered by the chain
// source. Exactly one payload field is non-nil, matching Kind.
type Event struct {
	Kind EventKind `json:"kind"`
	Meta EventMeta `json:"meta"`

	StoryMinted     *StoryMinted     `json:"story_minted,omitempty"`
	StoryPurchased  *StoryPurchased  `json:"story_purchased,omitempty"`
	OfferCreated    *OfferCreated    `json:"offer_created,omitempty"`
	BundlePurchased *BundlePurchased `json:"bundle_purchased,omitempty"`
}

// TokenIDs returns every token the event touches. Reconciliation for the
// same token must be serialized, so this is the sharding key set.
func (e *Event) TokenIDs() []string {
	switch e.Kind {
	case EventKindStoryMinted:
		return []string{e.StoryMinted.TokenID}
	case EventKindStoryPurchased:
		return []string{e.StoryPurchased.TokenID}
	case EventKindOfferCreated:
		return []string{e.OfferCreated.TokenID}
	case EventKindBundlePurchased:
		return e.BundlePurchased.TokenIDs
	}
	return nil
}

// Valid reports whether the event's payload matches its kind
func (e *Event) Valid() bool {
	switch e.Kind {
	case EventKindStoryMinted:
		return e.StoryMinted != nil && e.StoryMinted.TokenID != "" && e.StoryMinted.Author != ""
	case EventKindStoryPurchased:
		return e.StoryPurchased != nil && e.StoryPurchased.TokenID != "" && e.StoryPurchased.Buyer != ""
	case EventKindOfferCreated:
		return e.OfferCreated != nil && e.OfferCreated.TokenID != "" && e.OfferCreated.Offerer != ""
	case EventKindBundlePurchased:
		return e.BundlePurchased != nil && len(e.BundlePurchased.TokenIDs) > 0
	}
	return false
}

// String returns a compact identity for log lines
func (e *Event) String() string {
	return fmt.Sprintf("%s@%s[%d:%d]", e.Kind, e.Meta.TxHash, e.Meta.BlockNumber, e.Meta.LogIndex)
}
