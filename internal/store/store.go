package store

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/lorefolk/heritage-ledger/internal/store/schema"
)

//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore

// ListingFilter narrows a listing search
type ListingFilter struct {
	// TokenID restricts results to a single token
	TokenID string
	// Seller restricts results to listings created by this address
	Seller string
	// Tribe restricts results to stories attributed to this community
	Tribe string
	// Status restricts results to listings in this state (empty means active)
	Status schema.ListingStatus
	// License restricts results to stories whose metadata declares this license
	License string
	// ConsentGranted restricts results by the community-consent flag in the
	// story metadata (absent metadata counts as false)
	ConsentGranted *bool
	// ProvenanceVerified restricts results by the provenance-verification flag
	// in the story metadata (absent metadata counts as false)
	ProvenanceVerified *bool
	// MinPriceMinorUnits is the inclusive lower bound on the asking price,
	// in atomic currency units
	MinPriceMinorUnits string
	// MaxPriceMinorUnits is the inclusive upper bound on the asking price,
	// in atomic currency units
	MaxPriceMinorUnits string
	// Limit caps the number of results (0 means 50)
	Limit int
	// Offset skips this many results
	Offset int
}

// SalesFilter narrows a sales history query
type SalesFilter struct {
	// TokenID restricts results to a single token
	TokenID string
	// Seller restricts results to sales by this address
	Seller string
	// Buyer restricts results to purchases by this address
	Buyer string
	// Since restricts results to sales at or after this time
	Since *time.Time
	// Limit caps the number of results (0 means 50)
	Limit int
	// Offset skips this many results
	Offset int
}

// PurchaseInput carries everything needed to settle a single-token purchase
type PurchaseInput struct {
	ListingID        string
	TokenID          string
	Seller           string
	Buyer            string
	PriceMinorUnits  string
	PlatformFeeMinor string
	RoyaltyMinor     string
	TxHash           string
	BlockNumber      uint64
	OccurredAt       time.Time
}

// PurchaseResult reports what a purchase application actually changed
type PurchaseResult struct {
	// Applied is false when the sale was already recorded for this transaction
	Applied bool
	// ListingMatched is false when no active listing row was consumed
	ListingMatched bool
}

// BundlePurchaseInput carries everything needed to settle a bundle purchase
type BundlePurchaseInput struct {
	Buyer              string
	TokenIDs           []string
	TotalMinorUnits    string
	DiscountMinorUnits string
	PlatformFeeMinor   string
	TxHash             string
	BlockNumber        uint64
	OccurredAt         time.Time
}

// AcceptOfferInput carries everything needed to settle an accepted offer
type AcceptOfferInput struct {
	OfferID    string
	AcceptedAt time.Time
}

// Store defines the interface for database operations
type Store interface {
	// GetBlockCursor retrieves the last processed block number for a chain
	GetBlockCursor(ctx context.Context, chain string) (uint64, error)
	// SetBlockCursor stores the last processed block number for a chain
	SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error

	// CreateStory records a minted story; returns false when the token already exists
	CreateStory(ctx context.Context, story *schema.Story) (bool, error)
	// GetStoryByTokenID retrieves a story by its on-chain token identifier
	GetStoryByTokenID(ctx context.Context, tokenID string) (*schema.Story, error)
	// UpdateStoryMetadata attaches the resolved metadata document to a story
	UpdateStoryMetadata(ctx context.Context, tokenID string, title string, metadata datatypes.JSON) error

	// CreateListing records a marketplace listing and its asking price point;
	// returns false when the listing already exists
	CreateListing(ctx context.Context, listing *schema.Listing) (bool, error)
	// GetListingByListingID retrieves a listing by its on-chain identifier
	GetListingByListingID(ctx context.Context, listingID string) (*schema.Listing, error)
	// SearchListings returns listings matching the filter, newest first
	SearchListings(ctx context.Context, filter ListingFilter) ([]schema.Listing, error)

	// ApplyPurchase settles a single-token purchase in one transaction: records
	// the sale, consumes the listing, transfers ownership, appends price history
	ApplyPurchase(ctx context.Context, input PurchaseInput) (PurchaseResult, error)
	// ApplyBundlePurchase settles a bundle purchase atomically across all
	// constituent tokens; returns false when the bundle was already recorded
	ApplyBundlePurchase(ctx context.Context, input BundlePurchaseInput) (bool, error)

	// CreateOffer records an open offer and its price point; returns false
	// when the offer already exists
	CreateOffer(ctx context.Context, offer *schema.Offer) (bool, error)
	// GetOfferByOfferID retrieves an offer by its on-chain identifier
	GetOfferByOfferID(ctx context.Context, offerID string) (*schema.Offer, error)
	// AcceptOffer settles a pending offer: marks it accepted, records the sale
	// from the current owner, transfers ownership, appends price history
	AcceptOffer(ctx context.Context, input AcceptOfferInput) (*schema.Sale, error)

	// GetSalesHistory returns settled sales matching the filter, newest first
	GetSalesHistory(ctx context.Context, filter SalesFilter) ([]schema.Sale, error)
	// GetPriceHistory returns a token's price points, newest first
	GetPriceHistory(ctx context.Context, tokenID string, limit int) ([]schema.PriceHistory, error)

	// CreateNotification stores a notification row
	CreateNotification(ctx context.Context, notification *schema.Notification) error
	// ListNotifications returns a recipient's notifications, newest first
	ListNotifications(ctx context.Context, recipient string, unreadOnly bool, limit, offset int) ([]schema.Notification, error)
	// CountUnreadNotifications returns the number of unread notifications for a recipient
	CountUnreadNotifications(ctx context.Context, recipient string) (int64, error)
	// MarkNotificationRead marks one of a recipient's notifications as read
	MarkNotificationRead(ctx context.Context, id string, recipient string) error
	// MarkAllNotificationsRead marks all of a recipient's notifications as read
	MarkAllNotificationsRead(ctx context.Context, recipient string) (int64, error)

	// CreateProcessingJob stores a content ingestion job
	CreateProcessingJob(ctx context.Context, job *schema.ProcessingJob) error
	// UpdateProcessingJob persists changes to a content ingestion job
	UpdateProcessingJob(ctx context.Context, job *schema.ProcessingJob) error
	// GetProcessingJob retrieves a content ingestion job by ID
	GetProcessingJob(ctx context.Context, id string) (*schema.ProcessingJob, error)

	// CreateDeadLetter stores an event that exhausted reconciliation retries
	CreateDeadLetter(ctx context.Context, deadLetter *schema.DeadLetter) error
}
