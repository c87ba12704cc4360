package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus represents the lifecycle state of a marketplace listing.
// Transitions are monotonic: sold, cancelled and ended are sink states.
type ListingStatus string

const (
	// ListingStatusActive indicates the listing is open for purchase
	ListingStatusActive ListingStatus = "active"
	// ListingStatusSold indicates the listing was consumed by a purchase
	ListingStatusSold ListingStatus = "sold"
	// ListingStatusCancelled indicates the listing was withdrawn by the seller
	ListingStatusCancelled ListingStatus = "cancelled"
	// ListingStatusEnded indicates the listing expired without a sale
	ListingStatusEnded ListingStatus = "ended"
)

// ListingType distinguishes fixed-price listings from auctions
type ListingType string

const (
	// ListingTypeFixed is a buy-now listing at a fixed price
	ListingTypeFixed ListingType = "fixed"
	// ListingTypeAuction is a timed auction listing
	ListingTypeAuction ListingType = "auction"
)

// Listing represents the listings table - fixed-price marketplace listings
type Listing struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ListingID is the on-chain listing identifier
	ListingID string `gorm:"column:listing_id;not null;uniqueIndex;type:numeric(78,0)"`
	// TokenID is the token being listed
	TokenID string `gorm:"column:token_id;not null;type:numeric(78,0);index:idx_listings_token_status,priority:1"`
	// Seller is the address that created the listing
	Seller string `gorm:"column:seller;not null;type:text;index"`
	// PriceMinorUnits is the asking price in atomic currency units (up to 78 digits)
	PriceMinorUnits string `gorm:"column:price_minor_units;not null;type:numeric(78,0)"`
	// PriceDisplay is the asking price in whole currency units, precomputed at write time
	PriceDisplay decimal.Decimal `gorm:"column:price_display;not null;type:numeric(96,18)"`
	// Type distinguishes fixed-price listings from auctions
	Type ListingType `gorm:"column:type;not null;default:fixed;type:text"`
	// Status is the listing lifecycle state
	Status ListingStatus `gorm:"column:status;not null;type:text;index:idx_listings_token_status,priority:2"`
	// TxHash is the transaction hash of the listing event
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// BlockNumber is the block number of the listing event
	BlockNumber uint64 `gorm:"column:block_number;not null;type:bigint"`
	// ListedAt is the timestamp when the listing opened
	ListedAt time.Time `gorm:"column:listed_at;not null;type:timestamptz"`
	// EndTime is when an auction listing closes (nil for fixed listings)
	EndTime *time.Time `gorm:"column:end_time;type:timestamptz"`
	// ClosedAt is the timestamp when the listing left the active state
	ClosedAt *time.Time `gorm:"column:closed_at;type:timestamptz"`
	// CreatedAt is the timestamp when this record was first written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Listing model
func (Listing) TableName() string {
	return "listings"
}
