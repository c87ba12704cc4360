package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale represents the sales table - completed purchases, one row per token sold.
// A bundle purchase produces one row per constituent token, all sharing a BundleID.
type Sale struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TokenID is the token that changed hands
	TokenID string `gorm:"column:token_id;not null;type:numeric(78,0);index;uniqueIndex:idx_sales_tx_token,priority:2"`
	// ListingID is the listing that was consumed (nil for offer-accept and bundle sales)
	ListingID *string `gorm:"column:listing_id;type:numeric(78,0)"`
	// Seller is the address that sold the token
	Seller string `gorm:"column:seller;not null;type:text;index"`
	// Buyer is the address that bought the token
	Buyer string `gorm:"column:buyer;not null;type:text;index"`
	// PriceMinorUnits is the gross sale price in atomic currency units
	PriceMinorUnits string `gorm:"column:price_minor_units;not null;type:numeric(78,0)"`
	// PriceDisplay is the gross sale price in whole currency units, precomputed at write time
	PriceDisplay decimal.Decimal `gorm:"column:price_display;not null;type:numeric(96,18)"`
	// PlatformFeeMinor is the platform fee deducted from the sale, in atomic units
	PlatformFeeMinor string `gorm:"column:platform_fee_minor;not null;type:numeric(78,0)"`
	// RoyaltyMinor is the author royalty deducted from the sale, in atomic units
	RoyaltyMinor string `gorm:"column:royalty_minor;not null;type:numeric(78,0)"`
	// BundleID references the bundle this sale was part of (nil for single sales)
	BundleID *uint64 `gorm:"column:bundle_id;type:bigint;index"`
	// TxHash is the transaction hash of the purchase event
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_sales_tx_token,priority:1"`
	// BlockNumber is the block number of the purchase event
	BlockNumber uint64 `gorm:"column:block_number;not null;type:bigint"`
	// OccurredAt is the blockchain timestamp of the purchase event
	OccurredAt time.Time `gorm:"column:occurred_at;not null;type:timestamptz;index"`
	// CreatedAt is the timestamp when this record was first written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}
