package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Bundle represents the bundles table - multi-token purchases settled in one transaction
type Bundle struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Buyer is the address that bought the bundle
	Buyer string `gorm:"column:buyer;not null;type:text;index"`
	// TokenIDs is the JSON array of token identifiers included in the bundle
	TokenIDs datatypes.JSON `gorm:"column:token_ids;not null;type:jsonb"`
	// TotalMinorUnits is the total price paid for the bundle in atomic currency units
	TotalMinorUnits string `gorm:"column:total_minor_units;not null;type:numeric(78,0)"`
	// TotalDisplay is the total price in whole currency units, precomputed at write time
	TotalDisplay decimal.Decimal `gorm:"column:total_display;not null;type:numeric(96,18)"`
	// DiscountMinorUnits is the bundle discount applied, in atomic units
	DiscountMinorUnits string `gorm:"column:discount_minor_units;not null;type:numeric(78,0)"`
	// PlatformFeeMinor is the platform fee on the bundle, in atomic units
	PlatformFeeMinor string `gorm:"column:platform_fee_minor;not null;type:numeric(78,0)"`
	// TxHash is the transaction hash of the bundle purchase
	TxHash string `gorm:"column:tx_hash;not null;uniqueIndex;type:text"`
	// BlockNumber is the block number of the bundle purchase
	BlockNumber uint64 `gorm:"column:block_number;not null;type:bigint"`
	// OccurredAt is the blockchain timestamp of the bundle purchase
	OccurredAt time.Time `gorm:"column:occurred_at;not null;type:timestamptz"`
	// CreatedAt is the timestamp when this record was first written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Bundle model
func (Bundle) TableName() string {
	return "bundles"
}
