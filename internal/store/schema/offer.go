package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferStatus represents the lifecycle state of an offer
type OfferStatus string

const (
	// OfferStatusPending indicates the offer awaits the owner's decision
	OfferStatusPending OfferStatus = "pending"
	// OfferStatusAccepted indicates the owner accepted the offer
	OfferStatusAccepted OfferStatus = "accepted"
	// OfferStatusRejected indicates the owner rejected the offer
	OfferStatusRejected OfferStatus = "rejected"
	// OfferStatusExpired indicates the offer lapsed before a decision
	OfferStatusExpired OfferStatus = "expired"
)

// Offer represents the offers table - open purchase offers on tokens
type Offer struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// OfferID is the on-chain offer identifier
	OfferID string `gorm:"column:offer_id;not null;uniqueIndex;type:numeric(78,0)"`
	// TokenID is the token the offer targets
	TokenID string `gorm:"column:token_id;not null;type:numeric(78,0);index:idx_offers_token_status,priority:1"`
	// Offerer is the address that made the offer
	Offerer string `gorm:"column:offerer;not null;type:text;index"`
	// PriceMinorUnits is the offered price in atomic currency units
	PriceMinorUnits string `gorm:"column:price_minor_units;not null;type:numeric(78,0)"`
	// PriceDisplay is the offered price in whole currency units, precomputed at write time
	PriceDisplay decimal.Decimal `gorm:"column:price_display;not null;type:numeric(96,18)"`
	// Status is the offer lifecycle state
	Status OfferStatus `gorm:"column:status;not null;type:text;index:idx_offers_token_status,priority:2"`
	// TxHash is the transaction hash of the offer event
	TxHash string `gorm:"column:tx_hash;not null;type:text"`
	// BlockNumber is the block number of the offer event
	BlockNumber uint64 `gorm:"column:block_number;not null;type:bigint"`
	// OfferedAt is the blockchain timestamp of the offer event
	OfferedAt time.Time `gorm:"column:offered_at;not null;type:timestamptz"`
	// ResolvedAt is the timestamp when the offer was accepted or declined
	ResolvedAt *time.Time `gorm:"column:resolved_at;type:timestamptz"`
	// CreatedAt is the timestamp when this record was first written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Offer model
func (Offer) TableName() string {
	return "offers"
}
