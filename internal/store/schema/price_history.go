package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceEventType classifies how a price point entered a token's history
type PriceEventType string

const (
	// PriceEventTypeListed is the asking price of a new listing
	PriceEventTypeListed PriceEventType = "listed"
	// PriceEventTypeSold is a settled purchase price; bundle settlements
	// record their per-token allocation under the same type
	PriceEventTypeSold PriceEventType = "sold"
	// PriceEventTypeOffer is the price of a created offer
	PriceEventTypeOffer PriceEventType = "offer"
)

// PriceHistory represents the price_history table - append-only price points per token
type PriceHistory struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TokenID is the token this price point belongs to
	TokenID string `gorm:"column:token_id;not null;type:numeric(78,0);uniqueIndex:idx_price_history_dedupe,priority:1"`
	// EventType classifies the origin of this price point
	EventType PriceEventType `gorm:"column:event_type;not null;type:text;uniqueIndex:idx_price_history_dedupe,priority:3"`
	// PriceMinorUnits is the price in atomic currency units
	PriceMinorUnits string `gorm:"column:price_minor_units;not null;type:numeric(78,0)"`
	// PriceDisplay is the price in whole currency units, precomputed at write time
	PriceDisplay decimal.Decimal `gorm:"column:price_display;not null;type:numeric(96,18)"`
	// TxHash is the transaction hash that produced this price point; listed
	// points from off-chain submissions carry the listing id instead
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_price_history_dedupe,priority:2"`
	// BlockNumber is the block number that produced this price point
	BlockNumber uint64 `gorm:"column:block_number;not null;type:bigint"`
	// OccurredAt is the blockchain timestamp of the price point
	OccurredAt time.Time `gorm:"column:occurred_at;not null;type:timestamptz;index"`
	// CreatedAt is the timestamp when this record was first written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the PriceHistory model
func (PriceHistory) TableName() string {
	return "price_history"
}
