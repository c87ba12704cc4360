package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Story represents the stories table - one row per minted story token
type Story struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TokenID is the on-chain token identifier (string to support up to 78 digits)
	TokenID string `gorm:"column:token_id;not null;uniqueIndex;type:numeric(78,0)"`
	// CID is the IPFS content identifier of the story media
	CID string `gorm:"column:cid;not null;type:text"`
	// Author is the address that minted the story
	Author string `gorm:"column:author;not null;type:text;index"`
	// CurrentOwner is the address currently holding the token, updated on every sale
	CurrentOwner string `gorm:"column:current_owner;not null;type:text;index"`
	// Tribe is the cultural community the story is attributed to
	Tribe string `gorm:"column:tribe;not null;type:text;index"`
	// Title is the story title resolved from IPFS metadata (empty until enriched)
	Title string `gorm:"column:title;type:text"`
	// Metadata contains the raw metadata document fetched from IPFS
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb"`
	// MintTxHash is the transaction hash of the mint event
	MintTxHash string `gorm:"column:mint_tx_hash;not null;type:text"`
	// MintBlockNumber is the block number of the mint event
	MintBlockNumber uint64 `gorm:"column:mint_block_number;not null;type:bigint"`
	// MintedAt is the blockchain timestamp of the mint event
	MintedAt time.Time `gorm:"column:minted_at;not null;type:timestamptz"`
	// CreatedAt is the timestamp when this record was first written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Story model
func (Story) TableName() string {
	return "stories"
}
