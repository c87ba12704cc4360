package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/lorefolk/heritage-ledger/internal/domain"
)

// DeadLetter represents the dead_letters table - chain events that failed
// reconciliation after exhausting all retry attempts
type DeadLetter struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Kind is the event kind that failed
	Kind domain.EventKind `gorm:"column:kind;not null;type:text"`
	// TxHash is the transaction hash of the failed event
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_dead_letters_tx_log,priority:1"`
	// LogIndex is the log index of the failed event within its transaction
	LogIndex uint `gorm:"column:log_index;not null;uniqueIndex:idx_dead_letters_tx_log,priority:2"`
	// BlockNumber is the block number of the failed event
	BlockNumber uint64 `gorm:"column:block_number;not null;type:bigint"`
	// Payload is the decoded event as JSON, kept for manual replay
	Payload datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	// Attempts is the number of reconciliation attempts made
	Attempts int `gorm:"column:attempts;not null"`
	// LastError is the error from the final attempt
	LastError string `gorm:"column:last_error;not null;type:text"`
	// CreatedAt is the timestamp when this record was written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the DeadLetter model
func (DeadLetter) TableName() string {
	return "dead_letters"
}
