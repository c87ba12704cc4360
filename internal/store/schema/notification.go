package schema

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationKind classifies a user-facing notification
type NotificationKind string

const (
	// NotificationKindSaleCompleted tells a seller their token was sold
	NotificationKindSaleCompleted NotificationKind = "sale_completed"
	// NotificationKindOfferReceived tells an owner an offer was made on their token
	NotificationKindOfferReceived NotificationKind = "offer_received"
	// NotificationKindBundleSold tells each seller their token was sold in a bundle
	NotificationKindBundleSold NotificationKind = "bundle_sold"
)

// Notification represents the notifications table - per-recipient event notifications
type Notification struct {
	// ID is a UUID assigned at creation
	ID string `gorm:"column:id;primaryKey;type:uuid"`
	// Recipient is the address this notification is addressed to
	Recipient string `gorm:"column:recipient;not null;type:text;index:idx_notifications_recipient_read,priority:1"`
	// Kind classifies the notification
	Kind NotificationKind `gorm:"column:kind;not null;type:text"`
	// Title is the short human-readable headline
	Title string `gorm:"column:title;not null;type:text"`
	// Message is the human-readable body text
	Message string `gorm:"column:message;not null;type:text"`
	// Payload carries kind-specific details as JSON
	Payload datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	// Read indicates whether the recipient has seen the notification
	Read bool `gorm:"column:read;not null;default:false;index:idx_notifications_recipient_read,priority:2"`
	// ReadAt is the timestamp when the notification was marked read
	ReadAt *time.Time `gorm:"column:read_at;type:timestamptz"`
	// CreatedAt is the timestamp when this record was first written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz;index"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
