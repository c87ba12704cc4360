package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
	"github.com/lorefolk/heritage-ledger/internal/logger"
	"github.com/lorefolk/heritage-ledger/internal/store"
	"github.com/lorefolk/heritage-ledger/internal/store/schema"
)

// Fanout delivers marketplace notifications to recipients. Delivery is best
// effort; ledger writes never fail because a notification could not be sent.
//
//go:generate mockgen -source=fanout.go -destination=../mocks/notify_fanout.go -package=mocks -mock_names=Fanout=MockFanout
type Fanout interface {
	// Notify persists a notification for the recipient and publishes it to
	// the notification stream. It returns the stored notification id, or an
	// empty string when nothing was stored.
	Notify(ctx context.Context, recipient string, kind schema.NotificationKind, title, message string, payload interface{}) string
}

// SalePayload describes a completed sale to the seller
type SalePayload struct {
	TokenID         string `json:"tokenId"`
	Buyer           string `json:"buyer"`
	PriceMinorUnits string `json:"priceMinorUnits"`
	TxHash          string `json:"txHash"`
}

// OfferPayload describes a received offer to the token owner
type OfferPayload struct {
	OfferID         string `json:"offerId"`
	TokenID         string `json:"tokenId"`
	Offerer         string `json:"offerer"`
	PriceMinorUnits string `json:"priceMinorUnits"`
}

// BundleSalePayload describes a bundle sale to one of its sellers
type BundleSalePayload struct {
	TokenID         string `json:"tokenId"`
	Buyer           string `json:"buyer"`
	PriceMinorUnits string `json:"priceMinorUnits"`
	TxHash          string `json:"txHash"`
}

// envelope is the wire form published to the stream
type envelope struct {
	ID        string                  `json:"id"`
	Recipient string                  `json:"recipient"`
	Kind      schema.NotificationKind `json:"kind"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Payload   json.RawMessage         `json:"payload"`
}

type fanout struct {
	store      store.Store
	js         adapter.JetStream
	streamName string
}

// New creates a fanout writing notification rows through the store and
// publishing to the named JetStream stream. A nil JetStream context disables
// publishing; rows are still written.
func New(st store.Store, js adapter.JetStream, streamName string) Fanout {
	return &fanout{
		store:      st,
		js:         js,
		streamName: streamName,
	}
}

func (f *fanout) Notify(ctx context.Context, recipient string, kind schema.NotificationKind, title, message string, payload interface{}) string {
	if recipient == "" {
		return ""
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to encode notification payload: %w", err),
			zap.String("recipient", recipient),
			zap.String("kind", string(kind)))
		return ""
	}

	notification := &schema.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Payload:   datatypes.JSON(body),
	}

	if err := f.store.CreateNotification(ctx, notification); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to store notification: %w", err),
			zap.String("recipient", recipient),
			zap.String("kind", string(kind)))
		return ""
	}

	f.publish(ctx, notification, body)
	return notification.ID
}

func (f *fanout) publish(ctx context.Context, notification *schema.Notification, body []byte) {
	if f.js == nil {
		return
	}

	data, err := json.Marshal(envelope{
		ID:        notification.ID,
		Recipient: notification.Recipient,
		Kind:      notification.Kind,
		Title:     notification.Title,
		Message:   notification.Message,
		Payload:   body,
	})
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to encode notification envelope: %w", err))
		return
	}

	subject := f.subject(notification.Kind, notification.Recipient)
	if _, err := f.js.Publish(ctx, subject, data); err != nil {
		logger.WarnCtx(ctx, "failed to publish notification",
			zap.String("subject", subject),
			zap.String("notification_id", notification.ID),
			zap.Error(err))
		return
	}

	logger.DebugCtx(ctx, "notification published",
		zap.String("subject", subject),
		zap.String("notification_id", notification.ID))
}

// subject builds "<stream>.<kind>.<recipient>" in lowercase so consumers can
// filter per kind or per address
func (f *fanout) subject(kind schema.NotificationKind, recipient string) string {
	return fmt.Sprintf("%s.%s.%s",
		strings.ToLower(f.streamName), string(kind), strings.ToLower(recipient))
}
