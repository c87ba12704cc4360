package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// GetBlockCursor retrieves the last processed block number for a chain
func (s *pgStore) GetBlockCursor(ctx context.Context, chain string) (uint64, error) {
	key := fmt.Sprintf("block_cursor:%s", chain)

	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	blockNumber, err := strconv.ParseUint(kv.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block cursor: %w", err)
	}

	return blockNumber, nil
}

// SetBlockCursor stores the last processed block number for a chain
func (s *pgStore) SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error {
	key := fmt.Sprintf("block_cursor:%s", chain)

	kv := schema.KeyValueStore{
		Key:   key,
		Value: strconv.FormatUint(blockNumber, 10),
	}

	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set block cursor: %w", err)
	}

	return nil
}

// CreateStory records a minted story. The token ID is the natural key; an
// existing row is left untouched and the method reports created=false.
func (s *pgStore) CreateStory(ctx context.Context, story *schema.Story) (bool, error) {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		DoNothing: true,
	}).Create(story)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create story: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetStoryByTokenID retrieves a story by its on-chain token identifier
func (s *pgStore) GetStoryByTokenID(ctx context.Context, tokenID string) (*schema.Story, error) {
	var story schema.Story
	err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&story).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	return &story, nil
}

// UpdateStoryMetadata attaches the resolved metadata document to a story
func (s *pgStore) UpdateStoryMetadata(ctx context.Context, tokenID string, title string, metadata datatypes.JSON) error {
	result := s.db.WithContext(ctx).Model(&schema.Story{}).
		Where("token_id = ?", tokenID).
		Updates(map[string]interface{}{
			"title":      title,
			"metadata":   metadata,
			"updated_at": gorm.Expr("now()"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update story metadata: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrStoryNotFound
	}

	return nil
}

// CreateListing records a marketplace listing keyed by its on-chain listing ID
// and appends its asking price to the token's history
func (s *pgStore) CreateListing(ctx context.Context, listing *schema.Listing) (bool, error) {
	var created bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "listing_id"}},
			DoNothing: true,
		}).Create(listing)
		if result.Error != nil {
			return fmt.Errorf("failed to create listing: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		created = true

		dedupeKey := listing.TxHash
		if dedupeKey == "" {
			dedupeKey = listing.ListingID
		}
		return appendPricePoint(tx, schema.PriceHistory{
			TokenID:         listing.TokenID,
			EventType:       schema.PriceEventTypeListed,
			PriceMinorUnits: listing.PriceMinorUnits,
			PriceDisplay:    listing.PriceDisplay,
			TxHash:          dedupeKey,
			BlockNumber:     listing.BlockNumber,
			OccurredAt:      listing.ListedAt,
		})
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

// GetListingByListingID retrieves a listing by its on-chain identifier
func (s *pgStore) GetListingByListingID(ctx context.Context, listingID string) (*schema.Listing, error) {
	var listing schema.Listing
	err := s.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotActive
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	return &listing, nil
}

// SearchListings returns listings matching the filter, newest first
func (s *pgStore) SearchListings(ctx context.Context, filter ListingFilter) ([]schema.Listing, error) {
	status := filter.Status
	if status == "" {
		status = schema.ListingStatusActive
	}

	query := s.db.WithContext(ctx).Model(&schema.Listing{}).
		Where("listings.status = ?", status)

	if filter.TokenID != "" {
		query = query.Where("listings.token_id = ?", filter.TokenID)
	}
	if filter.Seller != "" {
		query = query.Where("listings.seller = ?", filter.Seller)
	}
	if filter.Tribe != "" || filter.License != "" || filter.ConsentGranted != nil || filter.ProvenanceVerified != nil {
		query = query.Joins("JOIN stories ON stories.token_id = listings.token_id")
	}
	if filter.Tribe != "" {
		query = query.Where("stories.tribe = ?", filter.Tribe)
	}
	if filter.License != "" {
		query = query.Where("stories.metadata ->> 'license' = ?", filter.License)
	}
	if filter.ConsentGranted != nil {
		query = query.Where("COALESCE((stories.metadata ->> 'consentGranted')::boolean, false) = ?", *filter.ConsentGranted)
	}
	if filter.ProvenanceVerified != nil {
		query = query.Where("COALESCE((stories.metadata ->> 'provenanceVerified')::boolean, false) = ?", *filter.ProvenanceVerified)
	}
	// Price bounds compare on the exact minor-unit column; the display
	// decimal is presentation only
	if filter.MinPriceMinorUnits != "" {
		if !domain.ValidMinorUnits(filter.MinPriceMinorUnits) {
			return nil, fmt.Errorf("invalid minimum price %q", filter.MinPriceMinorUnits)
		}
		query = query.Where("listings.price_minor_units >= ?::numeric", filter.MinPriceMinorUnits)
	}
	if filter.MaxPriceMinorUnits != "" {
		if !domain.ValidMinorUnits(filter.MaxPriceMinorUnits) {
			return nil, fmt.Errorf("invalid maximum price %q", filter.MaxPriceMinorUnits)
		}
		query = query.Where("listings.price_minor_units <= ?::numeric", filter.MaxPriceMinorUnits)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var listings []schema.Listing
	err := query.Order("listings.listed_at DESC, listings.id DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}

	return listings, nil
}

// ApplyPurchase settles a single-token purchase in one transaction
func (s *pgStore) ApplyPurchase(ctx context.Context, input PurchaseInput) (PurchaseResult, error) {
	var result PurchaseResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		priceDisplay, err := domain.DisplayAmount(input.PriceMinorUnits)
		if err != nil {
			return fmt.Errorf("invalid sale price: %w", err)
		}

		sale := schema.Sale{
			TokenID:          input.TokenID,
			ListingID:        &input.ListingID,
			Seller:           input.Seller,
			Buyer:            input.Buyer,
			PriceMinorUnits:  input.PriceMinorUnits,
			PriceDisplay:     priceDisplay,
			PlatformFeeMinor: input.PlatformFeeMinor,
			RoyaltyMinor:     input.RoyaltyMinor,
			TxHash:           input.TxHash,
			BlockNumber:      input.BlockNumber,
			OccurredAt:       input.OccurredAt,
		}

		// The (tx_hash, token_id) unique index makes replays a no-op.
		saleResult := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_hash"}, {Name: "token_id"}},
			DoNothing: true,
		}).Create(&sale)
		if saleResult.Error != nil {
			return fmt.Errorf("failed to create sale: %w", saleResult.Error)
		}
		if saleResult.RowsAffected == 0 {
			result.Applied = false
			result.ListingMatched = true
			return nil
		}
		result.Applied = true

		// Consume the listing only while it is still active. A zero row count
		// means the chain settled a listing this ledger never saw as active.
		listingResult := tx.Model(&schema.Listing{}).
			Where("listing_id = ? AND status = ?", input.ListingID, schema.ListingStatusActive).
			Updates(map[string]interface{}{
				"status":     schema.ListingStatusSold,
				"closed_at":  input.OccurredAt,
				"updated_at": gorm.Expr("now()"),
			})
		if listingResult.Error != nil {
			return fmt.Errorf("failed to consume listing: %w", listingResult.Error)
		}
		result.ListingMatched = listingResult.RowsAffected > 0

		if err := transferOwnership(tx, input.TokenID, input.Buyer); err != nil {
			return err
		}

		return appendPricePoint(tx, schema.PriceHistory{
			TokenID:         input.TokenID,
			EventType:       schema.PriceEventTypeSold,
			PriceMinorUnits: input.PriceMinorUnits,
			PriceDisplay:    priceDisplay,
			TxHash:          input.TxHash,
			BlockNumber:     input.BlockNumber,
			OccurredAt:      input.OccurredAt,
		})
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	return result, nil
}

// ApplyBundlePurchase settles a bundle purchase atomically across all
// constituent tokens. The total net of discount is split evenly per token,
// with the remainder allocated to the first token.
func (s *pgStore) ApplyBundlePurchase(ctx context.Context, input BundlePurchaseInput) (bool, error) {
	if len(input.TokenIDs) == 0 {
		return false, errors.New("bundle has no tokens")
	}

	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		totalDisplay, err := domain.DisplayAmount(input.TotalMinorUnits)
		if err != nil {
			return fmt.Errorf("invalid bundle total: %w", err)
		}

		tokenIDsJSON, err := json.Marshal(input.TokenIDs)
		if err != nil {
			return fmt.Errorf("failed to encode bundle token ids: %w", err)
		}

		bundle := schema.Bundle{
			Buyer:              input.Buyer,
			TokenIDs:           datatypes.JSON(tokenIDsJSON),
			TotalMinorUnits:    input.TotalMinorUnits,
			TotalDisplay:       totalDisplay,
			DiscountMinorUnits: input.DiscountMinorUnits,
			PlatformFeeMinor:   input.PlatformFeeMinor,
			TxHash:             input.TxHash,
			BlockNumber:        input.BlockNumber,
			OccurredAt:         input.OccurredAt,
		}

		bundleResult := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_hash"}},
			DoNothing: true,
		}).Create(&bundle)
		if bundleResult.Error != nil {
			return fmt.Errorf("failed to create bundle: %w", bundleResult.Error)
		}
		if bundleResult.RowsAffected == 0 {
			return nil
		}
		applied = true

		allocations, err := domain.SplitMinorUnits(input.TotalMinorUnits, len(input.TokenIDs))
		if err != nil {
			return err
		}

		for i, tokenID := range input.TokenIDs {
			var story schema.Story
			if err := tx.Where("token_id = ?", tokenID).First(&story).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("bundle token %s: %w", tokenID, domain.ErrStoryNotFound)
				}
				return fmt.Errorf("failed to load bundle token %s: %w", tokenID, err)
			}

			allocDisplay, err := domain.DisplayAmount(allocations[i])
			if err != nil {
				return fmt.Errorf("invalid bundle allocation: %w", err)
			}

			sale := schema.Sale{
				TokenID:          tokenID,
				Seller:           story.CurrentOwner,
				Buyer:            input.Buyer,
				PriceMinorUnits:  allocations[i],
				PriceDisplay:     allocDisplay,
				PlatformFeeMinor: "0",
				RoyaltyMinor:     "0",
				BundleID:         &bundle.ID,
				TxHash:           input.TxHash,
				BlockNumber:      input.BlockNumber,
				OccurredAt:       input.OccurredAt,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tx_hash"}, {Name: "token_id"}},
				DoNothing: true,
			}).Create(&sale).Error; err != nil {
				return fmt.Errorf("failed to create bundle sale: %w", err)
			}

			// Listings on bundled tokens are consumed by the bundle settlement.
			if err := tx.Model(&schema.Listing{}).
				Where("token_id = ? AND status = ?", tokenID, schema.ListingStatusActive).
				Updates(map[string]interface{}{
					"status":     schema.ListingStatusSold,
					"closed_at":  input.OccurredAt,
					"updated_at": gorm.Expr("now()"),
				}).Error; err != nil {
				return fmt.Errorf("failed to consume bundle listing: %w", err)
			}

			if err := transferOwnership(tx, tokenID, input.Buyer); err != nil {
				return err
			}

			if err := appendPricePoint(tx, schema.PriceHistory{
				TokenID:         tokenID,
				EventType:       schema.PriceEventTypeSold,
				PriceMinorUnits: allocations[i],
				PriceDisplay:    allocDisplay,
				TxHash:          input.TxHash,
				BlockNumber:     input.BlockNumber,
				OccurredAt:      input.OccurredAt,
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

// CreateOffer records an open offer keyed by its on-chain offer ID
func (s *pgStore) CreateOffer(ctx context.Context, offer *schema.Offer) (bool, error) {
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "offer_id"}},
			DoNothing: true,
		}).Create(offer)
		if result.Error != nil {
			return fmt.Errorf("failed to create offer: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		created = true

		return appendPricePoint(tx, schema.PriceHistory{
			TokenID:         offer.TokenID,
			EventType:       schema.PriceEventTypeOffer,
			PriceMinorUnits: offer.PriceMinorUnits,
			PriceDisplay:    offer.PriceDisplay,
			TxHash:          offer.TxHash,
			BlockNumber:     offer.BlockNumber,
			OccurredAt:      offer.OfferedAt,
		})
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

// GetOfferByOfferID retrieves an offer by its on-chain identifier
func (s *pgStore) GetOfferByOfferID(ctx context.Context, offerID string) (*schema.Offer, error) {
	var offer schema.Offer
	err := s.db.WithContext(ctx).Where("offer_id = ?", offerID).First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOfferNotPending
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return &offer, nil
}

// AcceptOffer settles a pending offer. The seller is the token's owner of
// record at acceptance time, not the owner when the offer was made.
func (s *pgStore) AcceptOffer(ctx context.Context, input AcceptOfferInput) (*schema.Sale, error) {
	var sale *schema.Sale

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer schema.Offer
		if err := tx.Where("offer_id = ?", input.OfferID).First(&offer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOfferNotPending
			}
			return fmt.Errorf("failed to load offer: %w", err)
		}

		// Status-guarded update so a concurrent accept loses cleanly.
		offerResult := tx.Model(&schema.Offer{}).
			Where("offer_id = ? AND status = ?", input.OfferID, schema.OfferStatusPending).
			Updates(map[string]interface{}{
				"status":      schema.OfferStatusAccepted,
				"resolved_at": input.AcceptedAt,
				"updated_at":  gorm.Expr("now()"),
			})
		if offerResult.Error != nil {
			return fmt.Errorf("failed to accept offer: %w", offerResult.Error)
		}
		if offerResult.RowsAffected == 0 {
			return domain.ErrOfferNotPending
		}

		var story schema.Story
		if err := tx.Where("token_id = ?", offer.TokenID).First(&story).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrStoryNotFound
			}
			return fmt.Errorf("failed to load story: %w", err)
		}

		newSale := schema.Sale{
			TokenID:          offer.TokenID,
			Seller:           story.CurrentOwner,
			Buyer:            offer.Offerer,
			PriceMinorUnits:  offer.PriceMinorUnits,
			PriceDisplay:     offer.PriceDisplay,
			PlatformFeeMinor: "0",
			RoyaltyMinor:     "0",
			TxHash:           offer.TxHash,
			BlockNumber:      offer.BlockNumber,
			OccurredAt:       input.AcceptedAt,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_hash"}, {Name: "token_id"}},
			DoNothing: true,
		}).Create(&newSale).Error; err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}

		// The previous owner's open listings are stale once the token moves.
		if err := tx.Model(&schema.Listing{}).
			Where("token_id = ? AND status = ?", offer.TokenID, schema.ListingStatusActive).
			Updates(map[string]interface{}{
				"status":     schema.ListingStatusCancelled,
				"closed_at":  input.AcceptedAt,
				"updated_at": gorm.Expr("now()"),
			}).Error; err != nil {
			return fmt.Errorf("failed to cancel stale listings: %w", err)
		}

		if err := transferOwnership(tx, offer.TokenID, offer.Offerer); err != nil {
			return err
		}

		if err := appendPricePoint(tx, schema.PriceHistory{
			TokenID:         offer.TokenID,
			EventType:       schema.PriceEventTypeSold,
			PriceMinorUnits: offer.PriceMinorUnits,
			PriceDisplay:    offer.PriceDisplay,
			TxHash:          offer.TxHash,
			BlockNumber:     offer.BlockNumber,
			OccurredAt:      input.AcceptedAt,
		}); err != nil {
			return err
		}

		sale = &newSale
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

// GetSalesHistory returns settled sales matching the filter, newest first
func (s *pgStore) GetSalesHistory(ctx context.Context, filter SalesFilter) ([]schema.Sale, error) {
	query := s.db.WithContext(ctx).Model(&schema.Sale{})

	if filter.TokenID != "" {
		query = query.Where("token_id = ?", filter.TokenID)
	}
	if filter.Seller != "" {
		query = query.Where("seller = ?", filter.Seller)
	}
	if filter.Buyer != "" {
		query = query.Where("buyer = ?", filter.Buyer)
	}
	if filter.Since != nil {
		query = query.Where("occurred_at >= ?", filter.Since)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var sales []schema.Sale
	err := query.Order("occurred_at DESC, id DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sales history: %w", err)
	}

	return sales, nil
}

// GetPriceHistory returns a token's price points, newest first
func (s *pgStore) GetPriceHistory(ctx context.Context, tokenID string, limit int) ([]schema.PriceHistory, error) {
	if limit <= 0 {
		limit = 50
	}

	var points []schema.PriceHistory
	err := s.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Order("occurred_at DESC, id DESC").
		Limit(limit).
		Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}

	return points, nil
}

// CreateNotification stores a notification row
func (s *pgStore) CreateNotification(ctx context.Context, notification *schema.Notification) error {
	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListNotifications returns a recipient's notifications, newest first
func (s *pgStore) ListNotifications(ctx context.Context, recipient string, unreadOnly bool, limit, offset int) ([]schema.Notification, error) {
	query := s.db.WithContext(ctx).Where("recipient = ?", recipient)
	if unreadOnly {
		query = query.Where("read = false")
	}

	if limit <= 0 {
		limit = 50
	}

	var notifications []schema.Notification
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// CountUnreadNotifications returns the number of unread notifications for a recipient
func (s *pgStore) CountUnreadNotifications(ctx context.Context, recipient string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.Notification{}).
		Where("recipient = ? AND read = false", recipient).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkNotificationRead marks one of a recipient's notifications as read
func (s *pgStore) MarkNotificationRead(ctx context.Context, id string, recipient string) error {
	result := s.db.WithContext(ctx).Model(&schema.Notification{}).
		Where("id = ? AND recipient = ? AND read = false", id, recipient).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": gorm.Expr("now()"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}

	return nil
}

// MarkAllNotificationsRead marks all of a recipient's notifications as read
func (s *pgStore) MarkAllNotificationsRead(ctx context.Context, recipient string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&schema.Notification{}).
		Where("recipient = ? AND read = false", recipient).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": gorm.Expr("now()"),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// CreateProcessingJob stores a content ingestion job
func (s *pgStore) CreateProcessingJob(ctx context.Context, job *schema.ProcessingJob) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create processing job: %w", err)
	}

	return nil
}

// UpdateProcessingJob persists changes to a content ingestion job
func (s *pgStore) UpdateProcessingJob(ctx context.Context, job *schema.ProcessingJob) error {
	if err := s.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("failed to update processing job: %w", err)
	}

	return nil
}

// GetProcessingJob retrieves a content ingestion job by ID
func (s *pgStore) GetProcessingJob(ctx context.Context, id string) (*schema.ProcessingJob, error) {
	var job schema.ProcessingJob
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("processing job %s not found", id)
		}
		return nil, fmt.Errorf("failed to get processing job: %w", err)
	}

	return &job, nil
}

// CreateDeadLetter stores an event that exhausted reconciliation retries.
// Replays of the same event land on the same (tx_hash, log_index) row.
func (s *pgStore) CreateDeadLetter(ctx context.Context, deadLetter *schema.DeadLetter) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx_hash"}, {Name: "log_index"}},
		DoNothing: true,
	}).Create(deadLetter).Error
	if err != nil {
		return fmt.Errorf("failed to create dead letter: %w", err)
	}

	return nil
}

// transferOwnership points a story's current owner at the buyer
func transferOwnership(tx *gorm.DB, tokenID string, newOwner string) error {
	result := tx.Model(&schema.Story{}).
		Where("token_id = ?", tokenID).
		Updates(map[string]interface{}{
			"current_owner": newOwner,
			"updated_at":    gorm.Expr("now()"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to transfer ownership: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrStoryNotFound
	}

	return nil
}

// appendPricePoint appends to a token's price history, deduplicating on
// (token_id, tx_hash, event_type)
func appendPricePoint(tx *gorm.DB, point schema.PriceHistory) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}, {Name: "tx_hash"}, {Name: "event_type"}},
		DoNothing: true,
	}).Create(&point).Error
	if err != nil {
		return fmt.Errorf("failed to append price point: %w", err)
	}

	return nil
}

