package reconciler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/logger"
	"github.com/lorefolk/heritage-ledger/internal/notify"
	"github.com/lorefolk/heritage-ledger/internal/store"
	"github.com/lorefolk/heritage-ledger/internal/store/schema"
)

// SubmitListingInput carries a seller-submitted listing record
type SubmitListingInput struct {
	// ListingID is the listing identifier, a base-10 integer string
	ListingID string
	// TokenID is the token being listed
	TokenID string
	// Seller is the authenticated address submitting the record
	Seller string
	// PriceMinorUnits is the asking price in atomic currency units
	PriceMinorUnits string
	// Type is fixed or auction (empty means fixed)
	Type schema.ListingType
	// EndTime is required for auction listings
	EndTime *time.Time
	// ListedAt is when the listing opened
	ListedAt time.Time
}

// SubmitListing records a seller-submitted off-chain listing. The write
// takes the same shape a replayed historical listing would, so the ledger
// cannot tell the two apart.
func (r *Reconciler) SubmitListing(ctx context.Context, input SubmitListingInput) (*schema.Listing, error) {
	if !domain.ValidMinorUnits(input.ListingID) {
		return nil, fmt.Errorf("invalid listing id %q", input.ListingID)
	}
	if !domain.ValidMinorUnits(input.PriceMinorUnits) {
		return nil, fmt.Errorf("invalid price %q", input.PriceMinorUnits)
	}
	if input.Type == "" {
		input.Type = schema.ListingTypeFixed
	}
	if input.Type == schema.ListingTypeAuction && input.EndTime == nil {
		return nil, fmt.Errorf("auction listings require an end time")
	}

	story, err := r.store.GetStoryByTokenID(ctx, input.TokenID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(story.CurrentOwner, input.Seller) {
		return nil, fmt.Errorf("%w: token %s belongs to %s",
			domain.ErrNotCurrentOwner, input.TokenID, story.CurrentOwner)
	}

	display, err := domain.DisplayAmount(input.PriceMinorUnits)
	if err != nil {
		return nil, err
	}

	listing := &schema.Listing{
		ListingID:       input.ListingID,
		TokenID:         input.TokenID,
		Seller:          input.Seller,
		PriceMinorUnits: input.PriceMinorUnits,
		PriceDisplay:    display,
		Type:            input.Type,
		Status:          schema.ListingStatusActive,
		ListedAt:        input.ListedAt,
		EndTime:         input.EndTime,
	}

	created, err := r.store.CreateListing(ctx, listing)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%w: %s", domain.ErrListingAlreadyExists, input.ListingID)
	}

	logger.InfoCtx(ctx, "listing submitted",
		zap.String("listing_id", input.ListingID),
		zap.String("token_id", input.TokenID),
		zap.String("seller", input.Seller))

	r.invalidate(input.TokenID)
	return listing, nil
}

// AcceptOffer settles a pending offer on behalf of the token's owner. Only
// the current owner of record may accept; the sale, the offer transition,
// the ownership transfer and the withdrawal of any stale listings commit
// together or not at all.
func (r *Reconciler) AcceptOffer(ctx context.Context, offerID, seller string, acceptedAt time.Time) (*schema.Sale, error) {
	offer, err := r.store.GetOfferByOfferID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	story, err := r.store.GetStoryByTokenID(ctx, offer.TokenID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(story.CurrentOwner, seller) {
		return nil, fmt.Errorf("%w: token %s belongs to %s",
			domain.ErrNotCurrentOwner, offer.TokenID, story.CurrentOwner)
	}

	sale, err := r.store.AcceptOffer(ctx, store.AcceptOfferInput{
		OfferID:    offerID,
		AcceptedAt: acceptedAt,
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "offer accepted",
		zap.String("offer_id", offerID),
		zap.String("token_id", sale.TokenID),
		zap.String("buyer", sale.Buyer))

	r.invalidate(sale.TokenID)
	r.notify(ctx, sale.Seller, schema.NotificationKindSaleCompleted,
		"Offer accepted",
		fmt.Sprintf("Your story %s was sold to %s", sale.TokenID, sale.Buyer),
		notify.SalePayload{
			TokenID:         sale.TokenID,
			Buyer:           sale.Buyer,
			PriceMinorUnits: sale.PriceMinorUnits,
			TxHash:          sale.TxHash,
		})
	return sale, nil
}
