package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/mocks"
	"github.com/lorefolk/heritage-ledger/internal/notify"
	"github.com/lorefolk/heritage-ledger/internal/store"
	"github.com/lorefolk/heritage-ledger/internal/store/schema"
)

func TestSubmitListing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().GetStoryByTokenID(gomock.Any(), "7").
		Return(&schema.Story{TokenID: "7", CurrentOwner: "0xSeller"}, nil)

	var created *schema.Listing
	st.EXPECT().CreateListing(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, l *schema.Listing) (bool, error) {
			created = l
			return true, nil
		})

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	listing, err := r.SubmitListing(context.Background(), SubmitListingInput{
		ListingID:       "10",
		TokenID:         "7",
		Seller:          "0xseller", // ownership match is case-insensitive
		PriceMinorUnits: "3000000000000000000",
		ListedAt:        time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, schema.ListingStatusActive, listing.Status)
	assert.Equal(t, schema.ListingTypeFixed, listing.Type)
	assert.Equal(t, "3", listing.PriceDisplay.String())
}

func TestSubmitListingRejectsNonOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().GetStoryByTokenID(gomock.Any(), "7").
		Return(&schema.Story{TokenID: "7", CurrentOwner: "0xsomeoneelse"}, nil)

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	_, err := r.SubmitListing(context.Background(), SubmitListingInput{
		ListingID:       "10",
		TokenID:         "7",
		Seller:          "0xseller",
		PriceMinorUnits: "1000",
		ListedAt:        time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrNotCurrentOwner)
}

func TestSubmitListingRejectsDuplicateID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().GetStoryByTokenID(gomock.Any(), "7").
		Return(&schema.Story{TokenID: "7", CurrentOwner: "0xseller"}, nil)
	st.EXPECT().CreateListing(gomock.Any(), gomock.Any()).Return(false, nil)

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	_, err := r.SubmitListing(context.Background(), SubmitListingInput{
		ListingID:       "10",
		TokenID:         "7",
		Seller:          "0xseller",
		PriceMinorUnits: "1000",
		ListedAt:        time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrListingAlreadyExists)
}

func TestSubmitListingValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)
	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	ctx := context.Background()

	_, err := r.SubmitListing(ctx, SubmitListingInput{
		ListingID: "not-a-number", TokenID: "7", Seller: "0xs", PriceMinorUnits: "1000",
	})
	assert.Error(t, err)

	_, err = r.SubmitListing(ctx, SubmitListingInput{
		ListingID: "10", TokenID: "7", Seller: "0xs", PriceMinorUnits: "1.5",
	})
	assert.Error(t, err)

	_, err = r.SubmitListing(ctx, SubmitListingInput{
		ListingID: "10", TokenID: "7", Seller: "0xs", PriceMinorUnits: "1000",
		Type: schema.ListingTypeAuction,
	})
	assert.Error(t, err, "auction without end time")
}

func TestAcceptOfferNotifiesSeller(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	acceptedAt := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	st.EXPECT().GetOfferByOfferID(gomock.Any(), "50").
		Return(&schema.Offer{OfferID: "50", TokenID: "7", Offerer: "0xofferer"}, nil)
	st.EXPECT().GetStoryByTokenID(gomock.Any(), "7").
		Return(&schema.Story{TokenID: "7", CurrentOwner: "0xOWNER"}, nil)
	st.EXPECT().AcceptOffer(gomock.Any(), store.AcceptOfferInput{OfferID: "50", AcceptedAt: acceptedAt}).
		Return(&schema.Sale{
			TokenID:         "7",
			Seller:          "0xowner",
			Buyer:           "0xofferer",
			PriceMinorUnits: "1500000000000000000",
		}, nil)
	fanout.EXPECT().Notify(gomock.Any(), "0xowner", schema.NotificationKindSaleCompleted,
		gomock.Any(), gomock.Any(),
		notify.SalePayload{
			TokenID:         "7",
			Buyer:           "0xofferer",
			PriceMinorUnits: "1500000000000000000",
		})

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	sale, err := r.AcceptOffer(context.Background(), "50", "0xowner", acceptedAt)
	require.NoError(t, err)
	assert.Equal(t, "0xofferer", sale.Buyer)
}

func TestAcceptOfferRejectsNonOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().GetOfferByOfferID(gomock.Any(), "50").
		Return(&schema.Offer{OfferID: "50", TokenID: "7", Offerer: "0xofferer"}, nil)
	st.EXPECT().GetStoryByTokenID(gomock.Any(), "7").
		Return(&schema.Story{TokenID: "7", CurrentOwner: "0xowner"}, nil)

	// no AcceptOffer or Notify expectation; the settlement never starts
	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	_, err := r.AcceptOffer(context.Background(), "50", "0xintruder", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrNotCurrentOwner)
}

func TestAcceptOfferNotPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().GetOfferByOfferID(gomock.Any(), "50").
		Return(&schema.Offer{OfferID: "50", TokenID: "7"}, nil)
	st.EXPECT().GetStoryByTokenID(gomock.Any(), "7").
		Return(&schema.Story{TokenID: "7", CurrentOwner: "0xowner"}, nil)
	st.EXPECT().AcceptOffer(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrOfferNotPending)

	// no Notify expectation; a failed accept must not notify anyone
	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	_, err := r.AcceptOffer(context.Background(), "50", "0xowner", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrOfferNotPending)
}
