package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/gateway"
	"github.com/lorefolk/heritage-ledger/internal/logger"
	"github.com/lorefolk/heritage-ledger/internal/mocks"
	"github.com/lorefolk/heritage-ledger/internal/notify"
	"github.com/lorefolk/heritage-ledger/internal/store"
	"github.com/lorefolk/heritage-ledger/internal/store/schema"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func fastConfig() Config {
	return Config{
		Workers:        2,
		QueueSize:      16,
		MaxAttempts:    2,
		RetryBaseDelay: time.Millisecond,
	}
}

func mintedEvent(tokenID, cid string) *domain.Event {
	return &domain.Event{
		Kind: domain.EventKindStoryMinted,
		Meta: domain.EventMeta{
			TxHash:      "0xmint" + tokenID,
			BlockNumber: 100,
			LogIndex:    0,
			Timestamp:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		StoryMinted: &domain.StoryMinted{
			TokenID: tokenID,
			CID:     cid,
			Author:  "0xauthor",
			Tribe:   "sami",
		},
	}
}

func purchasedEvent(tokenID, txHash string) *domain.Event {
	return &domain.Event{
		Kind: domain.EventKindStoryPurchased,
		Meta: domain.EventMeta{
			TxHash:      txHash,
			BlockNumber: 110,
			LogIndex:    2,
			Timestamp:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		StoryPurchased: &domain.StoryPurchased{
			ListingID:        "10",
			TokenID:          tokenID,
			Seller:           "0xseller",
			Buyer:            "0xbuyer",
			PriceMinorUnits:  "2000000000000000000",
			PlatformFeeMinor: "50000",
			RoyaltyMinor:     "25000",
		},
	}
}

func offerEvent(offerID, tokenID string) *domain.Event {
	return &domain.Event{
		Kind: domain.EventKindOfferCreated,
		Meta: domain.EventMeta{
			TxHash:      "0xoffer" + offerID,
			BlockNumber: 120,
			Timestamp:   time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		},
		OfferCreated: &domain.OfferCreated{
			OfferID:         offerID,
			TokenID:         tokenID,
			Offerer:         "0xofferer",
			PriceMinorUnits: "1500000000000000000",
		},
	}
}

func bundleEvent(tokenIDs []string, total string) *domain.Event {
	return &domain.Event{
		Kind: domain.EventKindBundlePurchased,
		Meta: domain.EventMeta{
			TxHash:      "0xbundle",
			BlockNumber: 130,
			Timestamp:   time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		},
		BundlePurchased: &domain.BundlePurchased{
			Buyer:                "0xbuyer",
			TokenIDs:             tokenIDs,
			TotalPriceMinorUnits: total,
			DiscountMinorUnits:   "0",
			PlatformFeeMinor:     "1",
		},
	}
}

func TestProcessMintedCreatesAndEnriches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	resolver := mocks.NewMockMetadataResolver(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	var stored *schema.Story
	st.EXPECT().CreateStory(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, story *schema.Story) (bool, error) {
			stored = story
			return true, nil
		})
	resolver.EXPECT().Resolve(gomock.Any(), "bafycid").
		Return(&gateway.StoryMetadata{
			Name: "The River Keeper",
			Raw:  json.RawMessage(`{"name":"The River Keeper"}`),
		}, nil)
	st.EXPECT().UpdateStoryMetadata(gomock.Any(), "7", "The River Keeper",
		datatypes.JSON(`{"name":"The River Keeper"}`)).Return(nil)

	r := New(st, resolver, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Process(context.Background(), mintedEvent("7", "bafycid")))

	require.NotNil(t, stored)
	assert.Equal(t, "7", stored.TokenID)
	assert.Equal(t, "0xauthor", stored.Author)
	assert.Equal(t, "0xauthor", stored.CurrentOwner)
	assert.Equal(t, "sami", stored.Tribe)
	assert.Equal(t, "0xmint7", stored.MintTxHash)
}

func TestProcessMintedDuplicateSkipsEnrichment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	resolver := mocks.NewMockMetadataResolver(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().CreateStory(gomock.Any(), gomock.Any()).Return(false, nil)

	r := New(st, resolver, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Process(context.Background(), mintedEvent("7", "bafycid")))
}

func TestProcessMintedToleratesEnrichmentFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	resolver := mocks.NewMockMetadataResolver(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().CreateStory(gomock.Any(), gomock.Any()).Return(true, nil)
	resolver.EXPECT().Resolve(gomock.Any(), "bafycid").
		Return(nil, errors.New("all gateways failed"))

	r := New(st, resolver, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Process(context.Background(), mintedEvent("7", "bafycid")))
}

func TestProcessPurchasedAppliesAndNotifiesSeller(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	var input store.PurchaseInput
	st.EXPECT().ApplyPurchase(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in store.PurchaseInput) (store.PurchaseResult, error) {
			input = in
			return store.PurchaseResult{Applied: true, ListingMatched: true}, nil
		})
	fanout.EXPECT().Notify(gomock.Any(), "0xseller", schema.NotificationKindSaleCompleted,
		gomock.Any(), gomock.Any(),
		notify.SalePayload{
			TokenID:         "7",
			Buyer:           "0xbuyer",
			PriceMinorUnits: "2000000000000000000",
			TxHash:          "0xsale1",
		})

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Process(context.Background(), purchasedEvent("7", "0xsale1")))

	assert.Equal(t, "10", input.ListingID)
	assert.Equal(t, "7", input.TokenID)
	assert.Equal(t, "0xsale1", input.TxHash)
	assert.Equal(t, uint64(110), input.BlockNumber)
}

func TestProcessPurchasedDuplicateIsSilent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().ApplyPurchase(gomock.Any(), gomock.Any()).
		Return(store.PurchaseResult{Applied: false}, nil)

	// no Notify expectation; duplicates must not re-notify
	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Process(context.Background(), purchasedEvent("7", "0xsale1")))
}

func TestProcessPurchasedPropagatesStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().ApplyPurchase(gomock.Any(), gomock.Any()).
		Return(store.PurchaseResult{}, domain.ErrStoryNotFound)

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	err := r.Process(context.Background(), purchasedEvent("7", "0xsale1"))
	assert.ErrorIs(t, err, domain.ErrStoryNotFound)
}

func TestProcessOfferCreatedNotifiesOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	var offer *schema.Offer
	st.EXPECT().CreateOffer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o *schema.Offer) (bool, error) {
			offer = o
			return true, nil
		})
	st.EXPECT().GetStoryByTokenID(gomock.Any(), "7").
		Return(&schema.Story{TokenID: "7", CurrentOwner: "0xowner"}, nil)
	fanout.EXPECT().Notify(gomock.Any(), "0xowner", schema.NotificationKindOfferReceived,
		gomock.Any(), gomock.Any(),
		notify.OfferPayload{
			OfferID:         "50",
			TokenID:         "7",
			Offerer:         "0xofferer",
			PriceMinorUnits: "1500000000000000000",
		})

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Process(context.Background(), offerEvent("50", "7")))

	require.NotNil(t, offer)
	assert.Equal(t, schema.OfferStatusPending, offer.Status)
	assert.Equal(t, "1.5", offer.PriceDisplay.String())
}

func TestProcessOfferCreatedToleratesMissingOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().CreateOffer(gomock.Any(), gomock.Any()).Return(true, nil)
	st.EXPECT().GetStoryByTokenID(gomock.Any(), "7").Return(nil, domain.ErrStoryNotFound)

	// the offer row stands even though nobody could be notified
	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Process(context.Background(), offerEvent("50", "7")))
}

func TestProcessBundleNotifiesEachSeller(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().GetStoryByTokenID(gomock.Any(), "7").
		Return(&schema.Story{TokenID: "7", CurrentOwner: "0xalice"}, nil)
	st.EXPECT().GetStoryByTokenID(gomock.Any(), "8").
		Return(&schema.Story{TokenID: "8", CurrentOwner: "0xbob"}, nil)
	st.EXPECT().ApplyBundlePurchase(gomock.Any(), gomock.Any()).Return(true, nil)

	// The remainder of the even split lands on the first token
	fanout.EXPECT().Notify(gomock.Any(), "0xalice", schema.NotificationKindBundleSold,
		gomock.Any(), gomock.Any(),
		notify.BundleSalePayload{TokenID: "7", Buyer: "0xbuyer", PriceMinorUnits: "4", TxHash: "0xbundle"})
	fanout.EXPECT().Notify(gomock.Any(), "0xbob", schema.NotificationKindBundleSold,
		gomock.Any(), gomock.Any(),
		notify.BundleSalePayload{TokenID: "8", Buyer: "0xbuyer", PriceMinorUnits: "3", TxHash: "0xbundle"})

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Process(context.Background(), bundleEvent([]string{"7", "8"}, "7")))
}

func TestProcessBundleDuplicateIsSilent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().GetStoryByTokenID(gomock.Any(), "7").
		Return(&schema.Story{TokenID: "7", CurrentOwner: "0xalice"}, nil)
	st.EXPECT().ApplyBundlePurchase(gomock.Any(), gomock.Any()).Return(false, nil)

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Process(context.Background(), bundleEvent([]string{"7"}, "5")))
}

func TestEnqueueRetriesThenDeadLetters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	st.EXPECT().ApplyPurchase(gomock.Any(), gomock.Any()).
		Return(store.PurchaseResult{}, errors.New("deadlock detected")).Times(2)

	var dead *schema.DeadLetter
	st.EXPECT().CreateDeadLetter(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dl *schema.DeadLetter) error {
			dead = dl
			return nil
		})

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Enqueue(context.Background(), purchasedEvent("7", "0xsale1")))
	r.Drain()

	require.NotNil(t, dead)
	assert.Equal(t, domain.EventKindStoryPurchased, dead.Kind)
	assert.Equal(t, "0xsale1", dead.TxHash)
	assert.Equal(t, 2, dead.Attempts)
	assert.Contains(t, dead.LastError, "deadlock detected")

	var replay domain.Event
	require.NoError(t, json.Unmarshal(dead.Payload, &replay))
	assert.Equal(t, "7", replay.StoryPurchased.TokenID)
}

func TestEnqueueSerializesSameToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)
	fanout.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	var mu sync.Mutex
	var order []string
	st.EXPECT().ApplyPurchase(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in store.PurchaseInput) (store.PurchaseResult, error) {
			mu.Lock()
			order = append(order, in.TxHash)
			mu.Unlock()
			return store.PurchaseResult{Applied: true, ListingMatched: true}, nil
		}).Times(3)

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	ctx := context.Background()
	require.NoError(t, r.Enqueue(ctx, purchasedEvent("7", "0xsale1")))
	require.NoError(t, r.Enqueue(ctx, purchasedEvent("7", "0xsale2")))
	require.NoError(t, r.Enqueue(ctx, purchasedEvent("7", "0xsale3")))
	r.Drain()

	assert.Equal(t, []string{"0xsale1", "0xsale2", "0xsale3"}, order)
}

func TestEnqueueDropsMalformedEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	require.NoError(t, r.Enqueue(context.Background(), &domain.Event{Kind: domain.EventKindStoryMinted}))
	require.NoError(t, r.Enqueue(context.Background(), nil))
	r.Drain()
}

func TestEnqueueBundleGatesInvolvedShards(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	fanout := mocks.NewMockFanout(ctrl)
	fanout.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	var mu sync.Mutex
	var order []string

	st.EXPECT().GetStoryByTokenID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tokenID string) (*schema.Story, error) {
			return &schema.Story{TokenID: tokenID, CurrentOwner: "0xalice"}, nil
		}).AnyTimes()
	st.EXPECT().ApplyBundlePurchase(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ store.BundlePurchaseInput) (bool, error) {
			mu.Lock()
			order = append(order, "bundle")
			mu.Unlock()
			return true, nil
		})
	st.EXPECT().ApplyPurchase(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in store.PurchaseInput) (store.PurchaseResult, error) {
			mu.Lock()
			order = append(order, in.TxHash)
			mu.Unlock()
			return store.PurchaseResult{Applied: true, ListingMatched: true}, nil
		})

	r := New(st, nil, fanout, nil, adapter.NewClock(), fastConfig())
	ctx := context.Background()

	// The bundle touches tokens 7 and 8; the later purchase of token 8 must
	// wait for the bundle even when it lands on a different shard
	require.NoError(t, r.Enqueue(ctx, bundleEvent([]string{"7", "8"}, "7")))
	require.NoError(t, r.Enqueue(ctx, purchasedEvent("8", "0xafter")))
	r.Drain()

	require.Len(t, order, 2)
	assert.Equal(t, []string{"bundle", "0xafter"}, order)
}

func TestAppliedWatermarkTrailsPendingEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	release := make(chan struct{})
	st.EXPECT().CreateStory(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *schema.Story) (bool, error) {
			<-release
			return true, nil
		})

	r := New(st, nil, nil, nil, adapter.NewClock(), fastConfig())
	assert.Zero(t, r.AppliedWatermark())

	// The mint at block 100 is parked; the watermark must stay behind it
	require.NoError(t, r.Enqueue(context.Background(), mintedEvent("7", "bafycid")))
	assert.Equal(t, uint64(99), r.AppliedWatermark())

	close(release)
	r.Drain()
	assert.Equal(t, uint64(100), r.AppliedWatermark())
}
