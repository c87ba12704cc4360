package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
	"github.com/lorefolk/heritage-ledger/internal/cache"
	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/gateway"
	"github.com/lorefolk/heritage-ledger/internal/logger"
	"github.com/lorefolk/heritage-ledger/internal/notify"
	"github.com/lorefolk/heritage-ledger/internal/store"
	"github.com/lorefolk/heritage-ledger/internal/store/schema"
)

const (
	defaultWorkers        = 8
	defaultQueueSize      = 256
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
)

// Config holds the reconciler configuration
type Config struct {
	// Workers is the number of token shards; events for the same token always
	// land on the same shard
	Workers int
	// QueueSize bounds each shard's pending queue
	QueueSize int
	// MaxAttempts is the number of times an event is tried before it is
	// routed to the dead-letter table
	MaxAttempts int
	// RetryBaseDelay is the wait before the first retry; each subsequent
	// retry doubles it
	RetryBaseDelay time.Duration
}

// Reconciler turns domain events into ledger mutations, exactly once in
// effect. Events for independent tokens apply concurrently; events for the
// same token serialize through that token's shard.
type Reconciler struct {
	store    store.Store
	resolver gateway.Resolver
	fanout   notify.Fanout
	queries  *cache.Queries
	clock    adapter.Clock
	config   Config

	shards    []pond.Pool
	drainOnce sync.Once

	mu       sync.Mutex
	inflight map[uint64]int
	maxBlock uint64
}

// New creates a reconciler. The resolver and queries are optional; a nil
// resolver disables metadata enrichment and nil queries disable cache
// invalidation.
func New(st store.Store, resolver gateway.Resolver, fanout notify.Fanout, queries *cache.Queries, clock adapter.Clock, config Config) *Reconciler {
	if config.Workers <= 0 {
		config.Workers = defaultWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaultQueueSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaultMaxAttempts
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = defaultRetryBaseDelay
	}

	shards := make([]pond.Pool, config.Workers)
	for i := range shards {
		shards[i] = pond.NewPool(1, pond.WithQueueSize(config.QueueSize))
	}

	return &Reconciler{
		store:    st,
		resolver: resolver,
		fanout:   fanout,
		queries:  queries,
		clock:    clock,
		config:   config,
		shards:   shards,
		inflight: make(map[uint64]int),
	}
}

// Enqueue routes an event onto its token shard. Processing failures are
// retried and dead-lettered internally; they never propagate to the feed.
func (r *Reconciler) Enqueue(ctx context.Context, event *domain.Event) error {
	if event == nil || !event.Valid() {
		logger.WarnCtx(ctx, "dropping malformed event", zap.Any("event", event))
		return nil
	}

	tokenIDs := event.TokenIDs()
	r.begin(event.Meta.BlockNumber)

	if event.Kind == domain.EventKindBundlePurchased && len(tokenIDs) > 1 {
		r.enqueueBundle(ctx, event, tokenIDs)
		return nil
	}

	r.shards[r.shardFor(tokenIDs[0])].Submit(func() {
		if r.processWithRetry(ctx, event) {
			r.finish(event.Meta.BlockNumber)
		}
	})
	return nil
}

// enqueueBundle serializes a multi-token event against every involved shard.
// The first token's shard applies the bundle; the other shards hold their
// queues behind a gate until it completes, so per-token event order survives.
func (r *Reconciler) enqueueBundle(ctx context.Context, event *domain.Event, tokenIDs []string) {
	involved := make(map[int]struct{}, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		involved[r.shardFor(tokenID)] = struct{}{}
	}

	primary := r.shardFor(tokenIDs[0])
	if len(involved) == 1 {
		r.shards[primary].Submit(func() {
			if r.processWithRetry(ctx, event) {
				r.finish(event.Meta.BlockNumber)
			}
		})
		return
	}

	gate := make(chan struct{})
	for shard := range involved {
		if shard == primary {
			continue
		}
		r.shards[shard].Submit(func() {
			<-gate
		})
	}
	r.shards[primary].Submit(func() {
		defer close(gate)
		if r.processWithRetry(ctx, event) {
			r.finish(event.Meta.BlockNumber)
		}
	})
}

// Drain waits for all queued events to finish. The reconciler cannot be
// used afterwards. Safe to call more than once.
func (r *Reconciler) Drain() {
	r.drainOnce.Do(func() {
		for _, shard := range r.shards {
			shard.StopAndWait()
		}
	})
}

func (r *Reconciler) begin(blockNumber uint64) {
	if blockNumber == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight[blockNumber]++
	if blockNumber > r.maxBlock {
		r.maxBlock = blockNumber
	}
}

func (r *Reconciler) finish(blockNumber uint64) {
	if blockNumber == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[blockNumber]--; r.inflight[blockNumber] <= 0 {
		delete(r.inflight, blockNumber)
	}
}

// AppliedWatermark returns the highest block number whose enqueued events
// have all been applied or dead-lettered. Block cursors must not advance
// past it: everything at or below the watermark is durable, everything
// above may still be parked in a shard queue. Zero until the first chain
// event is enqueued.
func (r *Reconciler) AppliedWatermark() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	watermark := r.maxBlock
	for block := range r.inflight {
		if block <= watermark {
			watermark = block - 1
		}
	}
	return watermark
}

func (r *Reconciler) shardFor(tokenID string) int {
	h := fnv.New32a()
	h.Write([]byte(tokenID))
	return int(h.Sum32() % uint32(len(r.shards)))
}

// processWithRetry reports whether the event was settled, by application or
// by dead-lettering. An event abandoned on context cancellation reports
// false and stays in front of the applied watermark, so the next run
// replays it.
func (r *Reconciler) processWithRetry(ctx context.Context, event *domain.Event) bool {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return false
		}

		lastErr = r.Process(ctx, event)
		if lastErr == nil {
			return true
		}

		logger.WarnCtx(ctx, "event reconciliation failed",
			zap.String("event", event.String()),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if attempt < r.config.MaxAttempts {
			r.clock.Sleep(r.config.RetryBaseDelay << uint(attempt-1)) //nolint:gosec
		}
	}

	r.deadLetter(ctx, event, lastErr)
	return true
}

// Process applies a single event synchronously. It is idempotent; replaying
// an already applied event is a no-op.
func (r *Reconciler) Process(ctx context.Context, event *domain.Event) error {
	switch event.Kind {
	case domain.EventKindStoryMinted:
		return r.applyMinted(ctx, event)
	case domain.EventKindStoryPurchased:
		return r.applyPurchased(ctx, event)
	case domain.EventKindOfferCreated:
		return r.applyOfferCreated(ctx, event)
	case domain.EventKindBundlePurchased:
		return r.applyBundlePurchased(ctx, event)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
}

func (r *Reconciler) applyMinted(ctx context.Context, event *domain.Event) error {
	minted := event.StoryMinted

	created, err := r.store.CreateStory(ctx, &schema.Story{
		TokenID:         minted.TokenID,
		CID:             minted.CID,
		Author:          minted.Author,
		CurrentOwner:    minted.Author,
		Tribe:           minted.Tribe,
		MintTxHash:      event.Meta.TxHash,
		MintBlockNumber: event.Meta.BlockNumber,
		MintedAt:        event.Meta.Timestamp,
	})
	if err != nil {
		return err
	}
	if !created {
		logger.WarnCtx(ctx, "duplicate mint ignored",
			zap.String("token_id", minted.TokenID),
			zap.String("tx_hash", event.Meta.TxHash))
		return nil
	}

	logger.InfoCtx(ctx, "story recorded",
		zap.String("token_id", minted.TokenID),
		zap.String("author", minted.Author),
		zap.String("tribe", minted.Tribe))

	r.enrichStory(ctx, minted.TokenID, minted.CID)
	return nil
}

// enrichStory attaches author-supplied metadata fetched by CID. Enrichment
// is optional; the mint row stands on its own when every gateway fails.
func (r *Reconciler) enrichStory(ctx context.Context, tokenID, cid string) {
	if r.resolver == nil || cid == "" {
		return
	}

	metadata, err := r.resolver.Resolve(ctx, cid)
	if err != nil {
		logger.WarnCtx(ctx, "story metadata enrichment failed",
			zap.String("token_id", tokenID),
			zap.String("cid", cid),
			zap.Error(err))
		return
	}

	if err := r.store.UpdateStoryMetadata(ctx, tokenID, metadata.Name, datatypes.JSON(metadata.Raw)); err != nil {
		logger.WarnCtx(ctx, "failed to attach story metadata",
			zap.String("token_id", tokenID),
			zap.Error(err))
	}
}

func (r *Reconciler) applyPurchased(ctx context.Context, event *domain.Event) error {
	purchased := event.StoryPurchased
	r.checkFees(ctx, event, purchased.PriceMinorUnits, purchased.PlatformFeeMinor, purchased.RoyaltyMinor)

	result, err := r.store.ApplyPurchase(ctx, store.PurchaseInput{
		ListingID:        purchased.ListingID,
		TokenID:          purchased.TokenID,
		Seller:           purchased.Seller,
		Buyer:            purchased.Buyer,
		PriceMinorUnits:  purchased.PriceMinorUnits,
		PlatformFeeMinor: purchased.PlatformFeeMinor,
		RoyaltyMinor:     purchased.RoyaltyMinor,
		TxHash:           event.Meta.TxHash,
		BlockNumber:      event.Meta.BlockNumber,
		OccurredAt:       event.Meta.Timestamp,
	})
	if err != nil {
		return err
	}
	if !result.Applied {
		logger.DebugCtx(ctx, "sale already recorded",
			zap.String("tx_hash", event.Meta.TxHash),
			zap.String("token_id", purchased.TokenID))
		return nil
	}
	if !result.ListingMatched {
		logger.WarnCtx(ctx, "purchase matched no active listing",
			zap.String("listing_id", purchased.ListingID),
			zap.String("token_id", purchased.TokenID))
	}

	r.invalidate(purchased.TokenID)
	r.notify(ctx, purchased.Seller, schema.NotificationKindSaleCompleted,
		"Story sold",
		fmt.Sprintf("Your story %s was purchased by %s", purchased.TokenID, purchased.Buyer),
		notify.SalePayload{
			TokenID:         purchased.TokenID,
			Buyer:           purchased.Buyer,
			PriceMinorUnits: purchased.PriceMinorUnits,
			TxHash:          event.Meta.TxHash,
		})
	return nil
}

func (r *Reconciler) applyOfferCreated(ctx context.Context, event *domain.Event) error {
	offer := event.OfferCreated

	display, err := domain.DisplayAmount(offer.PriceMinorUnits)
	if err != nil {
		return err
	}

	created, err := r.store.CreateOffer(ctx, &schema.Offer{
		OfferID:         offer.OfferID,
		TokenID:         offer.TokenID,
		Offerer:         offer.Offerer,
		PriceMinorUnits: offer.PriceMinorUnits,
		PriceDisplay:    display,
		Status:          schema.OfferStatusPending,
		TxHash:          event.Meta.TxHash,
		BlockNumber:     event.Meta.BlockNumber,
		OfferedAt:       event.Meta.Timestamp,
	})
	if err != nil {
		return err
	}
	if !created {
		logger.DebugCtx(ctx, "offer already recorded", zap.String("offer_id", offer.OfferID))
		return nil
	}

	r.invalidate(offer.TokenID)

	// The owner lookup is best effort; an offer on an unindexed token is
	// still worth recording
	story, err := r.store.GetStoryByTokenID(ctx, offer.TokenID)
	if err != nil {
		logger.WarnCtx(ctx, "cannot address offer notification",
			zap.String("token_id", offer.TokenID),
			zap.Error(err))
		return nil
	}

	r.notify(ctx, story.CurrentOwner, schema.NotificationKindOfferReceived,
		"Offer received",
		fmt.Sprintf("You received an offer on story %s from %s", offer.TokenID, offer.Offerer),
		notify.OfferPayload{
			OfferID:         offer.OfferID,
			TokenID:         offer.TokenID,
			Offerer:         offer.Offerer,
			PriceMinorUnits: offer.PriceMinorUnits,
		})
	return nil
}

func (r *Reconciler) applyBundlePurchased(ctx context.Context, event *domain.Event) error {
	bundle := event.BundlePurchased
	r.checkFees(ctx, event, bundle.TotalPriceMinorUnits, bundle.PlatformFeeMinor)

	// Sellers are the owners of record before the bundle applies
	sellers := make(map[string]string, len(bundle.TokenIDs))
	for _, tokenID := range bundle.TokenIDs {
		story, err := r.store.GetStoryByTokenID(ctx, tokenID)
		if err != nil {
			return fmt.Errorf("bundle references token %s: %w", tokenID, err)
		}
		sellers[tokenID] = story.CurrentOwner
	}

	applied, err := r.store.ApplyBundlePurchase(ctx, store.BundlePurchaseInput{
		Buyer:              bundle.Buyer,
		TokenIDs:           bundle.TokenIDs,
		TotalMinorUnits:    bundle.TotalPriceMinorUnits,
		DiscountMinorUnits: bundle.DiscountMinorUnits,
		PlatformFeeMinor:   bundle.PlatformFeeMinor,
		TxHash:             event.Meta.TxHash,
		BlockNumber:        event.Meta.BlockNumber,
		OccurredAt:         event.Meta.Timestamp,
	})
	if err != nil {
		return err
	}
	if !applied {
		logger.DebugCtx(ctx, "bundle already recorded", zap.String("tx_hash", event.Meta.TxHash))
		return nil
	}

	allocations, err := domain.SplitMinorUnits(bundle.TotalPriceMinorUnits, len(bundle.TokenIDs))
	if err != nil {
		return err
	}

	for i, tokenID := range bundle.TokenIDs {
		r.invalidate(tokenID)
		r.notify(ctx, sellers[tokenID], schema.NotificationKindBundleSold,
			"Story sold in a bundle",
			fmt.Sprintf("Your story %s was purchased by %s as part of a bundle", tokenID, bundle.Buyer),
			notify.BundleSalePayload{
				TokenID:         tokenID,
				Buyer:           bundle.Buyer,
				PriceMinorUnits: allocations[i],
				TxHash:          event.Meta.TxHash,
			})
	}
	return nil
}

// checkFees warns when the fee components exceed the sale price. Chain facts
// are recorded either way; the warning surfaces contract bugs to operators.
func (r *Reconciler) checkFees(ctx context.Context, event *domain.Event, price string, fees ...string) {
	total, err := domain.SumMinorUnits(fees...)
	if err != nil {
		return
	}
	cmp, err := domain.CompareMinorUnits(total, price)
	if err != nil {
		return
	}
	if cmp > 0 {
		logger.WarnCtx(ctx, "fee components exceed sale price",
			zap.String("event", event.String()),
			zap.String("price", price),
			zap.String("fees", total))
	}
}

func (r *Reconciler) deadLetter(ctx context.Context, event *domain.Event, cause error) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to encode dead letter: %w", err),
			zap.String("event", event.String()))
		return
	}

	logger.ErrorCtx(ctx, fmt.Errorf("event dead-lettered after %d attempts: %w", r.config.MaxAttempts, cause),
		zap.String("event", event.String()))

	if err := r.store.CreateDeadLetter(ctx, &schema.DeadLetter{
		Kind:        event.Kind,
		TxHash:      event.Meta.TxHash,
		LogIndex:    event.Meta.LogIndex,
		BlockNumber: event.Meta.BlockNumber,
		Payload:     payload,
		Attempts:    r.config.MaxAttempts,
		LastError:   cause.Error(),
	}); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to store dead letter: %w", err),
			zap.String("event", event.String()))
	}
}

func (r *Reconciler) invalidate(tokenID string) {
	if r.queries != nil {
		r.queries.InvalidateToken(tokenID)
	}
}

func (r *Reconciler) notify(ctx context.Context, recipient string, kind schema.NotificationKind, title, message string, payload interface{}) {
	if r.fanout != nil {
		r.fanout.Notify(ctx, recipient, kind, title, message, payload)
	}
}
