package listener

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
	"github.com/lorefolk/heritage-ledger/internal/chain"
	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/logger"
	"github.com/lorefolk/heritage-ledger/internal/reconciler"
	"github.com/lorefolk/heritage-ledger/internal/store"
)

const (
	defaultCursorSaveFreq  = 10
	defaultCursorSaveDelay = 30 * time.Second
)

// Config holds the listener configuration
type Config struct {
	// ChainName keys the block cursor row
	ChainName string
	// StartBlock forces tailing from a specific block; zero means resume
	// from the stored cursor, or the chain head on a fresh database
	StartBlock uint64
	// CursorSaveFreq is how many blocks may pass between cursor saves
	CursorSaveFreq uint64
	// CursorSaveDelay is how much time may pass between cursor saves
	CursorSaveDelay time.Duration
}

// Listener owns the live event tail: it resolves the start block, feeds the
// reconciler, and persists the block cursor so a restart resumes where the
// previous run left off.
type Listener struct {
	source     chain.Source
	reconciler *reconciler.Reconciler
	store      store.Store
	clock      adapter.Clock
	config     Config

	lastSeen   uint64
	lastSaved  uint64
	lastSaveAt time.Time
}

// New creates a listener
func New(source chain.Source, rec *reconciler.Reconciler, st store.Store, clock adapter.Clock, config Config) *Listener {
	if config.ChainName == "" {
		config.ChainName = "ethereum"
	}
	if config.CursorSaveFreq == 0 {
		config.CursorSaveFreq = defaultCursorSaveFreq
	}
	if config.CursorSaveDelay <= 0 {
		config.CursorSaveDelay = defaultCursorSaveDelay
	}

	return &Listener{
		source:     source,
		reconciler: rec,
		store:      st,
		clock:      clock,
		config:     config,
	}
}

// Run tails the chain until the context ends or the connection is lost for
// good. It always flushes the cursor on the way out.
func (l *Listener) Run(ctx context.Context) error {
	from, err := l.resolveStartBlock(ctx)
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "listener starting",
		zap.String("chain", l.config.ChainName),
		zap.Uint64("from_block", from))

	l.lastSaveAt = l.clock.Now()
	l.lastSaved = from

	tailErr := l.source.Tail(ctx, from, func(event *domain.Event) error {
		if err := l.reconciler.Enqueue(ctx, event); err != nil {
			return err
		}
		l.trackBlock(ctx, event.Meta.BlockNumber)
		return nil
	})

	// Wait out the shard queues so the final cursor covers every delivered
	// event, then flush.
	l.reconciler.Drain()
	l.flushCursor(context.WithoutCancel(ctx))

	if errors.Is(tailErr, context.Canceled) {
		return nil
	}
	return tailErr
}

// Close releases the chain connection and waits for queued reconciliation
// work to finish
func (l *Listener) Close() {
	l.source.Close()
	l.reconciler.Drain()
}

// resolveStartBlock picks the first block to tail: an explicit override, the
// stored cursor, or the current head for a fresh database. Resuming from the
// cursor itself (not cursor+1) re-delivers that block's events; the
// reconciler's idempotency absorbs the overlap.
func (l *Listener) resolveStartBlock(ctx context.Context) (uint64, error) {
	if l.config.StartBlock > 0 {
		return l.config.StartBlock, nil
	}

	cursor, err := l.store.GetBlockCursor(ctx, l.config.ChainName)
	if err != nil {
		return 0, err
	}
	if cursor > 0 {
		return cursor, nil
	}

	latest, err := l.source.LatestBlock(ctx)
	if err != nil {
		return 0, err
	}

	logger.InfoCtx(ctx, "no stored cursor, starting at chain head", zap.Uint64("head", latest))
	return latest, nil
}

// trackBlock notes a delivered block and flushes the cursor every N blocks
// or every T seconds, whichever comes first
func (l *Listener) trackBlock(ctx context.Context, blockNumber uint64) {
	if blockNumber > l.lastSeen {
		l.lastSeen = blockNumber
	}

	if l.lastSeen-l.lastSaved < l.config.CursorSaveFreq &&
		l.clock.Since(l.lastSaveAt) < l.config.CursorSaveDelay {
		return
	}

	l.flushCursor(ctx)
}

// flushCursor persists the reconciler's applied watermark, never the raw
// delivered block. Events still parked in a shard queue therefore stay in
// front of the cursor, and a crash replays them instead of skipping them;
// the store's idempotency absorbs the re-delivery.
func (l *Listener) flushCursor(ctx context.Context) {
	applied := l.reconciler.AppliedWatermark()
	if applied == 0 || applied <= l.lastSaved {
		return
	}

	if err := l.store.SetBlockCursor(ctx, l.config.ChainName, applied); err != nil {
		logger.WarnCtx(ctx, "failed to save block cursor",
			zap.Uint64("block", applied),
			zap.Error(err))
		return
	}

	l.lastSaved = applied
	l.lastSaveAt = l.clock.Now()
	logger.DebugCtx(ctx, "block cursor saved", zap.Uint64("block", applied))
}
