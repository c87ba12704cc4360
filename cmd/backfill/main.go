package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
	"github.com/lorefolk/heritage-ledger/internal/chain"
	"github.com/lorefolk/heritage-ledger/internal/config"
	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/gateway"
	"github.com/lorefolk/heritage-ledger/internal/logger"
	"github.com/lorefolk/heritage-ledger/internal/notify"
	"github.com/lorefolk/heritage-ledger/internal/reconciler"
	"github.com/lorefolk/heritage-ledger/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	fromBlock  = flag.Uint64("from", 0, "First block to replay (0 = resume from stored cursor)")
	toBlock    = flag.Uint64("to", 0, "Last block to replay (0 = current chain head)")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadBackfillConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "backfill",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting historical backfill")

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	err = store.ConfigureConnectionPool(db,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime,
	)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)

	clockAdapter := adapter.NewClock()

	ethDialer := adapter.NewEthClientDialer()
	ethClient, err := ethDialer.Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum", zap.Error(err), zap.String("rpc_url", cfg.Ethereum.RPCURL))
	}
	source, err := chain.NewSource(ethClient, chain.Config{
		StoryContract:       cfg.Ethereum.StoryContract,
		MarketplaceContract: cfg.Ethereum.MarketplaceContract,
	}, clockAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create chain source", zap.Error(err))
	}
	defer source.Close()

	natsConn, js, err := adapter.NewNatsJetStream().Connect(cfg.NATS.URL,
		nats.MaxReconnects(cfg.NATS.MaxReconnects),
		nats.ReconnectWait(cfg.NATS.ReconnectWait),
		nats.Name(cfg.NATS.ConnectionName),
	)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer natsConn.Close()

	httpClient := adapter.NewHTTPClient(cfg.Gateway.HTTPTimeout)
	resolver := gateway.NewResolver(cfg.Gateway.IPFSGateways, httpClient)
	fanout := notify.New(dataStore, js, cfg.NATS.StreamName)

	rec := reconciler.New(dataStore, resolver, fanout, nil, clockAdapter, reconciler.Config{
		Workers:        cfg.Reconciler.Workers,
		QueueSize:      cfg.Reconciler.QueueSize,
		MaxAttempts:    cfg.Reconciler.MaxAttempts,
		RetryBaseDelay: cfg.Reconciler.RetryBaseDelay,
	})

	from, to, err := resolveRange(ctx, dataStore, source)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to resolve block range", zap.Error(err))
	}
	if from > to {
		logger.FatalCtx(ctx, "Nothing to replay", zap.Uint64("from", from), zap.Uint64("to", to))
	}

	logger.InfoCtx(ctx, "Replaying block range", zap.Uint64("from", from), zap.Uint64("to", to))

	err = source.Replay(ctx, from, to, func(event *domain.Event) error {
		return rec.Enqueue(ctx, event)
	})
	rec.Drain()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Backfill interrupted, cursor not advanced")
			return
		}
		logger.FatalCtx(ctx, "Replay failed", zap.Error(err))
	}

	if err := dataStore.SetBlockCursor(ctx, "ethereum", to); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to save block cursor: %w", err), zap.Uint64("block", to))
	}

	logger.InfoCtx(ctx, "Backfill complete", zap.Uint64("from", from), zap.Uint64("to", to))
}

// resolveRange fills in the flag defaults: resume from the stored cursor
// and stop at the current head
func resolveRange(ctx context.Context, dataStore store.Store, source chain.Source) (uint64, uint64, error) {
	from := *fromBlock
	if from == 0 {
		cursor, err := dataStore.GetBlockCursor(ctx, "ethereum")
		if err != nil {
			return 0, 0, err
		}
		from = cursor
	}
	if from == 0 {
		return 0, 0, fmt.Errorf("no stored cursor; pass -from explicitly")
	}

	to := *toBlock
	if to == 0 {
		head, err := source.LatestBlock(ctx)
		if err != nil {
			return 0, 0, err
		}
		to = head
	}

	return from, to, nil
}
