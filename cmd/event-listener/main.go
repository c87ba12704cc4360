package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
	"github.com/lorefolk/heritage-ledger/internal/cache"
	"github.com/lorefolk/heritage-ledger/internal/chain"
	"github.com/lorefolk/heritage-ledger/internal/config"
	"github.com/lorefolk/heritage-ledger/internal/gateway"
	"github.com/lorefolk/heritage-ledger/internal/listener"
	"github.com/lorefolk/heritage-ledger/internal/logger"
	"github.com/lorefolk/heritage-ledger/internal/notify"
	"github.com/lorefolk/heritage-ledger/internal/reconciler"
	"github.com/lorefolk/heritage-ledger/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadListenerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "event-listener",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting event listener")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	err = store.ConfigureConnectionPool(db,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)
	logger.InfoCtx(ctx, "Connected to database")

	clockAdapter := adapter.NewClock()

	// Connect to Ethereum
	ethDialer := adapter.NewEthClientDialer()
	ethClient, err := ethDialer.Dial(ctx, cfg.Ethereum.WebSocketURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum", zap.Error(err), zap.String("websocket_url", cfg.Ethereum.WebSocketURL))
	}
	source, err := chain.NewSource(ethClient, chain.Config{
		StoryContract:       cfg.Ethereum.StoryContract,
		MarketplaceContract: cfg.Ethereum.MarketplaceContract,
		ResubscribeAttempts: cfg.Ethereum.ResubscribeAttempts,
		ResubscribeBaseWait: cfg.Ethereum.ResubscribeBaseWait,
	}, clockAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create chain source", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to Ethereum WebSocket")

	// Connect to NATS for notification fanout
	natsConn, js, err := adapter.NewNatsJetStream().Connect(cfg.NATS.URL,
		nats.MaxReconnects(cfg.NATS.MaxReconnects),
		nats.ReconnectWait(cfg.NATS.ReconnectWait),
		nats.Name(cfg.NATS.ConnectionName),
	)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer natsConn.Close()
	logger.InfoCtx(ctx, "Connected to NATS JetStream")

	// Read-path cache and metadata resolver
	queries := cache.NewQueries(dataStore, cache.QueriesConfig{
		ListingTTL:      cfg.Cache.ListingTTL,
		PriceHistoryTTL: cfg.Cache.PriceHistoryTTL,
		MaxEntries:      cfg.Cache.MaxEntries,
	}, clockAdapter)
	httpClient := adapter.NewHTTPClient(cfg.Gateway.HTTPTimeout)
	resolver := gateway.NewResolver(cfg.Gateway.IPFSGateways, httpClient)

	fanout := notify.New(dataStore, js, cfg.NATS.StreamName)
	rec := reconciler.New(dataStore, resolver, fanout, queries, clockAdapter, reconciler.Config{
		Workers:        cfg.Reconciler.Workers,
		QueueSize:      cfg.Reconciler.QueueSize,
		MaxAttempts:    cfg.Reconciler.MaxAttempts,
		RetryBaseDelay: cfg.Reconciler.RetryBaseDelay,
	})

	l := listener.New(source, rec, dataStore, clockAdapter, listener.Config{
		StartBlock:      cfg.Ethereum.StartBlock,
		CursorSaveFreq:  cfg.Reconciler.CursorSaveFreq,
		CursorSaveDelay: cfg.Reconciler.CursorSaveDelay,
	})
	defer l.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- l.Run(ctx)
	}()

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("component", "listener"))
		}
		cancel()
	}

	logger.Info("Event listener stopped")
}
