package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/logger"
)

// Handler consumes a decoded domain event. A non-nil error stops the feed.
type Handler func(event *domain.Event) error

// Source is an ordered feed of marketplace events from chain logs
//
//go:generate mockgen -source=source.go -destination=../mocks/chainmocks/chain_source.go -package=chainmocks -mock_names=Source=MockSource
type Source interface {
	// Tail follows the contract logs live starting at fromBlock, catching up
	// over the filter API first. It reconnects on subscription drops and
	// returns domain.ErrConnectionLost once the reconnect budget is spent.
	Tail(ctx context.Context, fromBlock uint64, handler Handler) error

	// Replay delivers historical events for [fromBlock, toBlock] in order
	Replay(ctx context.Context, fromBlock, toBlock uint64, handler Handler) error

	// LatestBlock returns the current chain head number
	LatestBlock(ctx context.Context) (uint64, error)

	// Close releases the underlying client connection
	Close()
}

// Config holds the chain source configuration
type Config struct {
	// StoryContract is the story token contract address
	StoryContract string
	// MarketplaceContract is the marketplace contract address
	MarketplaceContract string
	// Kinds restricts the feed to these event kinds; empty means all
	Kinds []domain.EventKind
	// ResubscribeAttempts is the number of consecutive reconnects tolerated
	// before Tail gives up
	ResubscribeAttempts int
	// ResubscribeBaseWait is the initial wait between reconnects; each
	// consecutive failure doubles it
	ResubscribeBaseWait time.Duration
}

// transientError marks failures worth a reconnect attempt, as opposed to
// handler errors, which stop the feed.
type transientError struct {
	err error
}

func (e transientError) Error() string { return e.err.Error() }

func (e transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

type ethSource struct {
	client  adapter.EthClient
	decoder *decoder
	config  Config
	clock   adapter.Clock

	mu              sync.Mutex
	blockTimestamps map[uint64]time.Time
}

// NewSource creates a chain source over a connected client.
// Both contract addresses must be configured.
func NewSource(client adapter.EthClient, config Config, clock adapter.Clock) (Source, error) {
	if config.StoryContract == "" || config.MarketplaceContract == "" {
		return nil, fmt.Errorf("story and marketplace contract addresses are required")
	}
	if config.ResubscribeAttempts <= 0 {
		config.ResubscribeAttempts = 5
	}
	if config.ResubscribeBaseWait <= 0 {
		config.ResubscribeBaseWait = 2 * time.Second
	}

	d, err := newDecoder()
	if err != nil {
		return nil, err
	}

	return &ethSource{
		client:          client,
		decoder:         d,
		config:          config,
		clock:           clock,
		blockTimestamps: make(map[uint64]time.Time),
	}, nil
}

func (s *ethSource) query(fromBlock, toBlock *big.Int) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: fromBlock,
		ToBlock:   toBlock,
		Addresses: []common.Address{
			common.HexToAddress(s.config.StoryContract),
			common.HexToAddress(s.config.MarketplaceContract),
		},
		Topics: [][]common.Hash{s.decoder.topics(s.config.Kinds)},
	}
}

// Tail catches up from fromBlock and then follows live logs. The catch-up
// pass runs again after every reconnect so no block range is skipped;
// downstream handling is idempotent, so re-delivery is safe.
func (s *ethSource) Tail(ctx context.Context, fromBlock uint64, handler Handler) error {
	next := fromBlock
	failures := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		latest, err := s.LatestBlock(ctx)
		if err != nil {
			if waitErr := s.backoff(ctx, &failures, err); waitErr != nil {
				return waitErr
			}
			continue
		}

		if next <= latest {
			if err := s.Replay(ctx, next, latest, handler); err != nil {
				if !isTransient(err) {
					return err
				}
				if waitErr := s.backoff(ctx, &failures, err); waitErr != nil {
					return waitErr
				}
				continue
			}
			next = latest + 1
		}

		logs := make(chan types.Log)
		sub, err := s.client.SubscribeFilterLogs(ctx, s.query(new(big.Int).SetUint64(next), nil), logs)
		if err != nil {
			if waitErr := s.backoff(ctx, &failures, err); waitErr != nil {
				return waitErr
			}
			continue
		}

		logger.InfoCtx(ctx, "following live contract logs", zap.Uint64("from_block", next))
		failures = 0

		subErr := s.consume(ctx, sub, logs, &next, handler)
		sub.Unsubscribe()

		if subErr == nil {
			return ctx.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isTransient(subErr) {
			return subErr
		}
		if waitErr := s.backoff(ctx, &failures, subErr); waitErr != nil {
			return waitErr
		}
	}
}

// consume drains a live subscription until it errors or the context ends.
// It returns nil when the context ended, a transientError when the
// subscription dropped, or the handler's error.
func (s *ethSource) consume(ctx context.Context, sub ethereum.Subscription, logs chan types.Log, next *uint64, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			if err == nil {
				return transientError{err: fmt.Errorf("subscription closed")}
			}
			return transientError{err: fmt.Errorf("subscription error: %w", err)}
		case vLog := <-logs:
			if vLog.Removed {
				// Reorged-out log; the re-emitted version follows
				continue
			}
			if err := s.deliver(ctx, vLog, handler); err != nil {
				return err
			}
			if vLog.BlockNumber >= *next {
				*next = vLog.BlockNumber + 1
			}
		}
	}
}

// Replay delivers historical events for [fromBlock, toBlock], ordered by
// block number then log index
func (s *ethSource) Replay(ctx context.Context, fromBlock, toBlock uint64, handler Handler) error {
	if fromBlock > toBlock {
		return nil
	}

	query := s.query(new(big.Int).SetUint64(fromBlock), new(big.Int).SetUint64(toBlock))
	logs, err := s.client.FilterLogs(ctx, query)
	if err != nil {
		return transientError{err: fmt.Errorf("failed to filter logs [%d, %d]: %w", fromBlock, toBlock, err)}
	}

	sort.Slice(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	logger.InfoCtx(ctx, "replaying contract logs",
		zap.Uint64("from_block", fromBlock),
		zap.Uint64("to_block", toBlock),
		zap.Int("count", len(logs)))

	for _, vLog := range logs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if vLog.Removed {
			continue
		}
		if err := s.deliver(ctx, vLog, handler); err != nil {
			return err
		}
	}

	return nil
}

// deliver decodes one log and hands it to the handler
func (s *ethSource) deliver(ctx context.Context, vLog types.Log, handler Handler) error {
	timestamp, err := s.blockTimestamp(ctx, vLog.BlockNumber)
	if err != nil {
		return err
	}

	event, err := s.decoder.Decode(vLog, timestamp)
	if err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("tx_hash", vLog.TxHash.Hex()),
			zap.Uint64("block", vLog.BlockNumber))
		return nil
	}
	if event == nil || !s.selected(event.Kind) {
		return nil
	}

	return handler(event)
}

// selected reports whether the configured kind filter admits this event
func (s *ethSource) selected(kind domain.EventKind) bool {
	if len(s.config.Kinds) == 0 {
		return true
	}
	for _, k := range s.config.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// LatestBlock returns the current chain head number
func (s *ethSource) LatestBlock(ctx context.Context) (uint64, error) {
	header, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// Close releases the underlying client connection
func (s *ethSource) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// blockTimestampWindow is how many blocks behind the newest cached block a
// timestamp entry survives. Logs arrive roughly in block order, so older
// entries will not be asked for again; evicting them keeps the cache bounded
// over a long-lived tail.
const blockTimestampWindow = 1024

// blockTimestamp fetches a block's timestamp, caching it; confirmed block
// timestamps never change
func (s *ethSource) blockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	s.mu.Lock()
	cached, ok := s.blockTimestamps[blockNumber]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	header, err := s.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return time.Time{}, transientError{err: fmt.Errorf("failed to get block %d header: %w", blockNumber, err)}
	}

	timestamp := time.Unix(int64(header.Time), 0).UTC() //nolint:gosec

	s.mu.Lock()
	s.blockTimestamps[blockNumber] = timestamp
	for block := range s.blockTimestamps {
		if block+blockTimestampWindow < blockNumber {
			delete(s.blockTimestamps, block)
		}
	}
	s.mu.Unlock()

	return timestamp, nil
}

// backoff sleeps before a reconnect attempt and fails the tail once the
// budget is exhausted
func (s *ethSource) backoff(ctx context.Context, failures *int, cause error) error {
	*failures++
	if *failures > s.config.ResubscribeAttempts {
		return fmt.Errorf("%w: %d consecutive failures, last: %s",
			domain.ErrConnectionLost, *failures, cause)
	}

	wait := s.config.ResubscribeBaseWait << uint(*failures-1) //nolint:gosec
	logger.WarnCtx(ctx, "chain connection lost, reconnecting",
		zap.Int("attempt", *failures),
		zap.Duration("wait", wait),
		zap.Error(cause))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(wait):
		return nil
	}
}
