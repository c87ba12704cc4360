package chain

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/logger"
	"github.com/lorefolk/heritage-ledger/internal/mocks"
)

const (
	testStoryContract       = "0x5555555555555555555555555555555555555555"
	testMarketplaceContract = "0x6666666666666666666666666666666666666666"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeSubscription struct {
	errCh chan error
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{errCh: make(chan error, 1)}
}

func (s *fakeSubscription) Err() <-chan error { return s.errCh }

func (s *fakeSubscription) Unsubscribe() {}

func newTestSource(t *testing.T, client adapter.EthClient) *ethSource {
	t.Helper()
	src, err := NewSource(client, Config{
		StoryContract:       testStoryContract,
		MarketplaceContract: testMarketplaceContract,
		ResubscribeAttempts: 2,
		ResubscribeBaseWait: time.Millisecond,
	}, adapter.NewClock())
	require.NoError(t, err)
	return src.(*ethSource)
}

func header(number uint64, unixTime uint64) *types.Header {
	return &types.Header{Number: new(big.Int).SetUint64(number), Time: unixTime}
}

func mintedLog(t *testing.T, d *decoder, tokenID int64, block uint64, index uint) types.Log {
	t.Helper()
	return types.Log{
		Topics: []common.Hash{
			d.storyMintedID,
			uintTopic(tokenID),
			addressTopic("0xA1B2c3D4E5f6A7B8C9D0E1F2A3B4C5D6E7F8A9B0"),
		},
		Data:        packEventData(t, d, "StoryMinted", "bafyexample", "maori"),
		TxHash:      common.HexToHash("0xbb22"),
		BlockNumber: block,
		Index:       index,
	}
}

func TestNewSourceRequiresContracts(t *testing.T) {
	_, err := NewSource(nil, Config{StoryContract: testStoryContract}, adapter.NewClock())
	assert.Error(t, err)
}

func TestLatestBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	client.EXPECT().HeaderByNumber(gomock.Any(), gomock.Nil()).Return(header(512, 1700000000), nil)

	src := newTestSource(t, client)
	latest, err := src.LatestBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(512), latest)
}

func TestReplayOrdersAndDeliversEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	src := newTestSource(t, client)

	// Out of order on purpose; Replay must sort by block then log index.
	// Two logs share block 101, so its header is fetched once.
	logs := []types.Log{
		mintedLog(t, src.decoder, 3, 101, 5),
		mintedLog(t, src.decoder, 1, 100, 0),
		mintedLog(t, src.decoder, 2, 101, 1),
	}

	client.EXPECT().FilterLogs(gomock.Any(), gomock.Any()).Return(logs, nil)
	client.EXPECT().HeaderByNumber(gomock.Any(), big.NewInt(100)).Return(header(100, 1700000000), nil)
	client.EXPECT().HeaderByNumber(gomock.Any(), big.NewInt(101)).Return(header(101, 1700000012), nil)

	var got []*domain.Event
	err := src.Replay(context.Background(), 100, 101, func(event *domain.Event) error {
		got = append(got, event)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].StoryMinted.TokenID)
	assert.Equal(t, "2", got[1].StoryMinted.TokenID)
	assert.Equal(t, "3", got[2].StoryMinted.TokenID)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), got[0].Meta.Timestamp)
	assert.Equal(t, time.Unix(1700000012, 0).UTC(), got[1].Meta.Timestamp)
}

func TestReplaySkipsRemovedLogs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	src := newTestSource(t, client)

	removed := mintedLog(t, src.decoder, 1, 100, 0)
	removed.Removed = true
	kept := mintedLog(t, src.decoder, 2, 100, 1)

	client.EXPECT().FilterLogs(gomock.Any(), gomock.Any()).Return([]types.Log{removed, kept}, nil)
	client.EXPECT().HeaderByNumber(gomock.Any(), big.NewInt(100)).Return(header(100, 1700000000), nil)

	var got []*domain.Event
	err := src.Replay(context.Background(), 100, 100, func(event *domain.Event) error {
		got = append(got, event)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].StoryMinted.TokenID)
}

func TestReplayStopsOnHandlerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	src := newTestSource(t, client)

	logs := []types.Log{
		mintedLog(t, src.decoder, 1, 100, 0),
		mintedLog(t, src.decoder, 2, 100, 1),
	}
	client.EXPECT().FilterLogs(gomock.Any(), gomock.Any()).Return(logs, nil)
	client.EXPECT().HeaderByNumber(gomock.Any(), big.NewInt(100)).Return(header(100, 1700000000), nil)

	handlerErr := errors.New("ledger write failed")
	calls := 0
	err := src.Replay(context.Background(), 100, 100, func(event *domain.Event) error {
		calls++
		return handlerErr
	})
	assert.ErrorIs(t, err, handlerErr)
	assert.Equal(t, 1, calls)
}

func TestReplayHonorsKindFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	src, err := NewSource(client, Config{
		StoryContract:       testStoryContract,
		MarketplaceContract: testMarketplaceContract,
		Kinds:               []domain.EventKind{domain.EventKindStoryPurchased},
		ResubscribeAttempts: 2,
		ResubscribeBaseWait: time.Millisecond,
	}, adapter.NewClock())
	require.NoError(t, err)
	es := src.(*ethSource)

	assert.Equal(t,
		[]common.Hash{es.decoder.storyPurchasedID},
		es.decoder.topics(es.config.Kinds))

	// A node that ignores the topic filter still must not leak other kinds
	client.EXPECT().FilterLogs(gomock.Any(), gomock.Any()).
		Return([]types.Log{mintedLog(t, es.decoder, 1, 100, 0)}, nil)
	client.EXPECT().HeaderByNumber(gomock.Any(), big.NewInt(100)).Return(header(100, 1700000000), nil)

	err = es.Replay(context.Background(), 100, 100, func(event *domain.Event) error {
		t.Fatal("handler should not be called")
		return nil
	})
	assert.NoError(t, err)
}

func TestReplayEmptyRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	src := newTestSource(t, client)

	err := src.Replay(context.Background(), 200, 100, func(event *domain.Event) error {
		t.Fatal("handler should not be called")
		return nil
	})
	assert.NoError(t, err)
}

func TestTailCatchesUpThenFollowsLive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	src := newTestSource(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Head at 101, catch-up covers [100, 101], then live delivery from 102
	client.EXPECT().HeaderByNumber(gomock.Any(), gomock.Nil()).Return(header(101, 1700000000), nil)
	client.EXPECT().FilterLogs(gomock.Any(), gomock.Any()).
		Return([]types.Log{mintedLog(t, src.decoder, 1, 100, 0)}, nil)
	client.EXPECT().HeaderByNumber(gomock.Any(), big.NewInt(100)).Return(header(100, 1700000000), nil)
	client.EXPECT().HeaderByNumber(gomock.Any(), big.NewInt(102)).Return(header(102, 1700000024), nil)

	live := mintedLog(t, src.decoder, 2, 102, 0)
	client.EXPECT().SubscribeFilterLogs(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ interface{}, ch chan<- types.Log) (*fakeSubscription, error) {
			go func() { ch <- live }()
			return newFakeSubscription(), nil
		})

	var got []*domain.Event
	err := src.Tail(ctx, 100, func(event *domain.Event) error {
		got = append(got, event)
		if len(got) == 2 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].StoryMinted.TokenID)
	assert.Equal(t, "2", got[1].StoryMinted.TokenID)
}

func TestTailResubscribesAfterDrop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	src := newTestSource(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client.EXPECT().HeaderByNumber(gomock.Any(), gomock.Nil()).Return(header(99, 1700000000), nil).Times(2)
	client.EXPECT().HeaderByNumber(gomock.Any(), big.NewInt(103)).Return(header(103, 1700000036), nil)

	// First subscription drops immediately; the second delivers a log
	dropped := newFakeSubscription()
	dropped.errCh <- errors.New("websocket closed")
	live := mintedLog(t, src.decoder, 5, 103, 0)

	first := client.EXPECT().SubscribeFilterLogs(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(dropped, nil)
	client.EXPECT().SubscribeFilterLogs(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ interface{}, ch chan<- types.Log) (*fakeSubscription, error) {
			go func() { ch <- live }()
			return newFakeSubscription(), nil
		}).After(first)

	var got []*domain.Event
	err := src.Tail(ctx, 100, func(event *domain.Event) error {
		got = append(got, event)
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0].StoryMinted.TokenID)
}

func TestTailGivesUpAfterReconnectBudget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	src := newTestSource(t, client)

	// ResubscribeAttempts is 2, so the third consecutive failure is fatal
	client.EXPECT().HeaderByNumber(gomock.Any(), gomock.Nil()).
		Return(nil, errors.New("connection refused")).Times(3)

	err := src.Tail(context.Background(), 100, func(event *domain.Event) error {
		t.Fatal("handler should not be called")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrConnectionLost)
}

func TestTailStopsOnHandlerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	src := newTestSource(t, client)

	client.EXPECT().HeaderByNumber(gomock.Any(), gomock.Nil()).Return(header(100, 1700000000), nil)
	client.EXPECT().FilterLogs(gomock.Any(), gomock.Any()).
		Return([]types.Log{mintedLog(t, src.decoder, 1, 100, 0)}, nil)
	client.EXPECT().HeaderByNumber(gomock.Any(), big.NewInt(100)).Return(header(100, 1700000000), nil)

	handlerErr := errors.New("dead letter full")
	err := src.Tail(context.Background(), 100, func(event *domain.Event) error {
		return handlerErr
	})
	assert.ErrorIs(t, err, handlerErr)
}

func TestBlockTimestampCacheEvictsOldEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	client.EXPECT().HeaderByNumber(gomock.Any(), gomock.Not(gomock.Nil())).
		DoAndReturn(func(_ context.Context, number *big.Int) (*types.Header, error) {
			return header(number.Uint64(), 1700000000+number.Uint64()), nil
		}).Times(3)

	src := newTestSource(t, client)
	ctx := context.Background()

	_, err := src.blockTimestamp(ctx, 100)
	require.NoError(t, err)
	// Cached, no second fetch
	_, err = src.blockTimestamp(ctx, 100)
	require.NoError(t, err)

	// A block inside the window keeps the old entry around
	_, err = src.blockTimestamp(ctx, 100+blockTimestampWindow)
	require.NoError(t, err)
	src.mu.Lock()
	_, kept := src.blockTimestamps[100]
	src.mu.Unlock()
	assert.True(t, kept)

	// One block past the window evicts it
	_, err = src.blockTimestamp(ctx, 101+blockTimestampWindow)
	require.NoError(t, err)
	src.mu.Lock()
	_, kept = src.blockTimestamps[100]
	size := len(src.blockTimestamps)
	src.mu.Unlock()
	assert.False(t, kept)
	assert.Equal(t, 2, size)
}
