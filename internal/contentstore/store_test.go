package contentstore_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorefolk/heritage-ledger/internal/contentstore"
	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/logger"
	"github.com/lorefolk/heritage-ledger/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fastConfig keeps retry delays negligible so tests run with the real clock
func fastConfig() contentstore.Config {
	return contentstore.Config{
		Retries:   2,
		BaseDelay: time.Millisecond,
		MaxDelay:  2 * time.Millisecond,
	}
}

func newProvider(t *testing.T, ctrl *gomock.Controller, name string) *mocks.MockProvider {
	t.Helper()
	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().Name().Return(name).AnyTimes()
	return p
}

func TestNewRequiresProviders(t *testing.T) {
	_, err := contentstore.New(nil, fastConfig())
	assert.ErrorIs(t, err, domain.ErrNoProvidersConfigured)
}

func TestUploadFirstProviderSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	primary := newProvider(t, ctrl, "pinata")
	secondary := newProvider(t, ctrl, "web3storage")

	primary.EXPECT().
		Pin(gomock.Any(), "story.mp4", "video/mp4", []byte("data")).
		Return("bafyprimary", nil)

	s, err := contentstore.New([]contentstore.Provider{primary, secondary}, fastConfig())
	require.NoError(t, err)

	cid, provider, err := s.Upload(context.Background(), "story.mp4", "video/mp4", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "bafyprimary", cid)
	assert.Equal(t, "pinata", provider)
}

func TestUploadFailsOverAfterRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	primary := newProvider(t, ctrl, "pinata")
	secondary := newProvider(t, ctrl, "web3storage")

	// Primary fails both attempts; secondary fails once then succeeds
	primary.EXPECT().
		Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("503 service unavailable")).
		Times(2)
	gomock.InOrder(
		secondary.EXPECT().
			Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errors.New("timeout")),
		secondary.EXPECT().
			Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("bafysecondary", nil),
	)

	s, err := contentstore.New([]contentstore.Provider{primary, secondary}, fastConfig())
	require.NoError(t, err)

	cid, provider, err := s.Upload(context.Background(), "story.mp4", "video/mp4", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "bafysecondary", cid)
	assert.Equal(t, "web3storage", provider)
}

func TestUploadStickyRouting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	primary := newProvider(t, ctrl, "pinata")
	secondary := newProvider(t, ctrl, "web3storage")

	// First upload: primary exhausted, secondary succeeds
	primary.EXPECT().
		Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("down")).
		Times(2)
	secondary.EXPECT().
		Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("bafy1", nil)

	// Second upload goes straight to the secondary
	secondary.EXPECT().
		Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("bafy2", nil)

	s, err := contentstore.New([]contentstore.Provider{primary, secondary}, fastConfig())
	require.NoError(t, err)

	_, provider, err := s.Upload(context.Background(), "a.mp4", "video/mp4", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "web3storage", provider)

	_, provider, err = s.Upload(context.Background(), "b.mp4", "video/mp4", []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, "web3storage", provider)
}

func TestUploadAllProvidersExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	primary := newProvider(t, ctrl, "pinata")
	secondary := newProvider(t, ctrl, "web3storage")

	primary.EXPECT().
		Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("down")).
		Times(2)
	secondary.EXPECT().
		Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("also down")).
		Times(2)

	s, err := contentstore.New([]contentstore.Provider{primary, secondary}, fastConfig())
	require.NoError(t, err)

	_, _, err = s.Upload(context.Background(), "story.mp4", "video/mp4", []byte("data"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAllProvidersExhausted)
	assert.Contains(t, err.Error(), "pinata")
	assert.Contains(t, err.Error(), "web3storage")
}

func TestUploadPreferredProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	primary := newProvider(t, ctrl, "pinata")
	secondary := newProvider(t, ctrl, "web3storage")

	secondary.EXPECT().
		Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("bafy", nil)

	cfg := fastConfig()
	cfg.PreferredProvider = "web3storage"

	s, err := contentstore.New([]contentstore.Provider{primary, secondary}, cfg)
	require.NoError(t, err)

	_, provider, err := s.Upload(context.Background(), "story.mp4", "video/mp4", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "web3storage", provider)
}

func TestUploadPerCallPreferenceBeatsSticky(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	primary := newProvider(t, ctrl, "pinata")
	secondary := newProvider(t, ctrl, "web3storage")

	// First upload succeeds on the primary, making it sticky; the second
	// upload names the secondary explicitly and must go there
	primary.EXPECT().
		Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("bafy1", nil)
	secondary.EXPECT().
		Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("bafy2", nil)

	s, err := contentstore.New([]contentstore.Provider{primary, secondary}, fastConfig())
	require.NoError(t, err)

	_, provider, err := s.Upload(context.Background(), "a.mp4", "video/mp4", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "pinata", provider)

	_, provider, err = s.Upload(context.Background(), "b.mp4", "video/mp4", []byte("b"),
		contentstore.WithPreferredProvider("web3storage"))
	require.NoError(t, err)
	assert.Equal(t, "web3storage", provider)
}

func TestUploadRetriesOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := newProvider(t, ctrl, "pinata")
	provider.EXPECT().
		Pin(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("down")).
		Times(3)

	s, err := contentstore.New([]contentstore.Provider{provider}, fastConfig())
	require.NoError(t, err)

	_, _, err = s.Upload(context.Background(), "story.mp4", "video/mp4", []byte("data"),
		contentstore.WithRetries(3))
	assert.ErrorIs(t, err, domain.ErrAllProvidersExhausted)
}

func TestUploadJSONCanonicalizes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := newProvider(t, ctrl, "pinata")

	// Key order must not affect the pinned bytes
	var pinned []byte
	provider.EXPECT().
		Pin(gomock.Any(), "metadata.json", "application/json", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, data []byte) (string, error) {
			pinned = data
			return "bafyjson", nil
		})

	s, err := contentstore.New([]contentstore.Provider{provider}, fastConfig())
	require.NoError(t, err)

	doc := map[string]interface{}{
		"name":  "The River Remembers",
		"tribe": "maori",
		"cid":   "bafyfile",
	}
	cid, _, err := s.UploadJSON(context.Background(), "metadata.json", doc)
	require.NoError(t, err)
	assert.Equal(t, "bafyjson", cid)
	assert.JSONEq(t, `{"cid":"bafyfile","name":"The River Remembers","tribe":"maori"}`, string(pinned))
}
