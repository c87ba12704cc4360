package contentstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gowebpki/jcs"
	"go.uber.org/zap"

	"github.com/lorefolk/heritage-ledger/internal/domain"
	"github.com/lorefolk/heritage-ledger/internal/logger"
)

// Config holds retry behavior for the content store
type Config struct {
	// Retries is the number of attempts per provider before failing over
	Retries int
	// BaseDelay is the initial backoff interval between attempts
	BaseDelay time.Duration
	// MaxDelay caps the backoff interval
	MaxDelay time.Duration
	// PreferredProvider seeds the routing order; empty means first configured
	PreferredProvider string
}

// Store uploads content through an ordered list of pinning providers.
// Uploads go to the last provider that succeeded first; each provider gets a
// bounded number of backoff-spaced attempts before the next one is tried.
type Store struct {
	providers []Provider
	config    Config

	mu     sync.Mutex
	sticky int
}

// New creates a content store over the configured providers
func New(providers []Provider, config Config) (*Store, error) {
	if len(providers) == 0 {
		return nil, domain.ErrNoProvidersConfigured
	}
	if config.Retries <= 0 {
		config.Retries = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}

	s := &Store{providers: providers, config: config}

	if config.PreferredProvider != "" {
		for i, p := range providers {
			if p.Name() == config.PreferredProvider {
				s.sticky = i
				break
			}
		}
	}

	return s, nil
}

// UploadOption adjusts a single upload
type UploadOption func(*uploadOptions)

type uploadOptions struct {
	preferredProvider string
	retries           int
}

// WithPreferredProvider tries the named provider first for this upload,
// ahead of the sticky last-success provider
func WithPreferredProvider(name string) UploadOption {
	return func(o *uploadOptions) { o.preferredProvider = name }
}

// WithRetries overrides the per-provider attempt count for this upload
func WithRetries(n int) UploadOption {
	return func(o *uploadOptions) { o.retries = n }
}

// Upload pins content, failing over across providers. It returns the CID and
// the name of the provider that accepted the content.
func (s *Store) Upload(ctx context.Context, filename string, contentType string, data []byte, opts ...UploadOption) (string, string, error) {
	var options uploadOptions
	for _, opt := range opts {
		opt(&options)
	}

	retries := s.config.Retries
	if options.retries > 0 {
		retries = options.retries
	}

	s.mu.Lock()
	start := s.sticky
	s.mu.Unlock()

	if options.preferredProvider != "" {
		for i, p := range s.providers {
			if p.Name() == options.preferredProvider {
				start = i
				break
			}
		}
	}

	var failures []error
	for i := 0; i < len(s.providers); i++ {
		idx := (start + i) % len(s.providers)
		provider := s.providers[idx]

		cid, err := s.pinWithRetry(ctx, provider, filename, contentType, data, retries)
		if err != nil {
			logger.WarnCtx(ctx, "provider exhausted, failing over",
				zap.String("provider", provider.Name()),
				zap.String("filename", filename),
				zap.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}

		s.mu.Lock()
		s.sticky = idx
		s.mu.Unlock()

		logger.InfoCtx(ctx, "content pinned",
			zap.String("provider", provider.Name()),
			zap.String("cid", cid),
			zap.String("filename", filename))

		return cid, provider.Name(), nil
	}

	return "", "", fmt.Errorf("%w: %s", domain.ErrAllProvidersExhausted, errors.Join(failures...))
}

// UploadJSON canonicalizes a document and pins it as application/json.
// Canonical form keeps the CID stable across re-serializations.
func (s *Store) UploadJSON(ctx context.Context, name string, doc interface{}, opts ...UploadOption) (string, string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal document: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", "", fmt.Errorf("failed to canonicalize document: %w", err)
	}

	return s.Upload(ctx, name, "application/json", canonical, opts...)
}

// pinWithRetry attempts a single provider with exponential backoff
func (s *Store) pinWithRetry(ctx context.Context, provider Provider, filename string, contentType string, data []byte, retries int) (string, error) {
	var cid string

	operation := func() error {
		var err error
		cid, err = provider.Pin(ctx, filename, contentType, data)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.BaseDelay
	b.MaxInterval = s.config.MaxDelay
	b.MaxElapsedTime = 0

	maxRetries := uint64(retries - 1) //nolint:gosec
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)); err != nil {
		return "", err
	}

	return cid, nil
}
