package contentstore

import "context"

// Provider pins content to an IPFS pinning service and returns its CID
//
//go:generate mockgen -source=provider.go -destination=../mocks/contentstore_provider.go -package=mocks -mock_names=Provider=MockProvider
type Provider interface {
	// Name identifies the provider in logs and job records
	Name() string

	// Pin uploads content and returns the content identifier
	Pin(ctx context.Context, filename string, contentType string, data []byte) (string, error)
}
