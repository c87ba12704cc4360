package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
)

// StoryMetadata is the metadata document a story's CID resolves to
type StoryMetadata struct {
	// Name is the story title
	Name string `json:"name"`
	// Description is the story description
	Description string `json:"description"`
	// Raw is the full document as fetched
	Raw json.RawMessage `json:"-"`
}

// Resolver fetches story metadata documents from IPFS
//
//go:generate mockgen -source=resolver.go -destination=../mocks/gateway_resolver.go -package=mocks -mock_names=Resolver=MockMetadataResolver
type Resolver interface {
	// Resolve fetches and decodes the metadata document behind a CID
	Resolve(ctx context.Context, cid string) (*StoryMetadata, error)
}

// resolver tries a fixed list of public IPFS gateways in order
type resolver struct {
	gateways []string
	client   adapter.HTTPClient
}

// NewResolver creates a gateway-backed metadata resolver
func NewResolver(gateways []string, client adapter.HTTPClient) Resolver {
	return &resolver{
		gateways: gateways,
		client:   client,
	}
}

// Resolve fetches the document behind a CID from the first gateway that
// answers. Gateway fetches are best effort; callers treat failures as
// missing metadata, not as reconciliation errors.
func (r *resolver) Resolve(ctx context.Context, cid string) (*StoryMetadata, error) {
	if cid == "" {
		return nil, fmt.Errorf("empty cid")
	}

	var lastErr error
	for _, gw := range r.gateways {
		url := fmt.Sprintf("%s/ipfs/%s", strings.TrimRight(gw, "/"), cid)

		var doc map[string]interface{}
		if err := r.client.Get(ctx, url, nil, &doc); err != nil {
			lastErr = fmt.Errorf("gateway %s: %w", gw, err)
			continue
		}

		raw, err := json.Marshal(doc)
		if err != nil {
			lastErr = fmt.Errorf("gateway %s: %w", gw, err)
			continue
		}

		meta := &StoryMetadata{Raw: raw}
		if name, ok := doc["name"].(string); ok {
			meta.Name = name
		}
		if desc, ok := doc["description"].(string); ok {
			meta.Description = desc
		}

		return meta, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("no gateways configured")
	}

	return nil, fmt.Errorf("all gateways failed: %w", lastErr)
}
