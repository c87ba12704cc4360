package contentstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
)

// pinataProvider pins content through the Pinata pinning API
type pinataProvider struct {
	baseURL string
	jwt     string
	client  adapter.HTTPClient
}

// pinataResponse is the relevant subset of Pinata's pin response
type pinataResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// NewPinataProvider creates a Pinata-backed provider
func NewPinataProvider(baseURL, jwt string, client adapter.HTTPClient) Provider {
	return &pinataProvider{
		baseURL: baseURL,
		jwt:     jwt,
		client:  client,
	}
}

func (p *pinataProvider) Name() string {
	return "pinata"
}

func (p *pinataProvider) Pin(ctx context.Context, filename string, contentType string, data []byte) (string, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + p.jwt,
	}

	respBody, err := p.client.PostMultipart(ctx, p.baseURL+"/pinning/pinFileToIPFS", headers, "file", filename, data)
	if err != nil {
		return "", fmt.Errorf("pinata pin failed: %w", err)
	}

	var resp pinataResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to decode pinata response: %w", err)
	}
	if resp.IpfsHash == "" {
		return "", fmt.Errorf("pinata returned no hash")
	}

	return resp.IpfsHash, nil
}
