package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/lorefolk/heritage-ledger/internal/adapter"
)

// web3StorageProvider pins content through the web3.storage upload API
type web3StorageProvider struct {
	baseURL string
	token   string
	client  adapter.HTTPClient
}

// web3StorageResponse is the relevant subset of the upload response
type web3StorageResponse struct {
	CID string `json:"cid"`
}

// NewWeb3StorageProvider creates a web3.storage-backed provider
func NewWeb3StorageProvider(baseURL, token string, client adapter.HTTPClient) Provider {
	return &web3StorageProvider{
		baseURL: baseURL,
		token:   token,
		client:  client,
	}
}

func (p *web3StorageProvider) Name() string {
	return "web3storage"
}

func (p *web3StorageProvider) Pin(ctx context.Context, filename string, contentType string, data []byte) (string, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + p.token,
		"X-NAME":        filename,
	}

	respBody, err := p.client.Post(ctx, p.baseURL+"/upload", contentType, headers, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("web3.storage upload failed: %w", err)
	}

	var resp web3StorageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to decode web3.storage response: %w", err)
	}
	if resp.CID == "" {
		return "", fmt.Errorf("web3.storage returned no cid")
	}

	return resp.CID, nil
}
