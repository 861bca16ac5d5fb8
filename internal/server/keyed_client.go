package server

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/at-ishikawa/eiken/internal/inference"
)

// KeyedClient builds the explanation client from the currently stored API key,
// so a key set through the API takes effect without a restart.
type KeyedClient struct {
	keys      KeyStore
	newClient func(apiKey string) inference.Client

	mu     sync.Mutex
	apiKey string
	client inference.Client
}

func NewKeyedClient(keys KeyStore, newClient func(apiKey string) inference.Client) *KeyedClient {
	return &KeyedClient{keys: keys, newClient: newClient}
}

func (c *KeyedClient) Explain(ctx context.Context, req inference.ExplainRequest) (inference.ExplainResponse, error) {
	client, err := c.current()
	if err != nil {
		return inference.ExplainResponse{}, err
	}
	return client.Explain(ctx, req)
}

func (c *KeyedClient) current() (inference.Client, error) {
	apiKey, err := c.keys.GetAPIKey()
	if err != nil {
		return nil, fmt.Errorf("keys.GetAPIKey() > %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil || c.apiKey != apiKey {
		if closer, ok := c.client.(io.Closer); ok {
			_ = closer.Close()
		}
		c.client = c.newClient(apiKey)
		c.apiKey = apiKey
	}
	return c.client, nil
}
