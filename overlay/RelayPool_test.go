package overlay

import (
	"context"
	"errors"
	"testing"
)

type fakeRelayClient struct {
	published [][]byte
	closed    bool
}

func (c *fakeRelayClient) Publish(ctx context.Context, raw []byte) error {
	c.published = append(c.published, raw)
	return nil
}
func (c *fakeRelayClient) Subscribe(ctx context.Context, subID string, filterJSON []byte) error {
	return nil
}
func (c *fakeRelayClient) Unsubscribe(subID string) error { return nil }
func (c *fakeRelayClient) Close() error                   { c.closed = true; return nil }

func TestCachingRelayPoolDialsOncePerURL(t *testing.T) {
	dir, err := LoadDefaultRelayDirectory()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dialCount := 0
	dial := func(ctx context.Context, url string) (RelayClient, error) {
		dialCount++
		return &fakeRelayClient{}, nil
	}

	pool := NewCachingRelayPool(dir, dial, 2)

	clients1, err := pool.ClientsForGeohash(context.Background(), "9q8yyk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clients2, err := pool.ClientsForGeohash(context.Background(), "9q8yyk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(clients1) != 2 || len(clients2) != 2 {
		t.Fatalf("expected 2 clients per call, got %d and %d", len(clients1), len(clients2))
	}
	if dialCount != 2 {
		t.Fatalf("expected exactly 2 dials across both calls, got %d", dialCount)
	}
}

func TestCachingRelayPoolSkipsUnreachableRelays(t *testing.T) {
	dir, err := LoadDefaultRelayDirectory()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dial := func(ctx context.Context, url string) (RelayClient, error) {
		return nil, errors.New("unreachable")
	}

	pool := NewCachingRelayPool(dir, dial, 3)
	clients, err := pool.ClientsForGeohash(context.Background(), "9q8yyk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clients) != 0 {
		t.Fatalf("expected no clients when every dial fails, got %d", len(clients))
	}
}
