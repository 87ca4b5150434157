/*
File Name:  RelayPool.go
Copyright:  2024 Hearthmesh Contributors

Concrete RelayPool: resolves a geohash to its nearest relays (RelayDirectory)
and lazily dials/caches a RelayClient per URL (RelayClient's own reconnect
policy lives in wsRelayClient). Grounded on the teacher's connection-cache
pattern (Connection.go kept one *Connection per peer address, dialed once
and reused) generalized to per-relay-URL caching.
*/

package overlay

import (
	"context"
	"sync"
)

// DialRelayFunc allows tests to substitute a non-network relay dialer.
type DialRelayFunc func(ctx context.Context, url string) (RelayClient, error)

// CachingRelayPool implements RelayPool over a RelayDirectory, dialing each
// distinct relay URL at most once.
type CachingRelayPool struct {
	dir   *RelayDirectory
	dial  DialRelayFunc
	fanN  int

	mu      sync.Mutex
	clients map[string]RelayClient
}

// NewCachingRelayPool builds a pool over dir, using dial to establish new
// connections (pass DialRelay for production use).
func NewCachingRelayPool(dir *RelayDirectory, dial DialRelayFunc, fanN int) *CachingRelayPool {
	if fanN <= 0 {
		fanN = DefaultRelayCount
	}
	return &CachingRelayPool{
		dir:     dir,
		dial:    dial,
		fanN:    fanN,
		clients: make(map[string]RelayClient),
	}
}

// ClientsForGeohash returns the (possibly newly dialed) clients for the
// geohash's nearest relays.
func (p *CachingRelayPool) ClientsForGeohash(ctx context.Context, geohash string) ([]RelayClient, error) {
	urls := p.dir.NearestForGeohash(geohash, p.fanN)

	p.mu.Lock()
	defer p.mu.Unlock()

	clients := make([]RelayClient, 0, len(urls))
	for _, url := range urls {
		if c, ok := p.clients[url]; ok {
			clients = append(clients, c)
			continue
		}
		c, err := p.dial(ctx, url)
		if err != nil {
			continue // one unreachable relay must not abort the whole fan-out
		}
		p.clients[url] = c
		clients = append(clients, c)
	}

	return clients, nil
}

// CloseAll closes every cached relay connection and empties the cache.
func (p *CachingRelayPool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		c.Close()
	}
	p.clients = make(map[string]RelayClient)
}
