/*
File Name:  RelayClient.go
Copyright:  2024 Hearthmesh Contributors

Relay WebSocket client contract and its implementation, whose initial dial
retries with backoff; a connection that drops later is not re-dialed (§4.5.2,
§5 "Backpressure": "per-relay reconnection backoff, initial 1 s, multiplier
2, cap 300 s, max 10 attempts"). The wire subscription protocol itself is an
external collaborator (§1 Non-goals: "we specify only the relay-selection
and subscription contracts"); this file fixes that contract and the
reconnect policy around it.
*/

package overlay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrTransportUnavailable is returned when no relay connection can be
// established within the reconnect budget (§7 taxonomy).
var ErrTransportUnavailable = errors.New("overlay transport unavailable")

// Reconnect policy constants (§5 "Backpressure").
const (
	ReconnectInitialDelay = 1 * time.Second
	ReconnectMultiplier   = 2
	ReconnectMaxDelay     = 300 * time.Second
	ReconnectMaxAttempts  = 10
)

// RelayClient is the capability set the overlay sender needs from a relay
// connection: publish a raw event frame and subscribe to a filter.
type RelayClient interface {
	Publish(ctx context.Context, raw []byte) error
	Subscribe(ctx context.Context, subID string, filterJSON []byte) error
	Unsubscribe(subID string) error
	Close() error
}

// wsRelayClient implements RelayClient over gorilla/websocket. Only the
// initial dial retries with backoff (§5 "Backpressure"); a dropped
// connection is not re-established.
type wsRelayClient struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn
}

// DialRelay connects to a relay URL (e.g. "wss://relay.example") and
// establishes the websocket session, retrying per the reconnect policy.
func DialRelay(ctx context.Context, url string) (RelayClient, error) {
	c := &wsRelayClient{url: url}
	if err := c.connectWithBackoff(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *wsRelayClient) connectWithBackoff(ctx context.Context) error {
	delay := ReconnectInitialDelay

	for attempt := 0; attempt < ReconnectMaxAttempts; attempt++ {
		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		conn, _, err := dialer.DialContext(ctx, c.url, nil)
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
			return nil
		}

		if attempt == ReconnectMaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= ReconnectMultiplier
		if delay > ReconnectMaxDelay {
			delay = ReconnectMaxDelay
		}
	}

	return ErrTransportUnavailable
}

// Publish writes a raw event frame to the relay.
func (c *wsRelayClient) Publish(ctx context.Context, raw []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrTransportUnavailable
	}
	return conn.WriteMessage(websocket.TextMessage, raw)
}

// Subscribe sends a subscription request frame; the filter encoding itself
// is an external protocol concern (§1 Non-goals), so filterJSON is passed
// through verbatim.
func (c *wsRelayClient) Subscribe(ctx context.Context, subID string, filterJSON []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrTransportUnavailable
	}
	frame := append([]byte(`["REQ","`+subID+`",`), filterJSON...)
	frame = append(frame, ']')
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// Unsubscribe sends a close frame for subID. Unsubscribe is synchronous and
// idempotent (§5 "Cancellation").
func (c *wsRelayClient) Unsubscribe(subID string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.WriteMessage(websocket.TextMessage, []byte(`["CLOSE","`+subID+`"]`))
}

// Close closes the underlying websocket connection.
func (c *wsRelayClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
