/*
File Name:  SocksProber.go
Copyright:  2024 Hearthmesh Contributors

SOCKS readiness probing (§4.5.1 "SOCKS probing"): dial the loopback SOCKS
port repeatedly until it accepts a connection or the overall deadline
elapses. Grounded on the teacher's UDP/TCP dialing style (Network.go's use of
net.Dial with short per-attempt timeouts), adapted to TCP-only loopback
probing since the proxy is a local process, not a remote peer.
*/

package overlay

import (
	"context"
	"net"
	"time"
)

// SocksProbeAttemptTimeout, SocksProbePollInterval and SocksProbeDeadline are
// the literal timing constants from §4.5.1/§5 "Timeouts".
const (
	SocksProbeAttemptTimeout = 1 * time.Second
	SocksProbePollInterval   = 250 * time.Millisecond
	SocksProbeDeadline       = 60 * time.Second
)

// Dialer abstracts net.Dialer.DialContext so tests can substitute a fake
// listener/dialer pair without opening real sockets.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type netDialer struct{ d net.Dialer }

func (n netDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return n.d.DialContext(ctx, network, address)
}

// DefaultDialer is a real net.Dialer-backed Dialer.
var DefaultDialer Dialer = netDialer{}

// ProbeSocks polls address (e.g. "127.0.0.1:39050") until a TCP connection
// succeeds or SocksProbeDeadline elapses, polling at SocksProbePollInterval
// with a SocksProbeAttemptTimeout per dial (§4.5.1).
func ProbeSocks(ctx context.Context, dialer Dialer, address string) bool {
	deadline := time.Now().Add(SocksProbeDeadline)

	for time.Now().Before(deadline) {
		attemptCtx, cancel := context.WithTimeout(ctx, SocksProbeAttemptTimeout)
		conn, err := dialer.DialContext(attemptCtx, "tcp", address)
		cancel()

		if err == nil {
			conn.Close()
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(SocksProbePollInterval):
		}
	}

	return false
}
