/*
File Name:  ProxyGate.go
Copyright:  2024 Hearthmesh Contributors

Embedded anonymizing proxy lifecycle (§4.5.1). Grounded on the teacher's
bootstrap state tracking (Bootstrap.go's "at least 2 root peers" convergence
loop) generalized into an explicit state machine, since the source's proxy
lifecycle has no direct teacher analogue beyond "retry until connected".
*/

package overlay

import (
	"errors"
	"sync"
)

// ProxyState is the proxy lifecycle state (§4.5.1).
type ProxyState int

const (
	ProxyOff ProxyState = iota
	ProxyStarting
	ProxySocksUp
	ProxyBootstrapped
	ProxyDormant
	ProxyFailed
)

func (s ProxyState) String() string {
	switch s {
	case ProxyOff:
		return "off"
	case ProxyStarting:
		return "starting"
	case ProxySocksUp:
		return "socks_up"
	case ProxyBootstrapped:
		return "bootstrapped"
	case ProxyDormant:
		return "dormant"
	case ProxyFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrProxyNotReady is returned by every send/connect path gated on
// networkPermitted (§7 taxonomy).
var ErrProxyNotReady = errors.New("proxy not ready")

// ErrProxyBootstrapTimeout is returned when bootstrap polling exceeds its
// overall deadline (§4.5.1, §7 taxonomy).
var ErrProxyBootstrapTimeout = errors.New("proxy bootstrap timeout")

// ProxyGate owns the proxy lifecycle state and the fail-closed readiness
// check (§4.5.1 "Readiness gate"). All mutation happens from the main
// cooperative context (§5); this type only adds a mutex so tests and
// read-only observers from other goroutines stay safe.
type ProxyGate struct {
	mu sync.RWMutex

	state            ProxyState
	devClearnetBuild bool
	bootstrapPercent int
	summary          string
}

// NewProxyGate creates a gate starting in ProxyOff.
func NewProxyGate(devClearnetBuild bool) *ProxyGate {
	return &ProxyGate{state: ProxyOff, devClearnetBuild: devClearnetBuild}
}

// State returns the current lifecycle state.
func (g *ProxyGate) State() ProxyState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// NetworkPermitted is the fail-closed gate every overlay send and outbound
// connection must check (§4.5.1).
func (g *ProxyGate) NetworkPermitted() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == ProxyBootstrapped || g.devClearnetBuild
}

// BootstrapProgress returns the last observed GETINFO bootstrap-phase values.
func (g *ProxyGate) BootstrapProgress() (percent int, summary string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bootstrapPercent, g.summary
}

// transitions allowed going forward (§3.1 "ProxyState: monotonic forward
// except via an explicit restart action or a network-path-change event").
var forwardTransitions = map[ProxyState]map[ProxyState]bool{
	ProxyOff:          {ProxyStarting: true, ProxyDormant: true},
	ProxyStarting:     {ProxySocksUp: true, ProxyFailed: true, ProxyDormant: true},
	ProxySocksUp:      {ProxyBootstrapped: true, ProxyFailed: true, ProxyDormant: true},
	ProxyBootstrapped: {ProxyDormant: true},
	ProxyDormant:      {ProxyStarting: true},
	ProxyFailed:       {ProxyStarting: true, ProxyDormant: true},
}

// Advance performs a state transition, refusing anything not in the forward
// table. Restart (to ProxyOff/ProxyStarting) and path-change recovery bypass
// this check via ForceTransition.
func (g *ProxyGate) Advance(next ProxyState) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if forwardTransitions[g.state][next] {
		g.state = next
		return true
	}
	return false
}

// ForceTransition is used by restart and foreground-recovery flows (§4.5.1
// "Foreground recovery"), which legitimately move backward in the state
// graph.
func (g *ProxyGate) ForceTransition(next ProxyState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = next
}

// RecordBootstrapProgress updates the last-seen GETINFO status and, at 100%,
// advances to Bootstrapped (§4.5.1 "Bootstrap polling").
func (g *ProxyGate) RecordBootstrapProgress(percent int, summary string) {
	g.mu.Lock()
	g.bootstrapPercent = percent
	g.summary = summary
	reachedFull := percent >= 100 && g.state == ProxySocksUp
	if reachedFull {
		g.state = ProxyBootstrapped
	}
	g.mu.Unlock()
}
