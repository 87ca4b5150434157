package overlay

import "testing"

func TestNetworkPermittedOnlyWhenBootstrapped(t *testing.T) {
	gate := NewProxyGate(false)
	if gate.NetworkPermitted() {
		t.Fatalf("expected fail-closed default state")
	}

	gate.Advance(ProxyStarting)
	if gate.NetworkPermitted() {
		t.Fatalf("starting state must not permit network")
	}

	gate.Advance(ProxySocksUp)
	if gate.NetworkPermitted() {
		t.Fatalf("socks-up alone must not permit network")
	}

	gate.RecordBootstrapProgress(99, "Almost there")
	if gate.NetworkPermitted() {
		t.Fatalf("99%% bootstrap must not permit network")
	}

	gate.RecordBootstrapProgress(100, "Done")
	if !gate.NetworkPermitted() {
		t.Fatalf("100%% bootstrap must permit network")
	}
}

func TestAdvanceRejectsNonForwardTransitions(t *testing.T) {
	gate := NewProxyGate(false)
	if gate.Advance(ProxyBootstrapped) {
		t.Fatalf("expected Off -> Bootstrapped to be rejected")
	}
	if gate.State() != ProxyOff {
		t.Fatalf("rejected transition must not change state")
	}
}

func TestForceTransitionBypassesForwardTable(t *testing.T) {
	gate := NewProxyGate(false)
	gate.Advance(ProxyStarting)
	gate.Advance(ProxySocksUp)
	gate.RecordBootstrapProgress(100, "Done")

	gate.ForceTransition(ProxyStarting) // restart sequence
	if gate.State() != ProxyStarting {
		t.Fatalf("expected forced transition to Starting")
	}
	if gate.NetworkPermitted() {
		t.Fatalf("restart must re-close the network gate")
	}
}
