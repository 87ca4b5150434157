/*
File Name:  Errors.go
Copyright:  2024 Hearthmesh Contributors

Error taxonomy (§7). Most kinds already have a concrete sentinel in the
package that owns them (protocol.ErrMalformedPacket, overlay.ErrProxyNotReady,
etc.); this file re-exports them under one name for callers that want to
errors.Is against the taxonomy without importing every subpackage, and
defines the remaining kinds that have no single owning package.
*/

package meshcore

import (
	"errors"

	"github.com/hearthmesh/meshcore/overlay"
	"github.com/hearthmesh/meshcore/protocol"
)

// Re-exported sentinels (§7 taxonomy), each already owned by a subpackage.
var (
	ErrMalformedPacket       = protocol.ErrMalformedPacket
	ErrProxyNotReady         = overlay.ErrProxyNotReady
	ErrProxyBootstrapTimeout = overlay.ErrProxyBootstrapTimeout
	ErrTransportUnavailable  = overlay.ErrTransportUnavailable
	ErrPayloadTooLarge       = overlay.ErrPayloadTooLarge
)

// Kinds with no single owning subpackage (§7 taxonomy).
var (
	ErrSignatureInvalid = errors.New("signature invalid")
	ErrDuplicate        = errors.New("duplicate")
	ErrRateLimited       = errors.New("rate limited")
	ErrDecodeAmbiguity   = errors.New("decode ambiguity")
	ErrIO                = errors.New("io error")
)
