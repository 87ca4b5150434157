/*
File Name:  PanicWipe.go
Copyright:  2024 Hearthmesh Contributors

Panic/emergency wipe (§7: "a distinct external operation that resets all
in-memory state... synchronously; it is not an error path"). Supplements
spec.md's distillation, which names the operation in passing; the original
BitChat source ships a dedicated panic-clear action, so this module gives it
a first-class entry point rather than leaving it implicit.
*/

package meshcore

// PanicWipe synchronously clears the gossip store, Bloom filters, outbox,
// the in-memory read-receipt set, and the persisted read-receipt and bookmark
// ledgers. It holds and clears no favorites data. It does not touch the
// proxy's lifecycle state, since the fail-closed gate must remain whatever
// it was (wiping secrets is not a reason to re-open the network).
func (b *Backend) PanicWipe() {
	b.Gossip.Wipe(b.Config.Bloom.MaxBytes, b.Config.Bloom.TargetFpr)
	b.Router.Outbox().Wipe()

	b.readReceiptIDs = make(map[string]bool)
	b.ReadReceipts.Save(nil)
	b.Bookmarks.Save(nil)
}
