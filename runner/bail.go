package runner

import "sync/atomic"

// BailController is the shared stop latch for one run. Once signaled,
// strategies stop scheduling new specs. There is no way to clear the latch; a
// new run gets a fresh controller.
type BailController struct {
	tripped atomic.Bool
}

// NewBailController returns an untriggered controller.
func NewBailController() *BailController {
	return &BailController{}
}

// Signal trips the latch. It is idempotent and safe under concurrent callers.
func (b *BailController) Signal() {
	b.tripped.Store(true)
}

// Triggered reports whether the latch has been tripped.
func (b *BailController) Triggered() bool {
	return b.tripped.Load()
}
