package cache

import (
	"sync"

	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/internal/repository"
)

// SnapshotCache holds the coupon snapshot the redemption engine validates
// against. Validation is local to whatever snapshot is mounted here, not a
// fresh server read; two sessions with different snapshots can both decide
// the same code is redeemable.
type SnapshotCache struct {
	mu   sync.RWMutex
	snap *repository.Snapshot
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

// Get returns the mounted snapshot, or nil if none has been mounted yet.
func (c *SnapshotCache) Get() *repository.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Set mounts a freshly fetched snapshot, discarding the previous one.
func (c *SnapshotCache) Set(snap *repository.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
}

// MarkRedeemed replaces the cached coupon at rowIndex after a successful
// write-back, so a second submission in the same session is rejected
// locally without a round trip. It does nothing for other sessions.
func (c *SnapshotCache) MarkRedeemed(rowIndex int, updated models.Coupon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return
	}
	for i, coupon := range c.snap.Coupons {
		if coupon.RowIndex == rowIndex {
			c.snap.Coupons[i] = updated
			return
		}
	}
}
