package service

import (
	"context"
	"sync"
	"time"

	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/internal/repository"
)

// memStore simulates the coupon sheet: rows live at stable positions
// starting at row 2 (row 1 is the header) and every FetchAll hands out a
// fresh snapshot with positions reassigned.
type memStore struct {
	mu      sync.Mutex
	coupons []models.Coupon

	fetchErr  error
	insertErr error
	updateErr error
	deleteErr error

	// failRows makes SetPaymentStatus fail for specific row positions.
	failRows map[int]error

	updateCalls int
}

func newMemStore(coupons ...models.Coupon) *memStore {
	return &memStore{coupons: coupons}
}

func (m *memStore) FetchAll(ctx context.Context) (*repository.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	snap := &repository.Snapshot{FetchedAt: time.Now()}
	for i, c := range m.coupons {
		c.RowIndex = i + 2
		snap.Coupons = append(snap.Coupons, c)
	}
	return snap, nil
}

func (m *memStore) InsertBatch(ctx context.Context, coupons []models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.coupons = append(m.coupons, coupons...)
	return nil
}

func (m *memStore) UpdateRow(ctx context.Context, rowIndex int, c models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	m.coupons[rowIndex-2] = c
	return nil
}

func (m *memStore) SetPaymentStatus(ctx context.Context, rowIndex int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failRows[rowIndex]; err != nil {
		return err
	}
	m.coupons[rowIndex-2].PaymentStatus = value
	return nil
}

func (m *memStore) DeleteRow(ctx context.Context, rowIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	i := rowIndex - 2
	m.coupons = append(m.coupons[:i], m.coupons[i+1:]...)
	return nil
}

func (m *memStore) row(i int) models.Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coupons[i]
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.coupons)
}
