package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/codegen"
	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/internal/repository"
)

// Batch size policy bounds. Enforced here, not by the generator.
const (
	MinBatchSize = 1
	MaxBatchSize = 500

	DefaultBatchSize = 10
	DefaultReward    = 100
)

var (
	// ErrBatchSize rejects a generation request outside policy bounds.
	ErrBatchSize = fmt.Errorf("batch size must be between %d and %d", MinBatchSize, MaxBatchSize)

	// ErrReward rejects a non-positive reward amount.
	ErrReward = errors.New("reward amount must be positive")

	// ErrCouponNotFound means the code is absent from the current sheet.
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrNotDeletable refuses removal of used (terminal) or already
	// deleted coupons.
	ErrNotDeletable = errors.New("only unused coupons can be deleted")
)

// CouponStore is what the admin workflow needs from the coupon repository.
type CouponStore interface {
	FetchAll(ctx context.Context) (*repository.Snapshot, error)
	InsertBatch(ctx context.Context, coupons []models.Coupon) error
	DeleteRow(ctx context.Context, rowIndex int) error
}

// CouponService runs the admin-side workflows: minting batches, listing and
// deleting coupons.
type CouponService struct {
	store  CouponStore
	gen    *codegen.Generator
	now    func() time.Time
	logger *zap.Logger
}

func NewCouponService(store CouponStore, gen *codegen.Generator, logger *zap.Logger) *CouponService {
	return &CouponService{
		store:  store,
		gen:    gen,
		now:    time.Now,
		logger: logger,
	}
}

// BatchResult summarizes one accepted mint request.
type BatchResult struct {
	BatchID string   `json:"batchId"`
	Count   int      `json:"count"`
	Reward  int      `json:"reward"`
	Codes   []string `json:"codes"`
}

// GenerateBatch mints count new unused coupons worth reward each.
//
// It always starts from a fresh snapshot so the existing-code set is as
// current as a fetch can make it. Two admin sessions minting at the same
// time can still each pass the uniqueness check against their own snapshot;
// that race is accepted, not solved. Freshly generated codes feed back into
// the set immediately, so within-batch collisions cannot happen. Generator
// exhaustion aborts the whole batch with nothing submitted.
func (s *CouponService) GenerateBatch(ctx context.Context, count, reward int) (*BatchResult, error) {
	if count < MinBatchSize || count > MaxBatchSize {
		return nil, ErrBatchSize
	}
	if reward <= 0 {
		return nil, ErrReward
	}

	snap, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	existing := snap.ExistingCodes()

	created := s.now().Format(repository.TimestampLayout)
	coupons := make([]models.Coupon, 0, count)
	codes := make([]string, 0, count)

	for i := 0; i < count; i++ {
		code, err := s.gen.Generate(existing)
		if err != nil {
			return nil, err
		}
		existing[code] = struct{}{}
		codes = append(codes, code)
		coupons = append(coupons, models.Coupon{
			Created: created,
			Code:    code,
			Status:  models.StatusUnused,
			Reward:  reward,
		})
	}

	if err := s.store.InsertBatch(ctx, coupons); err != nil {
		// Nothing is assumed committed; the caller must re-fetch to
		// learn the true sheet state.
		return nil, err
	}

	result := &BatchResult{
		BatchID: uuid.NewString(),
		Count:   count,
		Reward:  reward,
		Codes:   codes,
	}
	s.logger.Info("coupon batch minted",
		zap.String("batch_id", result.BatchID),
		zap.Int("count", count),
		zap.Int("reward", reward),
	)
	return result, nil
}

// List returns the full coupon set from a fresh snapshot.
func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	snap, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Coupons, nil
}

// Delete removes the coupon with the given code. The row position is
// re-resolved against a fresh snapshot immediately before the write, and
// the lifecycle rules apply: used coupons are terminal and may never be
// deleted.
func (s *CouponService) Delete(ctx context.Context, code string) error {
	snap, err := s.store.FetchAll(ctx)
	if err != nil {
		return err
	}

	for _, c := range snap.Coupons {
		if !c.CodeMatches(code) {
			continue
		}
		if !c.Status.CanTransition(models.StatusDeleted) {
			return ErrNotDeletable
		}
		if err := s.store.DeleteRow(ctx, c.RowIndex); err != nil {
			return err
		}
		s.logger.Info("coupon deleted", zap.String("code", c.Code), zap.Int("row", c.RowIndex))
		return nil
	}
	return ErrCouponNotFound
}
