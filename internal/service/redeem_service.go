package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/cache"
	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/internal/repository"
)

var (
	// ErrCodeNotFound means the submitted code does not match any
	// non-deleted coupon in the mounted snapshot.
	ErrCodeNotFound = errors.New("invalid coupon code")

	// ErrAlreadyUsed means the matched coupon is already redeemed.
	ErrAlreadyUsed = errors.New("coupon already used")
)

// RedeemStore is what the redemption engine needs from the coupon
// repository.
type RedeemStore interface {
	FetchAll(ctx context.Context) (*repository.Snapshot, error)
	UpdateRow(ctx context.Context, rowIndex int, c models.Coupon) error
}

// RedeemService is the validation and redemption engine. It validates a
// submitted code locally against the snapshot mounted in its cache, not
// against a fresh server read at submission time, and writes the full
// replacement row back keyed by that same snapshot's row position.
//
// Known-open correctness gap: two sessions holding pre-redemption snapshots
// both pass local validation for the same code, and the backend has no
// conditional update, so the last write wins silently. Fixing this would
// require a version column on the sheet; the store contract is consumed
// as-is.
type RedeemService struct {
	store     RedeemStore
	snapshots *cache.SnapshotCache
	now       func() time.Time
	logger    *zap.Logger
}

func NewRedeemService(store RedeemStore, snapshots *cache.SnapshotCache, logger *zap.Logger) *RedeemService {
	return &RedeemService{
		store:     store,
		snapshots: snapshots,
		now:       time.Now,
		logger:    logger,
	}
}

// Mount fetches a fresh snapshot and makes it the basis for all local
// validation until the next Mount.
func (s *RedeemService) Mount(ctx context.Context) error {
	snap, err := s.store.FetchAll(ctx)
	if err != nil {
		return err
	}
	s.snapshots.Set(snap)
	return nil
}

func (s *RedeemService) snapshot(ctx context.Context) (*repository.Snapshot, error) {
	if snap := s.snapshots.Get(); snap != nil {
		return snap, nil
	}
	if err := s.Mount(ctx); err != nil {
		return nil, err
	}
	return s.snapshots.Get(), nil
}

// Validate scans the mounted snapshot for the code: case-insensitive,
// trimmed match on the code column. Deleted coupons are treated as not
// found. A blank or garbled reward cell reads as the historical default of
// 100 on this path.
func (s *RedeemService) Validate(ctx context.Context, code string) (models.ValidationResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return models.ValidationResult{}, err
	}

	for _, c := range snap.Coupons {
		if c.Status == models.StatusDeleted || !c.CodeMatches(code) {
			continue
		}
		return models.ValidationResult{
			IsValid:  true,
			IsUsed:   c.Status == models.StatusUsed,
			Reward:   rewardOrDefault(c.Reward),
			RowIndex: c.RowIndex,
		}, nil
	}
	return models.ValidationResult{RowIndex: -1}, nil
}

// Redeem performs the unused -> used transition for a fully validated claim
// form. The replacement row preserves code and reward from the snapshot,
// clears the created cell, populates all claim fields from the trimmed
// submission plus a fresh timestamp, and leaves the payment marker empty
// for the payment view to fill. On success the snapshot's own copy is
// marked used so a repeat submission in this session is caught without a
// round trip.
func (s *RedeemService) Redeem(ctx context.Context, req models.RedeemRequest) (int, error) {
	result, err := s.Validate(ctx, req.CouponCode)
	if err != nil {
		return 0, err
	}
	if !result.IsValid {
		return 0, ErrCodeNotFound
	}
	if result.IsUsed {
		return 0, ErrAlreadyUsed
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	var original models.Coupon
	for _, c := range snap.Coupons {
		if c.RowIndex == result.RowIndex {
			original = c
			break
		}
	}

	updated := models.Coupon{
		Created:    "",
		Code:       original.Code,
		Status:     models.StatusUsed,
		Reward:     result.Reward,
		ClaimedBy:  strings.TrimSpace(req.Name),
		ClaimedAt:  s.now().Format(repository.TimestampLayout),
		Phone:      strings.TrimSpace(req.Phone),
		UPIID:      strings.TrimSpace(req.UPIID),
		City:       strings.TrimSpace(req.City),
		DealerName: strings.TrimSpace(req.DealerName),
		RowIndex:   result.RowIndex,
	}

	if err := s.store.UpdateRow(ctx, result.RowIndex, updated); err != nil {
		return 0, err
	}

	s.snapshots.MarkRedeemed(result.RowIndex, updated)
	s.logger.Info("coupon redeemed",
		zap.String("code", original.Code),
		zap.Int("reward", result.Reward),
		zap.Int("row", result.RowIndex),
	)
	return result.Reward, nil
}

// Lookup returns the snapshot coupon for a code, for form prefill.
func (s *RedeemService) Lookup(ctx context.Context, code string) (models.Coupon, bool, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return models.Coupon{}, false, err
	}
	for _, c := range snap.Coupons {
		if c.Status != models.StatusDeleted && c.CodeMatches(code) {
			return c, true, nil
		}
	}
	return models.Coupon{}, false, nil
}

func rewardOrDefault(reward int) int {
	if reward <= 0 {
		return DefaultReward
	}
	return reward
}
