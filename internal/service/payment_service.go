package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/concurrency"
	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/internal/repository"
)

// DoneMarker is the value written into the payment column on settlement.
const DoneMarker = "Done"

// settleWorkers bounds the settlement fan-out.
const settleWorkers = 4

// PaymentStore is what reconciliation needs from the coupon repository.
type PaymentStore interface {
	FetchAll(ctx context.Context) (*repository.Snapshot, error)
	SetPaymentStatus(ctx context.Context, rowIndex int, value string) error
}

// PaymentService partitions redeemed coupons into pending/paid buckets and
// runs batch settlement. The tri-state is never stored: it is derived from
// the presence of the UPI id and the payment marker every time.
type PaymentService struct {
	store  PaymentStore
	logger *zap.Logger
}

func NewPaymentService(store PaymentStore, logger *zap.Logger) *PaymentService {
	return &PaymentService{store: store, logger: logger}
}

// Buckets holds the two disjoint payment views. Coupons without a UPI id
// belong to neither: they are not yet claimed, so not payment-eligible.
type Buckets struct {
	Pending []models.Coupon `json:"pending"`
	History []models.Coupon `json:"history"`
}

// Partition splits coupons by the two derived predicates: pending has a UPI
// id and an empty marker, history has both.
func Partition(coupons []models.Coupon) Buckets {
	var b Buckets
	for _, c := range coupons {
		if strings.TrimSpace(c.UPIID) == "" {
			continue
		}
		if strings.TrimSpace(c.PaymentStatus) == "" {
			b.Pending = append(b.Pending, c)
		} else {
			b.History = append(b.History, c)
		}
	}
	return b
}

// FilterItems applies the payment view's free-text search: case-insensitive
// substring on code, claimant, phone or UPI id.
func FilterItems(items []models.Coupon, term string) []models.Coupon {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	var out []models.Coupon
	for _, c := range items {
		if strings.Contains(strings.ToLower(c.Code), term) ||
			strings.Contains(strings.ToLower(c.ClaimedBy), term) ||
			strings.Contains(strings.ToLower(c.Phone), term) ||
			strings.Contains(strings.ToLower(c.UPIID), term) {
			out = append(out, c)
		}
	}
	return out
}

// ListBuckets fetches a fresh snapshot and partitions it.
func (s *PaymentService) ListBuckets(ctx context.Context) (*Buckets, error) {
	snap, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	b := Partition(snap.Coupons)
	return &b, nil
}

// Settle marks the selected pending coupons as paid. Row positions are
// resolved against a single fresh snapshot, then one single-cell update per
// row is issued concurrently. There is no multi-row transaction: a partial
// failure leaves some rows marked and others not, and is reported as one
// undifferentiated error after every request has settled. Callers must
// re-fetch afterwards instead of trusting any local state, because row
// positions may have shifted.
//
// Codes that are not in the pending bucket of the resolving snapshot are
// skipped, not failed: another session may have settled them already.
func (s *PaymentService) Settle(ctx context.Context, codes []string) (int, error) {
	snap, err := s.store.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	pending := Partition(snap.Coupons).Pending

	var targets []models.Coupon
	for _, code := range codes {
		for _, c := range pending {
			if c.CodeMatches(code) {
				targets = append(targets, c)
				break
			}
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	errs := concurrency.FanOut(ctx, settleWorkers, len(targets), func(ctx context.Context, i int) error {
		return s.store.SetPaymentStatus(ctx, targets[i].RowIndex, DoneMarker)
	})

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			s.logger.Error("payment marker update failed",
				zap.String("code", targets[i].Code),
				zap.Int("row", targets[i].RowIndex),
				zap.Error(err),
			)
		}
	}
	settled := len(targets) - failed
	if failed > 0 {
		return settled, fmt.Errorf("payment status update failed for %d of %d rows", failed, len(targets))
	}

	s.logger.Info("payments settled", zap.Int("count", settled))
	return settled, nil
}
