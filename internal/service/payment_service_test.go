package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/models"
)

func TestPartition(t *testing.T) {
	coupons := []models.Coupon{
		{Code: "Unclaimed1", Status: models.StatusUnused},
		{Code: "Pending2", Status: models.StatusUsed, UPIID: "a@upi"},
		{Code: "Paid3", Status: models.StatusUsed, UPIID: "b@upi", PaymentStatus: "Done"},
		{Code: "Whitespace4", Status: models.StatusUsed, UPIID: "   "},
	}

	b := Partition(coupons)
	require.Len(t, b.Pending, 1)
	assert.Equal(t, "Pending2", b.Pending[0].Code)
	require.Len(t, b.History, 1)
	assert.Equal(t, "Paid3", b.History[0].Code)
}

func TestFilterItems(t *testing.T) {
	items := []models.Coupon{
		{Code: "Ab3@xYz9#k", ClaimedBy: "Asha Sharma", Phone: "9876543210", UPIID: "asha@upi"},
		{Code: "Cd4$wQr8!m", ClaimedBy: "Ravi Kumar", Phone: "9123456789", UPIID: "ravi@upi"},
	}

	assert.Len(t, FilterItems(items, ""), 2)
	assert.Len(t, FilterItems(items, "asha"), 1)
	assert.Len(t, FilterItems(items, "912345"), 1)
	assert.Len(t, FilterItems(items, "RAVI@UPI"), 1)
	assert.Len(t, FilterItems(items, "cd4$"), 1)
	assert.Empty(t, FilterItems(items, "nomatch"))
}

func TestSettleMarksSelectedRows(t *testing.T) {
	store := newMemStore(
		models.Coupon{Code: "Pending1@a", Status: models.StatusUsed, UPIID: "a@upi"},
		models.Coupon{Code: "Pending2#b", Status: models.StatusUsed, UPIID: "b@upi"},
		models.Coupon{Code: "Pending3$c", Status: models.StatusUsed, UPIID: "c@upi"},
	)
	svc := NewPaymentService(store, zap.NewNop())

	settled, err := svc.Settle(context.Background(), []string{"pending1@A", "Pending3$c"})
	require.NoError(t, err)
	assert.Equal(t, 2, settled)

	assert.Equal(t, DoneMarker, store.row(0).PaymentStatus)
	assert.Empty(t, store.row(1).PaymentStatus, "unselected row untouched")
	assert.Equal(t, DoneMarker, store.row(2).PaymentStatus)
}

func TestSettleSkipsNonPendingCodes(t *testing.T) {
	store := newMemStore(
		models.Coupon{Code: "AlreadyPaid", Status: models.StatusUsed, UPIID: "a@upi", PaymentStatus: "Done"},
		models.Coupon{Code: "NotClaimed", Status: models.StatusUnused},
	)
	svc := NewPaymentService(store, zap.NewNop())

	settled, err := svc.Settle(context.Background(), []string{"AlreadyPaid", "NotClaimed", "Unknown"})
	require.NoError(t, err)
	assert.Equal(t, 0, settled)
}

func TestSettlePartialFailure(t *testing.T) {
	store := newMemStore(
		models.Coupon{Code: "Pending1@a", Status: models.StatusUsed, UPIID: "a@upi"},
		models.Coupon{Code: "Pending2#b", Status: models.StatusUsed, UPIID: "b@upi"},
	)
	store.failRows = map[int]error{3: errors.New("backend rejected")}
	svc := NewPaymentService(store, zap.NewNop())

	settled, err := svc.Settle(context.Background(), []string{"Pending1@a", "Pending2#b"})
	assert.EqualError(t, err, "payment status update failed for 1 of 2 rows")
	assert.Equal(t, 1, settled)

	assert.Equal(t, DoneMarker, store.row(0).PaymentStatus, "successful row stays marked")
	assert.Empty(t, store.row(1).PaymentStatus)
}

func TestListBuckets(t *testing.T) {
	store := newMemStore(
		models.Coupon{Code: "Pending1@a", Status: models.StatusUsed, UPIID: "a@upi"},
		models.Coupon{Code: "Paid2#b", Status: models.StatusUsed, UPIID: "b@upi", PaymentStatus: "Done"},
	)
	svc := NewPaymentService(store, zap.NewNop())

	b, err := svc.ListBuckets(context.Background())
	require.NoError(t, err)
	assert.Len(t, b.Pending, 1)
	assert.Len(t, b.History, 1)
}
