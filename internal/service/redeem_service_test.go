package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/cache"
	"github.com/botivate/coupon-service/internal/models"
)

func newRedeemService(store *memStore) *RedeemService {
	svc := NewRedeemService(store, cache.NewSnapshotCache(), zap.NewNop())
	svc.now = fixedClock
	return svc
}

func claimFor(code string) models.RedeemRequest {
	return models.RedeemRequest{
		CouponCode: code,
		Name:       "  Asha Sharma ",
		Phone:      "9876543210",
		UPIID:      "asha@upi",
		City:       "Pune",
		DealerName: "Sharma Traders",
	}
}

func TestValidate(t *testing.T) {
	store := newMemStore(
		models.Coupon{Code: "Fresh5%gh2", Status: models.StatusUnused, Reward: 250},
		models.Coupon{Code: "Spent4&ij3", Status: models.StatusUsed, Reward: 100},
		models.Coupon{Code: "Gone3!kl4", Status: models.StatusDeleted, Reward: 100},
	)
	svc := newRedeemService(store)

	result, err := svc.Validate(context.Background(), " fresh5%GH2 ")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.False(t, result.IsUsed)
	assert.Equal(t, 250, result.Reward)

	result, err = svc.Validate(context.Background(), "Spent4&ij3")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.True(t, result.IsUsed)

	result, err = svc.Validate(context.Background(), "Gone3!kl4")
	require.NoError(t, err)
	assert.False(t, result.IsValid, "deleted coupons read as not found")

	result, err = svc.Validate(context.Background(), "NoSuchC0d@")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
}

func TestValidateDefaultsBlankReward(t *testing.T) {
	store := newMemStore(
		models.Coupon{Code: "Blank2@mn5", Status: models.StatusUnused, Reward: 0},
	)
	svc := newRedeemService(store)

	result, err := svc.Validate(context.Background(), "Blank2@mn5")
	require.NoError(t, err)
	assert.Equal(t, DefaultReward, result.Reward)
}

func TestRedeemWritesBackFullRow(t *testing.T) {
	store := newMemStore(
		models.Coupon{Created: "2026-01-05 10:00:00", Code: "Fresh5%gh2", Status: models.StatusUnused, Reward: 250},
	)
	svc := newRedeemService(store)

	reward, err := svc.Redeem(context.Background(), claimFor("Fresh5%gh2"))
	require.NoError(t, err)
	assert.Equal(t, 250, reward)

	row := store.row(0)
	assert.Equal(t, models.StatusUsed, row.Status)
	assert.Equal(t, "Fresh5%gh2", row.Code)
	assert.Equal(t, 250, row.Reward)
	assert.Equal(t, "Asha Sharma", row.ClaimedBy, "claim fields are trimmed")
	assert.Equal(t, "2026-01-15 10:30:00", row.ClaimedAt)
	assert.Equal(t, "9876543210", row.Phone)
	assert.Equal(t, "asha@upi", row.UPIID)
	assert.Equal(t, "Pune", row.City)
	assert.Equal(t, "Sharma Traders", row.DealerName)
	assert.Empty(t, row.PaymentStatus, "payment marker stays empty for the payment view")
	assert.Empty(t, row.Created, "created cell is cleared on redemption")
}

func TestRedeemTwiceRejectedWithoutSecondWrite(t *testing.T) {
	store := newMemStore(
		models.Coupon{Code: "Fresh5%gh2", Status: models.StatusUnused, Reward: 250},
	)
	svc := newRedeemService(store)

	_, err := svc.Redeem(context.Background(), claimFor("Fresh5%gh2"))
	require.NoError(t, err)
	require.Equal(t, 1, store.updateCalls)

	_, err = svc.Redeem(context.Background(), claimFor("Fresh5%gh2"))
	assert.ErrorIs(t, err, ErrAlreadyUsed)
	assert.Equal(t, 1, store.updateCalls, "rejection is local, no write issued")
}

func TestRedeemUnknownCode(t *testing.T) {
	svc := newRedeemService(newMemStore())

	_, err := svc.Redeem(context.Background(), claimFor("NoSuchC0d@"))
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

// Validation runs against the mounted snapshot, not a fresh read. A coupon
// redeemed elsewhere after this session mounted still passes local
// validation, and the write-back silently overwrites the earlier claim.
// That is the documented behavior of the positional store contract.
func TestRedeemAgainstStaleSnapshotLastWriteWins(t *testing.T) {
	store := newMemStore(
		models.Coupon{Code: "Raced7*op6", Status: models.StatusUnused, Reward: 100},
	)
	svc := newRedeemService(store)
	require.NoError(t, svc.Mount(context.Background()))

	// Another session redeems the same coupon directly.
	other := store.row(0)
	other.Status = models.StatusUsed
	other.ClaimedBy = "First Claimant"
	require.NoError(t, store.UpdateRow(context.Background(), 2, other))

	reward, err := svc.Redeem(context.Background(), claimFor("Raced7*op6"))
	require.NoError(t, err)
	assert.Equal(t, 100, reward)
	assert.Equal(t, "Asha Sharma", store.row(0).ClaimedBy, "second claim overwrote the first")
}

func TestRefreshPicksUpNewCoupons(t *testing.T) {
	store := newMemStore()
	svc := newRedeemService(store)
	require.NoError(t, svc.Mount(context.Background()))

	require.NoError(t, store.InsertBatch(context.Background(), []models.Coupon{
		{Code: "Later6#qr7", Status: models.StatusUnused, Reward: 100},
	}))

	result, err := svc.Validate(context.Background(), "Later6#qr7")
	require.NoError(t, err)
	assert.False(t, result.IsValid, "mounted snapshot predates the insert")

	require.NoError(t, svc.Mount(context.Background()))
	result, err = svc.Validate(context.Background(), "Later6#qr7")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestLookupPrefill(t *testing.T) {
	store := newMemStore(
		models.Coupon{Code: "Fresh5%gh2", Status: models.StatusUnused, Reward: 250},
	)
	svc := newRedeemService(store)

	c, found, err := svc.Lookup(context.Background(), "FRESH5%gh2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Fresh5%gh2", c.Code)

	_, found, err = svc.Lookup(context.Background(), "NoSuchC0d@")
	require.NoError(t, err)
	assert.False(t, found)
}
