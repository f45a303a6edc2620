package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/pkg/sheets"
)

const couponsFixture = `{"success":true,"data":[
	["Created","Code","Status","Reward","Claimed By","Claimed At","Phone","UPI ID","Payment","City","Dealer"],
	["2026-01-05 10:00:00","Ab3@xYz9#k","unused",100,"","","","","","",""],
	["","","","","","","","","","",""],
	["2026-01-06 11:30:00","Cd4$wQr8!m","used",250,"Asha","2026-01-07 09:15:00","9876543210","asha@upi","Done","Pune","Sharma Traders"]
]}`

func newFixtureRepo(t *testing.T, body string) (*CouponRepo, *[]*http.Request) {
	t.Helper()
	var requests []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		requests = append(requests, r)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	client := sheets.NewClient(srv.URL, srv.Client())
	return NewCouponRepo(client, "Coupons"), &requests
}

func TestFetchAllMapsRowsAndKeepsPositions(t *testing.T) {
	repo, _ := newFixtureRepo(t, couponsFixture)

	snap, err := repo.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Coupons, 2, "header and empty-code rows dropped")

	first := snap.Coupons[0]
	assert.Equal(t, "Ab3@xYz9#k", first.Code)
	assert.Equal(t, models.StatusUnused, first.Status)
	assert.Equal(t, 100, first.Reward)
	assert.Equal(t, 2, first.RowIndex, "first data row sits below the header")

	second := snap.Coupons[1]
	assert.Equal(t, "Cd4$wQr8!m", second.Code)
	assert.Equal(t, models.StatusUsed, second.Status)
	assert.Equal(t, "Asha", second.ClaimedBy)
	assert.Equal(t, "Done", second.PaymentStatus)
	assert.Equal(t, 4, second.RowIndex, "dropped empty row still occupies its position")
}

func TestExistingCodes(t *testing.T) {
	repo, _ := newFixtureRepo(t, couponsFixture)

	snap, err := repo.FetchAll(context.Background())
	require.NoError(t, err)

	codes := snap.ExistingCodes()
	assert.Len(t, codes, 2)
	assert.Contains(t, codes, "Ab3@xYz9#k")
	assert.Contains(t, codes, "Cd4$wQr8!m")
}

func TestInsertBatchWritesFullWidthRows(t *testing.T) {
	repo, requests := newFixtureRepo(t, `{"success":true}`)

	err := repo.InsertBatch(context.Background(), []models.Coupon{
		{Created: "2026-01-10 08:00:00", Code: "Ef5%vTs7&n", Status: models.StatusUnused, Reward: 150},
	})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	form := (*requests)[0].PostForm
	assert.Equal(t, "batchInsert", form.Get("action"))
	assert.JSONEq(t,
		`[["2026-01-10 08:00:00","Ef5%vTs7&n","unused","150","","","","","","",""]]`,
		form.Get("rowsData"))
}

func TestSetPaymentStatusTargetsMarkerColumn(t *testing.T) {
	repo, requests := newFixtureRepo(t, `{"success":true}`)

	err := repo.SetPaymentStatus(context.Background(), 4, "Done")
	require.NoError(t, err)

	form := (*requests)[0].PostForm
	assert.Equal(t, "markDeleted", form.Get("action"))
	assert.Equal(t, "4", form.Get("rowIndex"))
	assert.Equal(t, "9", form.Get("columnIndex"))
	assert.Equal(t, "Done", form.Get("value"))
}

func TestParseRewardTolerance(t *testing.T) {
	assert.Equal(t, 100, parseReward("100"))
	assert.Equal(t, 100, parseReward("100.0"))
	assert.Equal(t, 0, parseReward(""))
	assert.Equal(t, 0, parseReward("free"))
}
