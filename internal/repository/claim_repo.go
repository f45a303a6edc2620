package repository

import (
	"context"

	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/pkg/sheets"
)

// User_Claimed_Coupon sheet columns.
const (
	colClaimDate = iota // A: timestamp
	colClaimSerial
	colClaimCode
	colClaimName
	colClaimPhone
	colClaimUPIID
)

// ClaimRepo is the typed repository over the claim-log sheet. The log is
// read-only from this service's point of view.
type ClaimRepo struct {
	client *sheets.Client
	sheet  string
}

func NewClaimRepo(client *sheets.Client, sheet string) *ClaimRepo {
	return &ClaimRepo{client: client, sheet: sheet}
}

func (r *ClaimRepo) FetchAll(ctx context.Context) ([]models.ClaimRecord, error) {
	rows, err := r.client.Fetch(ctx, r.sheet)
	if err != nil {
		return nil, err
	}

	var records []models.ClaimRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rec := models.ClaimRecord{
			Date:       cell(row, colClaimDate),
			Serial:     cell(row, colClaimSerial),
			CouponCode: cell(row, colClaimCode),
			Name:       cell(row, colClaimName),
			Phone:      cell(row, colClaimPhone),
			UPIID:      cell(row, colClaimUPIID),
			RowIndex:   i + 1,
		}
		// Rows without both a name and a code carry no join value.
		if rec.Name == "" || rec.CouponCode == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
