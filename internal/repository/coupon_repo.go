package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/pkg/sheets"
)

// Column positions in the Coupons sheet. The backend has no named-column
// abstraction; this mapping IS the contract and every consumer of the sheet
// depends on it staying fixed.
const (
	colCreated = iota // A
	colCode           // B
	colStatus         // C
	colReward         // D
	colClaimedBy      // E
	colClaimedAt      // F
	colPhone          // G
	colUPIID          // H
	colPayment        // I
	colCity           // J
	colDealer         // K

	couponRowWidth = 11
)

// PaymentColumn is the 1-indexed sheet column of the payment marker, as the
// single-cell update action counts columns.
const PaymentColumn = colPayment + 1

// TimestampLayout is the second-resolution local wall clock format used for
// created and claimed-at cells.
const TimestampLayout = "2006-01-02 15:04:05"

// Snapshot is a point-in-time full read of the Coupons sheet. Every
// RowIndex inside it is only valid against this snapshot; after any insert
// or delete the positions shift and the snapshot must be discarded.
type Snapshot struct {
	Coupons   []models.Coupon
	FetchedAt time.Time
}

// ExistingCodes returns the code column as a set, for collision checks at
// mint time.
func (s *Snapshot) ExistingCodes() map[string]struct{} {
	codes := make(map[string]struct{}, len(s.Coupons))
	for _, c := range s.Coupons {
		codes[c.Code] = struct{}{}
	}
	return codes
}

// CouponRepo is the typed repository over the Coupons sheet.
type CouponRepo struct {
	client *sheets.Client
	sheet  string
}

func NewCouponRepo(client *sheets.Client, sheet string) *CouponRepo {
	return &CouponRepo{client: client, sheet: sheet}
}

// FetchAll reads the whole sheet and maps it into a Snapshot. The header
// row is skipped; rows with an empty code cell are dropped but do not
// disturb the row indices of the rows below them.
func (r *CouponRepo) FetchAll(ctx context.Context) (*Snapshot, error) {
	rows, err := r.client.Fetch(ctx, r.sheet)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{FetchedAt: time.Now()}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		c := couponFromRow(row, i+1)
		if c.Code == "" {
			continue
		}
		snap.Coupons = append(snap.Coupons, c)
	}
	return snap, nil
}

// InsertBatch appends the given coupons in one request.
func (r *CouponRepo) InsertBatch(ctx context.Context, coupons []models.Coupon) error {
	rows := make([][]string, len(coupons))
	for i, c := range coupons {
		rows[i] = couponToRow(c)
	}
	return r.client.BatchInsert(ctx, r.sheet, rows)
}

// UpdateRow overwrites the full row at the coupon's snapshot position.
func (r *CouponRepo) UpdateRow(ctx context.Context, rowIndex int, c models.Coupon) error {
	return r.client.UpdateRow(ctx, r.sheet, rowIndex, couponToRow(c))
}

// SetPaymentStatus writes only the payment marker cell of one row.
func (r *CouponRepo) SetPaymentStatus(ctx context.Context, rowIndex int, value string) error {
	return r.client.UpdateCell(ctx, r.sheet, rowIndex, PaymentColumn, value)
}

// DeleteRow removes a row entirely. Callers must re-fetch afterwards: all
// positions below the deleted row have shifted.
func (r *CouponRepo) DeleteRow(ctx context.Context, rowIndex int) error {
	return r.client.DeleteRow(ctx, r.sheet, rowIndex)
}

func couponFromRow(row []string, rowIndex int) models.Coupon {
	return models.Coupon{
		Created:       cell(row, colCreated),
		Code:          strings.TrimSpace(cell(row, colCode)),
		Status:        models.ParseStatus(cell(row, colStatus)),
		Reward:        parseReward(cell(row, colReward)),
		ClaimedBy:     cell(row, colClaimedBy),
		ClaimedAt:     cell(row, colClaimedAt),
		Phone:         cell(row, colPhone),
		UPIID:         cell(row, colUPIID),
		PaymentStatus: cell(row, colPayment),
		City:          cell(row, colCity),
		DealerName:    cell(row, colDealer),
		RowIndex:      rowIndex,
	}
}

func couponToRow(c models.Coupon) []string {
	row := make([]string, couponRowWidth)
	row[colCreated] = c.Created
	row[colCode] = c.Code
	row[colStatus] = string(c.Status)
	row[colReward] = strconv.Itoa(c.Reward)
	row[colClaimedBy] = c.ClaimedBy
	row[colClaimedAt] = c.ClaimedAt
	row[colPhone] = c.Phone
	row[colUPIID] = c.UPIID
	row[colPayment] = c.PaymentStatus
	row[colCity] = c.City
	row[colDealer] = c.DealerName
	return row
}

// cell tolerates ragged rows; short rows read as empty cells.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseReward(raw string) int {
	// Sheets sometimes hands numeric cells back as "100" and sometimes as
	// "100.0" depending on formatting.
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}
