package models

// ClaimRecord is one row of the User_Claimed_Coupon sheet (0: timestamp,
// 1: serial, 2: coupon code, 3: name, 4: phone, 5: UPI id). The tracking
// view joins it against the coupon snapshot to backfill claim fields the
// coupon row itself lacks.
type ClaimRecord struct {
	Date       string `json:"date"`
	Serial     string `json:"serial"`
	CouponCode string `json:"couponCode"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	UPIID      string `json:"upiId"`
	RowIndex   int    `json:"rowIndex"`
}
