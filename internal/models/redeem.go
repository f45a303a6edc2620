package models

// RedeemRequest is the claim form submitted by an end user. Every field is
// required before any network call is made.
type RedeemRequest struct {
	CouponCode string `json:"couponCode" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	UPIID      string `json:"upiId" validate:"required"`
	City       string `json:"city" validate:"required"`
	DealerName string `json:"dealerName" validate:"required"`
}

// ValidationResult is the outcome of scanning the mounted snapshot for a
// submitted code. RowIndex is only meaningful against that same snapshot.
type ValidationResult struct {
	IsValid  bool `json:"isValid"`
	IsUsed   bool `json:"isUsed"`
	Reward   int  `json:"reward"`
	RowIndex int  `json:"-"`
}
