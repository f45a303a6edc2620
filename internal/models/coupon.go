package models

import "strings"

// Status is the coupon lifecycle state as stored in column C of the sheet.
type Status string

const (
	StatusUnused  Status = "unused"
	StatusUsed    Status = "used"
	StatusDeleted Status = "deleted"
)

// ParseStatus normalizes a raw status cell. Anything unrecognized, including
// an empty cell, reads as unused; that is how the sheet has always been
// interpreted.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(StatusUsed):
		return StatusUsed
	case string(StatusDeleted):
		return StatusDeleted
	default:
		return StatusUnused
	}
}

// CanTransition reports whether s -> next is a legal lifecycle move.
// unused -> used (redemption) and unused -> deleted (admin removal) are the
// only ones; used and deleted are terminal.
func (s Status) CanTransition(next Status) bool {
	if s != StatusUnused {
		return false
	}
	return next == StatusUsed || next == StatusDeleted
}

// Coupon is one row of the Coupons sheet.
type Coupon struct {
	Created       string `json:"created"`
	Code          string `json:"code"`
	Status        Status `json:"status"`
	Reward        int    `json:"reward"`
	ClaimedBy     string `json:"claimedBy,omitempty"`
	ClaimedAt     string `json:"claimedAt,omitempty"`
	Phone         string `json:"phone,omitempty"`
	UPIID         string `json:"upiId,omitempty"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	City          string `json:"city,omitempty"`
	DealerName    string `json:"dealerName,omitempty"`

	// RowIndex is the 1-indexed sheet position (header counted as row 1)
	// this coupon occupied in the snapshot it was read from. It is an
	// ephemeral positional handle, not an identity: it must never be used
	// against any later snapshot.
	RowIndex int `json:"rowIndex"`
}

// CodeMatches implements coupon identity: case-insensitive, trimmed equality
// on the code.
func (c Coupon) CodeMatches(query string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Code), strings.TrimSpace(query))
}
