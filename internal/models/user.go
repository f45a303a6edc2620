package models

// User is one row of the Login sheet (A: serial, B: name, C: login id,
// D: password, E: role).
type User struct {
	SerialNo string `json:"serialNo"`
	Name     string `json:"name"`
	LoginID  string `json:"loginId"`
	// Password is the clear-text value stored on the sheet; login compares
	// it exactly as stored.
	Password string `json:"password"`
	Role     string `json:"role"`
	RowIndex int    `json:"rowIndex"`
}
