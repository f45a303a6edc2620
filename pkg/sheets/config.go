package sheets

import (
	"errors"
	"os"
)

// Config locates the Apps Script web app and names the three sheets the
// service reads and writes.
type Config struct {
	ScriptURL    string
	CouponsSheet string
	LoginSheet   string
	ClaimsSheet  string
}

// LoadConfig reads the sheet backend configuration from env.
func LoadConfig() (Config, error) {
	cfg := Config{
		ScriptURL:    os.Getenv("SHEETS_SCRIPT_URL"),
		CouponsSheet: envOr("SHEETS_COUPONS_SHEET", "Coupons"),
		LoginSheet:   envOr("SHEETS_LOGIN_SHEET", "Login"),
		ClaimsSheet:  envOr("SHEETS_CLAIMS_SHEET", "User_Claimed_Coupon"),
	}
	if cfg.ScriptURL == "" {
		return Config{}, errors.New("SHEETS_SCRIPT_URL not set")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
