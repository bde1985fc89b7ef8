package models

import "github.com/shopspring/decimal"

// AccountSnapshot is the final per-client view of an account at the end of a
// run. Total is recomputed by the account layer, never stored on its own.
type AccountSnapshot struct {
	ClientID  uint16          `json:"client"`
	Available decimal.Decimal `json:"available"`
	Held      decimal.Decimal `json:"held"`
	Total     decimal.Decimal `json:"total"`
	Locked    bool            `json:"locked"`
}
