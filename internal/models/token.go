package models

// Token describes the ledger's token metadata, fixed at genesis.
type Token struct {
	// Name is the full name of the token
	Name string `json:"name"`
	// Symbol is the short symbol of the token (e.g., DNR)
	Symbol string `json:"symbol"`
	// Decimals is the number of decimals the token uses
	Decimals int `json:"decimals"`
}
