package models

import "math/big"

// Genesis is the one-time initial state established at construction.
// The deployer becomes owner and minter, receives the initial supply and is
// compliance-verified with no daily cap (the initial supply would otherwise
// be unusable). There is no re-initialization path.
type Genesis struct {
	// Token is the token metadata.
	Token Token `json:"token"`
	// Deployer is the address receiving the initial supply and both roles.
	Deployer string `json:"deployer"`
	// InitialSupply is minted to the deployer at construction, in base units.
	InitialSupply *big.Int `json:"initial_supply"`
	// InitialRates seeds the currency-code -> rate table, 18-decimal fixed point
	// (token base units per 1 unit of fiat).
	InitialRates map[string]*big.Int `json:"initial_rates"`
}
