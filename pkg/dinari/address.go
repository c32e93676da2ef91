package dinari

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// AddressPrefix is the Dinari Token address prefix.
	AddressPrefix = "DT"
	// HashLength is the hex-encoded hash part of an address (160 bits).
	HashLength = 40
	// AddressLength is the total address length: prefix + hash.
	AddressLength = len(AddressPrefix) + HashLength
)

// ValidateAddress validates a DT-prefixed Dinari address.
// Format: "DT" + 40 lowercase hex characters, case sensitive.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if !strings.HasPrefix(addr, AddressPrefix) {
		return fmt.Errorf("address must start with %q", AddressPrefix)
	}

	hash := addr[len(AddressPrefix):]
	if len(hash) != HashLength {
		return fmt.Errorf("invalid address length: expected %d characters, got %d", AddressLength, len(addr))
	}

	if _, err := hex.DecodeString(hash); err != nil {
		return fmt.Errorf("invalid address hash: %w", err)
	}
	if hash != strings.ToLower(hash) {
		return fmt.Errorf("address hash must be lowercase hex")
	}

	return nil
}

// GenerateAddress derives a deterministic DT address from a seed string:
// sha256(seed) truncated to 160 bits.
func GenerateAddress(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return AddressPrefix + hex.EncodeToString(sum[:])[:HashLength]
}

// EscrowAddress returns the synthetic account holding a savings group's
// pooled funds. Derived from the group id, so it never collides with a
// user-generated address in practice and is stable across restarts.
func EscrowAddress(groupID uint64) string {
	return GenerateAddress(fmt.Sprintf("dinari-savings-group-%d", groupID))
}
