package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewID creates a record ID like "stg-3fa9c" from 5 random hex chars.
func NewID(prefix string) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("models: generate ID: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b)[:5], nil
}
