package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func GenerateSessionID() string {
	return uuid.New().String()
}

func GenerateRoundID() string {
	return fmt.Sprintf("round_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateClientSeed() (string, error) {
	return randomHex(16) // 128 bits of entropy
}

func GenerateServerSeed() (string, error) {
	return randomHex(32)
}

func randomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate seed: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func FormatCurrency(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "€"
}
