package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	verificationCodeMin   = 100000
	verificationCodeSpan  = 900000
	resetSecretRandomSize = 32
)

var verificationCodeRange = big.NewInt(verificationCodeSpan)

// RandomCodeGenerator draws verification codes and reset secrets from
// crypto/rand.
type RandomCodeGenerator struct{}

func NewRandomCodeGenerator() *RandomCodeGenerator { return &RandomCodeGenerator{} }

// VerificationCode returns a six digit decimal code, uniform over
// 100000..999999.
func (RandomCodeGenerator) VerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, verificationCodeRange)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+verificationCodeMin), nil
}

// ResetSecret returns 256 random bits, hex encoded.
func (RandomCodeGenerator) ResetSecret() (string, error) {
	b := make([]byte, resetSecretRandomSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func HashResetSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
