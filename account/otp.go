package account

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// newOTP returns a random 6-digit verification code from a CSPRNG.
func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("account: generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
