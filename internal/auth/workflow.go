package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"regexp"
	"strings"
)

// emailPattern is the signup email format check: non-whitespace local part,
// host, and a dot-separated domain suffix. Deliverability is proven by the
// verification email, not the regex.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	verificationCodeDigits = 6
	resetTokenBytes        = 20
)

// newVerificationCode draws a 6-digit code from crypto/rand. Each digit is
// drawn independently so the distribution is uniform over 000000–999999.
func newVerificationCode() (string, error) {
	var b strings.Builder
	b.Grow(verificationCodeDigits)

	ten := big.NewInt(10)
	for i := 0; i < verificationCodeDigits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	code := b.String()
	if len(code) != verificationCodeDigits {
		return "", errors.New("invalid verification code length")
	}
	return code, nil
}

// newResetToken returns 160 bits of entropy as a hex string.
func newResetToken() (string, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}
