package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"vexa/config"
	"vexa/models"
)

const (
	OTPLength         = 6
	OTPExpiry         = 15 * time.Minute
	OTPResendCooldown = 1 * time.Minute

	InviteCodeLength = 8
	InviteExpiry     = 24 * time.Hour
)

// inviteAlphabet mixes cases, digits and symbols so an 8-character code is not
// guessable within an invitation's lifetime.
const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%&*"

func randomString(alphabet string, length int) (string, error) {
	out := make([]byte, length)
	for i := range out {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		out[i] = alphabet[num.Int64()]
	}
	return string(out), nil
}

// GenerateInviteCode returns a cryptographically random single-use invitation
// code.
func GenerateInviteCode() (string, error) {
	return randomString(inviteAlphabet, InviteCodeLength)
}

// GenerateOTP returns a numeric one-time code for account verification and
// password resets.
func GenerateOTP() (string, error) {
	return randomString("0123456789", OTPLength)
}

// GenerateSecureToken returns an opaque random token, used for OAuth state.
func GenerateSecureToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return hex.EncodeToString(token), nil
}

func SaveOTP(userID uint, otp string) error {
	expiresAt := time.Now().Add(OTPExpiry)

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return err
	}

	user.OTP = otp
	user.OTPExpiresAt = expiresAt

	return config.DB.Save(&user).Error
}

func VerifyOTP(userID uint, otp string) (bool, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return false, err
	}

	// Check if OTP matches and is not expired
	if user.OTP != "" && user.OTP == otp && time.Now().Before(user.OTPExpiresAt) {
		user.OTP = ""
		user.IsVerified = true
		if err := config.DB.Save(&user).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}
