package security

import (
	"bitwise74/auth-api/pkg/util"
	"strconv"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	resetTokenSize = 32
	otpDigits      = 6
)

// NewOTP returns a numeric code with exactly six digits. The first digit is
// never zero so the code survives being stored as a number
func NewOTP() (int, error) {
	head, err := gonanoid.Generate("123456789", 1)
	if err != nil {
		return 0, err
	}

	tail, err := gonanoid.Generate("0123456789", otpDigits-1)
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(head + tail)
}

// NewResetToken returns a high entropy token for password recovery links
func NewResetToken() (string, error) {
	return util.GenerateToken(resetTokenSize)
}
