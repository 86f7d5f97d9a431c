package user

import (
	"bitwise74/auth-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type sendOTPBody struct {
	Email string `json:"email"`
}

type verifyOTPBody struct {
	Email string  `json:"email"`
	OTP   otpCode `json:"otp"`
}

func UserSendOTP(c *gin.Context, d *internal.Deps) {
	var data sendOTPBody
	if !bindJSON(c, &data) {
		return
	}

	if err := d.Credentials.SendLoginOTP(c.Request.Context(), data.Email); err != nil {
		fail(c, err, "Failed to send login otp")
		return
	}

	respond(c, http.StatusOK, true, "OTP sent", nil)
}

func UserVerifyOTP(c *gin.Context, d *internal.Deps) {
	var data verifyOTPBody
	if !bindJSON(c, &data) {
		return
	}

	s, err := d.Credentials.VerifyLoginOTP(c.Request.Context(), data.Email, int(data.OTP))
	if err != nil {
		fail(c, err, "Failed to verify login otp")
		return
	}

	setSessionCookies(c, s, d.Settings.SecureCookies)
	respond(c, http.StatusOK, true, "User logged in successfully", gin.H{
		"user": s.Account,
	})
}
