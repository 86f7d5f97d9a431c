package user

import (
	"bitwise74/auth-api/internal"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type verifyEmailBody struct {
	OTP    otpCode `json:"otp"`
	UserID uint    `json:"userId"`
}

func UserVerifyEmail(c *gin.Context, d *internal.Deps) {
	var data verifyEmailBody
	if !bindJSON(c, &data) {
		return
	}

	userID := data.UserID
	if p := c.Param("userId"); p != "" {
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			badRequest(c, "User ID is required")
			return
		}

		userID = uint(id)
	}

	err := d.Credentials.VerifyEmail(c.Request.Context(), userID, int(data.OTP))
	if err != nil {
		fail(c, err, "Failed to verify email")
		return
	}

	respond(c, http.StatusOK, true, "Email verified successfully", nil)
}
