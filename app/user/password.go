package user

import (
	"bitwise74/auth-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type forgotPasswordBody struct {
	Email string `json:"email"`
}

type resetPasswordBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func UserForgotPassword(c *gin.Context, d *internal.Deps) {
	var data forgotPasswordBody
	if !bindJSON(c, &data) {
		return
	}

	if err := d.Credentials.ForgotPassword(c.Request.Context(), data.Email); err != nil {
		fail(c, err, "Failed to start password reset")
		return
	}

	respond(c, http.StatusOK, true, "Password reset link sent to your email", nil)
}

func UserResetPassword(c *gin.Context, d *internal.Deps) {
	var data resetPasswordBody
	if !bindJSON(c, &data) {
		return
	}

	if err := d.Credentials.ResetPassword(c.Request.Context(), data.Token, data.NewPassword); err != nil {
		fail(c, err, "Failed to reset password")
		return
	}

	respond(c, http.StatusOK, true, "Password has been reset successfully", nil)
}
