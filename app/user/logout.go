package user

import (
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func UserLogout(c *gin.Context, d *internal.Deps) {
	token, _ := c.Cookie(refreshCookie)

	r, err := d.Credentials.Logout(c.Request.Context(), token)
	if err != nil {
		fail(c, err, "Failed to log out user")
		return
	}

	switch r {
	case service.LogoutNoToken:
		respond(c, http.StatusOK, false, "No token present", nil)
	case service.LogoutUnknownToken:
		clearSessionCookies(c, d.Settings.SecureCookies)
		respond(c, http.StatusOK, false, "No user present", nil)
	default:
		clearSessionCookies(c, d.Settings.SecureCookies)
		respond(c, http.StatusOK, true, "User logged out successfully", nil)
	}
}
