package user

import (
	"bitwise74/auth-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	var data loginBody
	if !bindJSON(c, &data) {
		return
	}

	s, err := d.Credentials.Login(c.Request.Context(), data.Username, data.Password)
	if err != nil {
		fail(c, err, "Failed to log in user")
		return
	}

	setSessionCookies(c, s, d.Settings.SecureCookies)
	respond(c, http.StatusOK, true, "User logged in", gin.H{
		"user": s.Account,
	})
}
