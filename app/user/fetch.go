package user

import (
	"bitwise74/auth-api/internal"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserFetch returns the public part of an account by its numeric ID. Only the
// account is cached, the envelope is built per request
func UserFetch(c *gin.Context, d *internal.Deps) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		badRequest(c, "Cannot fetch user")
		return
	}

	acct, ok := d.CachedAccount(uint(id))
	if !ok {
		acct, err = d.Credentials.Account(c.Request.Context(), uint(id))
		if err != nil {
			fail(c, err, "Failed to fetch user")
			return
		}

		d.CacheAccount(acct)
	}

	respond(c, http.StatusOK, true, "User fetched successfully", gin.H{
		"user": acct,
	})
}
