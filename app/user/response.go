// Package user contains the account endpoints
package user

import (
	"bitwise74/auth-api/internal/service"
	"bitwise74/auth-api/pkg/security"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// respond writes the common {success, message, ...data} envelope
func respond(c *gin.Context, status int, success bool, message string, data gin.H) {
	body := gin.H{
		"success":   success,
		"message":   message,
		"requestID": c.GetString("requestID"),
	}

	for k, v := range data {
		body[k] = v
	}

	c.JSON(status, body)
}

// fail translates err into a response. Errors that aren't a *service.Error
// are internal and get logged
func fail(c *gin.Context, err error, logMsg string) {
	requestID := c.GetString("requestID")

	if e, ok := service.AsError(err); ok {
		zap.L().Debug(logMsg, zap.Error(err), zap.String("requestID", requestID))
		respond(c, e.Status, false, e.Message, nil)
		return
	}

	zap.L().Error(logMsg, zap.Error(err), zap.String("requestID", requestID))
	respond(c, http.StatusInternalServerError, false, err.Error(), nil)
}

func badRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, false, message, nil)
}

func setSessionCookies(c *gin.Context, s *service.Session, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, s.AccessToken, int(security.AccessTokenTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(refreshCookie, s.RefreshToken, int(security.RefreshTokenTTL.Seconds()), "/", "", secure, true)
}

func clearSessionCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", secure, true)
}

// otpCode accepts the code both as a JSON number and as a numeric string,
// since form inputs tend to send strings
type otpCode int

func (o *otpCode) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*o = 0
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("otp must be numeric")
	}

	*o = otpCode(n)
	return nil
}

// bindJSON binds an optional JSON body. An empty body leaves data zeroed so
// the missing fields are reported by the validators instead
func bindJSON(c *gin.Context, data any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}

	if err := c.ShouldBindJSON(data); err != nil {
		badRequest(c, "Invalid request body")
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
		return false
	}

	return true
}
