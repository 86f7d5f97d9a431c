package middleware

import (
	"bitwise74/auth-api/pkg/security"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userID": c.GetUint("userID")})
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/", NewRequestIDMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("requestID"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, w.Body.String(), 10)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}

func TestJWTMiddleware(t *testing.T) {
	ti := security.NewTokenIssuer("access", "refresh")
	pair, err := ti.Issue(7, "a@example.com", "alice1")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", NewJWTMiddleware(ti), ok)

	tests := []struct {
		name   string
		cookie string
		status int
		msg    string
	}{
		{name: "no cookie", status: http.StatusUnauthorized, msg: "Not authenticated"},
		{name: "refresh token", cookie: pair.RefreshToken, status: http.StatusUnauthorized, msg: "Invalid or expired token"},
		{name: "garbage", cookie: "abc", status: http.StatusUnauthorized, msg: "Invalid or expired token"},
		{name: "access token", cookie: pair.AccessToken, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "accessToken", Value: tt.cookie})
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)

			body := decode(t, w)
			if tt.msg != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.msg, body["message"])
				return
			}

			assert.EqualValues(t, 7, body["userID"])
		})
	}
}

func TestBodySizeLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/", BodySizeLimiter(8), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this is too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 1, Burst: 2}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestTurnstile(t *testing.T) {
	verify := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		_ = json.NewEncoder(w).Encode(turnstileResponse{Success: body["response"] == "good"})
	}))
	defer verify.Close()

	viper.Set("cloudflare.turnstile.enabled", true)
	viper.Set("cloudflare.turnstile.secret_token", "secret")
	t.Cleanup(viper.Reset)

	r := gin.New()
	r.POST("/", NewTurnstileMiddleware(verify.URL), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if token != "" {
			req.Header.Set("TurnstileToken", token)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, send(""))
	assert.Equal(t, http.StatusUnauthorized, send("bad"))
	assert.Equal(t, http.StatusOK, send("good"))
}

func TestTurnstileDisabled(t *testing.T) {
	viper.Set("cloudflare.turnstile.enabled", false)
	t.Cleanup(viper.Reset)

	r := gin.New()
	r.POST("/", NewTurnstileMiddleware("http://127.0.0.1:1"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
