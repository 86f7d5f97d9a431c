// Package app wires the dependencies and the HTTP routes together
package app

import (
	"bitwise74/auth-api/app/root"
	"bitwise74/auth-api/app/user"
	a "bitwise74/auth-api/aws"
	"bitwise74/auth-api/cloudflare"
	"bitwise74/auth-api/db"
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/internal/metrics"
	"bitwise74/auth-api/internal/service"
	"bitwise74/auth-api/pkg/middleware"
	"bitwise74/auth-api/pkg/security"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// NewRouter builds every long lived dependency from the loaded config and
// returns the ready engine. Deps.Close has to be called on shutdown
func NewRouter() (*gin.Engine, *internal.Deps, error) {
	if err := makeLogger(viper.GetString("app.log_level")); err != nil {
		return nil, nil, fmt.Errorf("failed to create logger, %w", err)
	}

	d := &internal.Deps{
		Registry: prometheus.NewRegistry(),
		Settings: internal.Settings{
			Origins:       viper.GetStringSlice("host.cors"),
			SecureCookies: viper.GetBool("host.ssl.enabled"),
			MaxUploadSize: viper.GetInt64("upload.max_size"),
			RateLimit:     viper.GetInt("security.rate_limit"),
			CacheTTL:      time.Second * time.Duration(viper.GetInt("cache.ttl")),
		},
	}

	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = metrics.New(d.Registry)

	conn, err := db.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = conn

	images, err := newImageStore(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize image storage, %w", err)
	}

	d.JobQueue = service.NewJobQueue(
		viper.GetInt("queue.workers"),
		viper.GetInt("queue.size"),
		viper.GetDuration("queue.job_timeout"),
		d.Metrics,
	)
	d.JobQueue.StartWorkerPool()

	d.Tokens = security.NewTokenIssuer(
		viper.GetString("jwt.access_secret"),
		viper.GetString("jwt.refresh_secret"),
	)

	d.Cache = newCacheStore()

	d.Credentials = service.NewCredentialManager(service.Options{
		DB:         conn,
		Hasher:     security.New(),
		Tokens:     d.Tokens,
		Mailer:     newMailer(),
		Images:     images,
		Dispatcher: d.JobQueue,
		Links: service.Links{
			VerifyEmail:   viper.GetString("links.verify_email"),
			ResetPassword: viper.GetString("links.reset_password"),
		},
		Metrics:        d.Metrics,
		AccountChanged: d.ForgetAccount,
	})

	d.Cleanup, err = service.TokenCleanup(viper.GetString("cleanup.schedule"), conn)
	if err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("failed to schedule token cleanup, %w", err)
	}

	return NewEngine(d), d, nil
}

// NewEngine registers the middleware and routes on top of already built deps
func NewEngine(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     d.Settings.Origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v, ok := c.Get("userID"); ok {
					fields = append(fields, zap.Any("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = d.Settings.MaxUploadSize

	jwt := middleware.NewJWTMiddleware(d.Tokens)
	turnstile := middleware.NewTurnstileMiddleware()
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: d.Settings.RateLimit,
		Burst:             d.Settings.RateLimit * 2,
	})

	// GET /metrics			-> Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })
	}

	// Multipart overhead on top of the picture itself
	registerLimit := d.Settings.MaxUploadSize + 1<<20

	u := m.Group("/v1/users")
	{
		// POST /api/v1/users/register			-> Creates an account and mails the verification code
		u.POST("/register", turnstile, middleware.BodySizeLimiter(registerLimit), func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/v1/users/verify-email/:userId	-> Confirms the email with the registration code
		u.POST("/verify-email/:userId", func(c *gin.Context) { user.UserVerifyEmail(c, d) })

		// POST /api/v1/users/verify-email		-> Same as above with userId in the body
		u.POST("/verify-email", func(c *gin.Context) { user.UserVerifyEmail(c, d) })

		// POST /api/v1/users/login			-> Password login, sets the session cookies
		u.POST("/login", func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/v1/users/logout			-> Revokes the refresh token and clears the cookies
		u.POST("/logout", jwt, func(c *gin.Context) { user.UserLogout(c, d) })

		// POST /api/v1/users/sendOtp			-> Mails a login code
		u.POST("/sendOtp", turnstile, func(c *gin.Context) { user.UserSendOTP(c, d) })

		// POST /api/v1/users/verifyOtp			-> Logs in with a mailed code
		u.POST("/verifyOtp", func(c *gin.Context) { user.UserVerifyOTP(c, d) })

		// GET /api/v1/users/getUser/:userId		-> Returns the public part of an account
		u.GET("/getUser/:userId", func(c *gin.Context) { user.UserFetch(c, d) })

		// POST /api/v1/users/forgot-password		-> Mails a password reset link
		u.POST("/forgot-password", turnstile, func(c *gin.Context) { user.UserForgotPassword(c, d) })

		// POST /api/v1/users/reset-password		-> Sets a new password with a reset token
		u.POST("/reset-password", func(c *gin.Context) { user.UserResetPassword(c, d) })
	}

	return router
}

func makeLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(log)
	return nil
}

func newMailer() service.Mailer {
	host := viper.GetString("mail.host")
	if host == "" {
		return service.LogMailer{}
	}

	return service.NewSMTPMailer(
		host,
		viper.GetInt("mail.port"),
		viper.GetString("mail.sender_address"),
		viper.GetString("mail.password"),
	)
}

func newImageStore(ctx context.Context) (service.ImageStore, error) {
	var (
		s   *a.S3Client
		err error
	)

	switch viper.GetString("storage.type") {
	case "s3":
		s, err = a.NewS3(ctx)
	case "r2":
		s, err = cloudflare.NewR2(ctx)
	default:
		zap.L().Warn("No storage configured, profile pictures will be dropped")
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return service.NewS3ImageStore(s, viper.GetString("storage.public_url")), nil
}

func newCacheStore() persist.CacheStore {
	addr := viper.GetString("cache.redis_addr")
	if addr == "" {
		return persist.NewMemoryStore(time.Minute)
	}

	return persist.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("cache.redis_password"),
	}))
}
