package internal

import (
	"bitwise74/auth-api/internal/metrics"
	"bitwise74/auth-api/internal/model"
	"bitwise74/auth-api/internal/service"
	"bitwise74/auth-api/pkg/security"
	"strconv"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Settings are the config values the HTTP layer needs at request time
type Settings struct {
	Origins       []string
	SecureCookies bool
	MaxUploadSize int64
	RateLimit     int
	CacheTTL      time.Duration
}

type Deps struct {
	DB          *gorm.DB
	Credentials *service.CredentialManager
	Tokens      *security.TokenIssuer
	JobQueue    *service.JobQueue
	Cleanup     *cron.Cron
	Metrics     *metrics.Metrics
	Registry    *prometheus.Registry
	Cache       persist.CacheStore
	Settings    Settings
}

func accountCacheKey(id uint) string {
	return "account:" + strconv.FormatUint(uint64(id), 10)
}

func (d *Deps) cacheEnabled() bool {
	return d.Cache != nil && d.Settings.CacheTTL > 0
}

// CachedAccount returns the public account if it was fetched recently
func (d *Deps) CachedAccount(id uint) (*model.PublicAccount, bool) {
	if !d.cacheEnabled() {
		return nil, false
	}

	var acct model.PublicAccount
	if err := d.Cache.Get(accountCacheKey(id), &acct); err != nil {
		return nil, false
	}

	return &acct, true
}

func (d *Deps) CacheAccount(acct *model.PublicAccount) {
	if !d.cacheEnabled() {
		return
	}

	if err := d.Cache.Set(accountCacheKey(acct.ID), *acct, d.Settings.CacheTTL); err != nil {
		zap.L().Warn("Failed to cache account", zap.Uint("account_id", acct.ID), zap.Error(err))
	}
}

// ForgetAccount drops the cached copy after the account changed
func (d *Deps) ForgetAccount(id uint) {
	if d.Cache == nil {
		return
	}

	// Deleting a key that was never cached errors, which is fine
	_ = d.Cache.Delete(accountCacheKey(id))
}

// Close stops the background work. Jobs already queued are finished first
func (d *Deps) Close() {
	if d.Cleanup != nil {
		<-d.Cleanup.Stop().Done()
	}

	if d.JobQueue != nil {
		d.JobQueue.Close()
	}
}
