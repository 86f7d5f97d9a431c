// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath        = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"none", "s3", "r2"}
	validDBDrivers    = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml not found, using environment variables and defaults only")
	}

	if v.GetString("jwt.access_secret") == "" || v.GetString("jwt.refresh_secret") == "" {
		fmt.Println("WARNING: You haven't set the JWT secrets, so they have been generated for you. Please set them as environment variables or in the config.toml file.\nYour random secrets:\n\n" +
			"access_secret = \"" + genSecret() + "\"\nrefresh_secret = \"" + genSecret() + "\"\n\nPaste them into the [jwt] section of your config.toml file.")
		os.Exit(0)
	}

	if err := Validate(); err != nil {
		return err
	}

	if !v.GetBool("cloudflare.turnstile.enabled") {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Some public endpoints won't be guarded against bots")
	}

	if v.GetString("mail.host") == "" {
		fmt.Println("[WARNING]: No mail.host set, mails will only be logged")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

func SetDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 3000)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors", []string{"http://localhost:5173"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("mail.port", 587)

	v.SetDefault("links.verify_email", "http://localhost:5173/verify-email")
	v.SetDefault("links.reset_password", "http://localhost:5173/reset-password")

	v.SetDefault("storage.type", "none")

	v.SetDefault("upload.max_size", 5)

	v.SetDefault("security.rate_limit", 10)

	v.SetDefault("cache.ttl", 5)

	v.SetDefault("cleanup.schedule", "@every 1h")

	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.size", 256)
	v.SetDefault("queue.job_timeout", "1m")

	v.SetDefault("cloudflare.turnstile.enabled", false)
}

// Validate checks the loaded values without touching anything outside viper
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	access, refresh := v.GetString("jwt.access_secret"), v.GetString("jwt.refresh_secret")
	if access == "" || refresh == "" {
		return errors.New("jwt.access_secret and jwt.refresh_secret must be set")
	}

	if access == refresh {
		return errors.New("jwt.access_secret and jwt.refresh_secret must be different")
	}

	if v.GetString("mail.host") != "" {
		if v.GetInt("mail.port") <= 0 {
			return errors.New("invalid mail port provided")
		}

		if v.GetString("mail.sender_address") == "" {
			return errors.New("mail.sender_address can't be empty")
		}
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("aws.region") == "" {
			return errors.New("aws region can't be empty")
		}
		if v.GetString("aws.access_key_id") == "" {
			return errors.New("aws access key id can't be empty")
		}
		if v.GetString("aws.secret_access_key") == "" {
			return errors.New("aws secret access key can't be empty")
		}
		if v.GetString("aws.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
	case "r2":
		if v.GetString("cloudflare.account_id") == "" {
			return errors.New("account id can't be empty")
		}
		if v.GetString("cloudflare.access_key_id") == "" {
			return errors.New("account access id can't be empty")
		}
		if v.GetString("cloudflare.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
		if v.GetString("cloudflare.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetString("storage.type") != "none" && v.GetString("storage.public_url") == "" {
		return errors.New("storage.public_url can't be empty")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if v.GetInt("queue.workers") <= 0 {
		return errors.New("queue.workers must be bigger than 0")
	}

	if v.GetInt("queue.size") <= 0 {
		return errors.New("queue.size must be bigger than 0")
	}

	if _, err := cron.ParseStandard(v.GetString("cleanup.schedule")); err != nil {
		return fmt.Errorf("invalid cleanup.schedule, %w", err)
	}

	if v.GetBool("cloudflare.turnstile.enabled") && v.GetString("cloudflare.turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	return nil
}
