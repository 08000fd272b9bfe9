// Package config holds the process configuration for authd.
//
// A Config is loaded once in main and passed by reference into every
// component; nothing in the service reads the environment after startup.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config is the full authd configuration.
type Config struct {
	App      AppConfig      `json:"app"`
	Redis    RedisConfig    `json:"redis"`
	Email    EmailConfig    `json:"email"`
	Security SecurityConfig `json:"security"`
}

// AppConfig covers the HTTP surface and logging.
type AppConfig struct {
	LogLevel       string   `json:"log_level"` // debug / info / warn / error
	HTTPAddr       string   `json:"http_addr"`
	ClientURL      string   `json:"client_url"`      // base URL embedded in reset links
	AllowedOrigins []string `json:"allowed_origins"` // CORS allow-list, client URL is always included
}

// RedisConfig is the account store connection.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// EmailConfig is the SMTP notification sink.
type EmailConfig struct {
	SMTPHost  string `json:"smtp_host"`
	SMTPPort  int    `json:"smtp_port"`
	SMTPUser  string `json:"smtp_user"`
	SMTPPass  string `json:"smtp_pass"`
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
}

// SecurityConfig covers token signing and the hardened deployment posture.
//
// Hardened mode forces Secure cookies and SameSite=None, and tightens the
// minimum secret length. It is the production switch.
type SecurityConfig struct {
	JWTSecret    string        `json:"jwt_secret"`
	SessionTTL   time.Duration `json:"session_ttl"`
	VerifyTTL    time.Duration `json:"verify_ttl"`
	ResetTTL     time.Duration `json:"reset_ttl"`
	Hardened     bool          `json:"hardened"`
	PasswordCost PasswordCost  `json:"password_cost"`
}

// PasswordCost is the argon2id parameter set.
type PasswordCost struct {
	Memory      uint32 `json:"memory"` // KiB
	Time        uint32 `json:"time"`
	Parallelism uint8  `json:"parallelism"`
	SaltLength  uint32 `json:"salt_length"`
	KeyLength   uint32 `json:"key_length"`
}

// Load reads the optional JSON config file, fills defaults, and applies
// environment overrides. A missing file is not an error.
func Load(configPath ...string) (*Config, error) {
	path := "configs/config.json"
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		applyDefaults(cfg)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns the non-hardened development configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			LogLevel:  "info",
			HTTPAddr:  ":7000",
			ClientURL: "http://localhost:5173",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Email: EmailConfig{
			SMTPHost: "smtp.mailtrap.io",
			SMTPPort: 587,
			FromName: "authd",
		},
		Security: SecurityConfig{
			JWTSecret:  "dev_secret_change_me",
			SessionTTL: 7 * 24 * time.Hour,
			VerifyTTL:  24 * time.Hour,
			ResetTTL:   time.Hour,
			Hardened:   false,
			PasswordCost: PasswordCost{
				Memory:      64 * 1024,
				Time:        3,
				Parallelism: 2,
				SaltLength:  16,
				KeyLength:   32,
			},
		},
	}
}

func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = def.App.LogLevel
	}
	if cfg.App.HTTPAddr == "" {
		cfg.App.HTTPAddr = def.App.HTTPAddr
	}
	if cfg.App.ClientURL == "" {
		cfg.App.ClientURL = def.App.ClientURL
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = def.Redis.Addr
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = def.Email.SMTPPort
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = def.Email.FromName
	}
	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = def.Security.JWTSecret
	}
	if cfg.Security.SessionTTL == 0 {
		cfg.Security.SessionTTL = def.Security.SessionTTL
	}
	if cfg.Security.VerifyTTL == 0 {
		cfg.Security.VerifyTTL = def.Security.VerifyTTL
	}
	if cfg.Security.ResetTTL == 0 {
		cfg.Security.ResetTTL = def.Security.ResetTTL
	}
	if cfg.Security.PasswordCost == (PasswordCost{}) {
		cfg.Security.PasswordCost = def.Security.PasswordCost
	}
}

func applyEnvOverrides(cfg *Config) {
	viper.AutomaticEnv()

	_ = viper.BindEnv("jwt_secret", "JWT_SECRET")
	_ = viper.BindEnv("redis_addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = viper.BindEnv("smtp_pass", "SMTP_PASS")

	if v := os.Getenv("APP_LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("APP_HTTP_ADDR"); v != "" {
		cfg.App.HTTPAddr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.App.HTTPAddr = ":" + v
	}
	if v := os.Getenv("CLIENT_URL"); v != "" {
		cfg.App.ClientURL = v
	}
	if v := os.Getenv("APP_HARDENED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Security.Hardened = b
		}
	}

	if v := viper.GetString("jwt_secret"); v != "" {
		cfg.Security.JWTSecret = v
	}
	if v := viper.GetString("redis_addr"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := viper.GetString("redis_password"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = i
		}
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTPPort = i
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.SMTPUser = v
	}
	if v := viper.GetString("smtp_pass"); v != "" {
		cfg.Email.SMTPPass = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.Email.FromEmail = v
	}
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		return errors.New("security jwt secret is required")
	}
	if c.Security.SessionTTL <= 0 {
		return errors.New("security session ttl must be > 0")
	}
	if c.Security.VerifyTTL <= 0 {
		return errors.New("security verify ttl must be > 0")
	}
	if c.Security.ResetTTL <= 0 {
		return errors.New("security reset ttl must be > 0")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis addr is required")
	}

	pc := c.Security.PasswordCost
	if pc.Memory < 8*1024 {
		return errors.New("password memory must be >= 8192 KiB")
	}
	if pc.Time < 1 {
		return errors.New("password time must be >= 1")
	}
	if pc.Parallelism < 1 {
		return errors.New("password parallelism must be >= 1")
	}
	if pc.SaltLength < 16 {
		return errors.New("password salt length must be >= 16")
	}
	if pc.KeyLength < 16 {
		return errors.New("password key length must be >= 16")
	}

	if c.Security.Hardened {
		if len(c.Security.JWTSecret) < 32 {
			return errors.New("hardened mode requires jwt secret >= 32 bytes")
		}
		if c.Security.JWTSecret == Default().Security.JWTSecret {
			return errors.New("hardened mode forbids the default jwt secret")
		}
		if c.Security.SessionTTL > 30*24*time.Hour {
			return errors.New("hardened mode requires session ttl <= 30d")
		}
		if c.Email.SMTPHost == "" || c.Email.FromEmail == "" {
			return errors.New("hardened mode requires a configured mail sender")
		}
	}

	return nil
}

// UnmarshalJSON accepts duration strings such as "168h" for the TTL fields.
func (s *SecurityConfig) UnmarshalJSON(data []byte) error {
	type alias SecurityConfig
	aux := &struct {
		SessionTTL string `json:"session_ttl"`
		VerifyTTL  string `json:"verify_ttl"`
		ResetTTL   string `json:"reset_ttl"`
		*alias
	}{alias: (*alias)(s)}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	for _, f := range []struct {
		raw string
		dst *time.Duration
	}{
		{aux.SessionTTL, &s.SessionTTL},
		{aux.VerifyTTL, &s.VerifyTTL},
		{aux.ResetTTL, &s.ResetTTL},
	} {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
