package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Posters  PostersConfig
	Geocoder GeocoderConfig
	Overpass OverpassConfig
	Render   RenderConfig
	Stripe   StripeConfig
	SMTP     SMTPConfig
	Storage  StorageConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// PostersConfig holds pricing and artifact directory settings
type PostersConfig struct {
	PriceCents int64
	Currency   string
	DataDir    string // order/invoice JSON documents live under here
	ThemesDir  string
	FontsDir   string
}

// GeocoderConfig holds Nominatim client settings
type GeocoderConfig struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration // politeness delay between upstream calls
	Timeout     time.Duration
}

// OverpassConfig holds Overpass API client settings
type OverpassConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// RenderConfig holds poster rendering settings
type RenderConfig struct {
	PreviewWidth int // preview thumbnail width in pixels
}

// StripeConfig holds payment gateway settings. Checkout is optional:
// with an empty secret key orders are fulfilled immediately.
type StripeConfig struct {
	SecretKey     string
	PriceID       string
	WebhookSecret string
	PublicBaseURL string // external base URL for success/cancel redirects
}

// Enabled reports whether checkout should be offered.
func (s StripeConfig) Enabled() bool {
	return s.SecretKey != "" && s.PriceID != ""
}

// SMTPConfig holds outgoing mail settings. Mail is optional.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether order mail should be sent.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.User != "" && s.Password != "" && s.From != ""
}

// StorageConfig holds artifact storage settings
type StorageConfig struct {
	Backend           string // "local" or "s3"
	LocalDir          string
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with POSTER_ prefix (e.g., POSTER_STRIPE_SECRET_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("POSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Posters: PostersConfig{
			PriceCents: v.GetInt64("posters.price_cents"),
			Currency:   v.GetString("posters.currency"),
			DataDir:    v.GetString("posters.data_dir"),
			ThemesDir:  v.GetString("posters.themes_dir"),
			FontsDir:   v.GetString("posters.fonts_dir"),
		},
		Geocoder: GeocoderConfig{
			BaseURL:     v.GetString("geocoder.base_url"),
			UserAgent:   v.GetString("geocoder.user_agent"),
			MinInterval: v.GetDuration("geocoder.min_interval"),
			Timeout:     v.GetDuration("geocoder.timeout"),
		},
		Overpass: OverpassConfig{
			BaseURL:   v.GetString("overpass.base_url"),
			UserAgent: v.GetString("overpass.user_agent"),
			Timeout:   v.GetDuration("overpass.timeout"),
		},
		Render: RenderConfig{
			PreviewWidth: v.GetInt("render.preview_width"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("stripe.secret_key"),
			PriceID:       v.GetString("stripe.price_id"),
			WebhookSecret: v.GetString("stripe.webhook_secret"),
			PublicBaseURL: v.GetString("stripe.public_base_url"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			User:     v.GetString("smtp.user"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
		},
		Storage: StorageConfig{
			Backend:           v.GetString("storage.backend"),
			LocalDir:          v.GetString("storage.local_dir"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "cartoprint-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Final renders are served synchronously on the create path;
		// leave generous headroom over the upstream fetch timeouts.
		cfg.HTTP.WriteTimeout = 120 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // order forms are small
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 60
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Posters.PriceCents == 0 {
		cfg.Posters.PriceCents = 2900
	}
	if cfg.Posters.Currency == "" {
		cfg.Posters.Currency = "usd"
	}
	if cfg.Posters.DataDir == "" {
		cfg.Posters.DataDir = "data"
	}
	if cfg.Posters.ThemesDir == "" {
		cfg.Posters.ThemesDir = "themes"
	}
	if cfg.Posters.FontsDir == "" {
		cfg.Posters.FontsDir = "fonts"
	}
	if cfg.Geocoder.BaseURL == "" {
		cfg.Geocoder.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Geocoder.UserAgent == "" {
		cfg.Geocoder.UserAgent = "CartoprintPoster/1.0"
	}
	if cfg.Geocoder.MinInterval == 0 {
		cfg.Geocoder.MinInterval = time.Second
	}
	if cfg.Geocoder.Timeout == 0 {
		cfg.Geocoder.Timeout = 10 * time.Second
	}
	if cfg.Overpass.BaseURL == "" {
		cfg.Overpass.BaseURL = "https://overpass-api.de/api/interpreter"
	}
	if cfg.Overpass.UserAgent == "" {
		cfg.Overpass.UserAgent = cfg.Geocoder.UserAgent
	}
	if cfg.Overpass.Timeout == 0 {
		cfg.Overpass.Timeout = 90 * time.Second
	}
	if cfg.Render.PreviewWidth == 0 {
		cfg.Render.PreviewWidth = 600
	}
	if cfg.Stripe.PublicBaseURL == "" {
		cfg.Stripe.PublicBaseURL = "http://localhost:" + cfg.App.Port
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "posters"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Storage.Backend != "local" && c.Storage.Backend != "s3" {
		return fmt.Errorf("storage.backend must be 'local' or 's3', got %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "s3" {
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage.backend is 's3'")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("storage access_key and secret_key are required when storage.backend is 's3'")
		}
	}
	if c.Stripe.SecretKey != "" && c.Stripe.PriceID == "" {
		return fmt.Errorf("stripe.price_id is required when stripe.secret_key is set")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Stripe.Enabled() && c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe.webhook_secret is required in production when checkout is enabled")
		}
		if c.SMTP.Host != "" && c.SMTP.Password == "" {
			return fmt.Errorf("smtp.password is required in production when smtp.host is set")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}
