package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "cartoprint-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, int64(2900), cfg.Posters.PriceCents)
	assert.Equal(t, "usd", cfg.Posters.Currency)
	assert.Equal(t, "themes", cfg.Posters.ThemesDir)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoder.BaseURL)
	assert.Equal(t, time.Second, cfg.Geocoder.MinInterval)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, 600, cfg.Render.PreviewWidth)
	assert.Equal(t, "http://localhost:8080", cfg.Stripe.PublicBaseURL)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, base().validate())
	})

	t.Run("rejects unknown storage backend", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Backend = "ftp"
		assert.Error(t, cfg.validate())
	})

	t.Run("s3 backend requires bucket and credentials", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Backend = "s3"
		assert.Error(t, cfg.validate())

		cfg.Storage.Bucket = "posters"
		cfg.Storage.AccessKey = "key"
		cfg.Storage.SecretKey = "secret"
		assert.NoError(t, cfg.validate())
	})

	t.Run("stripe secret without price id is rejected", func(t *testing.T) {
		cfg := base()
		cfg.Stripe.SecretKey = "sk_test_123"
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires webhook secret when checkout enabled", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Stripe.SecretKey = "sk_live_123"
		cfg.Stripe.PriceID = "price_123"
		assert.Error(t, cfg.validate())

		cfg.Stripe.WebhookSecret = "whsec_123"
		assert.NoError(t, cfg.validate())
	})

	t.Run("production rejects wildcard CORS", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())
	})
}

func TestStripeEnabled(t *testing.T) {
	assert.False(t, StripeConfig{}.Enabled())
	assert.False(t, StripeConfig{SecretKey: "sk"}.Enabled())
	assert.True(t, StripeConfig{SecretKey: "sk", PriceID: "price"}.Enabled())
}

func TestSMTPEnabled(t *testing.T) {
	assert.False(t, SMTPConfig{Host: "smtp.example.com"}.Enabled())
	assert.True(t, SMTPConfig{
		Host:     "smtp.example.com",
		User:     "u",
		Password: "p",
		From:     "posters@example.com",
	}.Enabled())
}
