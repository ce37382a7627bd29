package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PLAN_PRICES", "")
	t.Setenv("ORDER_TTL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, time.Hour, cfg.OrderTTL)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.PlanPrices)
}

func TestLoadConfig_ParsesLists(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PLAN_PRICES", "gold=150000, silver=50000")
	t.Setenv("ORDER_TTL", "30m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, map[string]int64{"gold": 150000, "silver": 50000}, cfg.PlanPrices)
	assert.Equal(t, 30*time.Minute, cfg.OrderTTL)
}

func TestLoadConfig_RejectsBadPlanPrices(t *testing.T) {
	t.Setenv("PLAN_PRICES", "gold=-1")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Env:                "test",
		Port:               "5000",
		NodeID:             1,
		RazorpayBaseURL:    "https://api.razorpay.com/v1",
		Currency:           "INR",
		CacheDriver:        "memory",
		OrderTTL:           time.Hour,
		StoreDriver:        "dynamodb",
		PoliciesTable:      "Policies",
		NotifyQueue:        "memory",
		EmailWorkers:       2,
		EmailMaxAttempts:   3,
		EventBus:           "none",
		RateLimitPerMinute: 100,
		RateLimitBurst:     20,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"redis without url", func(c *Config) { c.CacheDriver = "redis" }, true},
		{"postgres without credentials", func(c *Config) { c.StoreDriver = "postgres" }, true},
		{"sqs without url", func(c *Config) { c.NotifyQueue = "sqs" }, true},
		{"sns without topic", func(c *Config) { c.EventBus = "sns" }, true},
		{"kafka without brokers", func(c *Config) { c.EventBus = "kafka" }, true},
		{"node id out of range", func(c *Config) { c.NodeID = 2048 }, true},
		{"unknown store", func(c *Config) { c.StoreDriver = "mongo" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := f[name]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestApplySecrets(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "true")
	t.Setenv("AWS_SECRETS_PREFIX", "")

	c := validConfig()
	c.SMTPPass = "from-env"
	c.ApplySecrets(context.Background(), fakeSecrets{
		"st-shield/RAZORPAY_KEY_SECRET": "from-sm",
	})

	assert.Equal(t, "from-sm", c.RazorpayKeySecret)
	assert.Equal(t, "from-env", c.SMTPPass)
}

func TestApplySecrets_Disabled(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "")

	c := validConfig()
	c.ApplySecrets(context.Background(), fakeSecrets{"st-shield/RAZORPAY_KEY_SECRET": "x"})

	assert.Empty(t, c.RazorpayKeySecret)
}
