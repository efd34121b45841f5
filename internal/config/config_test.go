package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fintera_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.15")))
	assert.True(t, cfg.TheftThreshold.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "dev-secret-change-in-production", cfg.JWTSecret)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fintera_test")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_AccountingOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fintera_test")
	t.Setenv("TAX_RATE", "0.18")
	t.Setenv("THEFT_THRESHOLD", "250.50")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.18", cfg.TaxRate.String())
	assert.Equal(t, "250.5", cfg.TheftThreshold.String())
	assert.Len(t, cfg.AllowedOrigins, 2)
}

func TestLoad_RejectsBadMoneySettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"malformed tax", "TAX_RATE", "quince"},
		{"tax of one hundred percent", "TAX_RATE", "1"},
		{"negative tax", "TAX_RATE", "-0.1"},
		{"zero threshold", "THEFT_THRESHOLD", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/fintera_test")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
