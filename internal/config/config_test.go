package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]interface{}{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "./rosterlab.db", cfg.DSN())
	assert.Equal(t, 3, cfg.PageSize)
	assert.Equal(t, time.Second, cfg.OutboxPeriod)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "admin@gmail.com", cfg.AdminEmail)
	assert.False(t, cfg.UsesMongo())
	assert.True(t, cfg.SeedOnStart)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]interface{}{
		"JWT_SECRET":     "s3cret",
		"DB_DRIVER":      "postgres",
		"POSTGRES_DSN":   "postgres://u:p@db/roster",
		"CONSUMER_STORE": "Mongo",
		"KAFKA_BROKERS":  "k1:9092, k2:9092,",
		"OUTBOX_PERIOD":  "250ms",
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db/roster", cfg.DSN())
	assert.True(t, cfg.UsesMongo())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPeriod)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]interface{}
		wantErr   string
	}{
		{"missing secret", map[string]interface{}{}, "JWT_SECRET"},
		{"postgres without dsn", map[string]interface{}{"JWT_SECRET": "x", "DB_DRIVER": "postgres"}, "POSTGRES_DSN"},
		{"bad page size", map[string]interface{}{"JWT_SECRET": "x", "PAGE_SIZE": 0}, "PAGE_SIZE"},
		{"bad store", map[string]interface{}{"JWT_SECRET": "x", "CONSUMER_STORE": "redis"}, "CONSUMER_STORE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fromViper(newViper(tc.overrides))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
