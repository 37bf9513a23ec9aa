package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "fabrica", cfg.MongoDB.DBName)
	assert.Equal(t, "0 6 * * *", cfg.Processing.CronSchedule)
	assert.Equal(t, "America/Sao_Paulo", cfg.Processing.Timezone)
	assert.Empty(t, cfg.Notify.WebhookURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MONGODB_DB_NAME", "fabrica_test")
	t.Setenv("PROCESSAMENTO_CRON_SCHEDULE", "30 5 * * *")
	t.Setenv("NOTIFY_WEBHOOK_URL", "https://hooks.example.com/processamento")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "fabrica_test", cfg.MongoDB.DBName)
	assert.Equal(t, "30 5 * * *", cfg.Processing.CronSchedule)
	assert.Equal(t, "https://hooks.example.com/processamento", cfg.Notify.WebhookURL)
}

func TestLoadRejectsInvalidTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Not/AZone")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidateNilConfig(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Validate())
}
