// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/gateway")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", testSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "monthly", cfg.Quota.Period)
	assert.Equal(t, "gpt-4o-mini", cfg.Completion.Model)
	assert.Equal(t, DefaultSystemPrompt, cfg.Completion.SystemPrompt)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QUOTA_PERIOD", "daily")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("quota:\n  period: monthly\nserver:\n  port: 9090\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "daily", cfg.Quota.Period)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}},
		{name: "bad period", env: map[string]string{"QUOTA_PERIOD": "weekly"}},
		{name: "missing redis", env: map[string]string{"REDIS_URL": ""}},
		{
			name: "production without completion key",
			env: map[string]string{
				"ENVIRONMENT":        "production",
				"COMPLETION_API_KEY": "",
				"OPENAI_API_KEY":     "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
