package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HTTPPORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "not-a-number")
	t.Setenv("BASE_URL", "https://galaxy.example.com/")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 72*time.Hour, cfg.JWTExp)
	assert.Equal(t, "https://galaxy.example.com", cfg.BaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "opengalaxy", cfg.MongoDBName)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := Config{LeaderboardTimeZone: "Mars/Olympus_Mons"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.LeaderboardTimeZone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())
}
