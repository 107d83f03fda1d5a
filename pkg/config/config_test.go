package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	v.Set("FIREBASE_PROJECT_ID", "demo-project")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "/api", cfg.HTTP.APIPrefix)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, DefaultJWKSURL, cfg.Firebase.JWKSURL)
	assert.Equal(t, 10*time.Second, cfg.Firebase.Timeout)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.StoreTTL)
	assert.True(t, cfg.DB.PreferIPv4)
	assert.Empty(t, cfg.DB.FallbackDNS)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("FIREBASE_PROJECT_ID", "demo-project")
	v.Set("HTTP_PORT", "9090")
	v.Set("FIREBASE_TIMEOUT", "3")
	v.Set("CACHE_STORE_TTL", "90s")
	v.Set("CACHE_DRIVER", "redis")
	v.Set("FIREBASE_CHECK_REVOKED", true)
	v.Set("DB_PREFER_IPV4", false)
	v.Set("DB_FALLBACK_DNS", "1.1.1.1")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.Firebase.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Cache.StoreTTL)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.True(t, cfg.Firebase.CheckRevoked)
	assert.False(t, cfg.DB.PreferIPv4)
	assert.Equal(t, "1.1.1.1", cfg.DB.FallbackDNS)
}

func TestFromViper_RequiereProjectID(t *testing.T) {
	_, err := fromViper(viper.New())
	assert.Error(t, err)
}

func TestFromViper_CacheDriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("FIREBASE_PROJECT_ID", "demo-project")
	v.Set("CACHE_DRIVER", "memcached")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "storehub", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/storehub?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", c.ConnectionString())
}
