package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DialectPostgres, cfg.Database.Dialect)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "sessionToken", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, int64(10*1024*1024), cfg.Uploads.MaxFileSizeBytes)
	assert.Contains(t, cfg.Uploads.AllowedMIMEs, "application/pdf")
	assert.Len(t, cfg.Requirements.Defaults, 4)
}

func TestFromViperDialectFallback(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DB_DIALECT", "mysql")
	assert.Equal(t, DialectPostgres, fromViper(v).Database.Dialect)

	v.Set("DB_DIALECT", " PGX ")
	assert.Equal(t, DialectPGX, fromViper(v).Database.Dialect)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("bogus", time.Minute))
	assert.Equal(t, 2*time.Hour, parseDuration("2h", time.Minute))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , ,b "))
}
