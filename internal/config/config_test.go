package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_TYPE", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_ADDR", "")
	t.Setenv("AUTH_URL", "")

	cnf := LoadConfig()

	assert.Equal(t, "sqlite", cnf.DBType)
	// cache, queue and token verification are opt-in, a bare box runs
	// without redis, kafka or an identity provider
	assert.Empty(t, cnf.RedisAddr)
	assert.Empty(t, cnf.KafkaAddr)
	assert.Empty(t, cnf.AuthURL)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cnf := LoadConfig()

	assert.Equal(t, "postgres", cnf.DBType)
	assert.Equal(t, "localhost:6379", cnf.RedisAddr)
}
