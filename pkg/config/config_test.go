package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", "  sk_test_123 ")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_ENABLED", "true")

	env := FromEnv("")

	assert.Equal(t, "sk_test_123", env.GetString("paystack.secret_key"))
	assert.Equal(t, 9090, env.GetInt("port"))
	assert.True(t, env.GetBool("database.enabled"))
	assert.True(t, env.IsSet("port"))
	assert.False(t, env.IsSet("redis.addr"))
}

func TestFromEnv_Prefix(t *testing.T) {
	t.Setenv("WEBHOOK_LOG_LEVEL", "debug")

	env := FromEnv("webhook")

	assert.Equal(t, "debug", env.GetString("log.level"))
}
