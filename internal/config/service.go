package config

import "time"

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

func (c ServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}

type PaystackConfig struct {
	SecretKey string `yaml:"secret_key"`
	// MaxBodyBytes uses echo's BodyLimit notation, e.g. "1M"
	MaxBodyBytes string `yaml:"max_body_bytes"`
}

type SupabaseConfig struct {
	URL            string        `yaml:"url"`
	ServiceRoleKey string        `yaml:"service_role_key"`
	Timeout        time.Duration `yaml:"timeout"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

type SubscriptionConfig struct {
	DefaultDurationDays int    `yaml:"default_duration_days"`
	DefaultRole         string `yaml:"default_role"`
	SweepConcurrency    int    `yaml:"sweep_concurrency"`
}
