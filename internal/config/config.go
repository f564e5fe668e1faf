package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	envconfig "github.com/SOMALeoAfrica/Webhook-Server/pkg/config"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "./configs/server.yaml"

type Config struct {
	Service      ServiceConfig      `yaml:"service"`
	Server       ServerConfig       `yaml:"server"`
	Paystack     PaystackConfig     `yaml:"paystack"`
	Mongo        MongoConfig        `yaml:"mongo"`
	Supabase     SupabaseConfig     `yaml:"supabase"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Cron         CronConfig         `yaml:"cron"`
	Log          LogConfig          `yaml:"log"`
	Retry        RetryConfig        `yaml:"retry"`
	Subscription SubscriptionConfig `yaml:"subscription"`
}

// LoadConfig reads the YAML file (optional) and overlays process environment.
// Secrets are normally delivered through the environment only.
func LoadConfig() (*Config, error) {
	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// env-only deployment
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.ApplyEnv(envconfig.FromEnv(""))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "webhook-server",
			Environment: "development",
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{Port: 3000},
			GRPC: GRPCConfig{Port: 3001},
		},
		Paystack: PaystackConfig{
			MaxBodyBytes: "1M",
		},
		Mongo: MongoConfig{
			Database: "somaleo",
			Collections: CollectionsConfig{
				Users:                "users",
				Subscriptions:        "subscriptions",
				StudentSubscriptions: "subscriptions_students",
			},
			ConnectTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Port:            5432,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
		},
		Subscription: SubscriptionConfig{
			DefaultDurationDays: 30,
			DefaultRole:         "teacher",
			SweepConcurrency:    1,
		},
	}
}

// ApplyEnv overrides fields with non-empty environment values.
func (c *Config) ApplyEnv(env envconfig.Config) {
	setString(env, "paystack.secret_key", &c.Paystack.SecretKey)
	setString(env, "mongodb.uri", &c.Mongo.URI)
	setString(env, "mongodb.database", &c.Mongo.Database)
	setString(env, "supabase.url", &c.Supabase.URL)
	setString(env, "supabase.service_role_key", &c.Supabase.ServiceRoleKey)
	setString(env, "cron.secret", &c.Cron.Secret)
	setString(env, "redis.addr", &c.Redis.Addr)
	setString(env, "redis.password", &c.Redis.Password)
	setString(env, "database.host", &c.Database.Host)
	setString(env, "database.name", &c.Database.Name)
	setString(env, "database.user", &c.Database.User)
	setString(env, "database.password", &c.Database.Password)
	setString(env, "log.level", &c.Log.Level)
	setString(env, "service.environment", &c.Service.Environment)

	if env.IsSet("port") {
		c.Server.HTTP.Port = env.GetInt("port")
	}
	if env.IsSet("grpc.port") {
		c.Server.GRPC.Port = env.GetInt("grpc.port")
	}
	if env.IsSet("database.enabled") {
		c.Database.Enabled = env.GetBool("database.enabled")
	}
}

func setString(env envconfig.Config, key string, dst *string) {
	if env.IsSet(key) {
		*dst = env.GetString(key)
	}
}

// Validate reports missing values the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Paystack.SecretKey == "" {
		errs = append(errs, errors.New("paystack.secret_key is required (PAYSTACK_SECRET_KEY)"))
	}
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri is required (MONGODB_URI)"))
	}
	if c.Supabase.URL == "" || c.Supabase.ServiceRoleKey == "" {
		errs = append(errs, errors.New("supabase.url and supabase.service_role_key are required"))
	}
	if c.Server.HTTP.Port <= 0 {
		errs = append(errs, fmt.Errorf("invalid http port %d", c.Server.HTTP.Port))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Subscription.SweepConcurrency < 1 {
		errs = append(errs, fmt.Errorf("subscription.sweep_concurrency must be at least 1, got %d", c.Subscription.SweepConcurrency))
	}
	if c.Database.Enabled && c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required when database.enabled is true"))
	}

	return errors.Join(errs...)
}
