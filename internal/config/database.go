package config

import (
	"fmt"
	"time"
)

// DatabaseConfig holds the optional Postgres delivery log connection
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`

	// Connection pool settings
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Name)
	if c.SSLMode != "" {
		dsn += " sslmode=" + c.SSLMode
	}
	return dsn
}

type MongoConfig struct {
	URI            string            `yaml:"uri"`
	Database       string            `yaml:"database"`
	Collections    CollectionsConfig `yaml:"collections"`
	ConnectTimeout time.Duration     `yaml:"connect_timeout"`
}

type CollectionsConfig struct {
	Users                string `yaml:"users"`
	Subscriptions        string `yaml:"subscriptions"`
	StudentSubscriptions string `yaml:"student_subscriptions"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// Enabled reports whether lifecycle events should be published.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}
