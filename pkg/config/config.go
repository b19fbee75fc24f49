package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port   string         `mapstructure:"port"`
	Mongo  DatabaseConfig `mapstructure:"mongo"`
	Redis  RedisConfig    `mapstructure:"redis"`
	PG     DatabaseConfig `mapstructure:"pg"`
	Kafka  KafkaConfig    `mapstructure:"kafka"`
	Market MarketConfig   `mapstructure:"market"`
}

// Member definition member_service YAML structure
type Member struct {
	Port       string        `mapstructure:"port"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	PG          DatabaseConfig `mapstructure:"pg"`
	RedisMember RedisConfig    `mapstructure:"redis"`
}

// MarketConfig chat-side toggles for catalog integration
type MarketConfig struct {
	// WatchStock enables the products change-stream watcher.
	// Needs the mongo deployment to be a replica set.
	WatchStock bool `mapstructure:"watch_stock"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// KafkaConfig definition kafka notice sink setting
type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
