package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration shared by all platform binaries.
// Each service reads its own section; the store and cache sections are shared.
type Config struct {
	Gateway     GatewayConfig     `yaml:"gateway"`
	Player      ServerConfig      `yaml:"player"`
	Score       ScoreConfig       `yaml:"score"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Achievement ServerConfig      `yaml:"achievement"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
}

// ServerConfig holds HTTP server configuration for one service
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// GatewayConfig holds gateway routing and health probing configuration.
// Backends maps a logical service name to its instance addresses (host:port).
type GatewayConfig struct {
	Server         ServerConfig        `yaml:"server"`
	Backends       map[string][]string `yaml:"backends"`
	ProbeInterval  time.Duration       `yaml:"probe_interval"`
	ProbeTimeout   time.Duration       `yaml:"probe_timeout"`
	ForwardTimeout time.Duration       `yaml:"forward_timeout"`
}

// ScoreConfig holds score ingestion configuration
type ScoreConfig struct {
	Server         ServerConfig  `yaml:"server"`
	AchievementURL string        `yaml:"achievement_url"`
	NotifyTimeout  time.Duration `yaml:"notify_timeout"`
}

// LeaderboardConfig holds ranking and cache TTL configuration.
// Rank and recent-activity queries are the most volatility-sensitive and
// carry the shortest TTLs.
type LeaderboardConfig struct {
	Server         ServerConfig  `yaml:"server"`
	DefaultLimit   int           `yaml:"default_limit"`
	MaxLimit       int           `yaml:"max_limit"`
	LeaderboardTTL time.Duration `yaml:"leaderboard_ttl"`
	RankTTL        time.Duration `yaml:"rank_ttl"`
	RecentTTL      time.Duration `yaml:"recent_ttl"`
	StatsTTL       time.Duration `yaml:"stats_ttl"`
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxConnections  int           `yaml:"max_connections"`
	MinConnections  int           `yaml:"min_connections"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// ConnectionString returns the PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode,
	)
}

// RedisConfig holds cache connection configuration. The cache is an optional
// accelerator: Enabled=false (or a failed connection) degrades every read to
// direct computation, never to a hard failure.
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// KafkaConfig holds the optional Kafka score-ingestion configuration
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func serverDefaults(s *ServerConfig, port int) {
	if s.Port == 0 {
		s.Port = port
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 5 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 10 * time.Second
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = 120 * time.Second
	}
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	serverDefaults(&c.Gateway.Server, 8000)
	serverDefaults(&c.Player, 8001)
	serverDefaults(&c.Score.Server, 8002)
	serverDefaults(&c.Leaderboard.Server, 8003)
	serverDefaults(&c.Achievement, 8004)

	// Gateway defaults
	if len(c.Gateway.Backends) == 0 {
		c.Gateway.Backends = map[string][]string{
			"player-service":      {"localhost:8001"},
			"score-service":       {"localhost:8002"},
			"leaderboard-service": {"localhost:8003"},
			"achievement-service": {"localhost:8004"},
		}
	}
	if c.Gateway.ProbeInterval == 0 {
		c.Gateway.ProbeInterval = 30 * time.Second
	}
	if c.Gateway.ProbeTimeout == 0 {
		c.Gateway.ProbeTimeout = 5 * time.Second
	}
	if c.Gateway.ForwardTimeout == 0 {
		c.Gateway.ForwardTimeout = 30 * time.Second
	}

	// Score ingestion defaults
	if c.Score.AchievementURL == "" {
		c.Score.AchievementURL = "http://localhost:8004"
	}
	if c.Score.NotifyTimeout == 0 {
		c.Score.NotifyTimeout = 5 * time.Second
	}

	// Leaderboard defaults
	if c.Leaderboard.DefaultLimit == 0 {
		c.Leaderboard.DefaultLimit = 10
	}
	if c.Leaderboard.MaxLimit == 0 {
		c.Leaderboard.MaxLimit = 100
	}
	if c.Leaderboard.LeaderboardTTL == 0 {
		c.Leaderboard.LeaderboardTTL = 5 * time.Minute
	}
	if c.Leaderboard.RankTTL == 0 {
		c.Leaderboard.RankTTL = 1 * time.Minute
	}
	if c.Leaderboard.RecentTTL == 0 {
		c.Leaderboard.RecentTTL = 1 * time.Minute
	}
	if c.Leaderboard.StatsTTL == 0 {
		c.Leaderboard.StatsTTL = 5 * time.Minute
	}

	// PostgreSQL defaults
	if c.Postgres.Host == "" {
		c.Postgres.Host = "localhost"
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.Database == "" {
		c.Postgres.Database = "leaderboard"
	}
	if c.Postgres.MaxConnections == 0 {
		c.Postgres.MaxConnections = 50
	}
	if c.Postgres.MinConnections == 0 {
		c.Postgres.MinConnections = 5
	}
	if c.Postgres.MaxConnLifetime == 0 {
		c.Postgres.MaxConnLifetime = 1 * time.Hour
	}
	if c.Postgres.MaxConnIdleTime == 0 {
		c.Postgres.MaxConnIdleTime = 30 * time.Minute
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 100
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = 3 * time.Second
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = 3 * time.Second
	}

	// Kafka defaults
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "score-submissions"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "score-service"
	}
}

// DefaultConfig returns a configuration with all defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Redis.Enabled = true
	return cfg
}
