package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/config"
)

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Auth   AuthConfig
	Stream StreamConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers string
	Topic   string
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	Issuer   string
}

type StreamConfig struct {
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	QueryTimeout      time.Duration `mapstructure:"query_timeout"`
	MaxEventsPerCycle int           `mapstructure:"max_events_per_cycle"`
	TypingTTL         time.Duration `mapstructure:"typing_ttl"`
	AuthorCacheTTL    time.Duration `mapstructure:"author_cache_ttl"`
	MessagePageSize   int           `mapstructure:"message_page_size"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "glass_scribe_verse")
	v.SetDefault("mongo.timeout", "30s")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "community-events")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.issuer", "glass-scribe-verse")
	v.SetDefault("stream.poll_interval", "2s")
	v.SetDefault("stream.query_timeout", "5s")
	v.SetDefault("stream.max_events_per_cycle", 50)
	v.SetDefault("stream.typing_ttl", "3s")
	v.SetDefault("stream.author_cache_ttl", "5m")
	v.SetDefault("stream.message_page_size", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("mongo.uri", "MONGODB_URI")
	v.BindEnv("mongo.database", "DATABASE_NAME")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("auth.secret", "JWT_SECRET")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Mongo.Timeout = parseDuration(v, "mongo.timeout", 30*time.Second)
	cfg.Auth.TokenTTL = parseDuration(v, "auth.token_ttl", 24*time.Hour)
	cfg.Stream.PollInterval = parseDuration(v, "stream.poll_interval", 2*time.Second)
	cfg.Stream.QueryTimeout = parseDuration(v, "stream.query_timeout", 5*time.Second)
	cfg.Stream.TypingTTL = parseDuration(v, "stream.typing_ttl", 3*time.Second)
	cfg.Stream.AuthorCacheTTL = parseDuration(v, "stream.author_cache_ttl", 5*time.Minute)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
