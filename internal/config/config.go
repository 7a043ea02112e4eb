package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath    = "config.toml"
	DefaultHTTPAddr      = ":8080"
	DefaultJWTExpiresIn  = "24h"
	DefaultStoreDriver   = "postgres"
	DefaultPGHost        = "127.0.0.1"
	DefaultPGPort        = 5432
	DefaultPGUser        = "postgres"
	DefaultPGDatabase    = "avatar"
	DefaultPGSSLMode     = "disable"
	DefaultRedisAddr     = "127.0.0.1:6379"
	DefaultRedisTTL      = 300
	DefaultStorageDriver = "local"
	DefaultDataRoot      = "data"
	DefaultPublicBaseURL = "http://127.0.0.1:8080/media/files"
	DefaultStrategy      = "attachment"
	DefaultAvatarSize    = 96
	DefaultEmbedSize     = 150
	DefaultEmbedAlt      = "User avatar"
	DefaultMaxUploadMB   = 5
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Admin    AdminConfig    `toml:"admin"`
	Auth     AuthConfig     `toml:"auth"`
	Store    StoreConfig    `toml:"store"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	Storage  StorageConfig  `toml:"storage"`
	Avatar   AvatarConfig   `toml:"avatar"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type AdminConfig struct {
	Email       string `toml:"email"`
	DisplayName string `toml:"display_name"`
	Password    string `toml:"password"`
}

type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

// StoreConfig selects where accounts, user meta and the media catalog live:
// "postgres" or "memory" (lost on restart).
type StoreConfig struct {
	Driver      string `toml:"driver"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// DSN renders the connection string understood by pgx and golang-migrate.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// RedisConfig controls the optional resolver cache. An empty Addr disables it.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

type StorageConfig struct {
	// Driver selects the object storage backend: "local" or "s3".
	Driver        string   `toml:"driver"`
	DataRoot      string   `toml:"data_root"`
	PublicBaseURL string   `toml:"public_base_url"`
	MaxUploadMB   int      `toml:"max_upload_mb"`
	S3            S3Config `toml:"s3"`
}

type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
	Region    string `toml:"region"`
}

type AvatarConfig struct {
	// Strategy is "attachment" (stored attachment id) or "url" (stored URL).
	Strategy    string `toml:"strategy"`
	DefaultSize int    `toml:"default_size"`
	EmbedSize   int    `toml:"embed_size"`
	EmbedAlt    string `toml:"embed_alt"`
	// DefaultURL is the generic avatar image used where no custom avatar
	// and no caller-supplied default exist (profile preview).
	DefaultURL string `toml:"default_url"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Admin: AdminConfig{
			Email:       "admin@example.com",
			DisplayName: "Administrator",
			Password:    "change-your-password-here",
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Store: StoreConfig{
			Driver:      DefaultStoreDriver,
			AutoMigrate: true,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Redis: RedisConfig{
			TTLSeconds: DefaultRedisTTL,
		},
		Storage: StorageConfig{
			Driver:        DefaultStorageDriver,
			DataRoot:      DefaultDataRoot,
			PublicBaseURL: DefaultPublicBaseURL,
			MaxUploadMB:   DefaultMaxUploadMB,
		},
		Avatar: AvatarConfig{
			Strategy:    DefaultStrategy,
			DefaultSize: DefaultAvatarSize,
			EmbedSize:   DefaultEmbedSize,
			EmbedAlt:    DefaultEmbedAlt,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
