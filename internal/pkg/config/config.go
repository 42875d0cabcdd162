package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// DatabaseURL selects the store: postgres://, mongodb:// or a sqlite path.
	DatabaseURL string `env:"DATABASE_URL, default=students.db"`
	MongoDB     string `env:"MONGO_DB,     default=students"`

	CORSOrigin       string `env:"CORS_ORIGIN,        default=http://localhost:3000"`
	MaxContentLength string `env:"MAX_CONTENT_LENGTH, default=16M"`

	JWT        JWTConfig
	Cookie     CookieConfig
	Cloudinary CloudinaryConfig
	Uploads    UploadsConfig
	Redis      RedisConfig
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET_KEY"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRES,  default=1h"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRES, default=168h"`
}

type CookieConfig struct {
	Secure   bool   `env:"COOKIE_SECURE,   default=false"`
	SameSite string `env:"COOKIE_SAMESITE, default=lax"`
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
}

type UploadsConfig struct {
	Folder        string `env:"UPLOAD_FOLDER,   default=uploads"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`
}

type RedisConfig struct {
	Addr             string        `env:"REDIS_ADDR"`
	Password         string        `env:"REDIS_PASSWORD"`
	DB               int           `env:"REDIS_DB,           default=0"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginLockout     time.Duration `env:"LOGIN_LOCKOUT,      default=15m"`
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the .env file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return Process(ctx, envconfig.OsLookuper())
}

// Process builds a Config from lookuper and validates it.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET_KEY is required")
	}
	switch strings.ToLower(c.Cookie.SameSite) {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("config: COOKIE_SAMESITE must be lax, strict or none, got %q", c.Cookie.SameSite)
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	return nil
}
