package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	S3       S3Config       `env:",prefix=S3_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Cookie   CookieConfig   `env:",prefix=COOKIE_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port          string   `env:"PORT,default=8080"`
	Host          string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout   Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout  Duration `env:"WRITE_TIMEOUT,default=15s"`
	MaxUploadMB   int64    `env:"MAX_UPLOAD_MB,default=16"`
	MigrationsDir string   `env:"MIGRATIONS_DIR,default=migrations"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=nebulaview"`
	Password string `env:"PASSWORD,default=nebulaview_password"`
	DBName   string `env:"DB,default=nebulaview_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// JWTConfig carries the two signing secrets. Access and refresh tokens are
// never signed with the same key.
type JWTConfig struct {
	AccessSecret       string   `env:"ACCESS_SECRET,required"`
	RefreshSecret      string   `env:"REFRESH_SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=7d"`
}

// S3Config configures the media object store. Endpoint is set for
// S3-compatible stores (minio); left empty for AWS proper.
type S3Config struct {
	Region        string `env:"REGION,default=us-east-1"`
	Bucket        string `env:"BUCKET,default=nebulaview-media"`
	AccessKey     string `env:"ACCESS_KEY,default="`
	SecretKey     string `env:"SECRET_KEY,default="`
	Endpoint      string `env:"ENDPOINT,default="`
	PublicBaseURL string `env:"PUBLIC_BASE_URL,default="`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// CookieConfig controls the accessToken/refreshToken credential cookies.
type CookieConfig struct {
	Domain string `env:"DOMAIN,default="`
	Secure bool   `env:"SECURE,default=true"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.JWT.AccessSecret) < 32 {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET must be at least 32 characters long")
	}
	if len(config.JWT.RefreshSecret) < 32 {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET must be at least 32 characters long")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
