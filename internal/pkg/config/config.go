package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Supabase SupabaseConfig
	Site     SiteConfig
	Redis    RedisConfig

	// AuthRateLimit is the sustained requests per second allowed per client
	// on the /auth endpoints.
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT, default=1"`

	// SessionIdleTimeout drops a client's in-memory manager after this long
	// without a request. Zero keeps managers until sign-out.
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT, default=30m"`
}

// SupabaseConfig points at the hosted auth and profile service. Both values
// are required; the service cannot start without them.
type SupabaseConfig struct {
	URL     string        `env:"SUPABASE_URL,      required"`
	AnonKey string        `env:"SUPABASE_ANON_KEY, required"`
	Timeout time.Duration `env:"PROVIDER_TIMEOUT,  default=10s"`
}

// SiteConfig is the public location share links point at.
type SiteConfig struct {
	Origin        string `env:"SITE_ORIGIN,    default=http://localhost:5173"`
	Path          string `env:"SITE_PATH,      default=/"`
	ShellTemplate string `env:"SHELL_TEMPLATE"`
}

type RedisConfig struct {
	// Addr left empty keeps sessions in process memory.
	Addr       string        `env:"REDIS_ADDR"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB,    default=0"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=720h"`
}

// IsProduction reports whether pretty logging should be off.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
