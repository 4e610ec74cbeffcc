// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Rewards   RewardsConfig   `koanf:"rewards"`
	Catalog   CatalogConfig   `koanf:"catalog"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

// AuthConfig covers token verification only. Token issuance, sessions and
// credentials live in the platform auth service; this API just checks the
// signature and claims of the access tokens it receives.
type AuthConfig struct {
	PublicKeyPath string `koanf:"public_key_path"`
	Issuer        string `koanf:"issuer"`
	Audience      string `koanf:"audience"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// RewardsConfig is the externally supplied tier table surface: premium
// threshold, per-level percentage rates per event type and per-level flat
// signup bonuses. Whether a premium rate applies is decided at payout time
// from the commission recipient's flag; the table itself takes no stance and
// simply carries both columns.
type RewardsConfig struct {
	PremiumThreshold   float64            `koanf:"premium_threshold"`
	StoreRetryAttempts int                `koanf:"store_retry_attempts"`
	PurchaseRates      []CommissionTier   `koanf:"purchase_rates"`
	ClaimRates         []CommissionTier   `koanf:"claim_rates"`
	SignupBonuses      []SignupBonusTier  `koanf:"signup_bonuses"`
	Fanout             FanoutWorkerConfig `koanf:"fanout"`
}

type CommissionTier struct {
	Level    int     `koanf:"level"`
	Standard float64 `koanf:"standard"`
	Premium  float64 `koanf:"premium"`
}

type SignupBonusTier struct {
	Level    int   `koanf:"level"`
	Standard int64 `koanf:"standard"`
	Premium  int64 `koanf:"premium"`
}

type FanoutWorkerConfig struct {
	RedeliverInterval time.Duration `koanf:"redeliver_interval"`
	BatchSize         int           `koanf:"batch_size"`
}

type CatalogConfig struct {
	Plans []PlanEntry `koanf:"plans"`
}

// PlanEntry is one row of the plan catalog: purchase price, lifetime,
// per-day earning and the mining-rate multiplier granted while active.
type PlanEntry struct {
	ID              string  `koanf:"id"`
	Name            string  `koanf:"name"`
	Price           float64 `koanf:"price"`
	DurationDays    int     `koanf:"duration_days"`
	DailyEarning    float64 `koanf:"daily_earning"`
	BoostMultiplier float64 `koanf:"boost_multiplier"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		k, err := loadKoanf(configPath)
		if err != nil {
			loadErr = err
			return
		}

		cfg = &Config{}
		if err := k.Unmarshal("", cfg); err != nil {
			loadErr = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		if err := validate(cfg); err != nil {
			loadErr = fmt.Errorf("validate config: %w", err)
			return
		}
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

// LoadCatalog re-reads only the catalog section from disk. Used by the
// explicit catalog reload endpoint; deliberately bypasses the Load() cache so
// operators can edit the plan list without a restart.
func LoadCatalog(configPath string) (*CatalogConfig, error) {
	k, err := loadKoanf(configPath)
	if err != nil {
		return nil, err
	}

	catalog := &CatalogConfig{}
	if err := k.Unmarshal("catalog", catalog); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	if err := validateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	return catalog, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func loadKoanf(configPath string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	return k, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Rewards Backend",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"auth.issuer":          "dmi-auth",
		"auth.audience":        "rewards-api",
		"auth.public_key_path": "keys/auth_public.pem",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"Idempotency-Key",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "rewards-backend",

		"rewards.premium_threshold":         50,
		"rewards.store_retry_attempts":      3,
		"rewards.fanout.redeliver_interval": "30s",
		"rewards.fanout.batch_size":         50,
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"AUTH_PUBLIC_KEY_PATH":        "auth.public_key_path",
	"AUTH_ISSUER":                 "auth.issuer",
	"AUTH_AUDIENCE":               "auth.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"REWARDS_PREMIUM_THRESHOLD":   "rewards.premium_threshold",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Auth.PublicKeyPath == "" {
		return fmt.Errorf("AUTH_PUBLIC_KEY_PATH is required")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Rewards.PremiumThreshold <= 0 {
		return fmt.Errorf("rewards.premium_threshold must be positive")
	}

	if err := validateTiers(&c.Rewards); err != nil {
		return err
	}

	return validateCatalog(&c.Catalog)
}

func validateTiers(r *RewardsConfig) error {
	for name, tiers := range map[string][]CommissionTier{
		"rewards.purchase_rates": r.PurchaseRates,
		"rewards.claim_rates":    r.ClaimRates,
	} {
		for _, t := range tiers {
			if t.Level < 1 || t.Level > 5 {
				return fmt.Errorf(
					"%s: level %d out of range 1..5",
					name,
					t.Level,
				)
			}
			if t.Standard < 0 || t.Premium < 0 {
				return fmt.Errorf(
					"%s: rates must be non-negative at level %d",
					name,
					t.Level,
				)
			}
		}
	}

	for _, b := range r.SignupBonuses {
		if b.Level < 1 || b.Level > 5 {
			return fmt.Errorf(
				"rewards.signup_bonuses: level %d out of range 1..5",
				b.Level,
			)
		}
		if b.Standard < 0 || b.Premium < 0 {
			return fmt.Errorf(
				"rewards.signup_bonuses: bonuses must be non-negative at level %d",
				b.Level,
			)
		}
	}

	return nil
}

func validateCatalog(c *CatalogConfig) error {
	seen := make(map[string]struct{}, len(c.Plans))

	for _, p := range c.Plans {
		if p.ID == "" {
			return fmt.Errorf("catalog plan with empty id")
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate catalog plan id %q", p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Price <= 0 || p.DurationDays <= 0 || p.DailyEarning <= 0 {
			return fmt.Errorf(
				"catalog plan %q: price, duration_days and daily_earning must be positive",
				p.ID,
			)
		}
		if p.BoostMultiplier < 1 {
			return fmt.Errorf(
				"catalog plan %q: boost_multiplier must be >= 1",
				p.ID,
			)
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
