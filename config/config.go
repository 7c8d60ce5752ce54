package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Booking    BookingConfig    `yaml:"booking"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for booking confirmation pushes.
// Pushes are disabled when either key is empty.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"` // only behind a proxy that overwrites it
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	ShutdownSeconds int     `yaml:"shutdown_seconds"`

	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers gin honours. Empty trusts none.
	TrustedProxies []string `yaml:"trusted_proxies"`

	CacheTTL        time.Duration `yaml:"-"`
	ShutdownTimeout time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres, mysql or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// AuthConfig describes how identity-provider tokens are verified.
type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	Issuer     string `yaml:"issuer"`
	CookieName string `yaml:"cookie_name"`
	LoginURL   string `yaml:"login_url"`
}

// BookingConfig holds the reservation rules.
type BookingConfig struct {
	DefaultSlot              int  `yaml:"default_slot"`
	FirstSlot                int  `yaml:"first_slot"`
	LastSlot                 int  `yaml:"last_slot"`
	AvailabilityCacheSeconds int  `yaml:"availability_cache_seconds"`
	ExposeAllBookings        bool `yaml:"expose_all_bookings"`

	AvailabilityCacheTTL time.Duration `yaml:"-"`

	// Zero is a valid slot, so presence in the file is tracked separately.
	hasDefaultSlot bool
	hasFirstSlot   bool
	hasLastSlot    bool
}

// UnmarshalYAML decodes the booking section and records which slot keys
// were given.
func (b *BookingConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain BookingConfig
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	var present struct {
		DefaultSlot *int `yaml:"default_slot"`
		FirstSlot   *int `yaml:"first_slot"`
		LastSlot    *int `yaml:"last_slot"`
	}
	if err := value.Decode(&present); err != nil {
		return err
	}
	*b = BookingConfig(p)
	b.hasDefaultSlot = present.DefaultSlot != nil
	b.hasFirstSlot = present.FirstSlot != nil
	b.hasLastSlot = present.LastSlot != nil
	return nil
}

// Load reads the configuration from the given path. A .env file in the
// working directory is loaded first, and LITTLELEMON_* variables override
// values from the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("could not load .env file: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LITTLELEMON_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("LITTLELEMON_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("LITTLELEMON_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("LITTLELEMON_VAPID_PUBLIC_KEY"); v != "" {
		cfg.Push.PublicKey = v
	}
	if v := os.Getenv("LITTLELEMON_VAPID_PRIVATE_KEY"); v != "" {
		cfg.Push.PrivateKey = v
	}
	if v := os.Getenv("LITTLELEMON_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			log.Printf("ignoring invalid LITTLELEMON_PORT %q", v)
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cfg.Server.ShutdownSeconds <= 0 {
		cfg.Server.ShutdownSeconds = 5
	}
	cfg.Server.ShutdownTimeout = time.Duration(cfg.Server.ShutdownSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "littlelemon_token"
	}
	if cfg.Auth.LoginURL == "" {
		cfg.Auth.LoginURL = "/accounts/login/"
	}

	if !cfg.Booking.hasFirstSlot {
		cfg.Booking.FirstSlot = 0
	}
	if !cfg.Booking.hasLastSlot {
		cfg.Booking.LastSlot = 23
	}
	if cfg.Booking.FirstSlot < 0 || cfg.Booking.LastSlot > 23 || cfg.Booking.FirstSlot > cfg.Booking.LastSlot {
		log.Printf("booking slot window %d-%d is invalid; defaulting to 0-23", cfg.Booking.FirstSlot, cfg.Booking.LastSlot)
		cfg.Booking.FirstSlot, cfg.Booking.LastSlot = 0, 23
	}
	if !cfg.Booking.hasDefaultSlot {
		cfg.Booking.DefaultSlot = 10
	}
	if cfg.Booking.DefaultSlot < cfg.Booking.FirstSlot || cfg.Booking.DefaultSlot > cfg.Booking.LastSlot {
		if cfg.Booking.hasDefaultSlot {
			log.Printf("booking.default_slot %d is outside %d-%d; using %d",
				cfg.Booking.DefaultSlot, cfg.Booking.FirstSlot, cfg.Booking.LastSlot, cfg.Booking.FirstSlot)
		}
		cfg.Booking.DefaultSlot = cfg.Booking.FirstSlot
	}
	if cfg.Booking.AvailabilityCacheSeconds < 0 {
		cfg.Booking.AvailabilityCacheSeconds = 0
	}
	cfg.Booking.AvailabilityCacheTTL = time.Duration(cfg.Booking.AvailabilityCacheSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
