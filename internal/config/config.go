package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	APIKey          string
	ProviderURL     string
	ProviderTimeout time.Duration

	DefaultAirport  string
	MaxDestinations int           // 1..50
	MaxFlights      int           // 1..200
	CacheTTL        time.Duration // from cache_ttl_minutes, 1..1440

	RequestTimeout time.Duration
	CacheBackend   string // "in_memory" or "memcached"

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RateLimitRPS   int
	RateLimitBurst int

	AirportsIndexPath  string
	EquipmentIndexPath string

	WarmOnStart  bool
	WarmInterval time.Duration

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Provider struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"provider"`

	Board struct {
		DefaultAirport  string `yaml:"default_airport"`
		MaxDestinations int    `yaml:"max_destinations"`
		MaxFlights      int    `yaml:"max_flights"`
		CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
		WarmOnStart     *bool  `yaml:"warm_on_start"`
		WarmInterval    string `yaml:"warm_interval"`
	} `yaml:"board"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Cache struct {
		Backend   string `yaml:"backend"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	Assets struct {
		Airports  string `yaml:"airports"`
		Equipment string `yaml:"equipment"`
	} `yaml:"assets"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	FlightLookupAPIKey string `yaml:"flightlookup_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml. The provider subscription key comes from the
// FLIGHTLOOKUP_API_KEY env var or the secrets file and is required.
// Call from the project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.APIKey = os.Getenv("FLIGHTLOOKUP_API_KEY")
	if cfg.APIKey == "" {
		secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
		secretsData, err := os.ReadFile(secretsPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read secrets file: %w", err)
			}
		} else {
			var sec secretsFile
			if err := yaml.Unmarshal(secretsData, &sec); err != nil {
				return nil, fmt.Errorf("parse secrets file: %w", err)
			}
			cfg.APIKey = sec.FlightLookupAPIKey
		}
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("FLIGHTLOOKUP_API_KEY required (set env or config/secrets.yaml flightlookup_api_key)")
	}

	cfg.ProviderURL = fc.Provider.URL
	if cfg.ProviderURL == "" {
		cfg.ProviderURL = "https://services.flightlookup.com/v1/xml"
	}
	cfg.ProviderTimeout = parseDuration(fc.Provider.Timeout, 20*time.Second)

	cfg.DefaultAirport = strings.ToUpper(strings.TrimSpace(fc.Board.DefaultAirport))
	if cfg.DefaultAirport == "" {
		cfg.DefaultAirport = "MNL"
	}
	cfg.MaxDestinations = clampInt(fc.Board.MaxDestinations, 1, 50, 8)
	cfg.MaxFlights = clampInt(fc.Board.MaxFlights, 1, 200, 24)
	cfg.CacheTTL = time.Duration(clampInt(fc.Board.CacheTTLMinutes, 1, 1440, 30)) * time.Minute

	cfg.WarmOnStart = true
	if fc.Board.WarmOnStart != nil {
		cfg.WarmOnStart = *fc.Board.WarmOnStart
	}
	cfg.WarmInterval = parseDurationOrZero(fc.Board.WarmInterval, 0)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 25*time.Second)

	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "in_memory"
	}
	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.AirportsIndexPath = fc.Assets.Airports
	if cfg.AirportsIndexPath == "" {
		cfg.AirportsIndexPath = filepath.Join(cwd, "assets", "airports.xml")
	}
	cfg.EquipmentIndexPath = fc.Assets.Equipment
	if cfg.EquipmentIndexPath == "" {
		cfg.EquipmentIndexPath = filepath.Join(cwd, "assets", "equipment.xml")
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 50
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 100
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// clampInt applies the default when v is zero, then clamps into [min, max].
func clampInt(v, min, max, def int) int {
	if v == 0 {
		v = def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty
// string or parse error. Zero and negative results are returned as-is.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
// Auto-adjusts RequestTimeout so a single provider call can complete
// within the request deadline.
func validate(cfg *Config) error {
	if cfg.ProviderTimeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive")
	}
	if cfg.RequestTimeout <= cfg.ProviderTimeout {
		cfg.RequestTimeout = cfg.ProviderTimeout + 5*time.Second
	}
	if len(cfg.DefaultAirport) != 3 {
		return fmt.Errorf("board.default_airport must be a 3-letter IATA code, got %q", cfg.DefaultAirport)
	}
	switch cfg.CacheBackend {
	case "in_memory", "memcached":
		// valid
	default:
		return fmt.Errorf("cache.backend must be in_memory or memcached, got %q", cfg.CacheBackend)
	}
	return nil
}
