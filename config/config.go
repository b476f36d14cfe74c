package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

type Config struct {
	// Server configuration
	Environment string

	// Data source configuration
	DataSource      string // local | remote
	RemoteBaseURL   string
	RemoteToken     string
	RemotePerPage   int
	FetchTimeout    time.Duration
	BreakerRequests int
	BreakerRatio    float64
	BreakerTimeout  time.Duration

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubChannel      string

	// Dashboard configuration
	Dashboard Dashboard

	// Rate limiting
	RateLimitPerMinute int

	// Monitoring
	EnableMetrics bool
}

// Dashboard holds the view limits. It can be overridden by the TOML file
// named in DASHBOARD_CONFIG.
type Dashboard struct {
	UpcomingLimit        int  `toml:"upcoming_limit"`
	CompactUpcomingLimit int  `toml:"compact_upcoming_limit"`
	TopCoursesLimit      int  `toml:"top_courses_limit"`
	RecentLimit          int  `toml:"recent_limit"`
	LoadOnStart          bool `toml:"load_on_start"`
	ReloadOnChange       bool `toml:"reload_on_change"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Data source
		DataSource:      getEnv("DATA_SOURCE", SourceLocal),
		RemoteBaseURL:   getEnv("REMOTE_BASE_URL", ""),
		RemoteToken:     getEnv("REMOTE_TOKEN", ""),
		RemotePerPage:   getEnvAsInt("REMOTE_PER_PAGE", 500),
		FetchTimeout:    getEnvAsDuration("FETCH_TIMEOUT", "10s"),
		BreakerRequests: getEnvAsInt("BREAKER_MIN_REQUESTS", 10),
		BreakerRatio:    getEnvAsFloat("BREAKER_FAILURE_RATIO", 0.6),
		BreakerTimeout:  getEnvAsDuration("BREAKER_OPEN_TIMEOUT", "30s"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubChannel:      getEnv("PUBNUB_CHANNEL", "dashboard"),

		// Dashboard
		Dashboard: Dashboard{
			UpcomingLimit:        getEnvAsInt("UPCOMING_LIMIT", 5),
			CompactUpcomingLimit: getEnvAsInt("COMPACT_UPCOMING_LIMIT", 4),
			TopCoursesLimit:      getEnvAsInt("TOP_COURSES_LIMIT", 6),
			RecentLimit:          getEnvAsInt("RECENT_LIMIT", 6),
			LoadOnStart:          getEnvAsBool("LOAD_ON_START", true),
			ReloadOnChange:       getEnvAsBool("RELOAD_ON_CHANGE", true),
		},

		// Rate limiting
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}

	if path := getEnv("DASHBOARD_CONFIG", ""); path != "" {
		if err := cfg.LoadDashboardFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDashboardFile overlays the keys present in the TOML file onto the
// dashboard settings.
func (c *Config) LoadDashboardFile(path string) error {
	var file struct {
		Dashboard Dashboard `toml:"dashboard"`
	}
	file.Dashboard = c.Dashboard

	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	c.Dashboard = file.Dashboard
	return nil
}

func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceLocal:
	case SourceRemote:
		if c.RemoteBaseURL == "" {
			return fmt.Errorf("config: REMOTE_BASE_URL is required for data source %q", SourceRemote)
		}
	default:
		return fmt.Errorf("config: unknown data source %q", c.DataSource)
	}

	if c.Dashboard.UpcomingLimit <= 0 || c.Dashboard.CompactUpcomingLimit <= 0 ||
		c.Dashboard.TopCoursesLimit <= 0 || c.Dashboard.RecentLimit <= 0 {
		return fmt.Errorf("config: dashboard limits must be positive: %+v", c.Dashboard)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
