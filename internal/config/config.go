package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nutterthanos/OTR-FuelPrices/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	API       APIConfig       `mapstructure:"api"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Store     StoreConfig     `mapstructure:"store"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Chart     ChartConfig     `mapstructure:"chart"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// APIConfig covers upstream fuel-price API access.
type APIConfig struct {
	AuthToken      string        `mapstructure:"auth_token"`
	SitesURL       string        `mapstructure:"sites_url"`
	LocationsURL   string        `mapstructure:"locations_url"`
	PriceURL       string        `mapstructure:"price_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	AcceptEncoding string        `mapstructure:"accept_encoding"`
}

// FetchConfig governs the per-site fan-out.
type FetchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// StoreConfig locates the flat-file store.
type StoreConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// SchedulerConfig governs the watch command's cadence.
type SchedulerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// ChartConfig sets chart rendering behaviour.
type ChartConfig struct {
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	MaxPoints int    `mapstructure:"max_points"`
	OutDir    string `mapstructure:"out_dir"`
}

// Load builds configuration from .env, file, environment, and defaults.
func Load(path string) (*Config, error) {
	// Local .env files are optional; absence is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("OTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "otr-fuelprices")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("api.auth_token", "")
	v.SetDefault("api.sites_url", "https://ibjdnxs3i2.execute-api.ap-southeast-2.amazonaws.com/motrPrd/GetSites")
	v.SetDefault("api.locations_url", "https://app2.ontherun.com.au/api/v2/listLocations")
	v.SetDefault("api.price_url", "https://ibjdnxs3i2.execute-api.ap-southeast-2.amazonaws.com/motrPrd/getSiteFuelPrices/%s")
	v.SetDefault("api.request_timeout", "30s")
	v.SetDefault("api.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("api.accept_encoding", "br")

	v.SetDefault("fetch.concurrency", 8)

	v.SetDefault("store.data_dir", "data")

	v.SetDefault("scheduler.interval", "30m")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("chart.width", 1280)
	v.SetDefault("chart.height", 720)
	v.SetDefault("chart.max_points", 5000)
	v.SetDefault("chart.out_dir", "graphs")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.API.SitesURL == "" || c.API.LocationsURL == "" {
		return fmt.Errorf("api.sites_url and api.locations_url must be configured")
	}
	if !strings.Contains(c.API.PriceURL, "%s") {
		return fmt.Errorf("api.price_url must contain a %%s site placeholder")
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("api.request_timeout must be greater than zero")
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be greater than zero")
	}
	if c.Store.DataDir == "" {
		return fmt.Errorf("store.data_dir must be configured")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart.width and chart.height must be greater than zero")
	}
	if c.Chart.MaxPoints <= 0 {
		return fmt.Errorf("chart.max_points must be greater than zero")
	}
	return nil
}

// RequireAuthToken rejects network-bound commands when no credential is
// configured. Offline commands (chart, show) skip this check.
func (c *Config) RequireAuthToken() error {
	if strings.TrimSpace(c.API.AuthToken) == "" {
		return fmt.Errorf("api.auth_token is required: set OTR_API_AUTH_TOKEN or api.auth_token in the config file")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Chart.MaxPoints
}
