package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the engine.
type Config struct {
	Providers Providers `mapstructure:"providers"`
	Scheduler Scheduler `mapstructure:"scheduler"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	Markets   []Market  `mapstructure:"markets"`
}

// Providers holds the price-data provider credentials and tuning. A provider
// whose key is empty is skipped by the fallback chain.
type Providers struct {
	AlphaVantageKey string  `mapstructure:"alpha_vantage_key"`
	TwelveDataKey   string  `mapstructure:"twelve_data_key"`
	FinnhubKey      string  `mapstructure:"finnhub_key"`
	BaseDelay       float64 `mapstructure:"base_delay"`     // seconds between keyed provider calls
	SeriesTimeout   int     `mapstructure:"series_timeout"` // seconds, per series request
	QuoteTimeout    int     `mapstructure:"quote_timeout"`  // seconds, per quote request
}

// Scheduler holds the cron expressions for the two entry points.
type Scheduler struct {
	RefreshCron   string `mapstructure:"refresh_cron"`
	ReconcileCron string `mapstructure:"reconcile_cron"`
}

// Market is one instrument to seed into the database at startup.
type Market struct {
	Symbol     string `mapstructure:"symbol"`
	Name       string `mapstructure:"name"`
	MarketType string `mapstructure:"market_type"`
	APISymbol  string `mapstructure:"api_symbol"`
}

// Server holds the configuration for the ops status server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
// Keys can be overridden by environment, e.g. PROVIDERS_FINNHUB_KEY.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("providers.base_delay", 1)
	viper.SetDefault("providers.series_timeout", 30)
	viper.SetDefault("providers.quote_timeout", 15)
	viper.SetDefault("scheduler.refresh_cron", "*/5 * * * *")
	viper.SetDefault("scheduler.reconcile_cron", "0 * * * *")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("server.port", 8081)
	viper.SetDefault("database.dsn", "stockchart.db")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
