package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	"github.com/pnlbook/pnlbook"
)

// quoteAPIKeyEnv is read when the config file carries no quote API key.
const quoteAPIKeyEnv = "PNLBOOK_QUOTE_API_KEY"

// QuoteConfig configures the live quote provider.
type QuoteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// Config holds everything the CLI needs that is not a per-invocation flag:
// file locations, split ratios, and the quote provider.
type Config struct {
	TradesFile string             `mapstructure:"trades_file"`
	IncomeFile string             `mapstructure:"income_file"`
	PricesFile string             `mapstructure:"prices_file"`
	DBPath     string             `mapstructure:"db_path"`
	Splits     map[string]float64 `mapstructure:"splits"`
	Quote      QuoteConfig        `mapstructure:"quote"`
	Debug      bool               `mapstructure:"debug"`
}

// LoadConfig reads the config file at path. A missing file is not an error
// when the path was not explicitly requested: defaults apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	explicit := path != ""
	if !explicit {
		path = "pnlbook.yaml"
	}
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"trades_file": "trades.csv",
		"income_file": "",
		"prices_file": "prices.json",
		"db_path":     "pnlbook.db",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cannot read config %q: %w", path, err)
		}
		// no config file: defaults apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config %q: %w", path, err)
	}
	if cfg.Quote.APIKey == "" {
		cfg.Quote.APIKey = os.Getenv(quoteAPIKeyEnv)
	}
	return &cfg, nil
}

// SplitRatios converts the configured split ratios into engine quantities.
func (c *Config) SplitRatios() map[string]pnlbook.Quantity {
	if len(c.Splits) == 0 {
		return nil
	}
	ratios := make(map[string]pnlbook.Quantity, len(c.Splits))
	for symbol, ratio := range c.Splits {
		ratios[symbol] = pnlbook.Q(ratio)
	}
	return ratios
}
