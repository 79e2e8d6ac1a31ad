// Package config loads run configuration: one connection string per store,
// batch sizing and report output. Values come from an optional YAML config
// file and BSM_-prefixed environment variables; flags override both.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is everything a migration or recalculation run needs to connect.
type Config struct {
	// LegacyURI is the connection string of the monolithic source store.
	LegacyURI string `mapstructure:"legacy-uri"`
	// LegacyDB overrides the database name from the URI.
	LegacyDB string `mapstructure:"legacy-db"`

	// One connection string per target store.
	AccountsDSN string `mapstructure:"accounts-dsn"`
	BillingDSN  string `mapstructure:"billing-dsn"`
	PartnersDSN string `mapstructure:"partners-dsn"`

	BatchSize  int    `mapstructure:"batch-size"`
	ReportPath string `mapstructure:"report"`
}

// Load reads configuration from cfgFile (or ./bsm.yaml when empty) and the
// environment. A missing config file is fine; the environment alone can
// carry everything.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BSM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Defaults register every key so AutomaticEnv values survive Unmarshal.
	v.SetDefault("legacy-uri", "")
	v.SetDefault("legacy-db", "")
	v.SetDefault("accounts-dsn", "")
	v.SetDefault("billing-dsn", "")
	v.SetDefault("partners-dsn", "")
	v.SetDefault("batch-size", 0)
	v.SetDefault("report", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("bsm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// ValidateMigrate checks the fields a migration run requires. A dry run
// only reads the legacy store, so the target DSNs are not required.
func (c *Config) ValidateMigrate(dryRun bool) error {
	var missing []string
	if c.LegacyURI == "" {
		missing = append(missing, "legacy-uri (BSM_LEGACY_URI)")
	}
	if dryRun {
		if len(missing) > 0 {
			return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
		}
		return nil
	}
	if c.AccountsDSN == "" {
		missing = append(missing, "accounts-dsn (BSM_ACCOUNTS_DSN)")
	}
	if c.BillingDSN == "" {
		missing = append(missing, "billing-dsn (BSM_BILLING_DSN)")
	}
	if c.PartnersDSN == "" {
		missing = append(missing, "partners-dsn (BSM_PARTNERS_DSN)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateRecalc checks the fields the commission recalculator requires.
func (c *Config) ValidateRecalc() error {
	var missing []string
	if c.BillingDSN == "" {
		missing = append(missing, "billing-dsn (BSM_BILLING_DSN)")
	}
	if c.PartnersDSN == "" {
		missing = append(missing, "partners-dsn (BSM_PARTNERS_DSN)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
