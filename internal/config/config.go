// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/spf13/viper"
)

type Config struct {
	Owner             string `mapstructure:"owner"`
	FeeBps            uint64 `mapstructure:"fee_bps"`
	TotalSupply       uint64 `mapstructure:"total_supply"`
	VirtualSol        uint64 `mapstructure:"virtual_sol"`
	TargetPoolBalance uint64 `mapstructure:"target_pool_balance"`
	LockOnGraduation  bool   `mapstructure:"lock_on_graduation"`
	PostgresURL       string `mapstructure:"postgres_url"`
	MetricsAddr       string `mapstructure:"metrics_addr"`
	EventBufferSize   int    `mapstructure:"event_buffer_size"`
	LogFile           string `mapstructure:"log_file"`
	DebugLogging      bool   `mapstructure:"debug_logging"`
	TasksFile         string `mapstructure:"tasks_file"`
}

const (
	DefaultFeeBps            = 100
	DefaultTotalSupply       = 100_000_000_000
	DefaultVirtualSol        = 100_000_000_000
	DefaultTargetPoolBalance = 150_000_000_000
	DefaultEventBufferSize   = 256
	DefaultLogFile           = "launchpad.log"
)

const maxFeeBps = 10_000

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"fee_bps":             DefaultFeeBps,
		"total_supply":        DefaultTotalSupply,
		"virtual_sol":         DefaultVirtualSol,
		"target_pool_balance": DefaultTargetPoolBalance,
		"event_buffer_size":   DefaultEventBufferSize,
		"log_file":            DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.Owner == "" {
		return errors.New("missing owner in configuration")
	}
	if err := validateIdentity(cfg.Owner); err != nil {
		return err
	}
	if cfg.FeeBps > maxFeeBps {
		return errors.New("fee_bps must not exceed 10000")
	}
	if cfg.TotalSupply == 0 {
		return errors.New("invalid total_supply")
	}
	if cfg.VirtualSol == 0 {
		return errors.New("invalid virtual_sol")
	}
	if cfg.TargetPoolBalance == 0 {
		return errors.New("invalid target_pool_balance")
	}
	if cfg.EventBufferSize <= 0 {
		return errors.New("invalid event_buffer_size")
	}
	return nil
}

// validateIdentity checks that the value decodes to a 32-byte public key.
func validateIdentity(value string) error {
	raw, err := base58.Decode(value)
	if err != nil {
		return errors.New("owner is not valid base58")
	}
	if len(raw) != 32 {
		return errors.New("owner must decode to 32 bytes")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envOwner := v.GetString("OWNER")
	if envOwner != "" {
		cfg.Owner = envOwner
	}

	envPostgres := v.GetString("POSTGRES_URL")
	if envPostgres != "" {
		cfg.PostgresURL = envPostgres
	}
	return nil
}
