package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load builds configuration from defaults, an optional YAML file, and
// FREDSIM_* environment variables (e.g. FREDSIM_STORAGE_BUCKET).
//
// path may be empty, in which case only defaults and environment apply.
func Load(_ context.Context, path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("FREDSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "CONSOLE")

	v.SetDefault("aws.region", "")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("aws.profile", "")

	v.SetDefault("batch.queue", "")
	v.SetDefault("batch.definition", "")

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.download_expiry", 24*time.Hour)
	v.SetDefault("storage.force_path_style", false)

	v.SetDefault("store.root", defaultStoreRoot())

	v.SetDefault("reconcile.interval", 30*time.Second)
}

func defaultStoreRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fredsim"
	}
	return filepath.Join(home, ".fredsim")
}
