// Package config loads pipeline configuration from defaults, an optional
// YAML file, and FREDSIM_* environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	// Environment selects the deployment (dev, staging, prod) and drives
	// the default batch queue and definition names.
	Environment string `mapstructure:"environment"`

	Logging   LoggingConfig   `mapstructure:"logging"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Store     StoreConfig     `mapstructure:"store"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"`
}

type AWSConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
	Profile  string `mapstructure:"profile"`
}

type BatchConfig struct {
	// Queue and Definition override the environment-derived names.
	Queue      string `mapstructure:"queue"`
	Definition string `mapstructure:"definition"`
}

type StorageConfig struct {
	Bucket         string        `mapstructure:"bucket"`
	DownloadExpiry time.Duration `mapstructure:"download_expiry"`
	ForcePathStyle bool          `mapstructure:"force_path_style"`
}

type StoreConfig struct {
	// Root is the local state directory holding run, job, and orphan
	// records.
	Root string `mapstructure:"root"`
}

type ReconcileConfig struct {
	// Interval paces reconciliation passes in watch mode.
	Interval time.Duration `mapstructure:"interval"`
}

// QueueName returns the configured batch queue, falling back to the
// platform naming convention for the environment.
func (c *Config) QueueName() string {
	if c.Batch.Queue != "" {
		return c.Batch.Queue
	}
	return fmt.Sprintf("fred-batch-queue-%s", c.Environment)
}

// DefinitionName returns the configured job definition, falling back to the
// platform naming convention for the environment.
func (c *Config) DefinitionName() string {
	if c.Batch.Definition != "" {
		return c.Batch.Definition
	}
	return fmt.Sprintf("fred-simulation-runner-%s", c.Environment)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Reconcile.Interval <= 0 {
		return fmt.Errorf("reconcile.interval must be positive")
	}
	return nil
}
