// Package config loads and validates the gfxclientd daemon configuration
// via viper, following the teacher's Default()/Load()/Save() shape.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config is the gfxclientd daemon configuration.
type Config struct {
	ClientID string `mapstructure:"client_id"`

	// Transport (internal/transport/wstransport)
	ServerURL             string `mapstructure:"server_url"`
	AuthToken             string `mapstructure:"auth_token"`
	TLSInsecureSkipVerify bool   `mapstructure:"tls_insecure_skip_verify"`
	ReconnectMinBackoffMs int    `mapstructure:"reconnect_min_backoff_ms"`
	ReconnectMaxBackoffMs int    `mapstructure:"reconnect_max_backoff_ms"`
	PingIntervalSeconds   int    `mapstructure:"ping_interval_seconds"`
	SendQueueSize         int    `mapstructure:"send_queue_size"`

	// Logging
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	// Compositor / decode tuning
	ProgressiveWorkerCount  int  `mapstructure:"progressive_worker_count"`
	SuspendFrameAck         bool `mapstructure:"suspend_frame_ack"`
	QueueDepthWarnThreshold int  `mapstructure:"queue_depth_warn_threshold"`

	// Metrics
	MetricsLogIntervalSeconds int `mapstructure:"metrics_log_interval_seconds"`
}

func Default() *Config {
	return &Config{
		ReconnectMinBackoffMs:     250,
		ReconnectMaxBackoffMs:     30000,
		PingIntervalSeconds:       30,
		SendQueueSize:             64,
		LogLevel:                  "info",
		LogFormat:                 "text",
		LogMaxSizeMB:              50,
		LogMaxBackups:             3,
		ProgressiveWorkerCount:    runtime.NumCPU(),
		QueueDepthWarnThreshold:   64,
		MetricsLogIntervalSeconds: 30,
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gfxclientd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("GFXCLIENT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	result := cfg.ValidateTiered()
	for _, err := range result.Warnings {
		slog.Warn("config validation", "error", err)
	}
	if result.HasFatals() {
		for _, err := range result.Fatals {
			slog.Error("config validation fatal", "error", err)
		}
		return nil, fmt.Errorf("config has fatal validation errors: %v", result.Fatals[0])
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

func SaveTo(cfg *Config, cfgFile string) error {
	viper.Set("client_id", cfg.ClientID)
	viper.Set("server_url", cfg.ServerURL)
	viper.Set("auth_token", cfg.AuthToken)
	viper.Set("log_level", cfg.LogLevel)
	viper.Set("log_format", cfg.LogFormat)

	var cfgPath string
	if cfgFile != "" {
		cfgPath = cfgFile
		dir := filepath.Dir(cfgPath)
		if dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
	} else {
		cfgPath = filepath.Join(configDir(), "gfxclientd.yaml")
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgPath); err != nil {
		return err
	}

	// Contains an auth token: owner-only access.
	return os.Chmod(cfgPath, 0600)
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "gfxclientd")
	case "darwin":
		return "/Library/Application Support/gfxclientd"
	default:
		return "/etc/gfxclientd"
	}
}
