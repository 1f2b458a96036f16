// Package config loads and watches application configuration backed by viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	config *Config
	mu     sync.Mutex
	v      = viper.New()
)

// Config represents the configuration implementation.
type Config struct {
	AppName string
	RunMode string
	Host    string
	Port    int
	Logger  *Logger
	Data    *Data
	Auth    *Auth
	Viper   *viper.Viper

	path string
}

// IsProd reports whether the application runs in release mode.
func (c *Config) IsProd() bool {
	return c.RunMode == "release" || c.RunMode == "prod"
}

// LoadConfig loads the configuration from the file.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		ex, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		v.SetConfigName("config")
		v.AddConfigPath("/etc/examhub")
		v.AddConfigPath("$HOME/.examhub")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Dir(ex))
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{
		AppName: v.GetString("app_name"),
		RunMode: v.GetString("run_mode"),
		Host:    v.GetString("server.host"),
		Port:    v.GetInt("server.port"),
		Logger:  getLoggerConfig(v),
		Data:    getDataConfig(v),
		Auth:    getAuthConfig(v),
		Viper:   v,
		path:    configPath,
	}

	mu.Lock()
	config = cfg
	mu.Unlock()
	return cfg, nil
}

// GetConfig returns the loaded configuration.
func GetConfig() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	return config, nil
}

// Reload reloads the configuration from the file.
func Reload() error {
	mu.Lock()
	path := ""
	if config != nil {
		path = config.path
	}
	mu.Unlock()

	if _, err := LoadConfig(path); err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	return nil
}

// Watch watches the configuration file and reloads it when it changes.
func Watch(callback func(*Config)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := Reload(); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}
		callback(config)
	})
}
