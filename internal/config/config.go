// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the scheduler's settings the way the teacher's
// cmd/scheduler.go loads dagu's: through viper, with environment
// variables as overrides. The cmd package binds no flags to these keys;
// it only passes an optional config file path to Load.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EtcdConfig holds the coordination store's connection settings
// (spec.md §6: scheduler.etcd.*).
type EtcdConfig struct {
	Enable    bool
	Endpoints []string
	Root      string
}

// Config is the scheduler's full runtime configuration (spec.md §6).
type Config struct {
	// BasePackage and Includes/Exclusions are loaded for a package
	// scanner; none is implemented, descriptors are registered
	// explicitly, and only BasePackage is read (logged at startup).
	BasePackage string
	Includes    []string
	Exclusions  []string

	ShutdownTimeout time.Duration

	Etcd EtcdConfig

	Debug     bool
	LogFormat string // "text" | "json"

	HTTPAddr string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.base-package", "")
	v.SetDefault("scheduler.includes", []string{})
	v.SetDefault("scheduler.exclusions", []string{})
	v.SetDefault("scheduler.shutdown-timeout", "60s")
	v.SetDefault("scheduler.etcd.enable", false)
	v.SetDefault("scheduler.etcd.endpoints", []string{"localhost:2379"})
	v.SetDefault("scheduler.etcd.root", "/scheduler")
	v.SetDefault("scheduler.debug", false)
	v.SetDefault("scheduler.log-format", "text")
	v.SetDefault("scheduler.http-addr", ":8090")
}

// Load reads configuration from (in ascending precedence) defaults, an
// optional config file discovered by viper's search path, and
// SCHEDULER_-prefixed environment variables, mirroring the layering
// cmd/scheduler.go applies around config.Load() in the teacher.
func Load(path ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if len(path) > 0 && path[0] != "" {
		v.SetConfigFile(path[0])
	} else {
		v.SetConfigName("scheduler")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/scheduler")
		v.AddConfigPath("/etc/scheduler")
	}

	v.SetEnvPrefix("scheduler")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString("scheduler.shutdown-timeout"))
	if err != nil {
		return nil, fmt.Errorf("config: scheduler.shutdown-timeout: %w", err)
	}

	cfg := &Config{
		BasePackage:     v.GetString("scheduler.base-package"),
		Includes:        v.GetStringSlice("scheduler.includes"),
		Exclusions:      v.GetStringSlice("scheduler.exclusions"),
		ShutdownTimeout: timeout,
		Etcd: EtcdConfig{
			Enable:    v.GetBool("scheduler.etcd.enable"),
			Endpoints: v.GetStringSlice("scheduler.etcd.endpoints"),
			Root:      v.GetString("scheduler.etcd.root"),
		},
		Debug:     v.GetBool("scheduler.debug"),
		LogFormat: v.GetString("scheduler.log-format"),
		HTTPAddr:  v.GetString("scheduler.http-addr"),
	}
	return cfg, nil
}
