// go-nfcbridge
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-nfcbridge.
//
// go-nfcbridge is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-nfcbridge is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-nfcbridge; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package config loads the bridge configuration from a YAML file, defaults
// and NFCBRIDGE_ environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. NFCBRIDGE_LINK_PORT
const EnvPrefix = "NFCBRIDGE"

// NFC transports
const (
	TransportUART = "uart"
	TransportI2C  = "i2c"
)

type LinkConfig struct {
	// Port is the host link device; empty means auto detect
	Port        string   `mapstructure:"port"`
	Baud        int      `mapstructure:"baud"`
	IgnorePaths []string `mapstructure:"ignorePaths"`
	USBOnly     bool     `mapstructure:"usbOnly"`
}

type NFCConfig struct {
	Transport         string        `mapstructure:"transport"`
	Path              string        `mapstructure:"path"`
	PollTimeout       time.Duration `mapstructure:"pollTimeout"`
	Dwell             time.Duration `mapstructure:"dwell"`
	ActivationRetries int           `mapstructure:"activationRetries"`
	ReleaseTargets    bool          `mapstructure:"releaseTargets"`
}

type ThermalConfig struct {
	Enable  bool   `mapstructure:"enable"`
	Bus     string `mapstructure:"bus"`
	Address int    `mapstructure:"address"`
}

type IndicatorConfig struct {
	// Pin is a periph GPIO name such as "GPIO17"; empty disables the indicator
	Pin       string `mapstructure:"pin"`
	ActiveLow bool   `mapstructure:"activeLow"`
}

type LumberjackConfig struct {
	// Filename enables file logging when set
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Addr   string `mapstructure:"addr"`
	Path   string `mapstructure:"path"`
}

type Config struct {
	Link      LinkConfig      `mapstructure:"link"`
	NFC       NFCConfig       `mapstructure:"nfc"`
	Thermal   ThermalConfig   `mapstructure:"thermal"`
	Indicator IndicatorConfig `mapstructure:"indicator"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// Load reads path, or nfcbridge.yaml from the working directory or
// /etc/nfcbridge when path and NFCBRIDGE_CONFIG are empty. A missing
// default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/nfcbridge")
		v.SetConfigName("nfcbridge")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("link.port", "")
	v.SetDefault("link.baud", 115200)
	v.SetDefault("link.ignorePaths", []string{})
	v.SetDefault("link.usbOnly", false)

	v.SetDefault("nfc.transport", TransportUART)
	v.SetDefault("nfc.path", "")
	v.SetDefault("nfc.pollTimeout", "500ms")
	v.SetDefault("nfc.dwell", "1s")
	v.SetDefault("nfc.activationRetries", 0xFF)
	v.SetDefault("nfc.releaseTargets", false)

	v.SetDefault("thermal.enable", false)
	v.SetDefault("thermal.bus", "")
	v.SetDefault("thermal.address", 0x69)

	v.SetDefault("indicator.pin", "")
	v.SetDefault("indicator.activeLow", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 28)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("metrics.enable", false)
	v.SetDefault("metrics.addr", ":9110")
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	var errs []error

	if c.Link.Baud <= 0 {
		errs = append(errs, fmt.Errorf("link.baud must be positive, got %d", c.Link.Baud))
	}

	switch c.NFC.Transport {
	case TransportUART:
		if c.NFC.Path == "" {
			errs = append(errs, errors.New("nfc.path is required for the uart transport"))
		}
	case TransportI2C:
	default:
		errs = append(errs, fmt.Errorf("nfc.transport must be %q or %q, got %q", TransportUART, TransportI2C, c.NFC.Transport))
	}
	if c.NFC.PollTimeout <= 0 {
		errs = append(errs, fmt.Errorf("nfc.pollTimeout must be positive, got %s", c.NFC.PollTimeout))
	}
	if c.NFC.Dwell < 0 {
		errs = append(errs, fmt.Errorf("nfc.dwell must not be negative, got %s", c.NFC.Dwell))
	}
	if c.NFC.ActivationRetries < 0 || c.NFC.ActivationRetries > 0xFF {
		errs = append(errs, fmt.Errorf("nfc.activationRetries must be 0-255, got %d", c.NFC.ActivationRetries))
	}

	if c.Thermal.Enable && (c.Thermal.Address < 0x03 || c.Thermal.Address > 0x77) {
		errs = append(errs, fmt.Errorf("thermal.address 0x%02X is not a 7-bit I2C address", c.Thermal.Address))
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if c.Metrics.Enable && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr is required when metrics are enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
