// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config provides the client-side configuration knobs the crypto
// core needs: Argon2id cost policy, the protocol version ceiling, and
// logging/metrics toggles. It holds no server URL routing or transport
// configuration — that is the embedding application's concern.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kodumbeats/etebase-go/internal/logger"
	"github.com/kodumbeats/etebase-go/primitive"
	"github.com/kodumbeats/etebase-go/symmetric"
)

// Config is the main configuration structure.
type Config struct {
	Environment string         `yaml:"environment" json:"environment"`
	Argon2      Argon2Config   `yaml:"argon2" json:"argon2"`
	Protocol    ProtocolConfig `yaml:"protocol" json:"protocol"`
	Logging     LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics     MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// Argon2Config names one of the Argon2id cost tiers. Apply does not push it
// anywhere, and package account does not read it: account login/master key
// derivation always uses its own fixed parameters.
type Argon2Config struct {
	Policy string `yaml:"policy" json:"policy"` // interactive, moderate, sensitive
}

// Params resolves the configured policy name to its concrete cost
// parameters, defaulting to the sensitive tier when the policy name is
// unrecognized.
func (a Argon2Config) Params() primitive.Argon2Params {
	switch a.Policy {
	case "interactive":
		return primitive.Argon2Interactive
	case "moderate":
		return primitive.Argon2Moderate
	default:
		return primitive.Argon2Sensitive
	}
}

// ProtocolConfig holds the maximum revision/collection wire version this
// build understands; anything beyond it must be rejected with
// errs.VersionError rather than guessed at.
type ProtocolConfig struct {
	MaxVersion int `yaml:"max_version" json:"max_version"`
}

// LoggingConfig holds logging settings. Apply sets the default logger's
// level from Level; Format and Output are not consulted by internal/logger,
// which always writes JSON to its configured writer.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, text
	Output string `yaml:"output" json:"output"` // stdout, stderr, file path
}

// MetricsConfig holds the metrics enablement flag and serving address/path.
// Apply does not act on it: internal/metrics registers its counters
// regardless, and nothing in this module starts a metrics server from it.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Path    string `yaml:"path" json:"path"`
}

// Apply pushes cfg into the package-level state the crypto core consults
// at runtime: symmetric.MaxVersion (§7's version-refusal ceiling) and the
// default logger's level. Call once, after loading, before touching any
// account/collection operation.
func (cfg *Config) Apply() {
	symmetric.MaxVersion = cfg.Protocol.MaxVersion
	logger.GetDefaultLogger().SetLevel(parseLevel(cfg.Logging.Level))
}

func parseLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}

// LoadFromFile loads configuration from a YAML (or JSON, as a fallback)
// file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse file: %w", err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile writes cfg as YAML to path.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write file: %w", err)
	}
	return nil
}

// setDefaults fills in zero-valued fields with this module's defaults.
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Argon2.Policy == "" {
		cfg.Argon2.Policy = "sensitive"
	}
	if cfg.Protocol.MaxVersion == 0 {
		cfg.Protocol.MaxVersion = 1
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
