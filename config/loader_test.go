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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadNoConfigFileUsesDefaults(t *testing.T) {
	cfg, err := Load(LoaderOptions{
		ConfigDir:   t.TempDir(),
		Environment: "development",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "development")
	}
	if cfg.Argon2.Policy != "sensitive" {
		t.Errorf("Argon2.Policy = %q, want %q", cfg.Argon2.Policy, "sensitive")
	}
}

func TestLoadReadsEnvironmentSpecificFile(t *testing.T) {
	dir := t.TempDir()
	content := "environment: staging\nargon2:\n  policy: interactive\n"
	if err := os.WriteFile(filepath.Join(dir, "staging.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "staging"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Argon2.Policy != "interactive" {
		t.Errorf("Argon2.Policy = %q, want %q", cfg.Argon2.Policy, "interactive")
	}
}

func TestLoadValidatesRejectsUnknownPolicy(t *testing.T) {
	dir := t.TempDir()
	content := "argon2:\n  policy: bogus\n"
	if err := os.WriteFile(filepath.Join(dir, "default.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(LoaderOptions{ConfigDir: dir})
	if err == nil {
		t.Fatal("expected validation error for unknown argon2 policy")
	}
}

func TestLoadSkipValidationAllowsUnknownPolicy(t *testing.T) {
	dir := t.TempDir()
	content := "argon2:\n  policy: bogus\n"
	if err := os.WriteFile(filepath.Join(dir, "default.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoaderOptions{ConfigDir: dir, SkipValidation: true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Argon2.Policy != "bogus" {
		t.Errorf("Argon2.Policy = %q, want %q", cfg.Argon2.Policy, "bogus")
	}
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	os.Setenv("SYNCCRYPTO_ARGON2_POLICY", "interactive")
	os.Setenv("SYNCCRYPTO_METRICS_ENABLED", "true")
	defer os.Unsetenv("SYNCCRYPTO_ARGON2_POLICY")
	defer os.Unsetenv("SYNCCRYPTO_METRICS_ENABLED")

	cfg, err := Load(LoaderOptions{ConfigDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Argon2.Policy != "interactive" {
		t.Errorf("Argon2.Policy = %q, want %q", cfg.Argon2.Policy, "interactive")
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
}

func TestMustLoadPanicsOnInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	content := "logging:\n  level: verbose\n"
	if err := os.WriteFile(filepath.Join(dir, "default.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustLoad to panic on invalid config")
		}
	}()
	MustLoad(LoaderOptions{ConfigDir: dir})
}
