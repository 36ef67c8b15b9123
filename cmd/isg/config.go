// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/isg/internal/isgerrors"
)

const (
	defaultConfigDir  = ".isg"
	defaultConfigFile = "project.yaml"
	defaultSnapshot   = "graph.snap"
	configVersion     = "1"
)

// Config represents the .isg/project.yaml configuration file.
type Config struct {
	Version   string         `yaml:"version"`
	ProjectID string         `yaml:"project_id"`
	Indexing  IndexingConfig `yaml:"indexing"`
	Query     QueryConfig    `yaml:"query,omitempty"`
}

// IndexingConfig controls which files ingest walks and skips.
type IndexingConfig struct {
	Exclude          []string `yaml:"exclude"`
	MaxFileSizeBytes int64    `yaml:"max_file_size_bytes"`
}

// QueryConfig holds defaults applied when a query subcommand omits the
// corresponding flag.
type QueryConfig struct {
	DefaultDepth      int `yaml:"default_depth,omitempty"`
	DefaultCycleDepth int `yaml:"default_cycle_depth,omitempty"`
	DefaultCycleLimit int `yaml:"default_cycle_limit,omitempty"`
}

// DefaultConfig returns a config with sensible defaults for a freshly
// initialized project.
func DefaultConfig(projectID string) *Config {
	return &Config{
		Version:   configVersion,
		ProjectID: projectID,
		Indexing: IndexingConfig{
			MaxFileSizeBytes: 1048576,
			Exclude: []string{
				".git/**",
				"target/**",
				"vendor/**",
				"**/*.generated.rs",
			},
		},
		Query: QueryConfig{
			DefaultDepth:      3,
			DefaultCycleDepth: 10,
			DefaultCycleLimit: 100,
		},
	}
}

// LoadConfig loads configuration from the given path, or, if path is
// empty, from the nearest .isg/project.yaml that findConfigFile finds
// starting at the current directory.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, isgerrors.NewIoError("cannot determine current directory", err)
		}
		found, ferr := findConfigFile(cwd)
		if ferr != nil {
			return nil, ferr
		}
		path = found
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from flag or discovery
	if err != nil {
		return nil, isgerrors.NewIoError(fmt.Sprintf("cannot read %s", path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, isgerrors.NewSerdeError(fmt.Sprintf("invalid configuration in %s", path), err)
	}
	if cfg.Version != configVersion {
		return nil, isgerrors.NewInvalidInput(fmt.Sprintf("config version %q is not supported (expected %q); run 'isg init --force'", cfg.Version, configVersion))
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path as YAML, creating the parent directory
// if necessary.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return isgerrors.NewSerdeError("cannot encode configuration", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return isgerrors.NewIoError("cannot create configuration directory", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return isgerrors.NewIoError(fmt.Sprintf("cannot write %s", path), err)
	}
	return nil
}

// ConfigDir returns <dir>/.isg.
func ConfigDir(dir string) string {
	return filepath.Join(dir, defaultConfigDir)
}

// ConfigPath returns <dir>/.isg/project.yaml.
func ConfigPath(dir string) string {
	return filepath.Join(ConfigDir(dir), defaultConfigFile)
}

// SnapshotPath returns <dir>/.isg/graph.snap.
func SnapshotPath(dir string) string {
	return filepath.Join(ConfigDir(dir), defaultSnapshot)
}

// findConfigFile walks up from dir looking for .isg/project.yaml.
func findConfigFile(dir string) (string, error) {
	for {
		candidate := ConfigPath(dir)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", isgerrors.NewInvalidInput("no .isg/project.yaml found in this directory or any parent; run 'isg init'")
}
