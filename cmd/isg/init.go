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
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/isg/internal/isgerrors"
)

// initFlags holds parsed flags for the init command.
type initFlags struct {
	force, nonInteractive bool
	projectID             string
}

// runInit executes the 'init' CLI command, creating a .isg/project.yaml
// configuration file.
//
// Flags:
//   - --force: Overwrite existing configuration (default: false)
//   - -y: Non-interactive mode, use all defaults (default: false)
//   - --project-id: Project identifier (default: directory name)
func runInit(args []string) {
	flags := parseInitFlags(args)

	cwd, err := os.Getwd()
	if err != nil {
		isgerrors.Fatal(isgerrors.NewIoError("cannot get current directory", err), false)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !flags.force {
		isgerrors.Fatal(isgerrors.NewInvalidInput(fmt.Sprintf("%s already exists; use --force to overwrite", configPath)), false)
	}

	pid := flags.projectID
	if pid == "" {
		pid = filepath.Base(cwd)
	}
	cfg := DefaultConfig(pid)

	if !flags.nonInteractive {
		reader := bufio.NewReader(os.Stdin)
		runInteractiveConfig(reader, cfg)
	}

	if err := os.MkdirAll(ConfigDir(cwd), 0750); err != nil {
		isgerrors.Fatal(isgerrors.NewIoError("cannot create .isg directory", err), false)
	}
	if err := SaveConfig(cfg, configPath); err != nil {
		isgerrors.Fatal(err, false)
	}
	fmt.Printf("Created %s\n", configPath)
	addToGitignore(cwd)

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit .isg/project.yaml if needed")
	fmt.Println("  2. Run 'isg ingest' to build the graph")
	fmt.Println("  3. Run 'isg status' to verify ingestion")
}

func parseInitFlags(args []string) initFlags {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var f initFlags
	fs.BoolVar(&f.force, "force", false, "Overwrite existing configuration")
	fs.BoolVar(&f.nonInteractive, "y", false, "Non-interactive mode (use defaults)")
	fs.StringVar(&f.projectID, "project-id", "", "Project identifier")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: isg init [options]

Creates .isg/project.yaml configuration file.

Examples:
  isg init
  isg init -y
  isg init --project-id my-crate

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	return f
}

func runInteractiveConfig(reader *bufio.Reader, cfg *Config) {
	fmt.Println("isg Project Configuration")
	fmt.Println("==========================")
	fmt.Println()

	cfg.ProjectID = prompt(reader, "Project ID", cfg.ProjectID)

	fmt.Println()
	excludeStr := prompt(reader, "Exclude globs (comma-separated)", strings.Join(cfg.Indexing.Exclude, ","))
	if excludeStr != "" {
		parts := strings.Split(excludeStr, ",")
		exclude := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				exclude = append(exclude, t)
			}
		}
		cfg.Indexing.Exclude = exclude
	}
	fmt.Println()
}

// prompt displays an interactive prompt and reads user input from stdin,
// returning defaultValue if the user presses Enter without input.
func prompt(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}
	return input
}

// addToGitignore adds .isg/ to the project's .gitignore file if not
// already present. Silently returns on any failure; this is a courtesy,
// not a requirement.
func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == ".isg/" || line == ".isg" || line == "/.isg/" || line == "/.isg" {
			return
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}
	_, _ = f.WriteString("\n# isg graph state\n.isg/\n")
	fmt.Println("Added .isg/ to .gitignore")
}
