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
	"flag"
	"fmt"
	"os"

	"github.com/kraklabs/isg/internal/isgerrors"
)

// bashCompletionTemplate is the bash completion script for isg.
const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for isg (Interface Signature Graph)
# Installation:
#   source <(isg completion bash)
#   Or add to ~/.bashrc:
#   echo 'source <(isg completion bash)' >> ~/.bashrc

_isg_completion() {
    local cur prev commands
    commands="init ingest status query reset watch completion"

    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [[ ${cur} == -* ]] ; then
        COMPREPLY=( $(compgen -W "--version --json --quiet --no-color --verbose --config" -- ${cur}) )
        return 0
    fi

    if [ $COMP_CWORD -eq 1 ]; then
        COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        return 0
    fi

    local cmd="${COMP_WORDS[1]}"
    case "${cmd}" in
        init)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--force -y --project-id" -- ${cur}) )
            fi
            ;;
        ingest)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--debug --metrics-addr" -- ${cur}) )
            fi
            ;;
        status)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--json" -- ${cur}) )
            fi
            ;;
        query)
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "what-implements blast-radius cycles who-calls called execution-path context" -- ${cur}) )
            elif [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--depth --max-depth --max-cycles" -- ${cur}) )
            fi
            ;;
        reset)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--yes" -- ${cur}) )
            fi
            ;;
        watch)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--debounce" -- ${cur}) )
            fi
            ;;
        completion)
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            fi
            ;;
    esac
}

complete -F _isg_completion isg
`

// zshCompletionTemplate is the zsh completion script for isg.
const zshCompletionTemplate = `#compdef isg

# Zsh completion script for isg (Interface Signature Graph)
# Installation:
#   1. Ensure compinit is loaded (add to ~/.zshrc if not present):
#      autoload -U compinit; compinit
#   2. Save this script to a directory in your fpath:
#      isg completion zsh > "${fpath[1]}/_isg"
#   3. Reload completions:
#      rm -f ~/.zcompdump; compinit

_isg() {
    local -a commands
    commands=(
        'init:Create .isg/project.yaml configuration'
        'ingest:Ingest the current repository into the graph'
        'status:Show project status'
        'query:Query the interface signature graph'
        'reset:Reset local project state'
        'watch:Watch the repository and reindex changed files'
        'completion:Generate shell completion script'
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        '--json[Output machine-readable JSON]' \
        '--quiet[Suppress progress output]' \
        '--no-color[Disable colored output]' \
        '--verbose[Enable debug logging]' \
        '--config[Path to .isg/project.yaml]:config file:_files -g "*.yaml"' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                init)
                    _arguments \
                        '--force[Overwrite existing configuration]' \
                        '-y[Non-interactive mode]' \
                        '--project-id[Project identifier]:id:'
                    ;;
                ingest)
                    _arguments \
                        '--debug[Enable debug logging]' \
                        '--metrics-addr[Prometheus metrics address]:address:'
                    ;;
                status)
                    _arguments \
                        '--json[Output as JSON]'
                    ;;
                query)
                    _arguments \
                        '1:operation:(what-implements blast-radius cycles who-calls called execution-path context)' \
                        '--depth[Maximum hop count]:depth:' \
                        '--max-depth[Maximum hop count per branch]:depth:' \
                        '--max-cycles[Maximum cycles to report]:count:'
                    ;;
                reset)
                    _arguments \
                        '--yes[Confirm the reset (required)]'
                    ;;
                watch)
                    _arguments \
                        '--debounce[Debounce window before reindexing]:duration:'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_isg
`

// fishCompletionTemplate is the fish completion script for isg.
const fishCompletionTemplate = `# Fish completion script for isg (Interface Signature Graph)
# Installation:
#   1. Load completions for current session:
#      isg completion fish | source
#   2. Install permanently:
#      isg completion fish > ~/.config/fish/completions/isg.fish

complete -c isg -f -n "__fish_use_subcommand" -a "init" -d "Create .isg/project.yaml configuration"
complete -c isg -f -n "__fish_use_subcommand" -a "ingest" -d "Ingest the current repository into the graph"
complete -c isg -f -n "__fish_use_subcommand" -a "status" -d "Show project status"
complete -c isg -f -n "__fish_use_subcommand" -a "query" -d "Query the interface signature graph"
complete -c isg -f -n "__fish_use_subcommand" -a "reset" -d "Reset local project state (destructive!)"
complete -c isg -f -n "__fish_use_subcommand" -a "watch" -d "Watch the repository and reindex changed files"
complete -c isg -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

complete -c isg -l version -d "Show version and exit"
complete -c isg -l json -d "Output machine-readable JSON"
complete -c isg -l quiet -d "Suppress progress output"
complete -c isg -l no-color -d "Disable colored output"
complete -c isg -l verbose -d "Enable debug logging"
complete -c isg -l config -d "Path to .isg/project.yaml" -r

complete -c isg -n "__fish_seen_subcommand_from init" -l force -d "Overwrite existing configuration"
complete -c isg -n "__fish_seen_subcommand_from init" -l project-id -d "Project identifier" -r

complete -c isg -n "__fish_seen_subcommand_from ingest" -l debug -d "Enable debug logging"
complete -c isg -n "__fish_seen_subcommand_from ingest" -l metrics-addr -d "Prometheus metrics address" -r

complete -c isg -n "__fish_seen_subcommand_from status" -l json -d "Output as JSON"

complete -c isg -n "__fish_seen_subcommand_from query" -f -a "what-implements blast-radius cycles who-calls called execution-path context"
complete -c isg -n "__fish_seen_subcommand_from query" -l depth -d "Maximum hop count" -r
complete -c isg -n "__fish_seen_subcommand_from query" -l max-depth -d "Maximum hop count per branch" -r
complete -c isg -n "__fish_seen_subcommand_from query" -l max-cycles -d "Maximum cycles to report" -r

complete -c isg -n "__fish_seen_subcommand_from reset" -l yes -d "Confirm the reset (required)"

complete -c isg -n "__fish_seen_subcommand_from watch" -l debounce -d "Debounce window before reindexing" -r

complete -c isg -n "__fish_seen_subcommand_from completion" -f -a "bash" -d "Generate bash completion script"
complete -c isg -n "__fish_seen_subcommand_from completion" -f -a "zsh" -d "Generate zsh completion script"
complete -c isg -n "__fish_seen_subcommand_from completion" -f -a "fish" -d "Generate fish completion script"
`

// runCompletion executes the 'completion' CLI command, generating a
// shell-specific completion script for bash, zsh, or fish.
//
// Usage:
//
//	isg completion [bash|zsh|fish]
func runCompletion(args []string, configPath string) {
	fs := flag.NewFlagSet("completion", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: isg completion <shell>

Generate shell completion scripts for bash, zsh, or fish.

Examples:
  isg completion bash
  source <(isg completion bash)
  isg completion zsh > "${fpath[1]}/_isg"
  isg completion fish | source

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		isgerrors.Fatal(isgerrors.NewInvalidInput("the completion command requires exactly one argument: the shell name (bash, zsh, or fish)"), false)
	}

	shell := fs.Arg(0)

	switch shell {
	case "bash":
		fmt.Print(bashCompletionTemplate)
	case "zsh":
		fmt.Print(zshCompletionTemplate)
	case "fish":
		fmt.Print(fishCompletionTemplate)
	default:
		isgerrors.Fatal(isgerrors.NewInvalidInput(fmt.Sprintf("shell %q is not supported; valid options: bash, zsh, fish", shell)), false)
	}
}
