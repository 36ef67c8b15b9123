// Copyright 2026 KrakLabs
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
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"strings"

	"github.com/kraklabs/isg/internal/isgerrors"
)

// FileUnit is a single file section extracted from a code bundle.
type FileUnit struct {
	Path   string
	Source string
}

const fileHeaderPrefix = "FILE:"

// ParseBundle splits a code bundle into its constituent file sections.
// Lines matching "FILE: <path>" start a new section; lines consisting
// solely of three or more '=' or '-' characters are separators and
// ignored; everything else belongs to the current section's source.
// Content before the first FILE: header is ignored. Files whose path
// does not end in ".rs" are dropped (not an error: the bundle may
// legitimately carry other files a caller chooses to skip).
func ParseBundle(text string) ([]FileUnit, error) {
	lines := strings.Split(text, "\n")

	var units []FileUnit
	var cur *FileUnit
	var body strings.Builder

	flush := func() {
		if cur != nil {
			cur.Source = body.String()
			units = append(units, *cur)
		}
		body.Reset()
	}

	sawHeader := false
	for _, line := range lines {
		if path, ok := parseFileHeader(line); ok {
			flush()
			cur = &FileUnit{Path: path}
			sawHeader = true
			continue
		}
		if isSeparator(line) {
			continue
		}
		if cur != nil {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	flush()

	if !sawHeader && strings.TrimSpace(text) != "" {
		return nil, isgerrors.NewInvalidInput("code bundle has no FILE: header")
	}

	out := units[:0]
	for _, u := range units {
		if strings.HasSuffix(u.Path, ".rs") {
			out = append(out, u)
		}
	}
	return out, nil
}

func parseFileHeader(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, fileHeaderPrefix) {
		return "", false
	}
	path := strings.TrimSpace(trimmed[len(fileHeaderPrefix):])
	if path == "" {
		return "", false
	}
	return path, true
}

func isSeparator(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	for _, r := range trimmed {
		if r != '=' && r != '-' {
			return false
		}
	}
	return true
}
