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
	"context"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/kraklabs/isg/internal/isgerrors"
)

// RustParser wraps a tree-sitter parser configured for the Rust grammar.
// Parsing is error-tolerant: a file with syntax errors still yields a
// partial tree, and the caller decides whether to treat that as fatal.
type RustParser struct {
	sitter *sitter.Parser
	logger *slog.Logger
}

// NewRustParser returns a parser ready to parse Rust source.
func NewRustParser(logger *slog.Logger) *RustParser {
	if logger == nil {
		logger = slog.Default()
	}
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &RustParser{sitter: p, logger: logger}
}

// ParsedFile is a tree-sitter tree paired with the source it was parsed
// from and a flag recording whether the tree contains syntax errors.
// Callers must call Close when done with the tree.
type ParsedFile struct {
	Path       string
	Source     []byte
	Tree       *sitter.Tree
	HasErrors  bool
	ErrorCount int
}

// Close releases the underlying tree-sitter tree.
func (pf *ParsedFile) Close() {
	if pf.Tree != nil {
		pf.Tree.Close()
	}
}

// Parse parses a single Rust file's source. Syntax errors do not abort
// parsing: tree-sitter recovers locally and ParsedFile.HasErrors reports
// whether any ERROR nodes were produced, for the caller to log.
func (p *RustParser) Parse(ctx context.Context, path, source string) (*ParsedFile, error) {
	content := []byte(source)
	tree, err := p.sitter.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, isgerrors.NewParseError(path, err)
	}

	root := tree.RootNode()
	errCount := 0
	hasErrors := root.HasError()
	if hasErrors {
		errCount = countErrorNodes(root)
		p.logger.Warn("ingestion.parse.syntax_errors",
			"path", path,
			"error_count", errCount,
		)
	}

	return &ParsedFile{
		Path:       path,
		Source:     content,
		Tree:       tree,
		HasErrors:  hasErrors,
		ErrorCount: errCount,
	}, nil
}

// countErrorNodes walks the tree counting ERROR nodes. Tree-sitter keeps
// parsing past an error, so a file can have one error region and still
// yield usable declarations everywhere else.
func countErrorNodes(n *sitter.Node) int {
	count := 0
	if n.Type() == "ERROR" {
		count++
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		count += countErrorNodes(n.NamedChild(i))
	}
	return count
}

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}
