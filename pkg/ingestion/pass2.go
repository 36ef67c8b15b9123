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

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/isg/pkg/graph"
	"github.com/kraklabs/isg/pkg/identity"
)

// rustBuiltinCallees are standard-library/trait methods common enough
// that treating them as unresolved call targets would be noise; they are
// skipped before even attempting name resolution. Name resolution would
// harmlessly drop them anyway (they are never declared in the ingested
// source), this just avoids the lookup.
var rustBuiltinCallees = map[string]bool{
	"clone": true, "to_string": true, "to_owned": true, "as_ref": true,
	"as_mut": true, "into": true, "from": true, "default": true,
	"unwrap": true, "expect": true, "is_some": true, "is_none": true,
	"is_ok": true, "is_err": true, "ok": true, "err": true,
	"map": true, "and_then": true, "or_else": true, "unwrap_or": true,
	"unwrap_or_else": true, "unwrap_or_default": true,
	"len": true, "is_empty": true, "push": true, "pop": true,
	"iter": true, "into_iter": true, "collect": true, "filter": true,
	"for_each": true, "enumerate": true, "zip": true, "take": true,
	"skip": true, "chain": true, "flat_map": true, "fold": true,
	"sort": true, "sort_by": true, "reverse": true,
	"insert": true, "remove": true, "contains": true, "get": true,
	"println": true, "print": true, "eprintln": true, "eprint": true,
	"format": true, "panic": true,
	"with_capacity": true,
}

// extractIntents walks the same tree Pass 1 walked and emits unresolved
// edge intents: Implements from each impl block recorded in u.impls,
// Calls from call expressions inside function/method bodies, and Uses
// from type references in signatures, fields, and variants. Target names
// are resolved against the global name map later, by the Graph Store.
func extractIntents(pf *ParsedFile, u fileUnit1) []graph.EdgeIntent {
	var intents []graph.EdgeIntent

	for implNode, info := range u.impls {
		// The Implements edge runs from the implementing type's own node
		// to the trait, not from the impl block's node (spec.md §3:
		// "edge from implementing type -> trait"). That requires the
		// self type to have been declared in this same file, since an
		// edge intent's FromID must already be a concrete id; a self
		// type declared elsewhere is a cross-file case Pass 2 cannot
		// resolve (consistent with the best-effort-local design).
		if fromID, ok := selfTypeID(u, info.selfType); ok && info.trait != "" {
			intents = append(intents, graph.EdgeIntent{
				FromID: fromID,
				ToName: baseName(info.trait),
				Kind:   graph.KindImplements,
			})
		}

		if body := implNode.ChildByFieldName("body"); body != nil {
			selfType := info.selfType
			for i := 0; i < int(body.NamedChildCount()); i++ {
				m := body.NamedChild(i)
				if m.Type() == "function_item" {
					walkFunctionForIntents(m, pf.Source, methodIdentity(m, pf.Source, selfType), &intents)
					emitSignatureUses(m, pf.Source, methodIdentity(m, pf.Source, selfType), &intents)
				}
			}
		}
	}

	walkTopLevelForIntents(pf.Tree.RootNode(), pf.Source, &intents)

	return intents
}

// selfTypeID looks up the node this file's Pass 1 created for a bare
// type name (the self type of an impl block), matching Struct or Enum
// kinds since those are the only kinds an inherent/trait impl targets.
func selfTypeID(u fileUnit1, name string) (uint64, bool) {
	base := baseName(name)
	for _, n := range u.nodes {
		if n.Name == base && (n.Kind == graph.KindStruct || n.Kind == graph.KindEnum) {
			return n.ID, true
		}
	}
	return 0, false
}

func methodIdentity(n *sitter.Node, src []byte, selfType string) uint64 {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return 0
	}
	methodName := nodeText(nameNode, src)
	qualified := selfType + "::" + methodName
	sig := collapseSpace(visibilityPrefix(n, src) + signatureUpTo(n, src))
	sig = strings.Replace(sig, "fn "+methodName, "fn "+qualified, 1)
	return identity.IDOf(sig)
}

func walkTopLevelForIntents(n *sitter.Node, src []byte, intents *[]graph.EdgeIntent) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "function_item":
			fnID := functionIdentity(child, src)
			walkFunctionForIntents(child, src, fnID, intents)
			emitSignatureUses(child, src, fnID, intents)
		case "trait_item":
			if body := child.ChildByFieldName("body"); body != nil {
				for j := 0; j < int(body.NamedChildCount()); j++ {
					m := body.NamedChild(j)
					if m.Type() == "function_item" || m.Type() == "function_signature_item" {
						emitSignatureUses(m, src, functionIdentity(m, src), intents)
					}
				}
			}
		case "struct_item":
			emitFieldUses(child, src, identity.IDOf(collapseSpace(visibilityPrefix(child, src)+structSignature(child, src))), intents)
		case "enum_item":
			emitVariantUses(child, src, identity.IDOf(collapseSpace(visibilityPrefix(child, src)+structSignature(child, src))), intents)
		case "mod_item":
			if body := child.ChildByFieldName("body"); body != nil {
				walkTopLevelForIntents(body, src, intents)
			}
		}
	}
}

func functionIdentity(n *sitter.Node, src []byte) uint64 {
	sig := collapseSpace(visibilityPrefix(n, src) + signatureUpTo(n, src))
	return identity.IDOf(sig)
}

// walkFunctionForIntents walks a function/method's body for call
// expressions, emitting a Calls intent from callerID for each callee
// name that isn't a recognized standard-library/trait method.
func walkFunctionForIntents(n *sitter.Node, src []byte, callerID uint64, intents *[]graph.EdgeIntent) {
	body := n.ChildByFieldName("body")
	if body == nil || callerID == 0 {
		return
	}
	walkCalls(body, src, callerID, intents)
}

func walkCalls(n *sitter.Node, src []byte, callerID uint64, intents *[]graph.EdgeIntent) {
	if n == nil {
		return
	}
	if n.Type() == "call_expression" {
		if callee := calleeName(n, src); callee != "" && !rustBuiltinCallees[callee] {
			*intents = append(*intents, graph.EdgeIntent{FromID: callerID, ToName: callee, Kind: graph.KindCalls})
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkCalls(n.NamedChild(i), src, callerID, intents)
	}
}

func calleeName(n *sitter.Node, src []byte) string {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return nodeText(fn, src)
	case "field_expression":
		field := fn.ChildByFieldName("field")
		return nodeText(field, src)
	case "scoped_identifier":
		text := nodeText(fn, src)
		parts := strings.Split(text, "::")
		return parts[len(parts)-1]
	default:
		return ""
	}
}

// emitSignatureUses scans a function/method's parameter list and return
// type for type references, emitting a Uses intent from the function to
// each referenced type name.
func emitSignatureUses(n *sitter.Node, src []byte, fromID uint64, intents *[]graph.EdgeIntent) {
	if fromID == 0 {
		return
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for _, name := range typeNamesIn(params, src) {
			*intents = append(*intents, graph.EdgeIntent{FromID: fromID, ToName: name, Kind: graph.KindUses})
		}
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		for _, name := range typeNamesIn(ret, src) {
			*intents = append(*intents, graph.EdgeIntent{FromID: fromID, ToName: name, Kind: graph.KindUses})
		}
	}
}

func emitFieldUses(n *sitter.Node, src []byte, fromID uint64, intents *[]graph.EdgeIntent) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		field := body.NamedChild(i)
		if field.Type() != "field_declaration" {
			continue
		}
		if t := field.ChildByFieldName("type"); t != nil {
			for _, name := range typeNamesIn(t, src) {
				*intents = append(*intents, graph.EdgeIntent{FromID: fromID, ToName: name, Kind: graph.KindUses})
			}
		}
	}
}

func emitVariantUses(n *sitter.Node, src []byte, fromID uint64, intents *[]graph.EdgeIntent) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		variant := body.NamedChild(i)
		if variant.Type() != "enum_variant" {
			continue
		}
		for j := 0; j < int(variant.NamedChildCount()); j++ {
			field := variant.NamedChild(j)
			if field.Type() == "field_declaration_list" || field.Type() == "ordered_field_declaration_list" {
				for _, name := range typeNamesIn(field, src) {
					*intents = append(*intents, graph.EdgeIntent{FromID: fromID, ToName: name, Kind: graph.KindUses})
				}
			}
		}
	}
}

// typeNamesIn recursively collects bare type_identifier names under n,
// the base name a Uses edge resolves against. Every type identifier is
// collected, so Vec<Foo> contributes both "Vec" and "Foo"; the outer
// container is almost always a standard-library type that is not in
// name_map, so its intent is dropped at resolution time.
func typeNamesIn(n *sitter.Node, src []byte) []string {
	var names []string
	var walk func(*sitter.Node)
	walk = func(x *sitter.Node) {
		switch x.Type() {
		case "type_identifier", "scoped_type_identifier":
			names = append(names, baseName(nodeText(x, src)))
		}
		for i := 0; i < int(x.NamedChildCount()); i++ {
			walk(x.NamedChild(i))
		}
	}
	walk(n)
	return names
}

func baseName(s string) string {
	s = collapseSpace(s)
	if idx := strings.LastIndex(s, "::"); idx >= 0 {
		s = s[idx+2:]
	}
	return s
}
