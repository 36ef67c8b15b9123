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

// implInfo records the self-type/trait pair an impl_item declares, keyed
// by the impl node's address in the tree so Pass 2 can look it up again
// without re-walking the declaration.
type implInfo struct {
	selfType string
	trait    string
}

// fileUnit1 is the result of running Pass 1 over a single file's tree:
// the extracted nodes plus bookkeeping Pass 2 reuses to avoid re-deriving
// the same facts from the tree a second time.
type fileUnit1 struct {
	path  string
	nodes []graph.Node
	impls map[*sitter.Node]implInfo
}

// extractNodes walks a parsed file's tree and produces Pass 1's output:
// one graph.Node per top-level or nested fn/struct/enum/trait/impl/const/
// static/macro_rules! item. Bodies are never inspected here — that is
// Pass 2's job, once the global name map exists.
func extractNodes(pf *ParsedFile) fileUnit1 {
	u := fileUnit1{path: pf.Path, impls: make(map[*sitter.Node]implInfo)}
	walkDecls(pf.Tree.RootNode(), pf.Source, &u)
	return u
}

func walkDecls(n *sitter.Node, src []byte, u *fileUnit1) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "function_item":
			addFunction(child, src, u)
		case "struct_item":
			addStruct(child, src, u)
		case "trait_item":
			addTrait(child, src, u)
		case "enum_item":
			addEnum(child, src, u)
		case "impl_item":
			addImpl(child, src, u)
		case "const_item":
			addConstOrStatic(child, src, u, graph.KindConstant, "const")
		case "static_item":
			addConstOrStatic(child, src, u, graph.KindStatic, "static")
		case "macro_definition":
			addMacro(child, src, u)
		case "mod_item":
			if body := child.ChildByFieldName("body"); body != nil {
				walkDecls(body, src, u)
			}
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func visibilityPrefix(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "visibility_modifier" {
			return nodeText(c, src) + " "
		}
	}
	return ""
}

// signatureUpTo returns the source text of n truncated before its body
// field (if any), so the emitted signature never includes a function or
// trait-method's implementation.
func signatureUpTo(n *sitter.Node, src []byte) string {
	body := n.ChildByFieldName("body")
	start := n.StartByte()
	end := n.EndByte()
	if body != nil {
		end = body.StartByte()
	}
	if end > uint32(len(src)) {
		end = uint32(len(src))
	}
	if start >= end {
		return ""
	}
	return collapseSpace(string(src[start:end]))
}

func addFunction(n *sitter.Node, src []byte, u *fileUnit1) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, src)
	sig := visibilityPrefix(n, src) + signatureUpTo(n, src)
	sig = collapseSpace(sig)
	line := int(n.StartPoint().Row) + 1

	u.nodes = append(u.nodes, graph.Node{
		ID:        identity.IDOf(sig),
		Kind:      graph.KindFunction,
		Name:      name,
		Signature: sig,
		FilePath:  u.path,
		Line:      line,
	})
}

func addStruct(n *sitter.Node, src []byte, u *fileUnit1) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, src)
	sig := collapseSpace(visibilityPrefix(n, src) + structSignature(n, src))
	u.nodes = append(u.nodes, graph.Node{
		ID:        identity.IDOf(sig),
		Kind:      graph.KindStruct,
		Name:      name,
		Signature: sig,
		FilePath:  u.path,
		Line:      int(n.StartPoint().Row) + 1,
	})
}

// structSignature returns the struct's header (name + generics + where
// clause) up to but excluding its field list body, matching the same
// body-exclusion rule used for functions.
func structSignature(n *sitter.Node, src []byte) string {
	body := n.ChildByFieldName("body")
	start := n.StartByte()
	end := n.EndByte()
	if body != nil {
		end = body.StartByte()
	}
	if end > uint32(len(src)) {
		end = uint32(len(src))
	}
	if start >= end {
		return nodeText(n, src)
	}
	return string(src[start:end])
}

func addTrait(n *sitter.Node, src []byte, u *fileUnit1) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, src)
	sig := collapseSpace(visibilityPrefix(n, src) + structSignature(n, src))
	u.nodes = append(u.nodes, graph.Node{
		ID:        identity.IDOf(sig),
		Kind:      graph.KindTrait,
		Name:      name,
		Signature: sig,
		FilePath:  u.path,
		Line:      int(n.StartPoint().Row) + 1,
	})

	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			m := body.NamedChild(i)
			if m.Type() == "function_item" || m.Type() == "function_signature_item" {
				addTraitMethod(m, src, u, name)
			}
		}
	}
}

func addTraitMethod(n *sitter.Node, src []byte, u *fileUnit1, traitName string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	methodName := nodeText(nameNode, src)
	sig := collapseSpace(visibilityPrefix(n, src) + signatureUpTo(n, src))
	if sig == "" {
		sig = collapseSpace(nodeText(n, src))
	}
	u.nodes = append(u.nodes, graph.Node{
		ID:        identity.IDOf(sig),
		Kind:      graph.KindFunction,
		Name:      methodName,
		Signature: sig,
		FilePath:  u.path,
		Line:      int(n.StartPoint().Row) + 1,
	})
}

func addEnum(n *sitter.Node, src []byte, u *fileUnit1) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, src)
	sig := collapseSpace(visibilityPrefix(n, src) + structSignature(n, src))
	u.nodes = append(u.nodes, graph.Node{
		ID:        identity.IDOf(sig),
		Kind:      graph.KindEnum,
		Name:      name,
		Signature: sig,
		FilePath:  u.path,
		Line:      int(n.StartPoint().Row) + 1,
	})
}

// addImpl extracts an impl_item's self-type and optional trait name,
// synthesizes the canonical impl name/signature via identity.CanonicalImpl,
// records the (selfType, trait) pair for Pass 2's Implements-edge lookup,
// and recurses into the impl body to extract its methods as Function
// nodes qualified by the self type.
func addImpl(n *sitter.Node, src []byte, u *fileUnit1) {
	var selfType, trait string
	var hasFor bool
	var body *sitter.Node

	typeNode := n.ChildByFieldName("type")
	traitNode := n.ChildByFieldName("trait")
	body = n.ChildByFieldName("body")

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() && nodeText(c, src) == "for" {
			hasFor = true
		}
	}

	if typeNode != nil {
		selfType = collapseSpace(nodeText(typeNode, src))
	}
	if hasFor && traitNode != nil {
		trait = collapseSpace(nodeText(traitNode, src))
	}

	if selfType == "" {
		return
	}

	canonical := identity.CanonicalImpl(selfType, trait)
	u.nodes = append(u.nodes, graph.Node{
		ID:        identity.IDOf(canonical),
		Kind:      graph.KindImpl,
		Name:      canonical,
		Signature: canonical,
		FilePath:  u.path,
		Line:      int(n.StartPoint().Row) + 1,
	})
	u.impls[n] = implInfo{selfType: selfType, trait: trait}

	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			m := body.NamedChild(i)
			if m.Type() == "function_item" {
				addMethod(m, src, u, selfType)
			}
		}
	}
}

// addMethod extracts a method inside an impl block. Both its name and
// its signature are qualified with the self type ("impl Foo { fn bar(...) }"
// yields the name "Foo::bar" and a signature with "fn bar" rewritten to
// "fn Foo::bar") so that methods of the same name on different types
// never collide on identity.
func addMethod(n *sitter.Node, src []byte, u *fileUnit1, selfType string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	methodName := nodeText(nameNode, src)
	qualified := selfType + "::" + methodName
	sig := collapseSpace(visibilityPrefix(n, src) + signatureUpTo(n, src))
	sig = strings.Replace(sig, "fn "+methodName, "fn "+qualified, 1)

	u.nodes = append(u.nodes, graph.Node{
		ID:        identity.IDOf(sig),
		Kind:      graph.KindFunction,
		Name:      qualified,
		Signature: sig,
		FilePath:  u.path,
		Line:      int(n.StartPoint().Row) + 1,
	})
}

func addConstOrStatic(n *sitter.Node, src []byte, u *fileUnit1, kind graph.NodeKind, _ string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, src)
	sig := collapseSpace(visibilityPrefix(n, src) + nodeText(n, src))
	u.nodes = append(u.nodes, graph.Node{
		ID:        identity.IDOf(sig),
		Kind:      kind,
		Name:      name,
		Signature: sig,
		FilePath:  u.path,
		Line:      int(n.StartPoint().Row) + 1,
	})
}

func addMacro(n *sitter.Node, src []byte, u *fileUnit1) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, src)
	sig := collapseSpace("macro_rules! " + name)
	u.nodes = append(u.nodes, graph.Node{
		ID:        identity.IDOf(sig),
		Kind:      graph.KindMacro,
		Name:      name,
		Signature: sig,
		FilePath:  u.path,
		Line:      int(n.StartPoint().Row) + 1,
	})
}
