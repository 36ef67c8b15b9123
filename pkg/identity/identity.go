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

// Package identity derives the stable 64-bit node identifiers used
// throughout the Interface Signature Graph. An identity is always a pure
// function of a canonical string: same string in, same id out, on any
// machine, in any process.
package identity

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// IDOf hashes a canonical signature string into a 64-bit node identity.
// Two nodes with the same canonical string collide by design: the caller
// is responsible for treating that as "this is the same entity" rather
// than a hash accident, since xxHash64's collision probability at graph
// scale is negligible compared to the cost of a heavier hash.
func IDOf(canonical string) uint64 {
	return xxhash.Sum64String(canonical)
}

// CanonicalImpl builds the canonical string for an impl block, used as
// the input to IDOf when a node's kind is Impl. selfType is the type the
// impl is for (e.g. "User" or "Foo<T>"); trait is the trait being
// implemented, or empty for an inherent impl.
//
// Golden form: "impl <Type> for <Trait>" when trait is non-empty,
// "impl <Type>" otherwise. Both operands are taken verbatim as they
// appear in source (generics included) with surrounding whitespace
// collapsed to single spaces.
func CanonicalImpl(selfType, trait string) string {
	selfType = collapseSpace(selfType)
	trait = collapseSpace(trait)
	if trait == "" {
		return "impl " + selfType
	}
	return "impl " + selfType + " for " + trait
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
