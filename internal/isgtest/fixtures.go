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

package isgtest

import (
	"testing"

	"github.com/kraklabs/isg/pkg/graph"
	"github.com/kraklabs/isg/pkg/ingestion"
)

// SampleBundle is a small two-file Rust code bundle whose edges are
// Circle Implements Shape and describe Uses Circle. It yields no Calls
// edge: the c.area() call sits inside format!, whose arguments are not
// parsed as expressions, and String is not declared in the bundle.
const SampleBundle = `FILE: src/shapes.rs
pub trait Shape {
    fn area(&self) -> f64;
}

FILE: src/circle.rs
pub struct Circle {
    radius: f64,
}

impl Shape for Circle {
    fn area(&self) -> f64 {
        std::f64::consts::PI * self.radius * self.radius
    }
}

pub fn describe(c: &Circle) -> String {
    format!("area = {}", c.area())
}
`

// SeedStore ingests SampleBundle into a fresh Graph Store and returns
// it, failing the test immediately on any ingestion error.
func SeedStore(t *testing.T) *graph.Store {
	t.Helper()

	store := graph.New()
	p := ingestion.NewPipeline(store, nil)
	if _, err := p.Ingest(t.Context(), SampleBundle); err != nil {
		t.Fatalf("isgtest: failed to seed store: %v", err)
	}
	return store
}
