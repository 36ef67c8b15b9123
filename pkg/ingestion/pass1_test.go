// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isg/pkg/graph"
	"github.com/kraklabs/isg/pkg/identity"
)

const fixtureSource = `
pub trait Greeter {
    fn greet(&self) -> String;
}

pub struct Person {
    name: String,
}

pub enum Shape {
    Circle(f64),
    Square(f64),
}

impl Greeter for Person {
    fn greet(&self) -> String {
        self.name.clone()
    }
}

impl Person {
    pub fn new(name: String) -> Person {
        Person { name }
    }
}

pub const MAX_USERS: u32 = 100;
pub static VERSION: &str = "1.0";

macro_rules! log_info {
    ($msg:expr) => { println!("{}", $msg) };
}

pub fn main() {
    let p = Person::new("Ada".to_string());
    let greeting = p.greet();
    println!("{}", greeting);
}
`

func parseFixture(t *testing.T) fileUnit1 {
	t.Helper()
	p := NewRustParser(nil)
	pf, err := p.Parse(context.Background(), "lib.rs", fixtureSource)
	require.NoError(t, err)
	t.Cleanup(pf.Close)
	require.False(t, pf.HasErrors)
	return extractNodes(pf)
}

func findNode(nodes []graph.Node, name string, kind graph.NodeKind) (graph.Node, bool) {
	for _, n := range nodes {
		if n.Name == name && n.Kind == kind {
			return n, true
		}
	}
	return graph.Node{}, false
}

func TestExtractNodesFindsEachTopLevelKind(t *testing.T) {
	u := parseFixture(t)

	trait, ok := findNode(u.nodes, "Greeter", graph.KindTrait)
	require.True(t, ok)
	assert.Contains(t, trait.Signature, "pub trait Greeter")

	strct, ok := findNode(u.nodes, "Person", graph.KindStruct)
	require.True(t, ok)
	assert.Contains(t, strct.Signature, "pub struct Person")

	enum_, ok := findNode(u.nodes, "Shape", graph.KindEnum)
	require.True(t, ok)
	assert.Contains(t, enum_.Signature, "pub enum Shape")

	_, ok = findNode(u.nodes, "MAX_USERS", graph.KindConstant)
	require.True(t, ok)

	_, ok = findNode(u.nodes, "VERSION", graph.KindStatic)
	require.True(t, ok)

	_, ok = findNode(u.nodes, "log_info", graph.KindMacro)
	require.True(t, ok)

	_, ok = findNode(u.nodes, "main", graph.KindFunction)
	require.True(t, ok)
}

func TestExtractNodesSignaturesExcludeBodies(t *testing.T) {
	u := parseFixture(t)
	main, ok := findNode(u.nodes, "main", graph.KindFunction)
	require.True(t, ok)
	assert.NotContains(t, main.Signature, "Person::new")
	assert.NotContains(t, main.Signature, "println")
}

func TestExtractNodesImplBlocksUseCanonicalIdentity(t *testing.T) {
	u := parseFixture(t)

	var implNames []string
	for _, n := range u.nodes {
		if n.Kind == graph.KindImpl {
			implNames = append(implNames, n.Name)
		}
	}
	assert.Contains(t, implNames, "impl Person for Greeter")
	assert.Contains(t, implNames, "impl Person")

	wantID := identity.IDOf(identity.CanonicalImpl("Person", "Greeter"))
	found := false
	for _, n := range u.nodes {
		if n.Kind == graph.KindImpl && n.ID == wantID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExtractNodesQualifiesImplMethods(t *testing.T) {
	u := parseFixture(t)
	_, ok := findNode(u.nodes, "Person::new", graph.KindFunction)
	assert.True(t, ok)
	_, ok = findNode(u.nodes, "Person::greet", graph.KindFunction)
	assert.True(t, ok)
}

func TestExtractNodesRecordsImplInfoForPass2(t *testing.T) {
	u := parseFixture(t)
	require.Len(t, u.impls, 2)
	var sawTrait bool
	for _, info := range u.impls {
		if info.trait == "Greeter" {
			sawTrait = true
			assert.Equal(t, "Person", info.selfType)
		}
	}
	assert.True(t, sawTrait)
}
