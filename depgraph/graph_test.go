package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildGraph() *Graph {
	g := New()
	g.AddSpec(SpecDependency{
		SpecFile:         "specs/a.spec",
		LoadDependencies: []string{"lib/helper.csx"},
		Namespaces:       []string{"App.Services"},
	})
	g.AddSpec(SpecDependency{
		SpecFile:   "specs/b.spec",
		Namespaces: []string{"App.Models"},
	})
	g.AddNamespaceMapping("src/service.cs", "App.Services")
	g.AddNamespaceMapping("src/model.cs", "App.Models")
	g.AddNamespaceMapping("src/other.cs", "App.Other")
	return g
}

func TestAffectedByDependency(t *testing.T) {
	g := buildGraph()
	assert.Equal(t, []string{"specs/a.spec"}, g.AffectedSpecs([]string{"lib/helper.csx"}))
}

func TestAffectedByOwnFile(t *testing.T) {
	g := buildGraph()
	assert.Equal(t, []string{"specs/b.spec"}, g.AffectedSpecs([]string{"specs/b.spec"}))
}

func TestAffectedByNamespace(t *testing.T) {
	g := buildGraph()
	assert.Equal(t, []string{"specs/a.spec"}, g.AffectedSpecs([]string{"src/service.cs"}))
	assert.Equal(t, []string{"specs/b.spec"}, g.AffectedSpecs([]string{"src/model.cs"}))
}

func TestUnrelatedChangeAffectsNothing(t *testing.T) {
	g := buildGraph()
	assert.Empty(t, g.AffectedSpecs([]string{"src/other.cs"}))
	assert.Empty(t, g.AffectedSpecs([]string{"README.md"}))
	assert.Empty(t, g.AffectedSpecs(nil))
}

func TestAffectedOutputSorted(t *testing.T) {
	g := buildGraph()
	got := g.AffectedSpecs([]string{"specs/b.spec", "lib/helper.csx", "src/model.cs"})
	assert.Equal(t, []string{"specs/a.spec", "specs/b.spec"}, got)
}

func TestAddSpecReplacesEntry(t *testing.T) {
	g := buildGraph()
	g.AddSpec(SpecDependency{
		SpecFile:         "specs/a.spec",
		LoadDependencies: []string{"lib/other.csx"},
	})

	assert.Equal(t, []string{"lib/other.csx"}, g.Dependencies("specs/a.spec"))
	assert.Empty(t, g.AffectedSpecs([]string{"lib/helper.csx"}))
	assert.Equal(t, []string{"specs/a.spec"}, g.AffectedSpecs([]string{"lib/other.csx"}))
}

func TestLookupsOnUnknownSpec(t *testing.T) {
	g := New()
	assert.Nil(t, g.Dependencies("nope.spec"))
	assert.Nil(t, g.Namespaces("nope.spec"))
}

func TestSpecFilesSorted(t *testing.T) {
	g := buildGraph()
	assert.Equal(t, []string{"specs/a.spec", "specs/b.spec"}, g.SpecFiles())
}
