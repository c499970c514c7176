// Package depgraph maps spec files to their load-time dependencies and
// referenced namespaces, and answers which spec files a changed path set
// affects.
package depgraph

import (
	"sort"
	"sync"
)

// SpecDependency describes one spec file's direct inputs. LoadDependencies
// are expected to be fully flattened by the producer; the graph does not
// compute a transitive closure.
type SpecDependency struct {
	// SpecFile is the path of the spec file itself
	SpecFile string
	// LoadDependencies are the files pulled in when the spec loads
	LoadDependencies []string
	// Namespaces are the symbolic module references the spec uses
	Namespaces []string
}

type entry struct {
	deps       map[string]struct{}
	namespaces map[string]struct{}
}

// Graph owns the spec-file dependency mapping plus the reverse index from
// source files to namespaces. It is safe for concurrent use.
type Graph struct {
	mu          sync.RWMutex
	specs       map[string]*entry
	namespaceOf map[string]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		specs:       make(map[string]*entry),
		namespaceOf: make(map[string]string),
	}
}

// AddSpec registers a spec file's dependencies. Each spec file has exactly
// one entry; adding the same file again replaces the previous entry.
func (g *Graph) AddSpec(dep SpecDependency) {
	e := &entry{
		deps:       make(map[string]struct{}, len(dep.LoadDependencies)),
		namespaces: make(map[string]struct{}, len(dep.Namespaces)),
	}
	for _, d := range dep.LoadDependencies {
		e.deps[d] = struct{}{}
	}
	for _, ns := range dep.Namespaces {
		e.namespaces[ns] = struct{}{}
	}

	g.mu.Lock()
	g.specs[dep.SpecFile] = e
	g.mu.Unlock()
}

// AddNamespaceMapping records that sourceFile belongs to namespace. A source
// file maps to one namespace; one namespace may span many source files.
func (g *Graph) AddNamespaceMapping(sourceFile, namespace string) {
	g.mu.Lock()
	g.namespaceOf[sourceFile] = namespace
	g.mu.Unlock()
}

// Dependencies returns the sorted load dependencies of a spec file, or nil if
// the spec file is unknown.
func (g *Graph) Dependencies(specFile string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.specs[specFile]
	if !ok {
		return nil
	}
	return sortedKeys(e.deps)
}

// Namespaces returns the sorted namespaces referenced by a spec file, or nil
// if the spec file is unknown.
func (g *Graph) Namespaces(specFile string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.specs[specFile]
	if !ok {
		return nil
	}
	return sortedKeys(e.namespaces)
}

// SpecFiles returns all registered spec files, sorted.
func (g *Graph) SpecFiles() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	files := make([]string, 0, len(g.specs))
	for f := range g.specs {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// AffectedSpecs returns the sorted set of spec files affected by the changed
// paths. A spec is affected if a changed path is the spec file itself, one of
// its load dependencies, or a source file whose namespace the spec
// references. Unrelated paths contribute nothing.
func (g *Graph) AffectedSpecs(changed []string) []string {
	changedSet := make(map[string]struct{}, len(changed))
	for _, p := range changed {
		changedSet[p] = struct{}{}
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	changedNamespaces := make(map[string]struct{})
	for p := range changedSet {
		if ns, ok := g.namespaceOf[p]; ok {
			changedNamespaces[ns] = struct{}{}
		}
	}

	affected := make(map[string]struct{})
	for file, e := range g.specs {
		if _, ok := changedSet[file]; ok {
			affected[file] = struct{}{}
			continue
		}
		if intersects(e.deps, changedSet) {
			affected[file] = struct{}{}
			continue
		}
		if intersects(e.namespaces, changedNamespaces) {
			affected[file] = struct{}{}
		}
	}
	return sortedKeys(affected)
}

func intersects(set, other map[string]struct{}) bool {
	// iterate the smaller side
	if len(other) < len(set) {
		set, other = other, set
	}
	for k := range set {
		if _, ok := other[k]; ok {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
