// Package spec defines the declared hierarchy of contexts, specification
// items and hooks consumed by the runner. Trees are built once and read-only
// during execution.
package spec

import "context"

// Action is the executable unit behind a spec or hook. Asynchronous work must
// complete before the action returns; the engine always waits and never
// schedules a unit's internals.
type Action func(ctx context.Context) error

// Hook is a setup or teardown action owned by exactly one Context.
type Hook func(ctx context.Context) error

// Spec is a single declared specification item. A spec with a nil Action is
// pending. A skipped spec never executes its action, focused or not.
type Spec struct {
	Description string
	Action      Action
	Skipped     bool
	Focused     bool
}

// Pending reports whether the spec has no action to run.
func (s *Spec) Pending() bool {
	return s.Action == nil
}

// Hooks holds the four hook lists a context may declare, each in declaration
// order.
type Hooks struct {
	BeforeAll  []Hook
	AfterAll   []Hook
	BeforeEach []Hook
	AfterEach  []Hook
}

// Context is one node in the spec tree. Children and specs keep declaration
// order. The parent link is a plain non-owning back pointer; ownership runs
// top-down from the root.
type Context struct {
	Description string
	Specs       []*Spec
	Children    []*Context
	Hooks       Hooks

	parent *Context
}

// Parent returns the enclosing context, or nil at the root.
func (c *Context) Parent() *Context {
	return c.parent
}

// Depth returns the number of ancestors above c. The root has depth 0.
func (c *Context) Depth() int {
	d := 0
	for p := c.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Path returns the context descriptions from the outermost named context down
// to c. The unnamed root is omitted.
func (c *Context) Path() []string {
	var path []string
	for n := c; n != nil; n = n.parent {
		if n.Description != "" {
			path = append(path, n.Description)
		}
	}
	// reverse into root-first order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// HasFocusedDescendants reports whether any spec in c's subtree is focused
// and not skipped.
func (c *Context) HasFocusedDescendants() bool {
	for _, s := range c.Specs {
		if s.Focused && !s.Skipped {
			return true
		}
	}
	for _, ch := range c.Children {
		if ch.HasFocusedDescendants() {
			return true
		}
	}
	return false
}

// Tree is the immutable-after-construction spec hierarchy. Exactly one root
// exists; it carries no description of its own.
type Tree struct {
	Root *Context
}

// CountSpecs returns the number of declared specs in the tree.
func (t *Tree) CountSpecs() int {
	n := 0
	t.Walk(func(c *Context) {
		n += len(c.Specs)
	})
	return n
}

// HasFocused reports whether any spec in the tree is focused. When true, the
// runner executes only focused specs.
func (t *Tree) HasFocused() bool {
	if t.Root == nil {
		return false
	}
	return t.Root.HasFocusedDescendants()
}

// Walk visits every context depth-first, parents before children, siblings in
// declaration order.
func (t *Tree) Walk(fn func(*Context)) {
	if t.Root == nil {
		return
	}
	walk(t.Root, fn)
}

func walk(c *Context, fn func(*Context)) {
	fn(c)
	for _, ch := range c.Children {
		walk(ch, fn)
	}
}
