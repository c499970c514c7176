package spec

// Level is the one-shot setup hook set of a single context within a composed
// setup chain.
type Level struct {
	Owner *Context
	Hooks []Hook
}

// Entry is one each-hook in a composed chain, tagged with the depth of the
// context that declared it so teardown can be paired with partially completed
// setup.
type Entry struct {
	Hook  Hook
	Depth int
}

// Composer derives ordered hook chains for one run. It tracks which contexts
// have reached their one-shot setup boundary, so it is stateful: a new run
// needs a fresh Composer.
//
// The composer builds chains as explicit ordered lists at traversal time
// rather than nesting closures, which keeps teardown after a partial setup
// failure tractable.
type Composer struct {
	attempted map[*Context]bool
	torndown  map[*Context]bool
}

// NewComposer returns a Composer with no boundaries reached.
func NewComposer() *Composer {
	return &Composer{
		attempted: make(map[*Context]bool),
		torndown:  make(map[*Context]bool),
	}
}

// Setup returns one Level per ancestor of c (root first, c last) whose
// one-shot setup boundary has not yet been reached. Levels for contexts
// without BeforeAll hooks are included with an empty hook list so the caller
// can still mark the boundary via Attempted.
func (m *Composer) Setup(c *Context) []Level {
	var levels []Level
	for _, ctx := range ancestry(c) {
		if m.attempted[ctx] {
			continue
		}
		levels = append(levels, Level{Owner: ctx, Hooks: ctx.Hooks.BeforeAll})
	}
	return levels
}

// Attempted marks c's one-shot setup boundary as reached. Teardown for c is
// only composed once its boundary was reached.
func (m *Composer) Attempted(c *Context) {
	m.attempted[c] = true
}

// Reached reports whether c's setup boundary was reached during this run.
func (m *Composer) Reached(c *Context) bool {
	return m.attempted[c]
}

// BeforeChain returns the per-spec setup hooks for a spec declared in c:
// every ancestor's BeforeEach hooks, outer contexts first.
func (m *Composer) BeforeChain(c *Context) []Entry {
	var chain []Entry
	for _, ctx := range ancestry(c) {
		for _, h := range ctx.Hooks.BeforeEach {
			chain = append(chain, Entry{Hook: h, Depth: ctx.Depth()})
		}
	}
	return chain
}

// AfterChain returns the per-spec teardown hooks for a spec declared in c:
// every ancestor's AfterEach hooks, innermost context first.
func (m *Composer) AfterChain(c *Context) []Entry {
	anc := ancestry(c)
	var chain []Entry
	for i := len(anc) - 1; i >= 0; i-- {
		ctx := anc[i]
		for _, h := range ctx.Hooks.AfterEach {
			chain = append(chain, Entry{Hook: h, Depth: ctx.Depth()})
		}
	}
	return chain
}

// Teardown returns c's AfterAll hooks exactly once, and only if c's setup
// boundary was reached. Subsequent calls return nil.
func (m *Composer) Teardown(c *Context) []Hook {
	if !m.attempted[c] || m.torndown[c] {
		return nil
	}
	m.torndown[c] = true
	return c.Hooks.AfterAll
}

// ancestry returns the chain from the root down to c, inclusive.
func ancestry(c *Context) []*Context {
	var chain []*Context
	for n := c; n != nil; n = n.parent {
		chain = append(chain, n)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
