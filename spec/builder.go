package spec

// Builder declares a Tree through nested Describe blocks, the same shape an
// external loader would produce. It is not safe for concurrent use; declare
// the whole tree from one goroutine, then call Build.
type Builder struct {
	root *Context
	cur  *Context
}

// NewBuilder returns a Builder with an empty root context.
func NewBuilder() *Builder {
	root := &Context{}
	return &Builder{root: root, cur: root}
}

// Describe opens a nested context, runs body to declare its contents, and
// closes it again.
func (b *Builder) Describe(description string, body func()) {
	child := &Context{
		Description: description,
		parent:      b.cur,
	}
	b.cur.Children = append(b.cur.Children, child)

	prev := b.cur
	b.cur = child
	if body != nil {
		body()
	}
	b.cur = prev
}

// It declares a spec in the current context. A nil action declares a pending
// spec.
func (b *Builder) It(description string, action Action) {
	b.cur.Specs = append(b.cur.Specs, &Spec{
		Description: description,
		Action:      action,
	})
}

// XIt declares a skipped spec. Its action never runs.
func (b *Builder) XIt(description string, action Action) {
	b.cur.Specs = append(b.cur.Specs, &Spec{
		Description: description,
		Action:      action,
		Skipped:     true,
	})
}

// FIt declares a focused spec. If any spec in the tree is focused, only
// focused specs execute.
func (b *Builder) FIt(description string, action Action) {
	b.cur.Specs = append(b.cur.Specs, &Spec{
		Description: description,
		Action:      action,
		Focused:     true,
	})
}

// BeforeAll declares a hook that fires once per run, before the first spec
// executed under the current context.
func (b *Builder) BeforeAll(h Hook) {
	b.cur.Hooks.BeforeAll = append(b.cur.Hooks.BeforeAll, h)
}

// AfterAll declares a hook that fires once per run, after the last spec
// executed under the current context.
func (b *Builder) AfterAll(h Hook) {
	b.cur.Hooks.AfterAll = append(b.cur.Hooks.AfterAll, h)
}

// BeforeEach declares a hook that fires before every spec under the current
// context.
func (b *Builder) BeforeEach(h Hook) {
	b.cur.Hooks.BeforeEach = append(b.cur.Hooks.BeforeEach, h)
}

// AfterEach declares a hook that fires after every spec under the current
// context.
func (b *Builder) AfterEach(h Hook) {
	b.cur.Hooks.AfterEach = append(b.cur.Hooks.AfterEach, h)
}

// Build returns the declared tree. The tree must not be mutated afterwards.
func (b *Builder) Build() *Tree {
	return &Tree{Root: b.root}
}
