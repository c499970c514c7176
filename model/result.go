package model

import (
	"strings"
	"time"
)

// Failure captures the error that failed a spec or one of its hooks.
type Failure struct {
	// Message is the rendered error message
	Message string `json:"message"`
	// Stack is the goroutine stack at the point of a recovered panic, if any
	Stack string `json:"stack,omitempty"`
}

// SpecResult is the immutable outcome of one declared spec.
// It snapshots the context path instead of referencing live tree nodes.
type SpecResult struct {
	// Description of the spec as declared
	Description string `json:"description"`
	// ContextPath is the chain of context descriptions from the outermost in
	ContextPath []string `json:"context_path,omitempty"`
	// Index is the declaration index of the spec across the whole run
	Index int `json:"index"`
	// Status is the terminal outcome
	Status Status `json:"status"`
	// Duration of hook chains plus the spec action
	Duration time.Duration `json:"duration"`
	// Failure is set when Status is StatusFailed
	Failure *Failure `json:"failure,omitempty"`
}

// FullDescription joins the context path and the spec description.
func (r SpecResult) FullDescription() string {
	if len(r.ContextPath) == 0 {
		return r.Description
	}
	return strings.Join(r.ContextPath, " ") + " " + r.Description
}
