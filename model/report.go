package model

import "time"

// Summary aggregates result counts for one run.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
	Skipped int `json:"skipped"`
}

// SpecReport is the aggregation of all results of a run. It is built once
// after execution completes and is read-only for downstream formatters.
type SpecReport struct {
	// Results in declaration order
	Results []SpecResult `json:"results"`
	// Summary counts over Results
	Summary Summary `json:"summary"`
	// Duration of the whole run
	Duration time.Duration `json:"duration"`
}

// Failed reports whether any spec in the run failed.
func (r *SpecReport) Failed() bool {
	return r.Summary.Failed > 0
}

// Summarize counts results by status.
func Summarize(results []SpecResult) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		switch res.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusPending:
			s.Pending++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// ContextReport groups results back into the declared context shape.
type ContextReport struct {
	Description string           `json:"description,omitempty"`
	Results     []SpecResult     `json:"results,omitempty"`
	Children    []*ContextReport `json:"children,omitempty"`
}

// GroupByContext rebuilds the context hierarchy from result context paths.
// Results keep their relative order within each context.
func GroupByContext(results []SpecResult) *ContextReport {
	root := &ContextReport{}
	for _, res := range results {
		node := root
		for _, desc := range res.ContextPath {
			node = node.child(desc)
		}
		node.Results = append(node.Results, res)
	}
	return root
}

func (c *ContextReport) child(description string) *ContextReport {
	for _, ch := range c.Children {
		if ch.Description == description {
			return ch
		}
	}
	ch := &ContextReport{Description: description}
	c.Children = append(c.Children, ch)
	return ch
}
