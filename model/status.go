package model

// Status is the terminal outcome of a single spec.
type Status uint8

const (
	StatusPassed Status = iota
	StatusFailed
	StatusPending
	StatusSkipped
)

var statusNames = map[Status]string{
	StatusPassed:  "passed",
	StatusFailed:  "failed",
	StatusPending: "pending",
	StatusSkipped: "skipped",
}

// statusSymbols maps each status to the glyph presentation layers use.
var statusSymbols = map[Status]string{
	StatusPassed:  "✓",
	StatusFailed:  "✗",
	StatusPending: "•",
	StatusSkipped: "-",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Symbol returns the display glyph for the status.
func (s Status) Symbol() string {
	if sym, ok := statusSymbols[s]; ok {
		return sym
	}
	return "?"
}
