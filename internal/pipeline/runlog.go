package pipeline

import "fmt"

// RunLog accumulates the ordered, human-readable log returned to the caller
// at the end of a run. It is append-only and not persisted.
type RunLog struct {
	lines []string
}

// NewRunLog creates an empty RunLog.
func NewRunLog() *RunLog {
	return &RunLog{}
}

// Addf appends a formatted line.
func (l *RunLog) Addf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// Lines returns the accumulated lines in append order.
func (l *RunLog) Lines() []string {
	return l.lines
}
