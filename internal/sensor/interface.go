package sensor

import (
	"context"
	"fmt"

	"codeberg.org/ccs/datalogd/internal/logger"
)

// Field is one labeled reading inside a sample.
type Field struct {
	Label string
	Value any
}

// Sample is the ordered set of fields produced by one collection call.
// Label set and order are fixed for the lifetime of one output file.
type Sample []Field

// Labels returns the field labels in sample order.
func (s Sample) Labels() []string {
	labels := make([]string, len(s))
	for i, f := range s {
		labels[i] = f.Label
	}

	return labels
}

// Values returns the field values stringified in sample order.
func (s Sample) Values() []string {
	values := make([]string, len(s))
	for i, f := range s {
		values[i] = fmt.Sprintf("%v", f.Value)
	}

	return values
}

// Source is the capability every sensor collaborator provides.
type Source interface {
	// Label returns the stable identifier used for binding and file naming.
	Label() string

	// Sample collects one reading. Failures are caught by the caller.
	Sample(ctx context.Context) (Sample, error)
}

// Configurable is an optional capability: sources implementing it
// receive their pass-through settings blob once at bind time.
type Configurable interface {
	Configure(settings map[string]any) error
}

// LogBinder is an optional capability: sources implementing it receive
// the process logger once at bind time.
type LogBinder interface {
	BindLogger(log *logger.Logger)
}
