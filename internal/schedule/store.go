package schedule

import (
	"sort"

	"codeberg.org/ccs/datalogd/internal/errors"
	"codeberg.org/ccs/datalogd/internal/state"
)

// Store holds the registered descriptors, keyed by name. Iteration
// order is name-sorted so collection order is deterministic.
type Store struct {
	byName map[string]*Descriptor
	names  []string
}

func NewStore() *Store {
	return &Store{
		byName: make(map[string]*Descriptor),
	}
}

// Register adds a descriptor to the store. Duplicate names and
// non-positive periods are rejected.
func (s *Store) Register(d *Descriptor) error {
	errFactory := errors.New()

	if d.Name == "" {
		return errFactory.WithMessage(ErrInvalidDescriptor, "descriptor name is empty")
	}
	if d.Period < 1 {
		return errFactory.WithData(ErrMissingPeriod, d.Name)
	}
	if _, ok := s.byName[d.Name]; ok {
		return errFactory.WithData(ErrDuplicateSource, d.Name)
	}

	s.byName[d.Name] = d
	s.names = append(s.names, d.Name)
	sort.Strings(s.names)

	return nil
}

// Lookup returns the descriptor registered under name, if any.
func (s *Store) Lookup(name string) (*Descriptor, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// All returns the descriptors in stable name order.
func (s *Store) All() []*Descriptor {
	out := make([]*Descriptor, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.byName[name])
	}

	return out
}

// Len returns the number of registered descriptors.
func (s *Store) Len() int {
	return len(s.byName)
}

// Snapshots captures the durable schedule state of every descriptor.
func (s *Store) Snapshots() []state.Snapshot {
	snapshots := make([]state.Snapshot, 0, len(s.names))
	for _, d := range s.All() {
		snapshots = append(snapshots, state.Snapshot{
			Name:          d.Name,
			ActiveFile:    d.ActiveFile,
			TickCounter:   d.TickCounter,
			RolloverCount: d.RolloverCount,
			FieldCount:    d.FieldCount,
		})
	}

	return snapshots
}

// Restore applies persisted snapshots to matching descriptors.
// Snapshots for sources no longer configured are ignored.
func (s *Store) Restore(snapshots []state.Snapshot) {
	for i := range snapshots {
		snap := &snapshots[i]
		d, ok := s.byName[snap.Name]
		if !ok {
			continue
		}
		d.ActiveFile = snap.ActiveFile
		d.TickCounter = snap.TickCounter
		d.RolloverCount = snap.RolloverCount
		d.FieldCount = snap.FieldCount
	}
}
