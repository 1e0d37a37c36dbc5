package schedule

// Descriptor holds the schedule state of one registered sensor source.
//
// TickCounter is owned by the Scheduler; ActiveFile, RolloverCount and
// FieldCount are owned by the Recorder. Execution is single-threaded,
// so no locking guards these fields; a concurrent implementation must
// serialize access per descriptor.
type Descriptor struct {
	// Name is the stable identifier, unique within a Store. It binds
	// the descriptor to the collaborator with the matching label and
	// appears in output file names.
	Name string

	// Period is the number of ticks between collections. Must be >= 1.
	Period int

	// RolloverMax is the number of successful writes to one file
	// before rotation. Zero means rotate on every collection.
	RolloverMax int

	// Settings is a pass-through configuration blob forwarded verbatim
	// to the collaborator at bind time, never interpreted here.
	Settings map[string]any

	// TickCounter counts ticks since the last due collection.
	TickCounter int

	// RolloverCount counts successful writes to the active file.
	RolloverCount int

	// ActiveFile is the path currently receiving rows; empty until the
	// first collection.
	ActiveFile string

	// FieldCount is the arity established by the active file's header;
	// zero until the header is written or rediscovered.
	FieldCount int
}
