package schedule

import "codeberg.org/ccs/datalogd/internal/sensor"

// Recorder turns one due collection into an append write, rotating the
// descriptor's output file when its rollover budget is spent.
type Recorder interface {
	Record(d *Descriptor, smp sensor.Sample) error
}
