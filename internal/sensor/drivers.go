package sensor

import "codeberg.org/ccs/datalogd/internal/errors"

// Built-in driver names.
const (
	DriverLoadavg = "loadavg"
	DriverMeminfo = "meminfo"
)

var builtins = map[string]func(name string) Source{
	DriverLoadavg: func(name string) Source { return &loadavgSource{name: name} },
	DriverMeminfo: func(name string) Source { return newMeminfoSource(name) },
}

// Open constructs a built-in source of the given driver kind. The
// returned source reports name as its label. Hosts embedding the core
// may bypass Open and register their own Source implementations.
func Open(driver, name string) (Source, error) {
	errFactory := errors.New()

	ctor, ok := builtins[driver]
	if !ok {
		return nil, errFactory.WithData(ErrUnknownDriver, driver)
	}

	return ctor(name), nil
}
