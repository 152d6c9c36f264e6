package managers

import "errors"

var (
	// ErrConfiguration is returned for malformed term descriptors at
	// manager preparation time
	ErrConfiguration = errors.New("invalid manager configuration")
	// ErrNameNotFound is returned by term lookups with an unknown name
	ErrNameNotFound = errors.New("term name not found")
	// ErrNotRegistered is returned when a term function key has no
	// registry entry
	ErrNotRegistered = errors.New("term function not registered")
)
