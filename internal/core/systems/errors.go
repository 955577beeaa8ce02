package systems

import "errors"

var (
	// ErrNotQualified is returned by AddEntity when the entity is dead or lacks a masked component.
	ErrNotQualified = errors.New("entity does not qualify for system")
	ErrNilEntity    = errors.New("entity is nil")
	ErrNilSystem    = errors.New("system is nil")
	ErrEntityExists = errors.New("entity already registered")
	ErrSystemExists = errors.New("system already registered")
	// ErrTickAborted wraps the first system error of a registry tick.
	ErrTickAborted = errors.New("tick aborted")
)
