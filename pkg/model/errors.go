package model

import "errors"

// Fatal error kinds. NodeInfeasible, Timeout and NodeCap are recovered
// inside the driver and never surface as errors.
var (
	// ErrBadInstance marks malformed input: out-of-range dimensions, items
	// exceeding the stock plate, negative demand, duplicate lengths.
	ErrBadInstance = errors.New("bad instance")

	// ErrBackend marks an LP backend call that ended in an unrecognized
	// state. The caller aborts; current node state is logged.
	ErrBackend = errors.New("lp backend failure")

	// ErrInvalidBackend marks a pricing backend asked to run at a node
	// whose arc-constraint sets it cannot honor. Programmer error.
	ErrInvalidBackend = errors.New("pricing backend does not support arc branching")
)
