package engine

import "errors"

// ErrSocketInit is returned by Play when the UDP socket cannot be
// acquired. It is the only error condition that aborts a run before
// any pin is emitted; every other failure in the taxonomy is absorbed
// into the returned PlayReport's counters and a logged line.
var ErrSocketInit = errors.New("engine: socket initialisation failed")
