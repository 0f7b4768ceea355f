package engine

import (
	"time"

	"github.com/google/uuid"
)

// RunSession is the identity of a single Play call: a fresh uuid and
// the wall-clock instant it began, carried through log lines and
// attached to the returned PlayReport so a status-surface reader can
// correlate the two.
type RunSession struct {
	ID        string
	StartedAt time.Time
	FileCount int
	Verbose   bool
}

func newSession(verbose bool) RunSession {
	return RunSession{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Verbose:   verbose,
	}
}
