package main

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

// attemptRealtimePriority requests a higher scheduling priority for
// this process on a best-effort basis. There is no portable Go
// equivalent of pthread_setschedparam(SCHED_FIFO); unix.Setpriority
// is the closest available lever, and a failure here is logged, never
// fatal, matching the "best-effort, not a correctness requirement"
// rule.
func attemptRealtimePriority() {
	const highPriority = -10
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, highPriority); err != nil {
		slog.Warn("talkiedispatch: could not raise scheduling priority", "error", err)
	}
}
