package engine

import (
	"time"

	"github.com/ruiseixasm/talkiedispatch/discovery"
	"github.com/ruiseixasm/talkiedispatch/netsock"
	"github.com/ruiseixasm/talkiedispatch/registry"
)

// defaultDragThresholdMs is one 24-PPQ tick at 120 BPM: the tolerated
// per-pin jitter before a delay counts as unrecoverable drag, unless
// overridden via WithDragThreshold.
const defaultDragThresholdMs = 1000.0 / ((120.0 / 60.0) * 24.0)

// busyWaitThresholdMs is the point below which precisionSleep stops
// slicing with time.Sleep and busy-waits on the monotonic clock
// instead, per the hybrid timer design note. Go's scheduler already
// coalesces short sleeps similarly to the original's
// std::this_thread::sleep_for branch, so there is no finer-grained
// portable primitive to reach for here.
const busyWaitThresholdMs = 1.0

// sleepSlice is the coarse slice precisionSleep sleeps in while more
// than busyWaitThresholdMs of the target duration remains.
const sleepSlice = 100 * time.Microsecond

// precisionSleep blocks until target has elapsed since start, sleeping
// in coarse slices while comfortably early and busy-waiting the final
// stretch for sub-millisecond accuracy. Between slices, if sock and
// reg are non-nil and not every named device is resolved, it pumps
// one discovery tick — opportunistic work that must stay well under
// a millisecond or the next iteration's sleep simply shrinks to
// absorb the overrun.
func precisionSleep(target time.Duration, start time.Time, sock *netsock.Socket, reg *registry.Registry) {
	for {
		remaining := target - time.Since(start)
		if remaining <= 0 {
			return
		}
		if remaining <= time.Duration(busyWaitThresholdMs*float64(time.Millisecond)) {
			break
		}

		time.Sleep(sleepSlice)

		if sock != nil && reg != nil && !reg.AllResolved() {
			discovery.Tick(sock, reg)
		}
	}

	for time.Since(start) < target {
	}
}
