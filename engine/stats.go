package engine

import (
	"math"

	"github.com/ruiseixasm/talkiedispatch/ingest"
)

// delayStats holds the five statistics C7 derives from a processed
// pin list's recorded delays. All five remain zero for an empty list.
type delayStats struct {
	total   float64
	maximum float64
	minimum float64
	average float64
	sd      float64
}

func computeDelayStats(pins []ingest.Pin) delayStats {
	n := len(pins)
	if n == 0 {
		return delayStats{}
	}

	var stats delayStats
	stats.maximum = pins[0].DelayMs
	stats.minimum = pins[0].DelayMs
	for _, p := range pins {
		stats.total += p.DelayMs
		if p.DelayMs > stats.maximum {
			stats.maximum = p.DelayMs
		}
		if p.DelayMs < stats.minimum {
			stats.minimum = p.DelayMs
		}
	}
	stats.average = stats.total / float64(n)

	var sumSquares float64
	for _, p := range pins {
		diff := p.DelayMs - stats.average
		sumSquares += diff * diff
	}
	stats.sd = math.Sqrt(sumSquares / float64(n))

	return stats
}
