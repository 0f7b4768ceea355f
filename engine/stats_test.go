package engine

import (
	"math"
	"testing"

	"github.com/ruiseixasm/talkiedispatch/ingest"
)

func TestComputeDelayStatsEmpty(t *testing.T) {
	stats := computeDelayStats(nil)
	if stats != (delayStats{}) {
		t.Errorf("stats = %+v, want all zero", stats)
	}
}

func TestComputeDelayStatsNonEmpty(t *testing.T) {
	pins := []ingest.Pin{
		{DelayMs: 10},
		{DelayMs: 20},
		{DelayMs: 30},
	}
	stats := computeDelayStats(pins)

	if stats.total != 60 {
		t.Errorf("total = %v, want 60", stats.total)
	}
	if stats.maximum != 30 {
		t.Errorf("maximum = %v, want 30", stats.maximum)
	}
	if stats.minimum != 10 {
		t.Errorf("minimum = %v, want 10", stats.minimum)
	}
	if stats.average != 20 {
		t.Errorf("average = %v, want 20", stats.average)
	}

	wantSD := math.Sqrt((100.0 + 0 + 100.0) / 3.0)
	if math.Abs(stats.sd-wantSD) > 1e-9 {
		t.Errorf("sd = %v, want %v", stats.sd, wantSD)
	}
}
