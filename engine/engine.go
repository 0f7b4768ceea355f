package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ruiseixasm/talkiedispatch/ingest"
	"github.com/ruiseixasm/talkiedispatch/netsock"
	"github.com/ruiseixasm/talkiedispatch/registry"
	"github.com/ruiseixasm/talkiedispatch/status"
)

// Engine wires the wire codec, socket, registry, ingestion pass, and
// player loop together into the single externally-callable Play
// operation, the way the teacher's GohabServer wires a Coordinator
// around a Broker and DeviceRegistry.
type Engine struct {
	opts Options
}

// NewEngine builds an Engine, applying opts over the defaults.
func NewEngine(opts ...Option) *Engine {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Engine{opts: o}
}

// Play ingests jsonText, sorts it into a play list, and emits every
// pin at its scheduled instant, compensating for accumulated drag.
// The only error this can return is ErrSocketInit; every other
// condition in the error taxonomy is absorbed into the returned
// PlayReport's counters and a logged line. The socket is acquired
// here and released on every return path via defer.
func (e *Engine) Play(ctx context.Context, jsonText []byte, delayMs int) (PlayReport, error) {
	sess := newSession(e.opts.verbose)
	logger := slog.Default().With("session_id", sess.ID)
	logger.Info("talkiedispatch: play starting")

	sock, err := netsock.Initialise(e.opts.localPort)
	if err != nil {
		return PlayReport{SessionID: sess.ID}, fmt.Errorf("%w: %v", ErrSocketInit, err)
	}
	defer sock.Close()

	reg := registry.New()

	var statusSrv *status.Server
	if e.opts.statusAddr != "" {
		statusSrv = status.NewServer(e.opts.statusAddr, reg)
		if err := statusSrv.Start(ctx); err != nil {
			logger.Warn("talkiedispatch: status surface failed to start", "error", err)
			statusSrv = nil
		} else {
			defer statusSrv.Shutdown()
		}
	}

	ingestStart := time.Now()
	result := ingest.Ingest(jsonText, delayMs, reg, sock)
	jsonProcessingMs := float64(time.Since(ingestStart).Microseconds()) / 1000.0

	report := PlayReport{
		SessionID:        sess.ID,
		StartedAt:        sess.StartedAt.Format(time.RFC3339),
		FileCount:        result.FileCount,
		JSONProcessingMs: jsonProcessingMs,
		TotalValidated:   result.TotalValidated,
		TotalIncorrect:   result.TotalIncorrect,
	}

	if len(result.Pins) == 0 {
		logger.Info("talkiedispatch: empty play list", "validated", report.TotalValidated, "incorrect", report.TotalIncorrect)
		if statusSrv != nil {
			statusSrv.PublishReport(toStatusReport(report))
		}
		return report, nil
	}

	sortPinsByTime(result.Pins)
	report.DurationSec = int(math.Round(result.Pins[len(result.Pins)-1].TimeMs / 1000))

	playingStart := time.Now()
	totalDragMs := 0.0

	for i := range result.Pins {
		pin := &result.Pins[i]

		target := time.Duration(math.Round((pin.TimeMs+totalDragMs)*1000)) * time.Microsecond
		precisionSleep(target, playingStart, sock, reg)

		pluckElapsed := time.Since(playingStart)
		transmitPin(sock, pin)

		delayMs := float64(pluckElapsed.Microseconds()-target.Microseconds()) / 1000.0
		pin.DelayMs = delayMs
		if delayMs > e.opts.dragThresholdMs {
			totalDragMs += delayMs - e.opts.dragThresholdMs
		}

		logger.Debug("talkiedispatch: pin sent", "pin_id", i, "device", deviceLabel(pin.Device), "delay_ms", delayMs)

		if statusSrv != nil {
			statusSrv.PublishPin(status.PinEvent{
				PinID:   i,
				Device:  deviceLabel(pin.Device),
				TimeMs:  pin.TimeMs,
				DelayMs: delayMs,
			})
		}
	}

	stats := computeDelayStats(result.Pins)
	report.TotalDragMs = totalDragMs
	report.TotalDelayMs = stats.total
	report.MaximumDelayMs = stats.maximum
	report.MinimumDelayMs = stats.minimum
	report.AverageDelayMs = stats.average
	report.SDDelayMs = stats.sd

	logger.Info("talkiedispatch: play complete",
		"validated", report.TotalValidated,
		"incorrect", report.TotalIncorrect,
		"drag_ms", report.TotalDragMs,
		"average_delay_ms", report.AverageDelayMs,
	)

	if statusSrv != nil {
		statusSrv.PublishReport(toStatusReport(report))
	}

	return report, nil
}

// sortPinsByTime sorts pins by scheduled time ascending, stably: equal
// times preserve ingestion order, with no secondary key.
func sortPinsByTime(pins []ingest.Pin) {
	sort.SliceStable(pins, func(i, j int) bool {
		return pins[i].TimeMs < pins[j].TimeMs
	})
}

func transmitPin(sock *netsock.Socket, pin *ingest.Pin) {
	if pin.Device.Resolved() {
		sock.SendUnicast(pin.Device.IP(), pin.Device.Port, pin.Payload)
		return
	}
	sock.SendBroadcast(pin.Device.Port, pin.Payload)
}

func deviceLabel(d *registry.Device) string {
	if d.ByChannel {
		return fmt.Sprintf("channel:%d", d.Channel)
	}
	return d.Name
}

func toStatusReport(r PlayReport) status.Report {
	return status.Report{
		SessionID:        r.SessionID,
		StartedAt:        r.StartedAt,
		FileCount:        r.FileCount,
		DurationSec:      r.DurationSec,
		JSONProcessingMs: r.JSONProcessingMs,
		TotalValidated:   r.TotalValidated,
		TotalIncorrect:   r.TotalIncorrect,
		TotalDragMs:      r.TotalDragMs,
		TotalDelayMs:     r.TotalDelayMs,
		MaximumDelayMs:   r.MaximumDelayMs,
		MinimumDelayMs:   r.MinimumDelayMs,
		AverageDelayMs:   r.AverageDelayMs,
		SDDelayMs:        r.SDDelayMs,
	}
}
