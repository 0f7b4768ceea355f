package ingest

import (
	"encoding/json"
	"log/slog"

	"github.com/ruiseixasm/talkiedispatch/netsock"
	"github.com/ruiseixasm/talkiedispatch/registry"
	"github.com/ruiseixasm/talkiedispatch/wire"
)

const (
	requiredFileType = "Json Midi Player"
	requiredURL      = "https://github.com/ruiseixasm/JsonMidiPlayer"
)

// Pin is one scheduled transmission: a target instant, the device it
// is bound for, and the fully encoded, checksum-stamped payload
// bytes. Device is a live pointer into the registry rather than an
// arena index — Go's garbage collector makes the "must not outlive
// the registry" concern in the design notes moot, since the registry
// stays reachable for as long as any pin references it.
type Pin struct {
	TimeMs  float64
	Device  *registry.Device
	Payload []byte
	DelayMs float64
}

// Result is the outcome of one Ingest call: the pins ready for the
// player loop, plus the validation counters the report surfaces.
type Result struct {
	Pins           []Pin
	FileCount      int
	TotalValidated int
	TotalIncorrect int
}

type tempoValues struct {
	numerator   int
	denominator int
}

// fileEnvelope is one element of the top-level array.
type fileEnvelope struct {
	FileType string            `json:"filetype"`
	URL      string            `json:"url"`
	Content  []json.RawMessage `json:"content"`
}

// entryEnvelope covers both entry shapes content can hold; exactly
// one of Tempo or (Port, TimeMs, Message) is expected to be non-nil.
type entryEnvelope struct {
	Tempo *struct {
		BPMNumerator   int `json:"bpm_numerator"`
		BPMDenominator int `json:"bpm_denominator"`
	} `json:"tempo"`
	Port    *int           `json:"port"`
	TimeMs  *float64       `json:"time_ms"`
	Message map[string]any `json:"message"`
}

// Ingest walks jsonText's file objects and returns the pins and
// validation counters produced. sock may be nil in tests that don't
// care about the immediate tempo transmissions; it is never required
// for the resulting pins to be well-formed. No error ever crosses
// this boundary: malformed input is logged and the offending file or
// entry is skipped, per the engine's error taxonomy.
func Ingest(jsonText []byte, delayMs int, reg *registry.Registry, sock *netsock.Socket) Result {
	var files []fileEnvelope
	if err := json.Unmarshal(jsonText, &files); err != nil {
		slog.Warn("talkiedispatch: ingest: top-level JSON is not a file array", "error", err)
		return Result{}
	}

	result := Result{FileCount: len(files)}
	for _, f := range files {
		if f.FileType != requiredFileType || f.URL != requiredURL {
			slog.Warn("talkiedispatch: ingest: rejecting file", "filetype", f.FileType, "url", f.URL)
			continue
		}
		if len(f.Content) == 0 {
			slog.Warn("talkiedispatch: ingest: file has empty content")
			continue
		}
		ingestFile(f.Content, delayMs, reg, sock, &result)
	}
	return result
}

func ingestFile(content []json.RawMessage, delayMs int, reg *registry.Registry, sock *netsock.Socket, result *Result) {
	var tempo *tempoValues
	var messageSeen bool

	for _, raw := range content {
		var e entryEnvelope
		if err := json.Unmarshal(raw, &e); err != nil {
			slog.Warn("talkiedispatch: ingest: malformed entry, skipping", "error", err)
			continue
		}

		switch {
		case e.Tempo != nil:
			if messageSeen {
				slog.Warn("talkiedispatch: ingest: tempo entry after first message ignored")
				continue
			}
			if tempo == nil {
				tempo = &tempoValues{numerator: e.Tempo.BPMNumerator, denominator: e.Tempo.BPMDenominator}
			}

		case e.Port != nil && e.TimeMs != nil && e.Message != nil:
			messageSeen = true
			ingestMessage(*e.Port, *e.TimeMs, e.Message, delayMs, tempo, reg, sock, result)

		default:
			slog.Warn("talkiedispatch: ingest: entry is neither tempo nor timed message, skipping")
		}
	}
}

func ingestMessage(port int, timeMs float64, message map[string]any, delayMs int, tempo *tempoValues, reg *registry.Registry, sock *netsock.Socket, result *Result) {
	tMs := timeMs + float64(delayMs)

	payload := wire.Payload(message)
	payload.SetID(tMs)
	encoded, _, err := wire.StampChecksum(payload)
	if err != nil {
		slog.Warn("talkiedispatch: ingest: payload encode failure, skipping entry", "error", err)
		return
	}

	name, channel, isChannel, ok := payload.Target()
	if !ok {
		result.TotalIncorrect++
		slog.Warn("talkiedispatch: ingest: rejecting payload with invalid target type")
		return
	}

	var dev *registry.Device
	var created bool
	if isChannel {
		dev, created = reg.DeviceByChannel(channel, uint16(port))
	} else {
		dev, created = reg.DeviceByName(name, uint16(port))
	}

	if created && tempo != nil {
		sendTempo(sock, dev, tempo)
	}

	result.Pins = append(result.Pins, Pin{TimeMs: tMs, Device: dev, Payload: encoded})
	result.TotalValidated++
}

// sendTempo fires the two tempo set-messages to a just-created device,
// ahead of the play loop. ingestMessage calls it for every device the
// file creates after its tempo entry, not only the first.
func sendTempo(sock *netsock.Socket, dev *registry.Device, tempo *tempoValues) {
	settings := [2]struct {
		name  string
		value int
	}{
		{"bpm_n", tempo.numerator},
		{"bpm_d", tempo.denominator},
	}

	for _, s := range settings {
		p := wire.NewPayload(targetOf(dev), wire.KindSet, s.name, s.value)
		raw, _, err := wire.StampChecksum(p)
		if err != nil {
			slog.Warn("talkiedispatch: ingest: tempo message encode failure", "error", err)
			continue
		}
		transmit(sock, dev, raw)
	}
}

func targetOf(dev *registry.Device) any {
	if dev.ByChannel {
		return int(dev.Channel)
	}
	return dev.Name
}

func transmit(sock *netsock.Socket, dev *registry.Device, payload []byte) {
	if sock == nil {
		return
	}
	if dev.Resolved() {
		sock.SendUnicast(dev.IP(), dev.Port, payload)
		return
	}
	sock.SendBroadcast(dev.Port, payload)
}
