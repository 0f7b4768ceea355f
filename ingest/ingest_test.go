package ingest

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/ruiseixasm/talkiedispatch/netsock"
	"github.com/ruiseixasm/talkiedispatch/registry"
)

func wrapFile(content string) []byte {
	return []byte(`[{"filetype":"Json Midi Player","url":"https://github.com/ruiseixasm/JsonMidiPlayer","content":` + content + `}]`)
}

func TestEmptyContentArrayYieldsNoPins(t *testing.T) {
	reg := registry.New()
	result := Ingest(wrapFile(`[]`), 0, reg, nil)

	if len(result.Pins) != 0 {
		t.Errorf("got %d pins, want 0", len(result.Pins))
	}
	if result.TotalValidated != 0 || result.TotalIncorrect != 0 {
		t.Errorf("counters = %+v, want all zero", result)
	}
}

func TestSinglePinAtTimeZero(t *testing.T) {
	reg := registry.New()
	content := `[{"port":5005,"time_ms":0,"message":{"t":"A","m":0,"n":"x","v":1,"i":0,"c":0}}]`

	result := Ingest(wrapFile(content), 0, reg, nil)

	if len(result.Pins) != 1 {
		t.Fatalf("got %d pins, want 1", len(result.Pins))
	}
	if result.TotalValidated != 1 {
		t.Errorf("TotalValidated = %d, want 1", result.TotalValidated)
	}
	pin := result.Pins[0]
	if pin.TimeMs != 0 {
		t.Errorf("TimeMs = %v, want 0", pin.TimeMs)
	}
	if pin.Device == nil || pin.Device.Name != "A" {
		t.Errorf("Device = %+v, want name A", pin.Device)
	}

	var decoded map[string]any
	if err := json.Unmarshal(pin.Payload, &decoded); err != nil {
		t.Fatalf("payload did not decode: %v", err)
	}
	if _, ok := decoded["c"]; !ok {
		t.Error("encoded payload missing checksum field")
	}
}

func TestDelayOffsetShiftsTimeMs(t *testing.T) {
	reg := registry.New()
	content := `[{"port":5005,"time_ms":10,"message":{"t":"A","m":0,"n":"x","v":1,"i":0,"c":0}}]`

	result := Ingest(wrapFile(content), 250, reg, nil)

	if len(result.Pins) != 1 {
		t.Fatalf("got %d pins, want 1", len(result.Pins))
	}
	if result.Pins[0].TimeMs != 260 {
		t.Errorf("TimeMs = %v, want 260", result.Pins[0].TimeMs)
	}
}

func TestWrongTypeTargetIsRejected(t *testing.T) {
	reg := registry.New()
	content := `[{"port":5005,"time_ms":0,"message":{"t":3.5,"m":0,"i":0,"c":0}}]`

	result := Ingest(wrapFile(content), 0, reg, nil)

	if len(result.Pins) != 0 {
		t.Errorf("got %d pins, want 0", len(result.Pins))
	}
	if result.TotalIncorrect != 1 {
		t.Errorf("TotalIncorrect = %d, want 1", result.TotalIncorrect)
	}
}

func TestChannelTarget(t *testing.T) {
	reg := registry.New()
	content := `[{"port":5005,"time_ms":0,"message":{"t":3,"m":0,"i":0,"c":0}}]`

	result := Ingest(wrapFile(content), 0, reg, nil)

	if len(result.Pins) != 1 {
		t.Fatalf("got %d pins, want 1", len(result.Pins))
	}
	dev := result.Pins[0].Device
	if !dev.ByChannel || dev.Channel != 3 {
		t.Errorf("Device = %+v, want ByChannel channel 3", dev)
	}
}

func TestTempoBeforeMessageSendsImmediately(t *testing.T) {
	receiver, err := netsock.Initialise(0)
	if err != nil {
		t.Fatalf("Initialise(receiver): %v", err)
	}
	defer receiver.Close()
	sender, err := netsock.Initialise(0)
	if err != nil {
		t.Fatalf("Initialise(sender): %v", err)
	}
	defer sender.Close()

	reg := registry.New()
	content := `[{"tempo":{"bpm_numerator":120,"bpm_denominator":1}},` +
		`{"port":` + portOf(receiver) + `,"time_ms":0,"message":{"t":"A","m":0,"i":0,"c":0}}]`

	result := Ingest(wrapFile(content), 0, reg, sender)
	if len(result.Pins) != 1 {
		t.Fatalf("got %d pins, want 1", len(result.Pins))
	}

	var got []netsock.Inbound
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && len(got) < 2 {
		got = append(got, receiver.PollInbound()...)
		if len(got) < 2 {
			time.Sleep(time.Millisecond)
		}
	}
	if len(got) != 2 {
		t.Fatalf("got %d tempo messages, want 2", len(got))
	}
}

func TestTempoAfterFirstMessageIsIgnored(t *testing.T) {
	receiver, err := netsock.Initialise(0)
	if err != nil {
		t.Fatalf("Initialise(receiver): %v", err)
	}
	defer receiver.Close()
	sender, err := netsock.Initialise(0)
	if err != nil {
		t.Fatalf("Initialise(sender): %v", err)
	}
	defer sender.Close()

	reg := registry.New()
	content := `[{"port":` + portOf(receiver) + `,"time_ms":0,"message":{"t":"A","m":0,"i":0,"c":0}},` +
		`{"tempo":{"bpm_numerator":120,"bpm_denominator":1}},` +
		`{"port":` + portOf(receiver) + `,"time_ms":1,"message":{"t":"B","m":0,"i":0,"c":0}}]`

	Ingest(wrapFile(content), 0, reg, sender)

	time.Sleep(10 * time.Millisecond)
	got := receiver.PollInbound()
	if len(got) != 0 {
		t.Errorf("got %d datagrams, want 0 (tempo after first message must be ignored)", len(got))
	}
}

func TestSameNameIsSameDeviceIdentity(t *testing.T) {
	reg := registry.New()
	content := `[{"port":5005,"time_ms":0,"message":{"t":"A","m":0,"i":0,"c":0}},` +
		`{"port":5006,"time_ms":1,"message":{"t":"A","m":0,"i":0,"c":0}}]`

	result := Ingest(wrapFile(content), 0, reg, nil)
	if len(result.Pins) != 2 {
		t.Fatalf("got %d pins, want 2", len(result.Pins))
	}
	if result.Pins[0].Device != result.Pins[1].Device {
		t.Error("expected both pins to reference the same Device for the same name")
	}
	if result.Pins[0].Device.Port != 5005 {
		t.Error("expected the port from the first mention to stick")
	}
}

func TestRejectsWrongFiletype(t *testing.T) {
	reg := registry.New()
	raw := []byte(`[{"filetype":"Other","url":"https://github.com/ruiseixasm/JsonMidiPlayer","content":[{"port":5005,"time_ms":0,"message":{"t":"A","m":0,"i":0,"c":0}}]}]`)

	result := Ingest(raw, 0, reg, nil)
	if len(result.Pins) != 0 {
		t.Errorf("got %d pins, want 0 for a rejected file", len(result.Pins))
	}
}

func portOf(s *netsock.Socket) string {
	return strconv.Itoa(int(s.Port()))
}
