package wire

import (
	"encoding/json"
	"fmt"
)

// Advertisement is a peer's unsolicited announcement of its own
// name, used by discovery to bind a device's unicast address. The
// wire form carries at least "f" (the advertising peer's name) and
// "c" (its checksum); other fields, if present, are ignored.
type Advertisement struct {
	Name string
}

// ParseAdvertisement extracts the advertising name from a raw
// datagram. The checksum itself is verified separately with
// VerifyChecksum, since that check operates on the undecoded bytes.
func ParseAdvertisement(raw []byte) (Advertisement, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Advertisement{}, fmt.Errorf("wire: parse advertisement: %w", err)
	}
	name, ok := generic["f"].(string)
	if !ok {
		return Advertisement{}, fmt.Errorf("wire: advertisement missing string field %q", "f")
	}
	return Advertisement{Name: name}, nil
}
