package wire

import (
	"encoding/json"
	"fmt"
)

// Canonicalize produces the canonical wire bytes for p. json.Marshal
// on a map[string]any always emits object keys in sorted order, which
// is what makes repeated calls on an equivalent payload reproducible.
func Canonicalize(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

// StampChecksum computes and stores p's checksum, then returns the
// final canonical encoding. It implements the encoder-side checksum
// rule (§9 option (b)): since this encoder is deterministic and under
// this engine's own control, forcing "c" to zero before encoding is
// equivalent to, and simpler than, scanning the encoded bytes for the
// literal "c":<digits> pattern.
func StampChecksum(p Payload) ([]byte, uint16, error) {
	p["c"] = uint16(0)
	masked, err := Canonicalize(p)
	if err != nil {
		return nil, 0, fmt.Errorf("wire: encode for checksum: %w", err)
	}
	sum := Checksum(masked)
	p["c"] = sum
	final, err := Canonicalize(p)
	if err != nil {
		return nil, 0, fmt.Errorf("wire: encode final payload: %w", err)
	}
	return final, sum, nil
}

// VerifyChecksum checks a raw datagram against its own carried "c"
// field using the receiver-side byte-scan rule (§9 option (a)): the
// sender of raw is not assumed to share this engine's encoder, so the
// only sound way to recompute its checksum is over its literal bytes
// with the checksum field masked in place, not by decoding and
// re-encoding with a different encoder.
func VerifyChecksum(raw []byte) (bool, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return false, fmt.Errorf("wire: parse datagram: %w", err)
	}
	declared, err := numberToUint16(generic["c"])
	if err != nil {
		return false, err
	}
	return ChecksumByScan(raw) == declared, nil
}
