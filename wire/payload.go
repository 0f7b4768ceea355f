package wire

import "fmt"

// Kind is the message-kind enumeration from the payload's "m" field.
// The wire protocol carries it as a plain JSON number; the engine
// never inspects it except when stamping its own tempo messages, so
// this ordering is this implementation's own choice, not something
// the wire format mandates on receivers.
type Kind int

const (
	KindTalk Kind = iota
	KindList
	KindRun
	KindSet
	KindGet
	KindSys
	KindEcho
	KindError
	KindChannel
)

// Payload is the logical message map described by the data model: a
// target tag "t", a message-kind "m", an optional property name "n"
// and value "v", a message id "i" and a checksum "c". It may carry
// additional fields verbatim, since json.Marshal on map[string]any
// emits object keys in sorted order, which is exactly what makes this
// the canonical encoder: the same Payload always serialises to the
// same bytes, regardless of the order its fields were set in.
type Payload map[string]any

// NewPayload builds a payload with id and checksum left at zero, to
// be filled in by StampChecksum.
func NewPayload(target any, kind Kind, name string, value any) Payload {
	p := Payload{
		"t": target,
		"m": int(kind),
		"i": uint32(0),
		"c": uint16(0),
	}
	if name != "" {
		p["n"] = name
	}
	if value != nil {
		p["v"] = value
	}
	return p
}

// Target classifies the "t" field per the data model: a string is a
// peer name, a whole number in 0..255 is a channel. Anything else is
// invalid and the caller should reject the entry.
func (p Payload) Target() (name string, channel uint8, isChannel bool, ok bool) {
	switch v := p["t"].(type) {
	case string:
		return v, 0, false, true
	case float64:
		if v != float64(int64(v)) {
			return "", 0, false, false
		}
		n := int64(v)
		if n < 0 || n > 255 {
			return "", 0, false, false
		}
		return "", uint8(n), true, true
	default:
		return "", 0, false, false
	}
}

// SetID stamps the "i" field with the truncated time, per the
// message-id derivation rule: informational only, never used for
// ordering.
func (p Payload) SetID(timeMs float64) {
	p["i"] = uint32(int64(timeMs))
}

// Checksum reads back the "c" field after StampChecksum has run.
func (p Payload) Checksum() (uint16, error) {
	return numberToUint16(p["c"])
}

func numberToUint16(v any) (uint16, error) {
	switch n := v.(type) {
	case uint16:
		return n, nil
	case float64:
		if n < 0 || n > 65535 || n != float64(int64(n)) {
			return 0, fmt.Errorf("wire: %v is not a valid 16-bit checksum", v)
		}
		return uint16(n), nil
	case int:
		if n < 0 || n > 65535 {
			return 0, fmt.Errorf("wire: %v is not a valid 16-bit checksum", v)
		}
		return uint16(n), nil
	default:
		return 0, fmt.Errorf("wire: checksum field has unexpected type %T", v)
	}
}
