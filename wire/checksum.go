package wire

import "bytes"

// checksumField is the byte pattern the masking rule scans for: a
// quoted field name "c" immediately followed by a colon, with no
// whitespace, which is what the canonical encoder always produces.
var checksumField = []byte(`"c":`)

// Checksum folds data into 16-bit big-endian chunks (high byte from
// an even index, low byte from the following odd index; a trailing
// odd byte contributes as a high byte with a zero low byte) and XORs
// them into a single 16-bit accumulator.
func Checksum(data []byte) uint16 {
	var acc uint16
	for i := 0; i < len(data); i += 2 {
		hi := uint16(data[i])
		var lo uint16
		if i+1 < len(data) {
			lo = uint16(data[i+1])
		}
		acc ^= hi<<8 | lo
	}
	return acc
}

// maskChecksumField returns a copy of data with the value of the
// first "c":<digits> occurrence collapsed to a single '0' byte. At
// most one run of digits is masked; everything else passes through
// unchanged. Data with no such field is returned unmodified.
func maskChecksumField(data []byte) []byte {
	idx := bytes.Index(data, checksumField)
	if idx < 0 {
		return data
	}
	start := idx + len(checksumField)
	end := start
	for end < len(data) && data[end] >= '0' && data[end] <= '9' {
		end++
	}
	if end == start {
		return data
	}
	out := make([]byte, 0, len(data)-(end-start)+1)
	out = append(out, data[:start]...)
	out = append(out, '0')
	out = append(out, data[end:]...)
	return out
}

// ChecksumByScan computes the checksum over data using the literal
// byte-scan masking rule (Design Note §9 option (a)), without
// decoding the JSON at all. This is what a receiver must use to
// verify a datagram produced by an encoder it does not control (see
// VerifyChecksum); it is exported mainly so the equivalence with the
// re-encode path (StampChecksum) can be tested directly against this
// engine's own output.
func ChecksumByScan(data []byte) uint16 {
	return Checksum(maskChecksumField(data))
}
