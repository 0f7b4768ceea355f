// Package wire implements the talkie message wire format: canonical
// JSON encoding of a payload map and the 16-bit XOR checksum computed
// over it, including the checksum-field exclusion rule that lets a
// payload carry its own checksum.
package wire
