// Package ingest walks the heterogeneous JSON timeline this engine
// is handed — one or more "file" objects each carrying a content
// array of tempo and timed-message entries — and turns it into a
// flat, checksum-stamped list of Pins ready for the player loop to
// sort and emit.
package ingest
