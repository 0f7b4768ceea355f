// Package engine is the facade that wires the wire codec, socket
// multiplexer, device registry, ingestion pass, and the timed player
// loop together into the single externally callable operation,
// Engine.Play.
package engine
