// Package netsock owns the single UDP socket the engine transmits
// and receives on: one broadcast-enabled datagram socket bound to a
// fixed local port, with best-effort sends and a poll-then-drain
// non-blocking receive.
package netsock
