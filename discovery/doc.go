// Package discovery implements the peer-discovery sub-protocol: while
// the player idles between pins, it drains inbound datagrams looking
// for advertisements from peers this run has a name for but no
// address yet, and binds the first one that verifies.
package discovery
