package discovery

import (
	"log/slog"

	"github.com/ruiseixasm/talkiedispatch/netsock"
	"github.com/ruiseixasm/talkiedispatch/registry"
	"github.com/ruiseixasm/talkiedispatch/wire"
)

// Tick drains every datagram currently available on sock and attempts
// to resolve one named device per advertisement that parses, names a
// known and still-unresolved device, and carries a checksum that
// verifies. It reports whether any binding was made.
//
// Grounded on the socket-read-then-dispatch loop the teacher's
// server.Coordinator runs over its transport, narrowed here to the
// single opportunistic pass the player loop calls between pins.
func Tick(sock *netsock.Socket, reg *registry.Registry) bool {
	bound := false
	for _, in := range sock.PollInbound() {
		if resolveOne(in, reg) {
			bound = true
		}
	}
	return bound
}

func resolveOne(in netsock.Inbound, reg *registry.Registry) bool {
	adv, err := wire.ParseAdvertisement(in.Payload)
	if err != nil {
		slog.Debug("talkiedispatch: discovery: unparsable advertisement", "sender", in.SenderIP, "error", err)
		return false
	}

	dev, ok := reg.LookupName(adv.Name)
	if !ok {
		slog.Debug("talkiedispatch: discovery: unknown peer name", "name", adv.Name, "sender", in.SenderIP)
		return false
	}
	if dev.Resolved() {
		return false
	}

	verified, err := wire.VerifyChecksum(in.Payload)
	if err != nil {
		slog.Debug("talkiedispatch: discovery: checksum parse failure", "name", adv.Name, "sender", in.SenderIP, "error", err)
		return false
	}
	if !verified {
		slog.Warn("talkiedispatch: discovery: checksum mismatch, dropping", "name", adv.Name, "sender", in.SenderIP)
		return false
	}

	return reg.Resolve(adv.Name, in.SenderIP)
}
