package netsock

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// inboundBufferSize is one datagram's worth of payload (1023 bytes)
// plus a terminator byte, per the socket multiplexer spec.
const inboundBufferSize = 1023 + 1

// Inbound is one datagram read by PollInbound: the sender's address
// and the raw payload bytes.
type Inbound struct {
	SenderIP string
	Payload  []byte
}

// Socket is the one UDP socket the engine owns for its lifetime:
// broadcast-enabled, bound to a fixed local port, never blocking the
// caller. The zero value is not usable; construct with Initialise.
type Socket struct {
	conn *net.UDPConn
	port uint16
}

// Initialise creates the socket, enables broadcast, and binds to
// INADDR_ANY:port. On any failure, any partially-acquired state is
// released before returning the error.
func Initialise(port uint16) (*Socket, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: int(port)})
	if err != nil {
		return nil, fmt.Errorf("listen udp4 :%d: %w", port, err)
	}

	if err := enableBroadcast(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable broadcast: %w", err)
	}

	bound := uint16(conn.LocalAddr().(*net.UDPAddr).Port)
	return &Socket{conn: conn, port: bound}, nil
}

func enableBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("syscall conn: %w", err)
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	}); err != nil {
		return fmt.Errorf("control: %w", err)
	}
	if sockErr != nil {
		return fmt.Errorf("SO_BROADCAST: %w", sockErr)
	}
	return nil
}

// Close releases the socket. Idempotent-after-first-success per the
// initialise() contract is the caller's responsibility (Close itself
// simply closes the underlying connection once).
func (s *Socket) Close() error {
	return s.conn.Close()
}

// Port is the bound local port.
func (s *Socket) Port() uint16 {
	return s.port
}

// SendUnicast best-effort sends payload to ip:port. It never blocks;
// a transport failure is logged and swallowed.
func (s *Socket) SendUnicast(ip string, port uint16, payload []byte) {
	addr := &net.UDPAddr{IP: net.ParseIP(ip), Port: int(port)}
	if _, err := s.conn.WriteToUDP(payload, addr); err != nil {
		slog.Warn("talkiedispatch: unicast send failed", "ip", ip, "port", port, "error", err)
	}
}

// SendBroadcast best-effort sends payload to the IPv4 limited
// broadcast address on port. Same non-blocking, swallow-on-error
// semantics as SendUnicast.
func (s *Socket) SendBroadcast(port uint16, payload []byte) {
	addr := &net.UDPAddr{IP: net.IPv4bcast, Port: int(port)}
	if _, err := s.conn.WriteToUDP(payload, addr); err != nil {
		slog.Warn("talkiedispatch: broadcast send failed", "port", port, "error", err)
	}
}

// PollInbound returns every datagram immediately available, using a
// zero-timeout readiness check (an already-elapsed read deadline)
// followed by non-blocking reads until the socket would block. It
// never blocks the caller.
func (s *Socket) PollInbound() []Inbound {
	var out []Inbound
	buf := make([]byte, inboundBufferSize)

	defer s.conn.SetReadDeadline(time.Time{})

	for {
		if err := s.conn.SetReadDeadline(time.Now()); err != nil {
			return out
		}
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return out
			}
			slog.Debug("talkiedispatch: inbound read stopped", "error", err)
			return out
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		out = append(out, Inbound{SenderIP: addr.IP.String(), Payload: payload})
	}
}
