package status

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/mdns"

	"github.com/ruiseixasm/talkiedispatch/registry"
)

// serviceName is the mDNS service type the status surface advertises
// itself under (A7). Strictly separate from the engine's own C4 peer
// discovery: this only helps a human or tool find the dispatcher's
// status port.
const serviceName = "_talkiedispatch._tcp"

// Server is the optional read-only introspection surface: healthz,
// a registry dump, the last completed report, a live event stream,
// and its own mDNS advertisement. Mirrors the teacher's WSTransport
// start/shutdown shape, routed with chi the way server/web.go does.
type Server struct {
	addr  string
	reg   *registry.Registry
	hub   *eventHub
	store reportStore

	shutdownOnce sync.Once
	httpServer   *http.Server
	mdnsServer   *mdns.Server
}

// NewServer builds a status surface bound to addr, reading reg for
// its /devices dump. It does nothing until Start is called.
func NewServer(addr string, reg *registry.Registry) *Server {
	return &Server{
		addr: addr,
		reg:  reg,
		hub:  newEventHub(),
	}
}

// Start brings the HTTP surface and its mDNS advertisement up in the
// background and returns once the listener is bound. ctx governs the
// surface's lifetime: when ctx is done, it shuts itself down.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("status: listen %s: %w", s.addr, err)
	}

	router := chi.NewRouter()
	router.Get("/healthz", s.handleHealthz)
	router.Get("/devices", s.handleDevices)
	router.Get("/report", s.handleReport)
	router.Get("/events", s.hub.handle)

	s.httpServer = &http.Server{Handler: router}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Warn("talkiedispatch: status: server stopped", "error", err)
		}
	}()

	if err := s.startAdvertisement(ln); err != nil {
		slog.Warn("talkiedispatch: status: mDNS advertisement failed to start", "error", err)
	}

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	slog.Info("talkiedispatch: status surface listening", "addr", s.addr)
	return nil
}

func (s *Server) startAdvertisement(ln net.Listener) error {
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		return fmt.Errorf("split listener address: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("parse listener port: %w", err)
	}

	host, err := os.Hostname()
	if err != nil {
		host = "talkiedispatch"
	}

	service, err := mdns.NewMDNSService(host, serviceName, "", "", port, nil, []string{"talkiedispatch status"})
	if err != nil {
		return fmt.Errorf("build mDNS service: %w", err)
	}
	srv, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("start mDNS server: %w", err)
	}
	s.mdnsServer = srv
	return nil
}

// Shutdown stops the HTTP server and mDNS advertisement. Safe to call
// more than once, and safe to race against the ctx.Done() goroutine
// started in Start: shutdownOnce guards the body, so both servers are
// closed and mdnsServer is cleared exactly once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		if s.mdnsServer != nil {
			s.mdnsServer.Shutdown()
			s.mdnsServer = nil
		}
		if s.httpServer != nil {
			s.httpServer.Close()
		}
	})
}

// PublishPin fans ev out to every connected /events subscriber.
func (s *Server) PublishPin(ev PinEvent) {
	s.hub.publishJSON(ev)
}

// PublishReport records the completed report for /report and fans it
// out to the event stream as the run's closing frame.
func (s *Server) PublishReport(r Report) {
	s.store.set(r)
	s.hub.publishJSON(r)
}
