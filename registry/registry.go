package registry

import "sync"

// Registry is the device registry for the lifetime of a play run,
// created by the engine alongside its socket: a by-name table (also the target of peer
// discovery) and a by-channel table, each populated lazily as the
// ingestion pass first mentions a target.
//
// Adapted from the teacher's server.DeviceRegistry: same
// sync.RWMutex-guarded map shape, repurposed from a client-id keyed
// connection table to the name/channel keyed device table this
// engine needs, with a resolved-count invariant discovery relies on.
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]*Device
	byChannel map[uint8]*Device
	resolved  int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byName:    make(map[string]*Device),
		byChannel: make(map[uint8]*Device),
	}
}

// DeviceByName returns the device registered under name, creating one
// bound to port if this is the first mention. created reports
// whether this call performed the creation.
func (r *Registry) DeviceByName(name string, port uint16) (dev *Device, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byName[name]; ok {
		return d, false
	}
	d := &Device{Name: name, Port: port}
	r.byName[name] = d
	return d, true
}

// DeviceByChannel returns the device registered under channel,
// creating one bound to port if this is the first mention.
func (r *Registry) DeviceByChannel(channel uint8, port uint16) (dev *Device, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byChannel[channel]; ok {
		return d, false
	}
	d := &Device{Channel: channel, ByChannel: true, Port: port}
	r.byChannel[channel] = d
	return d, true
}

// LookupName returns the named device without creating it.
func (r *Registry) LookupName(name string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Resolve binds name's device to ip, if it exists and is not already
// resolved, and bumps the resolved count. Reports whether a binding
// was performed.
func (r *Registry) Resolve(name string, ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byName[name]
	if !ok {
		return false
	}
	if !d.resolve(ip) {
		return false
	}
	r.resolved++
	return true
}

// ResolvedCount is the number of by-name entries whose address has
// been learned. Monotonically non-decreasing over the registry's
// life.
func (r *Registry) ResolvedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved
}

// NameCount is the size of the by-name table, i.e. |by_name|.
func (r *Registry) NameCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// AllResolved reports whether every named device has a learned
// address; discovery only needs to run while this is false.
func (r *Registry) AllResolved() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved >= len(r.byName)
}

// View is a snapshot of one device, safe to read after the registry
// has moved on, used by the status surface.
type View struct {
	Name      string
	Channel   uint8
	ByChannel bool
	Port      uint16
	IP        string // "" means unresolved
}

// Snapshot returns a point-in-time copy of every device in both
// tables, safe to call concurrently with ingestion or the play loop.
func (r *Registry) Snapshot() []View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := make([]View, 0, len(r.byName)+len(r.byChannel))
	for _, d := range r.byName {
		views = append(views, View{Name: d.Name, Port: d.Port, IP: d.IP()})
	}
	for _, d := range r.byChannel {
		views = append(views, View{Channel: d.Channel, ByChannel: true, Port: d.Port, IP: d.IP()})
	}
	return views
}
