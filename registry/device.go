package registry

import "sync"

// Device is a logical talkie target: either a named peer or a
// numeric channel, fixed at creation to a port, whose target IP
// transitions at most once from unresolved to a resolved address.
type Device struct {
	Name      string // set when this device lives in the by-name table
	Channel   uint8  // set when this device lives in the by-channel table
	ByChannel bool
	Port      uint16

	mu sync.RWMutex
	ip string // empty means unresolved
}

// Resolved reports whether this device's address has been learned.
func (d *Device) Resolved() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ip != ""
}

// IP returns the resolved address, or "" if still unresolved.
func (d *Device) IP() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ip
}

// resolve binds ip as this device's address, but only the first
// time: once resolved, a device never re-binds. Reports whether this
// call performed the binding.
func (d *Device) resolve(ip string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ip != "" {
		return false
	}
	d.ip = ip
	return true
}
