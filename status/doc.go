// Package status implements the optional, read-only introspection
// surface a running play session can expose: liveness, a registry
// dump, the last completed report, a live per-pin event stream, and
// mDNS advertisement of the surface itself.
package status
