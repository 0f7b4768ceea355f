// Package registry holds the device registry: two keyed collections
// mapping a logical target — a peer name or a numeric channel — to a
// Device whose unicast address transitions at most once, from
// unresolved to resolved, under peer discovery.
package registry
