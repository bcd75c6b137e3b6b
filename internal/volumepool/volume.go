// Package volumepool defines the Volume value type and an in-memory fake of
// the volume storage pool, the out-of-scope external collaborator that owns
// filesystem snapshots and send/receive streams (spec §6).
package volumepool

import "github.com/google/uuid"

// Volume is one stateful volume as reported by the pool. LocallyOwned
// compares the volume's UUID against the local service's own UUID — the
// ownership test the planner and action layer rely on.
type Volume struct {
	UUID uuid.UUID
	Name string
}

// LocallyOwned reports whether this volume's uuid equals the given service
// uuid, the system's sole definition of local ownership.
func (v Volume) LocallyOwned(serviceUUID uuid.UUID) bool {
	return v.UUID == serviceUUID
}
