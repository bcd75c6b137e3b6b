package model

// GoingVolume is a volume currently owned locally that the desired
// deployment places on a peer.
type GoingVolume struct {
	Volume      AttachedVolume
	PeerHostname string
}

// VolumeChanges partitions the volumes touched by one convergence tick into
// three disjoint sets, relative to the local node. A volume that is
// unchanged appears in none of them.
type VolumeChanges struct {
	Going    []GoingVolume
	Coming   []AttachedVolume
	Creating []AttachedVolume
}
