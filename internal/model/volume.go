package model

import (
	"path"
	"unicode"

	"github.com/schevalier/flocker/internal/errkind"
)

// AttachedVolume is a stateful volume owned by an application. The system
// currently requires Name to equal the owning application's name.
type AttachedVolume struct {
	Name       string
	Mountpoint string
	unknown    bool // lenient parsing only: mountpoint could not be resolved
}

// NewAttachedVolume validates the mountpoint is an absolute, ASCII path.
func NewAttachedVolume(application, name, mountpoint string) (AttachedVolume, error) {
	if !isASCII(mountpoint) || !path.IsAbs(mountpoint) {
		return AttachedVolume{}, errkind.NewConfigurationError(application,
			"volume mountpoint must be an absolute ASCII path, got "+mountpoint)
	}
	return AttachedVolume{Name: name, Mountpoint: mountpoint}, nil
}

// NewAttachedVolumeUnknownMountpoint builds a volume with the lenient
// unknown-mountpoint sentinel, used only when observing local state.
func NewAttachedVolumeUnknownMountpoint(name string) AttachedVolume {
	return AttachedVolume{Name: name, unknown: true}
}

// MountpointUnknown reports whether this volume carries the lenient sentinel.
func (v AttachedVolume) MountpointUnknown() bool { return v.unknown }

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
