package model

import (
	"strings"

	"github.com/schevalier/flocker/internal/errkind"
)

// UnknownImageSentinel is the string the marshaller emits for an
// ImageReference observed without a resolvable repository (lenient parsing).
const UnknownImageSentinel = "unknown"

// ImageReference is a repository plus tag, parsed from a single "repo:tag"
// form. It never parses a registry URL beyond splitting the final colon.
type ImageReference struct {
	Repository string
	Tag        string
	unknown    bool
}

// UnknownImage is the sentinel used when an observed container's image
// could not be determined (lenient parsing only).
func UnknownImage() ImageReference {
	return ImageReference{unknown: true}
}

// ParseImageReference parses "repo:tag". A missing tag is a ConfigurationError.
func ParseImageReference(application, s string) (ImageReference, error) {
	idx := strings.LastIndex(s, ":")
	if idx <= 0 || idx == len(s)-1 {
		return ImageReference{}, errkind.NewConfigurationError(application,
			"image must be of the form repository:tag, got "+s)
	}
	return ImageReference{Repository: s[:idx], Tag: s[idx+1:]}, nil
}

// IsUnknown reports whether this is the lenient unknown-image sentinel.
func (i ImageReference) IsUnknown() bool { return i.unknown }

// String renders "repo:tag", or the unknown sentinel.
func (i ImageReference) String() string {
	if i.unknown {
		return UnknownImageSentinel
	}
	return i.Repository + ":" + i.Tag
}

// Equal compares two ImageReference values structurally.
func (i ImageReference) Equal(other ImageReference) bool {
	return i == other
}
