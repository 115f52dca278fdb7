// Package recognition implements the three volume recognition structures
// (BEA01, NSR02, TEA01) that gate UDF discovery on an optical medium.
package recognition

import (
	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

// Size is the fixed sector size every volume recognition structure occupies.
const Size = 2048

const (
	structureType = 0
	version       = 1
)

// Structure is one of BEA01 / NSR02 / TEA01: a fixed 2048-byte sector
// bearing a 5-byte standard identifier.
type Structure struct {
	Identifier string
	location   uint32
}

// New builds a recognition Structure with the given 5-byte identifier.
func New(identifier string) (Structure, error) {
	if len(identifier) != 5 {
		return Structure{}, errs.Input("volume recognition identifier must be 5 characters, got %d", len(identifier))
	}
	return Structure{Identifier: identifier}, nil
}

// Parse decodes a 2048-byte volume recognition sector located at extent,
// validating the structure type, identifier, version, and zeroed reserved
// region.
func Parse(b []byte, identifier string, extent uint32) (Structure, error) {
	if len(b) < Size {
		return Structure{}, errs.Internal("volume recognition structure requires %d bytes, got %d", Size, len(b))
	}

	if b[0] != structureType {
		return Structure{}, errs.Format("volume recognition structure type not %d", structureType)
	}
	if string(b[1:6]) != identifier {
		return Structure{}, errs.Format("volume recognition identifier not %q", identifier)
	}
	if b[6] != version {
		return Structure{}, errs.Format("volume recognition version not %d", version)
	}
	for i, rb := range b[7:Size] {
		if rb != 0 {
			return Structure{}, errs.Format("volume recognition reserved byte %d not zero", i)
		}
	}

	return Structure{Identifier: identifier, location: extent}, nil
}

// Marshal encodes the Structure into its 2048-byte wire form.
func (s Structure) Marshal() [Size]byte {
	var out [Size]byte
	out[0] = structureType
	copy(out[1:6], s.Identifier)
	out[6] = version
	return out
}

// ExtentLocation returns the sector this structure was parsed from.
func (s Structure) ExtentLocation() uint32 {
	return s.location
}

// WithLocation returns a copy of s relocated to extent, for structures
// built fresh via New rather than Parse.
func (s Structure) WithLocation(extent uint32) Structure {
	s.location = extent
	return s
}
