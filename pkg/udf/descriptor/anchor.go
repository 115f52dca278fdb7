// Package descriptor implements the volume descriptor sequence records:
// Anchor, Primary, ImplementationUse, Partition, LogicalVolume,
// UnallocatedSpace, Terminating, and LogicalVolumeIntegrity.
package descriptor

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

const anchorBodySize = 16 + 480 // four u32 fields + 480 zero reserved bytes

// Anchor (tag 2, ECMA-167 3/10.2) bootstraps discovery of the main and
// reserve Volume Descriptor Sequences.
type Anchor struct {
	Tag             common.Tag
	MainVDLength    uint32
	MainVDExtent    uint32
	ReserveVDLength uint32
	ReserveVDExtent uint32

	origExtent uint32
	newExtent  *uint32
}

// NewAnchor builds an Anchor pointing at the given main/reserve sequence extents.
func NewAnchor(mainVDExtent, mainVDLength, reserveVDExtent, reserveVDLength uint32) Anchor {
	return Anchor{
		Tag:             common.NewTag(2, 0),
		MainVDLength:    mainVDLength,
		MainVDExtent:    mainVDExtent,
		ReserveVDLength: reserveVDLength,
		ReserveVDExtent: reserveVDExtent,
	}
}

// ParseAnchor decodes an Anchor located at extent.
func ParseAnchor(b []byte, extent uint32) (Anchor, error) {
	if len(b) < common.TagSize+anchorBodySize {
		return Anchor{}, errs.Internal("anchor volume descriptor requires %d bytes, got %d", common.TagSize+anchorBodySize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 2, extent)
	if err != nil {
		return Anchor{}, err
	}
	body := b[common.TagSize : common.TagSize+anchorBodySize]
	if err := tag.VerifyCRC(body); err != nil {
		return Anchor{}, err
	}

	return Anchor{
		Tag:             tag,
		MainVDLength:    binary.LittleEndian.Uint32(body[0:4]),
		MainVDExtent:    binary.LittleEndian.Uint32(body[4:8]),
		ReserveVDLength: binary.LittleEndian.Uint32(body[8:12]),
		ReserveVDExtent: binary.LittleEndian.Uint32(body[12:16]),
		origExtent:      extent,
	}, nil
}

// Marshal seals and encodes the Anchor record: 16-byte tag followed by its
// 496-byte body (4 length/extent fields plus 480 zero reserved bytes).
// The caller pads the result out to a 2048-byte sector before writing it.
func (a Anchor) Marshal() ([]byte, error) {
	body := make([]byte, anchorBodySize)
	binary.LittleEndian.PutUint32(body[0:4], a.MainVDLength)
	binary.LittleEndian.PutUint32(body[4:8], a.MainVDExtent)
	binary.LittleEndian.PutUint32(body[8:12], a.ReserveVDLength)
	binary.LittleEndian.PutUint32(body[12:16], a.ReserveVDExtent)

	return common.Seal(a.Tag, a.ExtentLocation(), body, len(body))
}

// ExtentLocation returns the sector this Anchor currently occupies: the
// relocated extent if SetLocation was called, otherwise the parsed extent.
func (a Anchor) ExtentLocation() uint32 {
	if a.newExtent != nil {
		return *a.newExtent
	}
	return a.origExtent
}

// SetLocation relocates the Anchor, updating its embedded tag location and
// the extents of the main and reserve volume descriptor sequences it points to.
func (a *Anchor) SetLocation(newLocation, mainVDExtent, reserveVDExtent uint32) {
	a.newExtent = &newLocation
	a.Tag.Location = newLocation
	a.MainVDExtent = mainVDExtent
	a.ReserveVDExtent = reserveVDExtent
}
