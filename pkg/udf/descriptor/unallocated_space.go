package descriptor

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

const unallocatedSpaceBodySize = 4 + 4 // vol_desc_seq_num + num_alloc_descriptors

// UnallocatedSpace (tag 7, ECMA-167 3/10.8) lists the unallocated extents
// of the logical volume. This codec only emits and accepts volumes with
// no unallocated space descriptors recorded.
type UnallocatedSpace struct {
	Tag           common.Tag
	VolDescSeqNum uint32

	origExtent uint32
	newExtent  *uint32
}

// NewUnallocatedSpace builds an empty UnallocatedSpace descriptor.
func NewUnallocatedSpace() UnallocatedSpace {
	return UnallocatedSpace{Tag: common.NewTag(7, 0)}
}

// ParseUnallocatedSpace decodes an UnallocatedSpace descriptor located at extent.
func ParseUnallocatedSpace(b []byte, extent uint32) (UnallocatedSpace, error) {
	if len(b) < common.TagSize+unallocatedSpaceBodySize {
		return UnallocatedSpace{}, errs.Internal("unallocated space descriptor requires %d bytes, got %d", common.TagSize+unallocatedSpaceBodySize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 7, extent)
	if err != nil {
		return UnallocatedSpace{}, err
	}
	body := b[common.TagSize : common.TagSize+unallocatedSpaceBodySize]
	if err := tag.VerifyCRC(body); err != nil {
		return UnallocatedSpace{}, err
	}

	volDescSeqNum := binary.LittleEndian.Uint32(body[0:4])
	numAllocDescs := binary.LittleEndian.Uint32(body[4:8])
	if numAllocDescs != 0 {
		return UnallocatedSpace{}, errs.Format("unallocated space with allocated descriptors is not supported")
	}

	return UnallocatedSpace{
		Tag:           tag,
		VolDescSeqNum: volDescSeqNum,
		origExtent:    extent,
	}, nil
}

// Marshal seals and encodes the UnallocatedSpace descriptor.
func (u UnallocatedSpace) Marshal() ([]byte, error) {
	body := make([]byte, unallocatedSpaceBodySize)
	binary.LittleEndian.PutUint32(body[0:4], u.VolDescSeqNum)
	binary.LittleEndian.PutUint32(body[4:8], 0)

	return common.Seal(u.Tag, u.ExtentLocation(), body, len(body))
}

// ExtentLocation returns the sector this descriptor currently occupies.
func (u UnallocatedSpace) ExtentLocation() uint32 {
	if u.newExtent != nil {
		return *u.newExtent
	}
	return u.origExtent
}

// SetLocation relocates the descriptor.
func (u *UnallocatedSpace) SetLocation(newLocation uint32) {
	u.newExtent = &newLocation
	u.Tag.Location = newLocation
}
