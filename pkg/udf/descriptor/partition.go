package descriptor

import (
	"bytes"
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

const partitionBodySize = 496

// Partition (tag 5, ECMA-167 3/10.5) describes one partition on the medium:
// its contents type, access type, start location and length in blocks.
type Partition struct {
	Tag                common.Tag
	VolDescSeqNum      uint32
	PartFlags          uint16
	PartNum            uint16
	PartContents       common.EntityID
	PartContentsUse    common.PartitionHeaderDescriptor
	AccessType         uint32
	PartStartLocation  uint32
	PartLength         uint32
	ImplIdent          common.EntityID
	ImplementationUse  [128]byte
	// Reserved is the 156-byte tail of the descriptor body (ECMA-167
	// 3/10.5.14); must be zero, carried through unparsed so Marshal
	// reproduces the original bytes.
	Reserved [156]byte

	origExtent uint32
	newExtent  *uint32
}

// NewPartition builds a Partition descriptor for partNum starting at
// startLocation and spanning lengthBlocks logical blocks.
func NewPartition(partNum uint16, startLocation, lengthBlocks uint32) (Partition, error) {
	partContents, err := common.NewEntityID(2, "+NSR02", nil)
	if err != nil {
		return Partition{}, err
	}
	implIdent, err := common.NewEntityID(0, "*genisoimage", nil)
	if err != nil {
		return Partition{}, err
	}
	return Partition{
		Tag:               common.NewTag(5, 0),
		PartFlags:         1,
		PartNum:           partNum,
		PartContents:      partContents,
		PartContentsUse:   common.NewPartitionHeaderDescriptor(),
		AccessType:        1, // read-only
		PartStartLocation: startLocation,
		PartLength:        lengthBlocks,
		ImplIdent:         implIdent,
	}, nil
}

// ParsePartition decodes a Partition descriptor located at extent.
func ParsePartition(b []byte, extent uint32) (Partition, error) {
	if len(b) < common.TagSize+partitionBodySize {
		return Partition{}, errs.Internal("partition volume descriptor requires %d bytes, got %d", common.TagSize+partitionBodySize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 5, extent)
	if err != nil {
		return Partition{}, err
	}
	body := b[common.TagSize : common.TagSize+partitionBodySize]
	if err := tag.VerifyCRC(body); err != nil {
		return Partition{}, err
	}

	off := 0
	volDescSeqNum := binary.LittleEndian.Uint32(body[off : off+4])
	off += 4
	partFlags := binary.LittleEndian.Uint16(body[off : off+2])
	off += 2
	partNum := binary.LittleEndian.Uint16(body[off : off+2])
	off += 2

	partContents, err := common.ParseEntityID(body[off : off+common.EntityIDSize])
	if err != nil {
		return Partition{}, err
	}
	off += common.EntityIDSize
	if partContents.Flags != 2 {
		return Partition{}, errs.Format("partition contents flags not 2")
	}
	if !bytes.HasPrefix(partContents.Identifier[:], []byte("+NSR02")) {
		return Partition{}, errs.Format("partition contents identifier not '+NSR02'")
	}

	partContentsUse, err := common.ParsePartitionHeaderDescriptor(body[off : off+common.PartitionHeaderDescriptorSize])
	if err != nil {
		return Partition{}, err
	}
	off += common.PartitionHeaderDescriptorSize

	accessType := binary.LittleEndian.Uint32(body[off : off+4])
	off += 4
	partStartLocation := binary.LittleEndian.Uint32(body[off : off+4])
	off += 4
	partLength := binary.LittleEndian.Uint32(body[off : off+4])
	off += 4

	implIdent, err := common.ParseEntityID(body[off : off+common.EntityIDSize])
	if err != nil {
		return Partition{}, err
	}
	off += common.EntityIDSize

	var implUse [128]byte
	copy(implUse[:], body[off:off+128])
	off += 128

	var reserved [156]byte
	copy(reserved[:], body[off:off+156])
	off += 156

	return Partition{
		Tag:               tag,
		VolDescSeqNum:     volDescSeqNum,
		PartFlags:         partFlags,
		PartNum:           partNum,
		PartContents:      partContents,
		PartContentsUse:   partContentsUse,
		AccessType:        accessType,
		PartStartLocation: partStartLocation,
		PartLength:        partLength,
		ImplIdent:         implIdent,
		ImplementationUse: implUse,
		Reserved:          reserved,
		origExtent:        extent,
	}, nil
}

// Marshal seals and encodes the Partition descriptor.
func (p Partition) Marshal() ([]byte, error) {
	body := make([]byte, partitionBodySize)
	off := 0
	binary.LittleEndian.PutUint32(body[off:off+4], p.VolDescSeqNum)
	off += 4
	binary.LittleEndian.PutUint16(body[off:off+2], p.PartFlags)
	off += 2
	binary.LittleEndian.PutUint16(body[off:off+2], p.PartNum)
	off += 2

	partContents := p.PartContents.Marshal()
	copy(body[off:off+common.EntityIDSize], partContents[:])
	off += common.EntityIDSize

	partContentsUse := p.PartContentsUse.Marshal()
	copy(body[off:off+common.PartitionHeaderDescriptorSize], partContentsUse[:])
	off += common.PartitionHeaderDescriptorSize

	binary.LittleEndian.PutUint32(body[off:off+4], p.AccessType)
	off += 4
	binary.LittleEndian.PutUint32(body[off:off+4], p.PartStartLocation)
	off += 4
	binary.LittleEndian.PutUint32(body[off:off+4], p.PartLength)
	off += 4

	implIdent := p.ImplIdent.Marshal()
	copy(body[off:off+common.EntityIDSize], implIdent[:])
	off += common.EntityIDSize

	copy(body[off:off+128], p.ImplementationUse[:])
	off += 128

	copy(body[off:off+156], p.Reserved[:])
	off += 156

	if off != partitionBodySize {
		return nil, errs.Internal("partition volume descriptor body assembled to %d bytes, want %d", off, partitionBodySize)
	}

	return common.Seal(p.Tag, p.ExtentLocation(), body, len(body))
}

// ExtentLocation returns the sector this descriptor currently occupies.
func (p Partition) ExtentLocation() uint32 {
	if p.newExtent != nil {
		return *p.newExtent
	}
	return p.origExtent
}

// SetLocation relocates the descriptor.
func (p *Partition) SetLocation(newLocation uint32) {
	p.newExtent = &newLocation
	p.Tag.Location = newLocation
}

// SetStartLocation updates the partition's start location, used when the
// partition's placement on the medium changes independently of the
// descriptor's own sector.
func (p *Partition) SetStartLocation(newLocation uint32) {
	p.PartStartLocation = newLocation
}
