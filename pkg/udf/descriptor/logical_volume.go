package descriptor

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

const (
	logicalVolumeMapTableLength = 6
	logicalVolumeBodySize       = 4 + 64 + 128 + 4 + 32 + common.LongADSize + 4 + 4 + 32 + 128 + 4 + 4 + logicalVolumeMapTableLength
)

const logicalBlockSize = 2048

// LogicalVolume (tag 6, ECMA-167 3/10.6) names the logical volume, fixes its
// logical block size, and carries the single partition map and the pointer
// to the integrity sequence this codec supports.
type LogicalVolume struct {
	Tag                       common.Tag
	VolDescSeqNum             uint32
	DescCharSet               [64]byte
	LogicalVolIdent           [128]byte
	LogicalBlockSize          uint32
	DomainIdent               common.EntityID
	LogicalVolumeContentsUse  common.LongAD
	MapTableLength            uint32
	NumPartitionMaps          uint32
	ImplIdent                 common.EntityID
	ImplementationUse         [128]byte
	IntegritySequenceLength   uint32
	IntegritySequenceExtent   uint32
	PartitionMap              common.PartitionMap

	origExtent uint32
	newExtent  *uint32
}

// NewLogicalVolume builds a single-partition-map LogicalVolume descriptor.
func NewLogicalVolume(volName string, partitionNum uint16, fileSetExtent common.LongAD, integritySeqExtent, integritySeqLength uint32) (LogicalVolume, error) {
	domainIdent, err := common.NewEntityID(0, "*OSTA UDF Compliant", []byte{0x02, 0x01, 0x00})
	if err != nil {
		return LogicalVolume{}, err
	}
	implIdent, err := common.NewEntityID(0, "*genisoimage", nil)
	if err != nil {
		return LogicalVolume{}, err
	}

	lv := LogicalVolume{
		Tag:                      common.NewTag(6, 0),
		LogicalBlockSize:         logicalBlockSize,
		DomainIdent:              domainIdent,
		LogicalVolumeContentsUse: fileSetExtent,
		MapTableLength:           logicalVolumeMapTableLength,
		NumPartitionMaps:         1,
		ImplIdent:                implIdent,
		IntegritySequenceLength:  integritySeqLength,
		IntegritySequenceExtent:  integritySeqExtent,
		PartitionMap:             common.NewPartitionMap(partitionNum),
	}
	copy(lv.DescCharSet[:], "\x00OSTA Compressed Unicode")
	copy(lv.LogicalVolIdent[:], volName)
	return lv, nil
}

// ParseLogicalVolume decodes a LogicalVolume descriptor located at extent.
func ParseLogicalVolume(b []byte, extent uint32) (LogicalVolume, error) {
	if len(b) < common.TagSize+logicalVolumeBodySize {
		return LogicalVolume{}, errs.Internal("logical volume descriptor requires %d bytes, got %d", common.TagSize+logicalVolumeBodySize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 6, extent)
	if err != nil {
		return LogicalVolume{}, err
	}
	body := b[common.TagSize : common.TagSize+logicalVolumeBodySize]
	if err := tag.VerifyCRC(body); err != nil {
		return LogicalVolume{}, err
	}

	off := 0
	readU32 := func() uint32 {
		v := binary.LittleEndian.Uint32(body[off : off+4])
		off += 4
		return v
	}
	readBytes := func(n int) []byte {
		v := body[off : off+n]
		off += n
		return v
	}

	var lv LogicalVolume
	lv.VolDescSeqNum = readU32()
	copy(lv.DescCharSet[:], readBytes(64))
	copy(lv.LogicalVolIdent[:], readBytes(128))
	lv.LogicalBlockSize = readU32()
	if lv.LogicalBlockSize != logicalBlockSize {
		return LogicalVolume{}, errs.Format("only a %d byte logical block size is supported, got %d", logicalBlockSize, lv.LogicalBlockSize)
	}

	domainIdent, err := common.ParseEntityID(readBytes(common.EntityIDSize))
	if err != nil {
		return LogicalVolume{}, err
	}
	if !domainIdent.HasPrefix("*OSTA UDF Compliant") {
		return LogicalVolume{}, errs.Format("logical volume domain identifier not '*OSTA UDF Compliant'")
	}
	lv.DomainIdent = domainIdent

	lvContentsUse, err := common.ParseLongAD(readBytes(common.LongADSize))
	if err != nil {
		return LogicalVolume{}, err
	}
	lv.LogicalVolumeContentsUse = lvContentsUse

	lv.MapTableLength = readU32()
	lv.NumPartitionMaps = readU32()
	if lv.MapTableLength != logicalVolumeMapTableLength || lv.NumPartitionMaps != 1 {
		return LogicalVolume{}, errs.Format("multi-partition logical volumes are not supported")
	}

	implIdent, err := common.ParseEntityID(readBytes(common.EntityIDSize))
	if err != nil {
		return LogicalVolume{}, err
	}
	lv.ImplIdent = implIdent

	copy(lv.ImplementationUse[:], readBytes(128))
	lv.IntegritySequenceLength = readU32()
	lv.IntegritySequenceExtent = readU32()

	partitionMap, err := common.ParsePartitionMap(readBytes(logicalVolumeMapTableLength))
	if err != nil {
		return LogicalVolume{}, err
	}
	lv.PartitionMap = partitionMap

	lv.Tag = tag
	lv.origExtent = extent
	return lv, nil
}

// Marshal seals and encodes the LogicalVolume descriptor.
func (lv LogicalVolume) Marshal() ([]byte, error) {
	body := make([]byte, logicalVolumeBodySize)
	off := 0
	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(body[off:off+4], v)
		off += 4
	}
	writeBytes := func(b []byte) {
		copy(body[off:off+len(b)], b)
		off += len(b)
	}

	writeU32(lv.VolDescSeqNum)
	writeBytes(lv.DescCharSet[:])
	writeBytes(lv.LogicalVolIdent[:])
	writeU32(lv.LogicalBlockSize)
	domainIdent := lv.DomainIdent.Marshal()
	writeBytes(domainIdent[:])
	lvContentsUse := lv.LogicalVolumeContentsUse.Marshal()
	writeBytes(lvContentsUse[:])
	writeU32(logicalVolumeMapTableLength)
	writeU32(1)
	implIdent := lv.ImplIdent.Marshal()
	writeBytes(implIdent[:])
	writeBytes(lv.ImplementationUse[:])
	writeU32(lv.IntegritySequenceLength)
	writeU32(lv.IntegritySequenceExtent)
	partitionMap := lv.PartitionMap.Marshal()
	writeBytes(partitionMap[:])

	if off != logicalVolumeBodySize {
		return nil, errs.Internal("logical volume descriptor body assembled to %d bytes, want %d", off, logicalVolumeBodySize)
	}

	return common.Seal(lv.Tag, lv.ExtentLocation(), body, len(body))
}

// ExtentLocation returns the sector this descriptor currently occupies.
func (lv LogicalVolume) ExtentLocation() uint32 {
	if lv.newExtent != nil {
		return *lv.newExtent
	}
	return lv.origExtent
}

// SetLocation relocates the descriptor.
func (lv *LogicalVolume) SetLocation(newLocation uint32) {
	lv.newExtent = &newLocation
	lv.Tag.Location = newLocation
}
