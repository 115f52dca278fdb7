package descriptor

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/consts"
	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
	"github.com/bgrewell/go-udf/pkg/udf/timeutil"
)

const logicalVolumeIntegrityBodySize = 12 + 4 + 4 + 4 + common.LogicalVolumeHeaderDescriptorSize + 4 + 4 + 4 + 4 + 424

// IntegrityOpen and IntegrityClose are the two values the IntegrityType
// field takes: open while the volume is being written, closed once the
// logical volume integrity sequence is finalized.
const (
	IntegrityOpen  uint32 = 0
	IntegrityClose uint32 = 1
)

// LogicalVolumeIntegrity (tag 9, ECMA-167 3/10.10) records the logical
// volume's open/closed state, its unique-ID counter, and the per-file and
// per-directory counts maintained across the volume's lifetime.
type LogicalVolumeIntegrity struct {
	Tag                     common.Tag
	RecordingDateAndTime    common.Timestamp
	IntegrityType           uint32
	NextIntegrityExtentLen  uint32
	NextIntegrityExtentLoc  uint32
	LogicalVolumeContentsUse common.LogicalVolumeHeaderDescriptor
	NumPartitions           uint32
	LengthOfImplementationUse uint32
	FreeSpaceTable          uint32
	SizeTable               uint32
	ImplementationUse       common.LogicalVolumeImplementationUse

	origExtent uint32
	newExtent  *uint32
}

// NewLogicalVolumeIntegrity builds a closed LogicalVolumeIntegrity
// descriptor for a single-partition volume of sizeBlocks total blocks with
// no blocks free (a read-only DVD profile has nothing left unallocated).
func NewLogicalVolumeIntegrity(clk timeutil.Clock, uniqueID uint64, sizeBlocks uint32, implID common.EntityID) LogicalVolumeIntegrity {
	return LogicalVolumeIntegrity{
		Tag:                   common.NewTag(9, 0),
		RecordingDateAndTime:  common.NewTimestamp(clk),
		IntegrityType:         IntegrityClose,
		LogicalVolumeContentsUse: common.LogicalVolumeHeaderDescriptor{UniqueID: uniqueID},
		NumPartitions:             1,
		LengthOfImplementationUse: consts.UDF_LVID_LENGTH_IMPL_USE,
		FreeSpaceTable:            0,
		SizeTable:                 sizeBlocks,
		ImplementationUse:         common.NewLogicalVolumeImplementationUse(implID),
	}
}

// ParseLogicalVolumeIntegrity decodes a LogicalVolumeIntegrity descriptor
// located at extent.
func ParseLogicalVolumeIntegrity(b []byte, extent uint32) (LogicalVolumeIntegrity, error) {
	if len(b) < common.TagSize+logicalVolumeIntegrityBodySize {
		return LogicalVolumeIntegrity{}, errs.Internal("logical volume integrity descriptor requires %d bytes, got %d", common.TagSize+logicalVolumeIntegrityBodySize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 9, extent)
	if err != nil {
		return LogicalVolumeIntegrity{}, err
	}
	body := b[common.TagSize : common.TagSize+logicalVolumeIntegrityBodySize]
	if len(body) < consts.UDF_LVID_CRC_WINDOW {
		return LogicalVolumeIntegrity{}, errs.Internal("logical volume integrity body shorter than its fixed CRC window")
	}
	if err := tag.VerifyCRC(body[:consts.UDF_LVID_CRC_WINDOW]); err != nil {
		return LogicalVolumeIntegrity{}, err
	}

	off := 0
	recordingDate, err := common.ParseTimestamp(body[off : off+common.TimestampSize])
	if err != nil {
		return LogicalVolumeIntegrity{}, err
	}
	off += common.TimestampSize

	readU32 := func() uint32 {
		v := binary.LittleEndian.Uint32(body[off : off+4])
		off += 4
		return v
	}

	integrityType := readU32()
	nextExtentLen := readU32()
	nextExtentLoc := readU32()

	lvContentsUse, err := common.ParseLogicalVolumeHeaderDescriptor(body[off : off+common.LogicalVolumeHeaderDescriptorSize])
	if err != nil {
		return LogicalVolumeIntegrity{}, err
	}
	off += common.LogicalVolumeHeaderDescriptorSize

	numPartitions := readU32()
	lengthImplUse := readU32()
	freeSpaceTable := readU32()
	sizeTable := readU32()

	if numPartitions != 1 {
		return LogicalVolumeIntegrity{}, errs.Format("multi-partition logical volumes are not supported")
	}

	implUse, err := common.ParseLogicalVolumeImplementationUse(body[off:])
	if err != nil {
		return LogicalVolumeIntegrity{}, err
	}

	return LogicalVolumeIntegrity{
		Tag:                       tag,
		RecordingDateAndTime:      recordingDate,
		IntegrityType:             integrityType,
		NextIntegrityExtentLen:    nextExtentLen,
		NextIntegrityExtentLoc:    nextExtentLoc,
		LogicalVolumeContentsUse:  lvContentsUse,
		NumPartitions:             numPartitions,
		LengthOfImplementationUse: lengthImplUse,
		FreeSpaceTable:            freeSpaceTable,
		SizeTable:                 sizeTable,
		ImplementationUse:         implUse,
		origExtent:                extent,
	}, nil
}

// Marshal seals and encodes the LogicalVolumeIntegrity descriptor, sealing
// its tag CRC over the fixed 118-byte window documented for this record.
func (d LogicalVolumeIntegrity) Marshal() ([]byte, error) {
	body := make([]byte, logicalVolumeIntegrityBodySize)
	off := 0
	rec := d.RecordingDateAndTime.Marshal()
	copy(body[off:off+common.TimestampSize], rec[:])
	off += common.TimestampSize

	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(body[off:off+4], v)
		off += 4
	}
	writeU32(d.IntegrityType)
	writeU32(d.NextIntegrityExtentLen)
	writeU32(d.NextIntegrityExtentLoc)

	lvContentsUse := d.LogicalVolumeContentsUse.Marshal()
	copy(body[off:off+common.LogicalVolumeHeaderDescriptorSize], lvContentsUse[:])
	off += common.LogicalVolumeHeaderDescriptorSize

	writeU32(1)
	writeU32(d.LengthOfImplementationUse)
	writeU32(d.FreeSpaceTable)
	writeU32(d.SizeTable)

	implUse := d.ImplementationUse.Marshal()
	if len(implUse) != 424 {
		return nil, errs.Internal("logical volume integrity implementation use assembled to %d bytes, want 424", len(implUse))
	}
	copy(body[off:], implUse)
	off += len(implUse)

	if off != logicalVolumeIntegrityBodySize {
		return nil, errs.Internal("logical volume integrity body assembled to %d bytes, want %d", off, logicalVolumeIntegrityBodySize)
	}

	return common.Seal(d.Tag, d.ExtentLocation(), body, consts.UDF_LVID_CRC_WINDOW)
}

// ExtentLocation returns the sector this descriptor currently occupies.
func (d LogicalVolumeIntegrity) ExtentLocation() uint32 {
	if d.newExtent != nil {
		return *d.newExtent
	}
	return d.origExtent
}

// SetLocation relocates the descriptor.
func (d *LogicalVolumeIntegrity) SetLocation(newLocation uint32) {
	d.newExtent = &newLocation
	d.Tag.Location = newLocation
}
