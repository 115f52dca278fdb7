// Package fileset implements the file set descriptor sequence: the
// FileSetDescriptor that anchors a logical volume's namespace, FileEntry
// ICBs describing individual files and directories, and the
// FileIdentifierDescriptor records that populate directory contents.
package fileset

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
	"github.com/bgrewell/go-udf/pkg/udf/timeutil"
)

const fileSetDescriptorBodySize = 12 + 2 + 2 + 4 + 4 + 4 + 4 + 64 + 128 + 64 + 32 + 32 + 32 + common.LongADSize + common.EntityIDSize + common.LongADSize + 48

// FileSetDescriptor (tag 256, ECMA-167 4/14.1) anchors the namespace of a
// logical volume: its own identity, the root directory ICB, and the UDF
// domain identifier this codec requires.
type FileSetDescriptor struct {
	Tag                        common.Tag
	RecordingDateAndTime       common.Timestamp
	InterchangeLevel           uint16
	MaxInterchangeLevel        uint16
	CharSetList                uint32
	MaxCharSetList             uint32
	FileSetNumber              uint32
	FileSetDescNumber          uint32
	LogicalVolIdentCharSet     [64]byte
	LogicalVolIdent            [128]byte
	FileSetCharSet             [64]byte
	FileSetIdent               [32]byte
	CopyrightFileIdent         [32]byte
	AbstractFileIdent          [32]byte
	RootDirectoryICB           common.LongAD
	DomainIdent                common.EntityID
	NextExtent                 common.LongAD
	SystemStreamAndReserved    [48]byte

	origExtent uint32
	newExtent  *uint32
}

// NewFileSetDescriptor builds a FileSetDescriptor for a freshly created
// volume named volName, pointing at rootDirICB.
func NewFileSetDescriptor(clk timeutil.Clock, volName string, rootDirICB common.LongAD) (FileSetDescriptor, error) {
	domainIdent, err := common.NewEntityID(0, "*OSTA UDF Compliant", []byte{0x02, 0x01, 0x00})
	if err != nil {
		return FileSetDescriptor{}, err
	}

	fsd := FileSetDescriptor{
		Tag:                  common.NewTag(256, 0),
		RecordingDateAndTime: common.NewTimestamp(clk),
		InterchangeLevel:     3,
		MaxInterchangeLevel:  3,
		CharSetList:          1,
		MaxCharSetList:       1,
		RootDirectoryICB:     rootDirICB,
		DomainIdent:          domainIdent,
	}
	copy(fsd.LogicalVolIdentCharSet[:], "\x00OSTA Compressed Unicode")
	copy(fsd.LogicalVolIdent[:], volName)
	copy(fsd.FileSetCharSet[:], "\x00OSTA Compressed Unicode")
	return fsd, nil
}

// ParseFileSetDescriptor decodes a FileSetDescriptor whose tag location is
// partition-relative (its extent argument must match that relative value).
func ParseFileSetDescriptor(b []byte, extent uint32) (FileSetDescriptor, error) {
	if len(b) < common.TagSize+fileSetDescriptorBodySize {
		return FileSetDescriptor{}, errs.Internal("file set descriptor requires %d bytes, got %d", common.TagSize+fileSetDescriptorBodySize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 256, extent)
	if err != nil {
		return FileSetDescriptor{}, err
	}
	body := b[common.TagSize : common.TagSize+fileSetDescriptorBodySize]
	if err := tag.VerifyCRC(body); err != nil {
		return FileSetDescriptor{}, err
	}

	var fsd FileSetDescriptor
	off := 0
	recordingDate, err := common.ParseTimestamp(body[off : off+common.TimestampSize])
	if err != nil {
		return FileSetDescriptor{}, err
	}
	fsd.RecordingDateAndTime = recordingDate
	off += common.TimestampSize

	fsd.InterchangeLevel = binary.LittleEndian.Uint16(body[off : off+2])
	off += 2
	fsd.MaxInterchangeLevel = binary.LittleEndian.Uint16(body[off : off+2])
	off += 2
	fsd.CharSetList = binary.LittleEndian.Uint32(body[off : off+4])
	off += 4
	fsd.MaxCharSetList = binary.LittleEndian.Uint32(body[off : off+4])
	off += 4
	fsd.FileSetNumber = binary.LittleEndian.Uint32(body[off : off+4])
	off += 4
	fsd.FileSetDescNumber = binary.LittleEndian.Uint32(body[off : off+4])
	off += 4

	copy(fsd.LogicalVolIdentCharSet[:], body[off:off+64])
	off += 64
	copy(fsd.LogicalVolIdent[:], body[off:off+128])
	off += 128
	copy(fsd.FileSetCharSet[:], body[off:off+64])
	off += 64
	copy(fsd.FileSetIdent[:], body[off:off+32])
	off += 32
	copy(fsd.CopyrightFileIdent[:], body[off:off+32])
	off += 32
	copy(fsd.AbstractFileIdent[:], body[off:off+32])
	off += 32

	rootDirICB, err := common.ParseLongAD(body[off : off+common.LongADSize])
	if err != nil {
		return FileSetDescriptor{}, err
	}
	fsd.RootDirectoryICB = rootDirICB
	off += common.LongADSize

	domainIdent, err := common.ParseEntityID(body[off : off+common.EntityIDSize])
	if err != nil {
		return FileSetDescriptor{}, err
	}
	if !domainIdent.HasPrefix("*OSTA UDF Compliant") {
		return FileSetDescriptor{}, errs.Format("file set descriptor domain identifier not '*OSTA UDF Compliant'")
	}
	fsd.DomainIdent = domainIdent
	off += common.EntityIDSize

	nextExtent, err := common.ParseLongAD(body[off : off+common.LongADSize])
	if err != nil {
		return FileSetDescriptor{}, err
	}
	fsd.NextExtent = nextExtent
	off += common.LongADSize

	copy(fsd.SystemStreamAndReserved[:], body[off:off+48])

	fsd.Tag = tag
	fsd.origExtent = extent
	return fsd, nil
}

// Marshal seals and encodes the FileSetDescriptor.
func (fsd FileSetDescriptor) Marshal() ([]byte, error) {
	body := make([]byte, fileSetDescriptorBodySize)
	off := 0

	rec := fsd.RecordingDateAndTime.Marshal()
	copy(body[off:off+common.TimestampSize], rec[:])
	off += common.TimestampSize

	binary.LittleEndian.PutUint16(body[off:off+2], fsd.InterchangeLevel)
	off += 2
	binary.LittleEndian.PutUint16(body[off:off+2], fsd.MaxInterchangeLevel)
	off += 2
	binary.LittleEndian.PutUint32(body[off:off+4], fsd.CharSetList)
	off += 4
	binary.LittleEndian.PutUint32(body[off:off+4], fsd.MaxCharSetList)
	off += 4
	binary.LittleEndian.PutUint32(body[off:off+4], fsd.FileSetNumber)
	off += 4
	binary.LittleEndian.PutUint32(body[off:off+4], fsd.FileSetDescNumber)
	off += 4

	copy(body[off:off+64], fsd.LogicalVolIdentCharSet[:])
	off += 64
	copy(body[off:off+128], fsd.LogicalVolIdent[:])
	off += 128
	copy(body[off:off+64], fsd.FileSetCharSet[:])
	off += 64
	copy(body[off:off+32], fsd.FileSetIdent[:])
	off += 32
	copy(body[off:off+32], fsd.CopyrightFileIdent[:])
	off += 32
	copy(body[off:off+32], fsd.AbstractFileIdent[:])
	off += 32

	rootDirICB := fsd.RootDirectoryICB.Marshal()
	copy(body[off:off+common.LongADSize], rootDirICB[:])
	off += common.LongADSize

	domainIdent := fsd.DomainIdent.Marshal()
	copy(body[off:off+common.EntityIDSize], domainIdent[:])
	off += common.EntityIDSize

	nextExtent := fsd.NextExtent.Marshal()
	copy(body[off:off+common.LongADSize], nextExtent[:])
	off += common.LongADSize

	copy(body[off:off+48], fsd.SystemStreamAndReserved[:])
	off += 48

	if off != fileSetDescriptorBodySize {
		return nil, errs.Internal("file set descriptor body assembled to %d bytes, want %d", off, fileSetDescriptorBodySize)
	}

	return common.Seal(fsd.Tag, fsd.ExtentLocation(), body, len(body))
}

// ExtentLocation returns the (partition-relative) extent this descriptor
// currently occupies.
func (fsd FileSetDescriptor) ExtentLocation() uint32 {
	if fsd.newExtent != nil {
		return *fsd.newExtent
	}
	return fsd.origExtent
}

// SetLocation relocates the descriptor.
func (fsd *FileSetDescriptor) SetLocation(newLocation uint32) {
	fsd.newExtent = &newLocation
	fsd.Tag.Location = newLocation
}
