package fileset

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/consts"
	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
	"github.com/bgrewell/go-udf/pkg/udf/timeutil"
)

const fileEntryHeaderSize = common.ICBTagSize + 4 + 4 + 4 + 2 + 1 + 1 + 4 + 8 + 8 + common.TimestampSize*3 + 4 + common.LongADSize + common.EntityIDSize + 8 + 4 + 4

func init() {
	if common.TagSize+fileEntryHeaderSize != consts.UDF_FILE_ENTRY_HEADER_SIZE {
		panic("fileset: file entry header size constant mismatch")
	}
}

// FileEntry (tag 261, ECMA-167 4/14.9) is the ICB describing one file or
// directory: its ICBTag, ownership and permissions, sizes, timestamps, and
// the allocation descriptors locating its data.
type FileEntry struct {
	Tag                          common.Tag
	ICBTag                       common.ICBTag
	Uid                          uint32
	Gid                          uint32
	Permissions                  uint32
	FileLinkCount                uint16
	RecordFormat                 uint8
	RecordDisplayAttributes      uint8
	RecordLength                 uint32
	InformationLength            uint64
	LogicalBlocksRecorded        uint64
	AccessDateTime               common.Timestamp
	ModificationDateTime         common.Timestamp
	AttributeDateTime            common.Timestamp
	Checkpoint                   uint32
	ExtendedAttributeICB         common.LongAD
	ImplIdent                    common.EntityID
	UniqueID                     uint64
	ExtendedAttributes           []byte
	AllocationDescriptors        []common.ShortAD

	origExtent uint32
	newExtent  *uint32
}

// NewFileEntry builds a FileEntry of the given ICB file type (directory or
// regular file), stamped with clk and owning allocDescs.
func NewFileEntry(fileType uint8, clk timeutil.Clock, allocDescs []common.ShortAD) (FileEntry, error) {
	implIdent, err := common.NewEntityID(0, "*genisoimage", nil)
	if err != nil {
		return FileEntry{}, err
	}

	now := common.NewTimestamp(clk)
	var infoLength uint64
	var blocksRecorded uint64
	for _, ad := range allocDescs {
		infoLength += uint64(ad.Length)
	}
	blocksRecorded = (infoLength + consts.UDF_LOGICAL_BLOCK_SIZE - 1) / consts.UDF_LOGICAL_BLOCK_SIZE

	return FileEntry{
		Tag:                   common.NewTag(261, 0),
		ICBTag:                common.NewICBTag(fileType),
		Uid:                   consts.UDF_FILE_ENTRY_DEFAULT_UID,
		Gid:                   consts.UDF_FILE_ENTRY_DEFAULT_GID,
		Permissions:           consts.UDF_FILE_ENTRY_DEFAULT_PERMS,
		FileLinkCount:         1,
		InformationLength:     infoLength,
		LogicalBlocksRecorded: blocksRecorded,
		AccessDateTime:        now,
		ModificationDateTime:  now,
		AttributeDateTime:     now,
		Checkpoint:            consts.UDF_FILE_ENTRY_CHECKPOINT,
		ImplIdent:             implIdent,
		AllocationDescriptors: allocDescs,
	}, nil
}

// ParseFileEntry decodes a FileEntry located at extent.
func ParseFileEntry(b []byte, extent uint32) (FileEntry, error) {
	if len(b) < common.TagSize+fileEntryHeaderSize {
		return FileEntry{}, errs.Internal("file entry requires at least %d bytes, got %d", common.TagSize+fileEntryHeaderSize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 261, extent)
	if err != nil {
		return FileEntry{}, err
	}
	rest := b[common.TagSize:]

	crcWindow := consts.UDF_FILE_ENTRY_CRC_WINDOW
	if len(rest) < crcWindow {
		return FileEntry{}, errs.Internal("file entry body shorter than its fixed CRC window")
	}
	if err := tag.VerifyCRC(rest[:crcWindow]); err != nil {
		return FileEntry{}, err
	}

	var fe FileEntry
	off := 0
	icbTag, err := common.ParseICBTag(rest[off : off+common.ICBTagSize])
	if err != nil {
		return FileEntry{}, err
	}
	fe.ICBTag = icbTag
	off += common.ICBTagSize

	readU32 := func() uint32 {
		v := binary.LittleEndian.Uint32(rest[off : off+4])
		off += 4
		return v
	}
	readU64 := func() uint64 {
		v := binary.LittleEndian.Uint64(rest[off : off+8])
		off += 8
		return v
	}

	fe.Uid = readU32()
	fe.Gid = readU32()
	fe.Permissions = readU32()
	fe.FileLinkCount = binary.LittleEndian.Uint16(rest[off : off+2])
	off += 2
	fe.RecordFormat = rest[off]
	off++
	fe.RecordDisplayAttributes = rest[off]
	off++
	fe.RecordLength = readU32()
	fe.InformationLength = readU64()
	fe.LogicalBlocksRecorded = readU64()

	accessDate, err := common.ParseTimestamp(rest[off : off+common.TimestampSize])
	if err != nil {
		return FileEntry{}, err
	}
	fe.AccessDateTime = accessDate
	off += common.TimestampSize

	modDate, err := common.ParseTimestamp(rest[off : off+common.TimestampSize])
	if err != nil {
		return FileEntry{}, err
	}
	fe.ModificationDateTime = modDate
	off += common.TimestampSize

	attrDate, err := common.ParseTimestamp(rest[off : off+common.TimestampSize])
	if err != nil {
		return FileEntry{}, err
	}
	fe.AttributeDateTime = attrDate
	off += common.TimestampSize

	fe.Checkpoint = readU32()

	eaICB, err := common.ParseLongAD(rest[off : off+common.LongADSize])
	if err != nil {
		return FileEntry{}, err
	}
	fe.ExtendedAttributeICB = eaICB
	off += common.LongADSize

	implIdent, err := common.ParseEntityID(rest[off : off+common.EntityIDSize])
	if err != nil {
		return FileEntry{}, err
	}
	fe.ImplIdent = implIdent
	off += common.EntityIDSize

	fe.UniqueID = readU64()
	lengthEA := readU32()
	lengthAD := readU32()

	if off != fileEntryHeaderSize {
		return FileEntry{}, errs.Internal("file entry fixed header decoded to %d bytes, want %d", off, fileEntryHeaderSize)
	}

	if len(rest) < off+int(lengthEA)+int(lengthAD) {
		return FileEntry{}, errs.Format("file entry extended attributes/allocation descriptors exceed available bytes")
	}

	fe.ExtendedAttributes = append([]byte(nil), rest[off:off+int(lengthEA)]...)
	off += int(lengthEA)

	// A remainder here means truncated or corrupt data, not a file entry
	// with a fractional allocation descriptor.
	if lengthAD%common.ShortADSize != 0 {
		return FileEntry{}, errs.Format("file entry allocation descriptors length %d is not a multiple of %d", lengthAD, common.ShortADSize)
	}
	numAllocDescs := int(lengthAD) / common.ShortADSize
	fe.AllocationDescriptors = make([]common.ShortAD, 0, numAllocDescs)
	for i := 0; i < numAllocDescs; i++ {
		ad, err := common.ParseShortAD(rest[off : off+common.ShortADSize])
		if err != nil {
			return FileEntry{}, err
		}
		fe.AllocationDescriptors = append(fe.AllocationDescriptors, ad)
		off += common.ShortADSize
	}

	fe.Tag = tag
	fe.origExtent = extent
	return fe, nil
}

// Marshal seals and encodes the FileEntry: its 160-byte fixed header,
// extended attributes, and allocation descriptors, sealed with a CRC taken
// over the fixed 168-byte window documented for this record.
func (fe FileEntry) Marshal() ([]byte, error) {
	allocBytes := len(fe.AllocationDescriptors) * common.ShortADSize
	body := make([]byte, fileEntryHeaderSize+len(fe.ExtendedAttributes)+allocBytes)
	off := 0

	icbTag := fe.ICBTag.Marshal()
	copy(body[off:off+common.ICBTagSize], icbTag[:])
	off += common.ICBTagSize

	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(body[off:off+4], v)
		off += 4
	}
	writeU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(body[off:off+8], v)
		off += 8
	}

	writeU32(fe.Uid)
	writeU32(fe.Gid)
	writeU32(fe.Permissions)
	binary.LittleEndian.PutUint16(body[off:off+2], fe.FileLinkCount)
	off += 2
	body[off] = fe.RecordFormat
	off++
	body[off] = fe.RecordDisplayAttributes
	off++
	writeU32(fe.RecordLength)
	writeU64(fe.InformationLength)
	writeU64(fe.LogicalBlocksRecorded)

	accessDate := fe.AccessDateTime.Marshal()
	copy(body[off:off+common.TimestampSize], accessDate[:])
	off += common.TimestampSize
	modDate := fe.ModificationDateTime.Marshal()
	copy(body[off:off+common.TimestampSize], modDate[:])
	off += common.TimestampSize
	attrDate := fe.AttributeDateTime.Marshal()
	copy(body[off:off+common.TimestampSize], attrDate[:])
	off += common.TimestampSize

	writeU32(fe.Checkpoint)

	eaICB := fe.ExtendedAttributeICB.Marshal()
	copy(body[off:off+common.LongADSize], eaICB[:])
	off += common.LongADSize

	implIdent := fe.ImplIdent.Marshal()
	copy(body[off:off+common.EntityIDSize], implIdent[:])
	off += common.EntityIDSize

	writeU64(fe.UniqueID)
	writeU32(uint32(len(fe.ExtendedAttributes)))
	writeU32(uint32(allocBytes))

	if off != fileEntryHeaderSize {
		return nil, errs.Internal("file entry fixed header assembled to %d bytes, want %d", off, fileEntryHeaderSize)
	}

	copy(body[off:], fe.ExtendedAttributes)
	off += len(fe.ExtendedAttributes)

	for _, ad := range fe.AllocationDescriptors {
		enc := ad.Marshal()
		copy(body[off:off+common.ShortADSize], enc[:])
		off += common.ShortADSize
	}

	if off != len(body) {
		return nil, errs.Internal("file entry body assembled to %d bytes, want %d", off, len(body))
	}

	if len(body) < consts.UDF_FILE_ENTRY_CRC_WINDOW {
		return nil, errs.Internal("file entry body of %d bytes is shorter than the required %d byte CRC window (add at least one allocation descriptor)", len(body), consts.UDF_FILE_ENTRY_CRC_WINDOW)
	}

	return common.Seal(fe.Tag, fe.ExtentLocation(), body, consts.UDF_FILE_ENTRY_CRC_WINDOW)
}

// ExtentLocation returns the sector this FileEntry currently occupies.
func (fe FileEntry) ExtentLocation() uint32 {
	if fe.newExtent != nil {
		return *fe.newExtent
	}
	return fe.origExtent
}

// SetLocation relocates the FileEntry.
func (fe *FileEntry) SetLocation(newLocation uint32) {
	fe.newExtent = &newLocation
	fe.Tag.Location = newLocation
}

// IsDirectory reports whether this FileEntry describes a directory.
func (fe FileEntry) IsDirectory() bool {
	return fe.ICBTag.FileType == common.FileTypeDirectory
}
