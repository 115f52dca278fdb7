package fileset

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/consts"
	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

const fidFixedSize = 2 + 1 + 1 + common.LongADSize + 2 // 22 bytes after the 16-byte tag (38 with it)

func init() {
	if common.TagSize+fidFixedSize != consts.UDF_FID_FIXED_SIZE {
		panic("fileset: file identifier fixed size constant mismatch")
	}
}

// File characteristic flags (ECMA-167 4/14.4.3).
const (
	CharHidden    = 0x01
	CharDirectory = consts.UDF_FID_CHAR_DIRECTORY
	CharDeleted   = 0x04
	CharParent    = consts.UDF_FID_CHAR_PARENT
)

// FileIdentifierDescriptor (tag 257, ECMA-167 4/14.4) is one entry in a
// directory: a name, the characteristics flags, and the ICB locating the
// named file's FileEntry.
type FileIdentifierDescriptor struct {
	Tag                 common.Tag
	FileVersionNumber   uint16
	FileCharacteristics uint8
	ICB                 common.LongAD
	ImplementationUse   []byte
	FileIdentifier      []byte

	origExtent uint32
	newExtent  *uint32
}

// NewFileIdentifierDescriptor builds a directory entry named name pointing
// at icb, with the given characteristics flags.
func NewFileIdentifierDescriptor(name string, characteristics uint8, icb common.LongAD) FileIdentifierDescriptor {
	var ident []byte
	if characteristics&(CharParent) == 0 {
		ident = []byte(name)
	}
	return FileIdentifierDescriptor{
		Tag:                 common.NewTag(257, 0),
		FileVersionNumber:   consts.UDF_FID_FILE_VERSION,
		FileCharacteristics: characteristics,
		ICB:                 icb,
		FileIdentifier:      ident,
	}
}

// pad returns the number of zero bytes required to round val up to the
// next multiple of 4.
func pad(val int) int {
	return 4*((val+3)/4) - val
}

// ParseFileIdentifierDescriptor decodes a FileIdentifierDescriptor located
// at extent (partition-relative, as directory contents live in partition
// space), returning the total on-disk size consumed including padding.
func ParseFileIdentifierDescriptor(b []byte, extent uint32) (FileIdentifierDescriptor, int, error) {
	if len(b) < fidFixedSize+common.TagSize {
		return FileIdentifierDescriptor{}, 0, errs.Internal("file identifier descriptor requires at least %d bytes, got %d", fidFixedSize+common.TagSize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 257, extent)
	if err != nil {
		return FileIdentifierDescriptor{}, 0, err
	}
	rest := b[common.TagSize:]

	fileVersionNumber := binary.LittleEndian.Uint16(rest[0:2])
	characteristics := rest[2]
	lengthFileIdent := int(rest[3])
	icb, err := common.ParseLongAD(rest[4 : 4+common.LongADSize])
	if err != nil {
		return FileIdentifierDescriptor{}, 0, err
	}
	lengthImplUse := int(binary.LittleEndian.Uint16(rest[4+common.LongADSize : 4+common.LongADSize+2]))

	off := fidFixedSize
	if len(rest) < off+lengthImplUse+lengthFileIdent {
		return FileIdentifierDescriptor{}, 0, errs.Format("file identifier descriptor implementation use/identifier exceed available bytes")
	}

	implUse := append([]byte(nil), rest[off:off+lengthImplUse]...)
	off += lengthImplUse
	fileIdent := append([]byte(nil), rest[off:off+lengthFileIdent]...)
	off += lengthFileIdent

	recordedLen := fidFixedSize + lengthImplUse + lengthFileIdent
	if err := tag.VerifyCRC(rest[:recordedLen]); err != nil {
		return FileIdentifierDescriptor{}, 0, err
	}

	padLen := pad(common.TagSize + recordedLen)
	totalLen := common.TagSize + recordedLen + padLen
	if len(b) < totalLen {
		return FileIdentifierDescriptor{}, 0, errs.Format("file identifier descriptor padding exceeds available bytes")
	}
	for _, pb := range b[common.TagSize+recordedLen : totalLen] {
		if pb != 0 {
			return FileIdentifierDescriptor{}, 0, errs.Format("file identifier descriptor padding not zero")
		}
	}

	fid := FileIdentifierDescriptor{
		Tag:                 tag,
		FileVersionNumber:   fileVersionNumber,
		FileCharacteristics: characteristics,
		ICB:                 icb,
		ImplementationUse:   implUse,
		FileIdentifier:      fileIdent,
		origExtent:          extent,
	}
	return fid, totalLen, nil
}

// Marshal seals and encodes the FileIdentifierDescriptor, padding the
// record out to the next 4-byte boundary with zero bytes not covered by
// the tag's CRC.
func (fid FileIdentifierDescriptor) Marshal() ([]byte, error) {
	recordedLen := fidFixedSize + len(fid.ImplementationUse) + len(fid.FileIdentifier)
	body := make([]byte, recordedLen)

	binary.LittleEndian.PutUint16(body[0:2], fid.FileVersionNumber)
	body[2] = fid.FileCharacteristics
	body[3] = byte(len(fid.FileIdentifier))
	icb := fid.ICB.Marshal()
	copy(body[4:4+common.LongADSize], icb[:])
	binary.LittleEndian.PutUint16(body[4+common.LongADSize:4+common.LongADSize+2], uint16(len(fid.ImplementationUse)))

	off := fidFixedSize
	copy(body[off:off+len(fid.ImplementationUse)], fid.ImplementationUse)
	off += len(fid.ImplementationUse)
	copy(body[off:off+len(fid.FileIdentifier)], fid.FileIdentifier)

	sealed, err := common.Seal(fid.Tag, fid.ExtentLocation(), body, len(body))
	if err != nil {
		return nil, err
	}

	padLen := pad(len(sealed))
	return append(sealed, make([]byte, padLen)...), nil
}

// ExtentLocation returns the (partition-relative) extent this descriptor
// currently occupies.
func (fid FileIdentifierDescriptor) ExtentLocation() uint32 {
	if fid.newExtent != nil {
		return *fid.newExtent
	}
	return fid.origExtent
}

// SetLocation relocates the descriptor.
func (fid *FileIdentifierDescriptor) SetLocation(newLocation uint32) {
	fid.newExtent = &newLocation
	fid.Tag.Location = newLocation
}

// Name returns the file identifier as a string (empty for the parent "..").
func (fid FileIdentifierDescriptor) Name() string {
	return string(fid.FileIdentifier)
}

// IsDirectory reports whether this entry names a directory.
func (fid FileIdentifierDescriptor) IsDirectory() bool {
	return fid.FileCharacteristics&CharDirectory != 0
}

// IsParent reports whether this entry is the ".." parent-directory marker.
func (fid FileIdentifierDescriptor) IsParent() bool {
	return fid.FileCharacteristics&CharParent != 0
}
