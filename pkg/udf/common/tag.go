// Package common holds the record types ECMA-167/UDF descriptors embed:
// the descriptor tag, timestamp, entity identifier, long allocation
// descriptor, ICB tag, partition map, and the small header descriptors
// used inside the logical volume integrity descriptor.
package common

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/crc"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

// TagSize is the fixed on-disk size of a DescriptorTag.
const TagSize = 16

// Tag is the 16-byte header present on every non-recognition UDF
// descriptor (ECMA-167 3/7.2).
type Tag struct {
	Ident         uint16
	Version       uint16
	SerialNumber  uint16
	CRC           uint16
	CRCLength     uint16
	Location      uint32
}

// ParseTag decodes a 16-byte descriptor tag and verifies its header
// checksum. It does not verify the CRC window, which depends on a body
// the caller reads separately; use VerifyCRC for that once the body is
// available.
func ParseTag(b []byte, wantIdent uint16, extent uint32) (Tag, error) {
	if len(b) < TagSize {
		return Tag{}, errs.Internal("descriptor tag requires %d bytes, got %d", TagSize, len(b))
	}

	ident := binary.LittleEndian.Uint16(b[0:2])
	version := binary.LittleEndian.Uint16(b[2:4])
	checksum := b[4]
	reserved := b[5]
	serial := binary.LittleEndian.Uint16(b[6:8])
	descCRC := binary.LittleEndian.Uint16(b[8:10])
	crcLength := binary.LittleEndian.Uint16(b[10:12])
	location := binary.LittleEndian.Uint32(b[12:16])

	if reserved != 0 {
		return Tag{}, errs.Format("descriptor tag reserved byte not zero")
	}

	if crc.HeaderChecksum(b[:TagSize]) != checksum {
		return Tag{}, errs.Format("tag checksum does not match")
	}

	if location != extent {
		return Tag{}, errs.Format("tag location 0x%x does not match actual location 0x%x", location, extent)
	}

	if version != 2 && version != 3 {
		return Tag{}, errs.Format("tag version not 2 or 3")
	}

	if ident != wantIdent {
		return Tag{}, errs.Format("descriptor tag identifier %d, want %d", ident, wantIdent)
	}

	return Tag{
		Ident:        ident,
		Version:      version,
		SerialNumber: serial,
		CRC:          descCRC,
		CRCLength:    crcLength,
		Location:     location,
	}, nil
}

// VerifyCRC recomputes the CRC over crcBytes[:t.CRCLength] and compares it
// against the tag's stored CRC. crcBytes must be at least t.CRCLength long.
func (t Tag) VerifyCRC(crcBytes []byte) error {
	if len(crcBytes) < int(t.CRCLength) {
		return errs.Internal("not enough CRC bytes to compute (expected at least %d, got %d)", t.CRCLength, len(crcBytes))
	}
	if crc.CRC16CCITT(crcBytes[:t.CRCLength]) != t.CRC {
		return errs.Format("tag CRC does not match")
	}
	return nil
}

// NewTag constructs a Tag for a freshly created descriptor, at location 0
// (relocate before emission with a type-specific set_location equivalent).
func NewTag(ident uint16, serial uint16) Tag {
	return Tag{Ident: ident, Version: 2, SerialNumber: serial}
}

// Seal serializes t with location and a CRC computed over
// body[:crcLength], patching in the header checksum. It returns the
// 16-byte tag followed by body, ready to write to disk.
func Seal(t Tag, location uint32, body []byte, crcLength int) ([]byte, error) {
	if crcLength > len(body) {
		return nil, errs.Internal("crc window %d exceeds body length %d", crcLength, len(body))
	}

	t.Location = location
	t.CRC = crc.CRC16CCITT(body[:crcLength])
	t.CRCLength = uint16(crcLength)

	out := make([]byte, TagSize+len(body))
	binary.LittleEndian.PutUint16(out[0:2], t.Ident)
	binary.LittleEndian.PutUint16(out[2:4], t.Version)
	out[4] = 0
	out[5] = 0
	binary.LittleEndian.PutUint16(out[6:8], t.SerialNumber)
	binary.LittleEndian.PutUint16(out[8:10], t.CRC)
	binary.LittleEndian.PutUint16(out[10:12], t.CRCLength)
	binary.LittleEndian.PutUint32(out[12:16], t.Location)
	out[4] = crc.HeaderChecksum(out[:TagSize])

	copy(out[TagSize:], body)
	return out, nil
}
