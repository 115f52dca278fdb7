package common

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

// LongADSize is the fixed on-disk size of a LongAllocationDescriptor.
const LongADSize = 16

// LongAD (Long Allocation Descriptor, ECMA-167 4/14.14.2) references an
// extent inside a partition.
type LongAD struct {
	ExtentLength    uint32
	LogicalBlockNum uint32
	PartitionRefNum uint16
	ImplUse         [6]byte
}

// NewLongAD builds a LongAD pointing at blockNum with the given length,
// targeting partition reference 0 (the only partition this codec supports).
func NewLongAD(length, blockNum uint32) LongAD {
	return LongAD{ExtentLength: length, LogicalBlockNum: blockNum}
}

// ParseLongAD decodes a 16-byte LongAD.
func ParseLongAD(b []byte) (LongAD, error) {
	if len(b) < LongADSize {
		return LongAD{}, errs.Internal("long allocation descriptor requires %d bytes, got %d", LongADSize, len(b))
	}
	var ad LongAD
	ad.ExtentLength = binary.LittleEndian.Uint32(b[0:4])
	ad.LogicalBlockNum = binary.LittleEndian.Uint32(b[4:8])
	ad.PartitionRefNum = binary.LittleEndian.Uint16(b[8:10])
	copy(ad.ImplUse[:], b[10:16])
	return ad, nil
}

// Marshal encodes the LongAD into its 16-byte wire form.
func (ad LongAD) Marshal() [LongADSize]byte {
	var out [LongADSize]byte
	binary.LittleEndian.PutUint32(out[0:4], ad.ExtentLength)
	binary.LittleEndian.PutUint32(out[4:8], ad.LogicalBlockNum)
	binary.LittleEndian.PutUint16(out[8:10], ad.PartitionRefNum)
	copy(out[10:16], ad.ImplUse[:])
	return out
}

// ShortAD (Short Allocation Descriptor, ECMA-167 4/14.14.1) is the 8-byte
// (length, position) pair FileEntry uses for its allocation descriptors.
type ShortAD struct {
	Length   uint32
	Position uint32
}

// ShortADSize is the fixed on-disk size of a ShortAD.
const ShortADSize = 8

// ParseShortAD decodes an 8-byte ShortAD.
func ParseShortAD(b []byte) (ShortAD, error) {
	if len(b) < ShortADSize {
		return ShortAD{}, errs.Internal("short allocation descriptor requires %d bytes, got %d", ShortADSize, len(b))
	}
	return ShortAD{
		Length:   binary.LittleEndian.Uint32(b[0:4]),
		Position: binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

// Marshal encodes the ShortAD into its 8-byte wire form.
func (ad ShortAD) Marshal() [ShortADSize]byte {
	var out [ShortADSize]byte
	binary.LittleEndian.PutUint32(out[0:4], ad.Length)
	binary.LittleEndian.PutUint32(out[4:8], ad.Position)
	return out
}
