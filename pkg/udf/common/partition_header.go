package common

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

// PartitionHeaderDescriptorSize is the fixed on-disk size of a
// PartitionHeaderDescriptor.
const PartitionHeaderDescriptorSize = 128

// PartitionHeaderDescriptor (ECMA-167 4/14.3) carries the unallocated
// space, partition integrity, and freed space tables of a rewritable UDF
// partition. On a read-only DVD profile every field is required to be
// zero; the codec only validates and emits that all-zero shape.
type PartitionHeaderDescriptor struct{}

// NewPartitionHeaderDescriptor builds the all-zero header required by the
// read-only DVD profile.
func NewPartitionHeaderDescriptor() PartitionHeaderDescriptor {
	return PartitionHeaderDescriptor{}
}

// ParsePartitionHeaderDescriptor decodes a 128-byte PartitionHeaderDescriptor,
// failing unless every length/position field is zero.
func ParsePartitionHeaderDescriptor(b []byte) (PartitionHeaderDescriptor, error) {
	if len(b) < PartitionHeaderDescriptorSize {
		return PartitionHeaderDescriptor{}, errs.Internal("partition header descriptor requires %d bytes, got %d", PartitionHeaderDescriptorSize, len(b))
	}

	fields := []struct {
		name string
		val  uint32
	}{
		{"unallocated table length", binary.LittleEndian.Uint32(b[0:4])},
		{"unallocated table position", binary.LittleEndian.Uint32(b[4:8])},
		{"unallocated bitmap length", binary.LittleEndian.Uint32(b[8:12])},
		{"unallocated bitmap position", binary.LittleEndian.Uint32(b[12:16])},
		{"partition integrity table length", binary.LittleEndian.Uint32(b[16:20])},
		{"partition integrity table position", binary.LittleEndian.Uint32(b[20:24])},
		{"freed table length", binary.LittleEndian.Uint32(b[24:28])},
		{"freed table position", binary.LittleEndian.Uint32(b[28:32])},
		{"freed bitmap length", binary.LittleEndian.Uint32(b[32:36])},
		{"freed bitmap position", binary.LittleEndian.Uint32(b[36:40])},
	}
	for _, f := range fields {
		if f.val != 0 {
			return PartitionHeaderDescriptor{}, errs.Format("partition header %s not 0", f.name)
		}
	}

	return PartitionHeaderDescriptor{}, nil
}

// Marshal encodes the all-zero 128-byte PartitionHeaderDescriptor.
func (PartitionHeaderDescriptor) Marshal() [PartitionHeaderDescriptorSize]byte {
	var out [PartitionHeaderDescriptorSize]byte
	return out
}

// LogicalVolumeHeaderDescriptorSize is the fixed on-disk size of a
// LogicalVolumeHeaderDescriptor.
const LogicalVolumeHeaderDescriptorSize = 32

// LogicalVolumeHeaderDescriptor (ECMA-167 4/14.15) is the logical volume
// integrity descriptor's "contents use" field: a unique-ID counter.
type LogicalVolumeHeaderDescriptor struct {
	UniqueID uint64
}

// ParseLogicalVolumeHeaderDescriptor decodes a 32-byte
// LogicalVolumeHeaderDescriptor.
func ParseLogicalVolumeHeaderDescriptor(b []byte) (LogicalVolumeHeaderDescriptor, error) {
	if len(b) < LogicalVolumeHeaderDescriptorSize {
		return LogicalVolumeHeaderDescriptor{}, errs.Internal("logical volume header descriptor requires %d bytes, got %d", LogicalVolumeHeaderDescriptorSize, len(b))
	}
	return LogicalVolumeHeaderDescriptor{UniqueID: binary.LittleEndian.Uint64(b[0:8])}, nil
}

// Marshal encodes the LogicalVolumeHeaderDescriptor into its 32-byte wire form.
func (d LogicalVolumeHeaderDescriptor) Marshal() [LogicalVolumeHeaderDescriptorSize]byte {
	var out [LogicalVolumeHeaderDescriptorSize]byte
	binary.LittleEndian.PutUint64(out[0:8], d.UniqueID)
	return out
}

// LogicalVolumeImplementationUseSize is the fixed-prefix size of a
// LogicalVolumeImplementationUse record (excluding its opaque tail).
const LogicalVolumeImplementationUseSize = 46

// LogicalVolumeImplementationUse is the implementation-use payload
// embedded in the Logical Volume Integrity Descriptor's 424-byte
// implementation-use area.
type LogicalVolumeImplementationUse struct {
	ImplID            EntityID
	NumFiles          uint32
	NumDirs           uint32
	MinUDFReadRev     uint16
	MinUDFWriteRev    uint16
	MaxUDFWriteRev    uint16
	ImplUse           []byte // opaque tail, pass-through only
}

// NewLogicalVolumeImplementationUse builds a default record for a
// freshly created volume (one root directory, no files yet).
func NewLogicalVolumeImplementationUse(implID EntityID) LogicalVolumeImplementationUse {
	return LogicalVolumeImplementationUse{
		ImplID:         implID,
		NumDirs:        1,
		MinUDFReadRev:  258,
		MinUDFWriteRev: 258,
		MaxUDFWriteRev: 258,
		ImplUse:        make([]byte, 378),
	}
}

// ParseLogicalVolumeImplementationUse decodes the 46-byte fixed prefix and
// keeps the remainder (to offset 424) as an opaque pass-through tail.
func ParseLogicalVolumeImplementationUse(b []byte) (LogicalVolumeImplementationUse, error) {
	if len(b) < LogicalVolumeImplementationUseSize {
		return LogicalVolumeImplementationUse{}, errs.Internal("logical volume implementation use requires %d bytes, got %d", LogicalVolumeImplementationUseSize, len(b))
	}

	implID, err := ParseEntityID(b[0:32])
	if err != nil {
		return LogicalVolumeImplementationUse{}, err
	}

	tail := make([]byte, len(b)-LogicalVolumeImplementationUseSize)
	copy(tail, b[LogicalVolumeImplementationUseSize:])

	return LogicalVolumeImplementationUse{
		ImplID:         implID,
		NumFiles:       binary.LittleEndian.Uint32(b[32:36]),
		NumDirs:        binary.LittleEndian.Uint32(b[36:40]),
		MinUDFReadRev:  binary.LittleEndian.Uint16(b[40:42]),
		MinUDFWriteRev: binary.LittleEndian.Uint16(b[42:44]),
		MaxUDFWriteRev: binary.LittleEndian.Uint16(b[44:46]),
		ImplUse:        tail,
	}, nil
}

// Marshal encodes the record: 46-byte fixed prefix followed by the opaque
// tail as stored.
func (u LogicalVolumeImplementationUse) Marshal() []byte {
	out := make([]byte, LogicalVolumeImplementationUseSize+len(u.ImplUse))
	implID := u.ImplID.Marshal()
	copy(out[0:32], implID[:])
	binary.LittleEndian.PutUint32(out[32:36], u.NumFiles)
	binary.LittleEndian.PutUint32(out[36:40], u.NumDirs)
	binary.LittleEndian.PutUint16(out[40:42], u.MinUDFReadRev)
	binary.LittleEndian.PutUint16(out[42:44], u.MinUDFWriteRev)
	binary.LittleEndian.PutUint16(out[44:46], u.MaxUDFWriteRev)
	copy(out[LogicalVolumeImplementationUseSize:], u.ImplUse)
	return out
}
