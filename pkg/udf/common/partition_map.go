package common

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

// PartitionMapSize is the fixed on-disk size of a type-1 PartitionMap.
const PartitionMapSize = 6

// PartitionMap is a type-1 (generic) partition map entry (ECMA-167
// 3/10.7.2): the only partition map type this codec supports.
type PartitionMap struct {
	PartitionNum uint16
}

// NewPartitionMap builds a PartitionMap referencing partNum.
func NewPartitionMap(partNum uint16) PartitionMap {
	return PartitionMap{PartitionNum: partNum}
}

// ParsePartitionMap decodes a 6-byte type-1 PartitionMap.
func ParsePartitionMap(b []byte) (PartitionMap, error) {
	if len(b) < PartitionMapSize {
		return PartitionMap{}, errs.Internal("partition map requires %d bytes, got %d", PartitionMapSize, len(b))
	}

	mapType := b[0]
	mapLength := b[1]
	volSeq := binary.LittleEndian.Uint16(b[2:4])

	if mapType != 1 {
		return PartitionMap{}, errs.Format("partition map type is not 1")
	}
	if mapLength != 6 {
		return PartitionMap{}, errs.Format("partition map length is not 6")
	}
	if volSeq != 1 {
		return PartitionMap{}, errs.Format("partition volume sequence number is not 1")
	}

	return PartitionMap{PartitionNum: binary.LittleEndian.Uint16(b[4:6])}, nil
}

// Marshal encodes the PartitionMap into its 6-byte wire form.
func (m PartitionMap) Marshal() [PartitionMapSize]byte {
	var out [PartitionMapSize]byte
	out[0] = 1
	out[1] = 6
	binary.LittleEndian.PutUint16(out[2:4], 1)
	binary.LittleEndian.PutUint16(out[4:6], m.PartitionNum)
	return out
}
