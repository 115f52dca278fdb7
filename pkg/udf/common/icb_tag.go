package common

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

// ICBTagSize is the fixed on-disk size of an ICBTag.
const ICBTagSize = 20

// File type values relevant to a read-only UDF 2.01 volume.
const (
	FileTypeDirectory = 4
	FileTypeRegular   = 5
)

// ICBTag (ECMA-167 4/14.6) describes how to interpret the ICB (here,
// always a FileEntry) that carries it.
type ICBTag struct {
	PriorDirectEntries   uint32
	StrategyType         uint16
	StrategyParam        uint16
	MaxEntries           uint16
	FileType             uint8
	ParentICBLogBlockNum uint32
	ParentICBPartRefNum  uint16
	Flags                uint16
}

// NewICBTag builds an ICBTag for a fresh file entry of the given type.
func NewICBTag(fileType uint8) ICBTag {
	return ICBTag{
		StrategyType: 4,
		MaxEntries:   1,
		FileType:     fileType,
		Flags:        0x230,
	}
}

// ParseICBTag decodes a 20-byte ICBTag.
func ParseICBTag(b []byte) (ICBTag, error) {
	if len(b) < ICBTagSize {
		return ICBTag{}, errs.Internal("icb tag requires %d bytes, got %d", ICBTagSize, len(b))
	}

	strategyType := binary.LittleEndian.Uint16(b[4:6])
	if strategyType != 4 && strategyType != 4096 {
		return ICBTag{}, errs.Format("icb tag invalid strategy type %d", strategyType)
	}
	if b[10] != 0 {
		return ICBTag{}, errs.Format("icb tag reserved byte not zero")
	}

	return ICBTag{
		PriorDirectEntries:   binary.LittleEndian.Uint32(b[0:4]),
		StrategyType:         strategyType,
		StrategyParam:        binary.LittleEndian.Uint16(b[6:8]),
		MaxEntries:           binary.LittleEndian.Uint16(b[8:10]),
		FileType:             b[11],
		ParentICBLogBlockNum: binary.LittleEndian.Uint32(b[12:16]),
		ParentICBPartRefNum:  binary.LittleEndian.Uint16(b[16:18]),
		Flags:                binary.LittleEndian.Uint16(b[18:20]),
	}, nil
}

// Marshal encodes the ICBTag into its 20-byte wire form.
func (t ICBTag) Marshal() [ICBTagSize]byte {
	var out [ICBTagSize]byte
	binary.LittleEndian.PutUint32(out[0:4], t.PriorDirectEntries)
	binary.LittleEndian.PutUint16(out[4:6], t.StrategyType)
	binary.LittleEndian.PutUint16(out[6:8], t.StrategyParam)
	binary.LittleEndian.PutUint16(out[8:10], t.MaxEntries)
	out[10] = 0
	out[11] = t.FileType
	binary.LittleEndian.PutUint32(out[12:16], t.ParentICBLogBlockNum)
	binary.LittleEndian.PutUint16(out[16:18], t.ParentICBPartRefNum)
	binary.LittleEndian.PutUint16(out[18:20], t.Flags)
	return out
}
