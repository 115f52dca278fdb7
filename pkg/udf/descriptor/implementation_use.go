package descriptor

import (
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

const (
	lvInfoSize              = 460
	implementationUseBodySize = 4 + common.EntityIDSize + lvInfoSize
)

// LVInfo is the OSTA LV Info payload carried inside an Implementation Use
// Volume Descriptor's implementation-use field.
type LVInfo struct {
	Charset      [64]byte
	LogVolIdent  [128]byte
	Info1        [36]byte
	Info2        [36]byte
	Info3        [36]byte
	ImplIdent    common.EntityID
	ImplUse      [128]byte
}

// NewLVInfo builds a default OSTA LV Info payload naming volName.
func NewLVInfo(volName string) (LVInfo, error) {
	implIdent, err := common.NewEntityID(0, "*UDF LV Info", []byte{0x02, 0x01})
	if err != nil {
		return LVInfo{}, err
	}
	var info LVInfo
	copy(info.Charset[:], "\x00OSTA Compressed Unicode")
	copy(info.LogVolIdent[:], volName)
	info.ImplIdent = implIdent
	return info, nil
}

func parseLVInfo(b []byte) (LVInfo, error) {
	if len(b) < lvInfoSize {
		return LVInfo{}, errs.Internal("lv info requires %d bytes, got %d", lvInfoSize, len(b))
	}
	var info LVInfo
	off := 0
	copy(info.Charset[:], b[off:off+64])
	off += 64
	copy(info.LogVolIdent[:], b[off:off+128])
	off += 128
	copy(info.Info1[:], b[off:off+36])
	off += 36
	copy(info.Info2[:], b[off:off+36])
	off += 36
	copy(info.Info3[:], b[off:off+36])
	off += 36
	implIdent, err := common.ParseEntityID(b[off : off+common.EntityIDSize])
	if err != nil {
		return LVInfo{}, err
	}
	info.ImplIdent = implIdent
	off += common.EntityIDSize
	copy(info.ImplUse[:], b[off:off+128])
	return info, nil
}

func (info LVInfo) marshal() [lvInfoSize]byte {
	var out [lvInfoSize]byte
	off := 0
	copy(out[off:off+64], info.Charset[:])
	off += 64
	copy(out[off:off+128], info.LogVolIdent[:])
	off += 128
	copy(out[off:off+36], info.Info1[:])
	off += 36
	copy(out[off:off+36], info.Info2[:])
	off += 36
	copy(out[off:off+36], info.Info3[:])
	off += 36
	implIdent := info.ImplIdent.Marshal()
	copy(out[off:off+common.EntityIDSize], implIdent[:])
	off += common.EntityIDSize
	copy(out[off:off+128], info.ImplUse[:])
	return out
}

// ImplementationUse (tag 4, ECMA-167 3/10.4) carries implementation-specific
// logical volume information; the only shape this codec recognizes is the
// OSTA LV Info payload.
type ImplementationUse struct {
	Tag            common.Tag
	VolDescSeqNum  uint32
	ImplIdent      common.EntityID
	LVInfo         LVInfo

	origExtent uint32
	newExtent  *uint32
}

// NewImplementationUse builds an ImplementationUse descriptor wrapping info.
func NewImplementationUse(volDescSeqNum uint32, info LVInfo) (ImplementationUse, error) {
	implIdent, err := common.NewEntityID(0, "*UDF LV Info", nil)
	if err != nil {
		return ImplementationUse{}, err
	}
	return ImplementationUse{
		Tag:           common.NewTag(4, 0),
		VolDescSeqNum: volDescSeqNum,
		ImplIdent:     implIdent,
		LVInfo:        info,
	}, nil
}

// ParseImplementationUse decodes an ImplementationUse descriptor located at extent.
func ParseImplementationUse(b []byte, extent uint32) (ImplementationUse, error) {
	if len(b) < common.TagSize+implementationUseBodySize {
		return ImplementationUse{}, errs.Internal("implementation use volume descriptor requires %d bytes, got %d", common.TagSize+implementationUseBodySize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 4, extent)
	if err != nil {
		return ImplementationUse{}, err
	}
	body := b[common.TagSize : common.TagSize+implementationUseBodySize]
	if err := tag.VerifyCRC(body); err != nil {
		return ImplementationUse{}, err
	}

	volDescSeqNum := binary.LittleEndian.Uint32(body[0:4])
	implIdent, err := common.ParseEntityID(body[4 : 4+common.EntityIDSize])
	if err != nil {
		return ImplementationUse{}, err
	}
	if !implIdent.HasPrefix("*UDF LV Info") {
		return ImplementationUse{}, errs.Format("implementation use identifier not '*UDF LV Info'")
	}

	info, err := parseLVInfo(body[4+common.EntityIDSize:])
	if err != nil {
		return ImplementationUse{}, err
	}

	return ImplementationUse{
		Tag:           tag,
		VolDescSeqNum: volDescSeqNum,
		ImplIdent:     implIdent,
		LVInfo:        info,
		origExtent:    extent,
	}, nil
}

// Marshal seals and encodes the ImplementationUse descriptor.
func (u ImplementationUse) Marshal() ([]byte, error) {
	body := make([]byte, implementationUseBodySize)
	binary.LittleEndian.PutUint32(body[0:4], u.VolDescSeqNum)
	implIdent := u.ImplIdent.Marshal()
	copy(body[4:4+common.EntityIDSize], implIdent[:])
	info := u.LVInfo.marshal()
	copy(body[4+common.EntityIDSize:], info[:])

	return common.Seal(u.Tag, u.ExtentLocation(), body, len(body))
}

// ExtentLocation returns the sector this descriptor currently occupies.
func (u ImplementationUse) ExtentLocation() uint32 {
	if u.newExtent != nil {
		return *u.newExtent
	}
	return u.origExtent
}

// SetLocation relocates the descriptor.
func (u *ImplementationUse) SetLocation(newLocation uint32) {
	u.newExtent = &newLocation
	u.Tag.Location = newLocation
}
