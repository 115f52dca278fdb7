package descriptor

import (
	"bytes"
	"encoding/binary"

	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
	"github.com/bgrewell/go-udf/pkg/udf/timeutil"
)

const primaryBodySize = 496

// read-only DVD profile constants enforced on every Primary Volume Descriptor.
const (
	pvdVolSeqNum            = 1
	pvdMaxVolSeqNum         = 1
	pvdInterchangeLevel     = 2
	pvdMaxInterchangeLevel  = 2
	pvdCharacterSetList     = 1
	pvdMaxCharacterSetList  = 1
	pvdFlags                = 0
)

// Primary (tag 1, ECMA-167 3/10.1) carries the volume and volume-set
// identity, character-set descriptors, abstract/copyright file extents,
// the implementation identifier, and the recording date.
type Primary struct {
	Tag                         common.Tag
	VolDescSeqNum               uint32
	DescNum                     uint32
	VolumeIdentifier            [32]byte
	VolSetIdent                 [128]byte
	DescCharSet                 [64]byte
	ExplanatoryCharSet          [64]byte
	VolAbstractLength           uint32
	VolAbstractExtent           uint32
	VolCopyrightLength          uint32
	VolCopyrightExtent          uint32
	AppIdent                    common.EntityID
	RecordingDate               common.Timestamp
	ImplIdent                   common.EntityID
	ImplementationUse           [64]byte
	PredecessorVolDescLocation  uint32

	origExtent uint32
	newExtent  *uint32
}

// NewPrimary builds a Primary volume descriptor for a freshly created
// volume named volumeIdentifier, seeding its volume-set identifier from rnd
// and its recording date from clk.
func NewPrimary(volumeIdentifier string, clk timeutil.Clock, rnd timeutil.Random) (Primary, error) {
	if len(volumeIdentifier) > 31 {
		return Primary{}, errs.Input("volume identifier must be 31 characters or fewer, got %d", len(volumeIdentifier))
	}

	appIdent, err := common.NewEntityID(0, "", nil)
	if err != nil {
		return Primary{}, err
	}
	implIdent, err := common.NewEntityID(0, "*genisoimage", nil)
	if err != nil {
		return Primary{}, err
	}

	p := Primary{
		Tag:            common.NewTag(1, 0),
		AppIdent:       appIdent,
		RecordingDate:  common.NewTimestamp(clk),
		ImplIdent:      implIdent,
	}
	copy(p.VolumeIdentifier[:], volumeIdentifier)
	p.VolSetIdent[0] = 8
	binary.LittleEndian.PutUint64(p.VolSetIdent[1:9], rnd.Uint64())
	copy(p.DescCharSet[:], "\x00OSTA Compressed Unicode")
	copy(p.ExplanatoryCharSet[:], "\x00OSTA Compressed Unicode")

	return p, nil
}

// ParsePrimary decodes a Primary volume descriptor located at extent,
// enforcing the read-only DVD profile constants.
func ParsePrimary(b []byte, extent uint32) (Primary, error) {
	if len(b) < common.TagSize+primaryBodySize {
		return Primary{}, errs.Internal("primary volume descriptor requires %d bytes, got %d", common.TagSize+primaryBodySize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 1, extent)
	if err != nil {
		return Primary{}, err
	}
	body := b[common.TagSize : common.TagSize+primaryBodySize]
	if err := tag.VerifyCRC(body); err != nil {
		return Primary{}, err
	}

	off := 0
	readU32 := func() uint32 {
		v := binary.LittleEndian.Uint32(body[off : off+4])
		off += 4
		return v
	}
	readU16 := func() uint16 {
		v := binary.LittleEndian.Uint16(body[off : off+2])
		off += 2
		return v
	}
	readBytes := func(n int) []byte {
		v := body[off : off+n]
		off += n
		return v
	}

	var p Primary
	p.VolDescSeqNum = readU32()
	p.DescNum = readU32()
	copy(p.VolumeIdentifier[:], readBytes(32))
	volSeqNum := readU16()
	maxVolSeqNum := readU16()
	interchangeLevel := readU16()
	maxInterchangeLevel := readU16()
	charsetList := readU32()
	maxCharsetList := readU32()
	copy(p.VolSetIdent[:], readBytes(128))
	copy(p.DescCharSet[:], readBytes(64))
	copy(p.ExplanatoryCharSet[:], readBytes(64))
	p.VolAbstractLength = readU32()
	p.VolAbstractExtent = readU32()
	p.VolCopyrightLength = readU32()
	p.VolCopyrightExtent = readU32()

	appIdent, err := common.ParseEntityID(readBytes(common.EntityIDSize))
	if err != nil {
		return Primary{}, err
	}
	p.AppIdent = appIdent

	recordingDate, err := common.ParseTimestamp(readBytes(common.TimestampSize))
	if err != nil {
		return Primary{}, err
	}
	p.RecordingDate = recordingDate

	implIdent, err := common.ParseEntityID(readBytes(common.EntityIDSize))
	if err != nil {
		return Primary{}, err
	}
	p.ImplIdent = implIdent

	copy(p.ImplementationUse[:], readBytes(64))
	p.PredecessorVolDescLocation = readU32()
	flags := readU16()
	reserved := readBytes(22)

	if volSeqNum != pvdVolSeqNum || maxVolSeqNum != pvdMaxVolSeqNum {
		return Primary{}, errs.Format("only DVD read-only disks are supported (volume sequence number)")
	}
	if interchangeLevel != pvdInterchangeLevel || maxInterchangeLevel != pvdMaxInterchangeLevel {
		return Primary{}, errs.Format("only DVD read-only disks are supported (interchange level)")
	}
	if charsetList != pvdCharacterSetList || maxCharsetList != pvdMaxCharacterSetList {
		return Primary{}, errs.Format("only DVD read-only disks are supported (character set list)")
	}
	if flags != pvdFlags {
		return Primary{}, errs.Format("only DVD read-only disks are supported (flags)")
	}
	if !bytes.Equal(reserved, make([]byte, 22)) {
		return Primary{}, errs.Format("primary volume descriptor reserved data not zero")
	}

	p.Tag = tag
	p.origExtent = extent
	return p, nil
}

// Marshal seals and encodes the Primary volume descriptor.
func (p Primary) Marshal() ([]byte, error) {
	body := make([]byte, primaryBodySize)
	off := 0
	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(body[off:off+4], v)
		off += 4
	}
	writeU16 := func(v uint16) {
		binary.LittleEndian.PutUint16(body[off:off+2], v)
		off += 2
	}
	writeBytes := func(b []byte) {
		copy(body[off:off+len(b)], b)
		off += len(b)
	}

	writeU32(p.VolDescSeqNum)
	writeU32(p.DescNum)
	writeBytes(p.VolumeIdentifier[:])
	writeU16(pvdVolSeqNum)
	writeU16(pvdMaxVolSeqNum)
	writeU16(pvdInterchangeLevel)
	writeU16(pvdMaxInterchangeLevel)
	writeU32(pvdCharacterSetList)
	writeU32(pvdMaxCharacterSetList)
	writeBytes(p.VolSetIdent[:])
	writeBytes(p.DescCharSet[:])
	writeBytes(p.ExplanatoryCharSet[:])
	writeU32(p.VolAbstractLength)
	writeU32(p.VolAbstractExtent)
	writeU32(p.VolCopyrightLength)
	writeU32(p.VolCopyrightExtent)
	appIdent := p.AppIdent.Marshal()
	writeBytes(appIdent[:])
	recordingDate := p.RecordingDate.Marshal()
	writeBytes(recordingDate[:])
	implIdent := p.ImplIdent.Marshal()
	writeBytes(implIdent[:])
	writeBytes(p.ImplementationUse[:])
	writeU32(p.PredecessorVolDescLocation)
	writeU16(pvdFlags)
	writeBytes(make([]byte, 22))

	if off != primaryBodySize {
		return nil, errs.Internal("primary volume descriptor body assembled to %d bytes, want %d", off, primaryBodySize)
	}

	return common.Seal(p.Tag, p.ExtentLocation(), body, len(body))
}

// ExtentLocation returns the sector this Primary currently occupies.
func (p Primary) ExtentLocation() uint32 {
	if p.newExtent != nil {
		return *p.newExtent
	}
	return p.origExtent
}

// SetLocation relocates the Primary volume descriptor.
func (p *Primary) SetLocation(newLocation uint32) {
	p.newExtent = &newLocation
	p.Tag.Location = newLocation
}
