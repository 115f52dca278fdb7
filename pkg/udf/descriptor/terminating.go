package descriptor

import (
	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

const terminatingBodySize = 496

// Terminating (tag 8, ECMA-167 3/10.9) closes a descriptor sequence. The
// same shape terminates both the volume descriptor sequence (tag location
// absolute within the volume) and the file set descriptor sequence (tag
// location relative to the start of its partition); callers pass whichever
// extent value matches that context.
type Terminating struct {
	Tag common.Tag

	origExtent uint32
	newExtent  *uint32
}

// NewTerminating builds a Terminating descriptor.
func NewTerminating() Terminating {
	return Terminating{Tag: common.NewTag(8, 0)}
}

// ParseTerminating decodes a Terminating descriptor whose tag location is
// expected to equal extent (absolute or partition-relative, per context).
func ParseTerminating(b []byte, extent uint32) (Terminating, error) {
	if len(b) < common.TagSize+terminatingBodySize {
		return Terminating{}, errs.Internal("terminating descriptor requires %d bytes, got %d", common.TagSize+terminatingBodySize, len(b))
	}

	tag, err := common.ParseTag(b[:common.TagSize], 8, extent)
	if err != nil {
		return Terminating{}, err
	}
	body := b[common.TagSize : common.TagSize+terminatingBodySize]
	if err := tag.VerifyCRC(body); err != nil {
		return Terminating{}, err
	}

	return Terminating{Tag: tag, origExtent: extent}, nil
}

// Marshal seals and encodes the Terminating descriptor: a 16-byte tag
// followed by 496 reserved zero bytes.
func (t Terminating) Marshal() ([]byte, error) {
	body := make([]byte, terminatingBodySize)
	return common.Seal(t.Tag, t.ExtentLocation(), body, len(body))
}

// ExtentLocation returns the extent (absolute or partition-relative) this
// descriptor currently occupies.
func (t Terminating) ExtentLocation() uint32 {
	if t.newExtent != nil {
		return *t.newExtent
	}
	return t.origExtent
}

// SetLocation relocates the descriptor.
func (t *Terminating) SetLocation(newLocation uint32) {
	t.newExtent = &newLocation
	t.Tag.Location = newLocation
}
