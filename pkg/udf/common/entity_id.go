package common

import (
	"bytes"

	"github.com/bgrewell/go-udf/pkg/udf/errs"
)

// EntityIDSize is the fixed on-disk size of an EntityID.
const EntityIDSize = 32

const (
	identifierLen = 23
	suffixLen     = 8
)

// EntityID identifies the implementation or standard responsible for an
// interpreted field (ECMA-167 1/7.4): flags plus a NUL-padded identifier
// and suffix.
type EntityID struct {
	Flags      uint8
	Identifier [identifierLen]byte
	Suffix     [suffixLen]byte
}

// NewEntityID builds an EntityID, failing with InvalidInput if identifier
// or suffix overflow their fixed fields.
func NewEntityID(flags uint8, identifier string, suffix []byte) (EntityID, error) {
	if len(identifier) > identifierLen {
		return EntityID{}, errs.Input("entity id identifier must be %d characters or fewer, got %d", identifierLen, len(identifier))
	}
	if len(suffix) > suffixLen {
		return EntityID{}, errs.Input("entity id suffix must be %d bytes or fewer, got %d", suffixLen, len(suffix))
	}

	var e EntityID
	e.Flags = flags
	copy(e.Identifier[:], identifier)
	copy(e.Suffix[:], suffix)
	return e, nil
}

// ParseEntityID decodes a 32-byte EntityID.
func ParseEntityID(b []byte) (EntityID, error) {
	if len(b) < EntityIDSize {
		return EntityID{}, errs.Internal("entity id requires %d bytes, got %d", EntityIDSize, len(b))
	}
	var e EntityID
	e.Flags = b[0]
	copy(e.Identifier[:], b[1:1+identifierLen])
	copy(e.Suffix[:], b[1+identifierLen:1+identifierLen+suffixLen])
	return e, nil
}

// Marshal encodes the EntityID into its 32-byte wire form.
func (e EntityID) Marshal() [EntityIDSize]byte {
	var out [EntityIDSize]byte
	out[0] = e.Flags
	copy(out[1:1+identifierLen], e.Identifier[:])
	copy(out[1+identifierLen:1+identifierLen+suffixLen], e.Suffix[:])
	return out
}

// IdentifierString returns the identifier with trailing NUL bytes trimmed.
func (e EntityID) IdentifierString() string {
	return string(bytes.TrimRight(e.Identifier[:], "\x00"))
}

// HasPrefix reports whether the identifier begins with prefix (ignoring
// trailing NUL padding), the pattern UDF uses to tag an EntityID's meaning
// (e.g. "*OSTA UDF Compliant").
func (e EntityID) HasPrefix(prefix string) bool {
	if len(prefix) > identifierLen {
		return false
	}
	return bytes.Equal(e.Identifier[:len(prefix)], []byte(prefix))
}
