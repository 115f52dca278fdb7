// Package timeutil supplies the two host collaborators the UDF codec
// consumes but does not implement itself: a clock for Timestamp
// construction and a random source for seeding volume-set identifiers.
package timeutil

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Clock supplies the current instant and its UTC offset in minutes.
type Clock interface {
	Now() time.Time
	// Offset returns t's UTC offset in minutes, in [-1440, 1440].
	Offset(t time.Time) int
}

// SystemClock is the default Clock, backed by the host's wall clock and
// time zone database.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Offset(t time.Time) int {
	_, offsetSeconds := t.Zone()
	return offsetSeconds / 60
}

// Random supplies 64 random bits, used to seed a freshly constructed
// Primary Volume Descriptor's volume-set identifier.
type Random interface {
	Uint64() uint64
}

// CryptoRandom is the default Random, backed by crypto/rand.
type CryptoRandom struct{}

func (CryptoRandom) Uint64() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// unavailable; degrade to a fixed value rather than panic.
		return 0
	}
	return binary.LittleEndian.Uint64(b[:])
}
