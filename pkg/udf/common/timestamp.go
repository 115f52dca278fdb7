package common

import (
	"time"

	"github.com/bgrewell/go-udf/pkg/udf/errs"
	"github.com/bgrewell/go-udf/pkg/udf/timeutil"
)

// TimestampSize is the fixed on-disk size of a Timestamp.
const TimestampSize = 12

// Timestamp type values (ECMA-167 1/7.3).
const (
	TimestampTypeUTC       = 0
	TimestampTypeLocal     = 1
	TimestampTypeAgreement = 2
)

// TZUnspecified is the sentinel tz value meaning "not specified".
const TZUnspecified = -2047

// Timestamp is a UDF 12-byte timestamp: a signed 12-bit UTC offset in
// minutes plus a 4-bit type, followed by a plain calendar timestamp.
type Timestamp struct {
	TZ                   int16
	Type                 uint8
	Year                 uint16
	Month                uint8
	Day                  uint8
	Hour                 uint8
	Minute               uint8
	Second               uint8
	Centiseconds         uint8
	HundredsMicroseconds uint8
	Microseconds         uint8
}

// NewTimestamp builds a Timestamp from clk, typed as local time.
func NewTimestamp(clk timeutil.Clock) Timestamp {
	now := clk.Now()
	return Timestamp{
		TZ:     int16(clk.Offset(now)),
		Type:   TimestampTypeLocal,
		Year:   uint16(now.Year()),
		Month:  uint8(now.Month()),
		Day:    uint8(now.Day()),
		Hour:   uint8(now.Hour()),
		Minute: uint8(now.Minute()),
		Second: uint8(now.Second()),
	}
}

// ParseTimestamp decodes a 12-byte Timestamp and validates its fields.
func ParseTimestamp(b []byte) (Timestamp, error) {
	if len(b) < TimestampSize {
		return Timestamp{}, errs.Internal("timestamp requires %d bytes, got %d", TimestampSize, len(b))
	}

	tzLow := b[0]
	typeAndTZHigh := b[1]
	timetype := typeAndTZHigh >> 4

	raw := (uint16(typeAndTZHigh&0x0f) << 8) | uint16(tzLow)
	tz := signExtend12(raw)

	if (tz < -1440 || tz > 1440) && tz != TZUnspecified {
		return Timestamp{}, errs.Format("invalid UDF timezone %d", tz)
	}

	year := uint16(b[2]) | uint16(b[3])<<8
	month := b[4]
	day := b[5]
	hour := b[6]
	minute := b[7]
	second := b[8]

	if year < 1 || year > 9999 {
		return Timestamp{}, errs.Format("invalid UDF year %d", year)
	}
	if month < 1 || month > 12 {
		return Timestamp{}, errs.Format("invalid UDF month %d", month)
	}
	if day < 1 || day > 31 {
		return Timestamp{}, errs.Format("invalid UDF day %d", day)
	}
	if hour > 23 {
		return Timestamp{}, errs.Format("invalid UDF hour %d", hour)
	}
	if minute > 59 {
		return Timestamp{}, errs.Format("invalid UDF minute %d", minute)
	}
	if second > 59 {
		return Timestamp{}, errs.Format("invalid UDF second %d", second)
	}

	return Timestamp{
		TZ:                   tz,
		Type:                 timetype,
		Year:                 year,
		Month:                month,
		Day:                  day,
		Hour:                 hour,
		Minute:               minute,
		Second:               second,
		Centiseconds:         b[9],
		HundredsMicroseconds: b[10],
		Microseconds:         b[11],
	}, nil
}

// Marshal encodes the Timestamp into its 12-byte wire form.
func (t Timestamp) Marshal() [TimestampSize]byte {
	var out [TimestampSize]byte

	tmp := uint16(t.TZ) & 0x0fff
	out[0] = byte(tmp & 0xff)
	out[1] = byte((tmp>>8)&0x0f) | (t.Type << 4)
	out[2] = byte(t.Year)
	out[3] = byte(t.Year >> 8)
	out[4] = t.Month
	out[5] = t.Day
	out[6] = t.Hour
	out[7] = t.Minute
	out[8] = t.Second
	out[9] = t.Centiseconds
	out[10] = t.HundredsMicroseconds
	out[11] = t.Microseconds

	return out
}

// Time returns the Timestamp as a time.Time in a fixed offset matching its
// recorded TZ (in minutes east of UTC), or UTC if the offset is unspecified.
func (t Timestamp) Time() time.Time {
	loc := time.UTC
	if t.TZ != TZUnspecified {
		loc = time.FixedZone("", int(t.TZ)*60)
	}
	return time.Date(int(t.Year), time.Month(t.Month), int(t.Day), int(t.Hour), int(t.Minute), int(t.Second), 0, loc)
}

// signExtend12 sign-extends the low 12 bits of v.
func signExtend12(v uint16) int16 {
	v &= 0x0fff
	if v&0x0800 != 0 {
		return int16(v) - 0x1000
	}
	return int16(v)
}
