package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now    time.Time
	offset int
}

func (c fixedClock) Now() time.Time     { return c.now }
func (c fixedClock) Offset(time.Time) int { return c.offset }

func TestTimestampRoundTrip(t *testing.T) {
	ts := Timestamp{
		TZ: 60, Type: TimestampTypeLocal, Year: 2024, Month: 3, Day: 17,
		Hour: 11, Minute: 22, Second: 33, Centiseconds: 1,
		HundredsMicroseconds: 2, Microseconds: 3,
	}
	marshaled := ts.Marshal()
	parsed, err := ParseTimestamp(marshaled[:])
	require.NoError(t, err)
	require.Equal(t, ts, parsed)
}

func TestTimestampNegativeTZRoundTrip(t *testing.T) {
	ts := Timestamp{TZ: -300, Type: TimestampTypeUTC, Year: 1999, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59}
	marshaled := ts.Marshal()
	parsed, err := ParseTimestamp(marshaled[:])
	require.NoError(t, err)
	require.Equal(t, int16(-300), parsed.TZ)
}

func TestTimestampUnspecifiedTZ(t *testing.T) {
	ts := Timestamp{TZ: TZUnspecified, Year: 2000, Month: 1, Day: 1}
	marshaled := ts.Marshal()
	parsed, err := ParseTimestamp(marshaled[:])
	require.NoError(t, err)
	require.Equal(t, int16(TZUnspecified), parsed.TZ)
}

func TestTimestampOutOfRangeTZRejected(t *testing.T) {
	ts := Timestamp{TZ: 1441, Year: 2000, Month: 1, Day: 1}
	marshaled := ts.Marshal()
	_, err := ParseTimestamp(marshaled[:])
	require.Error(t, err)
}

// TestNewTimestampDoesNotSwapMonthAndDay pins the month/day assignment
// against a regression of the source's "self.day = local.tm_mon" bug.
func TestNewTimestampDoesNotSwapMonthAndDay(t *testing.T) {
	clk := fixedClock{now: time.Date(2026, time.July, 30, 9, 0, 0, 0, time.UTC), offset: 0}
	ts := NewTimestamp(clk)
	require.EqualValues(t, 7, ts.Month)
	require.EqualValues(t, 30, ts.Day)
}

func TestEntityIDRoundTrip(t *testing.T) {
	e, err := NewEntityID(0, "*OSTA UDF Compliant", []byte{0x02, 0x01, 0x03})
	require.NoError(t, err)
	marshaled := e.Marshal()
	parsed, err := ParseEntityID(marshaled[:])
	require.NoError(t, err)
	require.Equal(t, e, parsed)
	require.True(t, parsed.HasPrefix("*OSTA UDF Compliant"))
	require.Equal(t, "*OSTA UDF Compliant", parsed.IdentifierString())
}

func TestEntityIDRejectsOversizedIdentifier(t *testing.T) {
	_, err := NewEntityID(0, "this identifier is definitely far too long for udf", nil)
	require.Error(t, err)
}

func TestLongADRoundTrip(t *testing.T) {
	ad := NewLongAD(2048, 17)
	marshaled := ad.Marshal()
	parsed, err := ParseLongAD(marshaled[:])
	require.NoError(t, err)
	require.Equal(t, ad, parsed)
}

func TestICBTagRejectsBadStrategyType(t *testing.T) {
	tag := NewICBTag(FileTypeDirectory)
	tag.StrategyType = 7
	marshaled := tag.Marshal()
	_, err := ParseICBTag(marshaled[:])
	require.Error(t, err)
}

func TestICBTagRoundTrip(t *testing.T) {
	tag := NewICBTag(FileTypeRegular)
	marshaled := tag.Marshal()
	parsed, err := ParseICBTag(marshaled[:])
	require.NoError(t, err)
	require.Equal(t, tag, parsed)
}

func TestPartitionMapRoundTrip(t *testing.T) {
	m := NewPartitionMap(0)
	marshaled := m.Marshal()
	parsed, err := ParsePartitionMap(marshaled[:])
	require.NoError(t, err)
	require.Equal(t, m, parsed)
}

func TestPartitionHeaderDescriptorRoundTrip(t *testing.T) {
	h := NewPartitionHeaderDescriptor()
	marshaled := h.Marshal()
	parsed, err := ParsePartitionHeaderDescriptor(marshaled[:])
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestPartitionHeaderDescriptorRejectsNonzero(t *testing.T) {
	b := make([]byte, PartitionHeaderDescriptorSize)
	b[0] = 1
	_, err := ParsePartitionHeaderDescriptor(b)
	require.Error(t, err)
}

func TestTagSealAndParseRoundTrip(t *testing.T) {
	body := make([]byte, 496)
	for i := range body {
		body[i] = byte(i)
	}
	tag := NewTag(2, 0)
	sealed, err := Seal(tag, 256, body, len(body))
	require.NoError(t, err)
	require.Len(t, sealed, TagSize+len(body))

	parsed, err := ParseTag(sealed[:TagSize], 2, 256)
	require.NoError(t, err)
	require.Equal(t, uint32(256), parsed.Location)
	require.NoError(t, parsed.VerifyCRC(sealed[TagSize:]))
}

func TestTagParseRejectsBadChecksum(t *testing.T) {
	body := make([]byte, 16)
	tag := NewTag(2, 0)
	sealed, err := Seal(tag, 0, body, len(body))
	require.NoError(t, err)

	sealed[4] ^= 1
	_, err = ParseTag(sealed[:TagSize], 2, 0)
	require.Error(t, err)
}

func TestTagSealRejectsShortCRCWindow(t *testing.T) {
	_, err := Seal(NewTag(2, 0), 0, []byte{1, 2, 3}, 10)
	require.Error(t, err)
}
