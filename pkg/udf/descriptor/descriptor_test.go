package descriptor

import (
	"testing"
	"time"

	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
func (c fixedClock) Offset(time.Time) int { return 0 }

type fixedRandom struct{ v uint64 }

func (r fixedRandom) Uint64() uint64 { return r.v }

func TestAnchorRoundTrip(t *testing.T) {
	a := NewAnchor(257, 32, 289, 32)
	a.SetLocation(256, 257, 289)
	raw, err := a.Marshal()
	require.NoError(t, err)

	parsed, err := ParseAnchor(raw, 256)
	require.NoError(t, err)
	require.Equal(t, a.MainVDExtent, parsed.MainVDExtent)
	require.Equal(t, a.ReserveVDExtent, parsed.ReserveVDExtent)
	require.EqualValues(t, 256, parsed.ExtentLocation())
}

func TestAnchorRelocation(t *testing.T) {
	a := NewAnchor(257, 32, 289, 32)
	a.SetLocation(512, 300, 340)
	require.EqualValues(t, 512, a.ExtentLocation())
	require.EqualValues(t, 300, a.MainVDExtent)
	require.EqualValues(t, 340, a.ReserveVDExtent)
}

func TestPrimaryRoundTrip(t *testing.T) {
	clk := fixedClock{t: time.Date(2026, time.July, 30, 9, 0, 0, 0, time.UTC)}
	rnd := fixedRandom{v: 0x1122334455667788}

	p, err := NewPrimary("MYDISC", clk, rnd)
	require.NoError(t, err)
	p.SetLocation(17)

	raw, err := p.Marshal()
	require.NoError(t, err)

	parsed, err := ParsePrimary(raw, 17)
	require.NoError(t, err)
	require.Equal(t, "MYDISC", string(trimNul(parsed.VolumeIdentifier[:])))
}

func TestPrimaryRejectsIdentifierTooLong(t *testing.T) {
	clk := fixedClock{t: time.Now()}
	_, err := NewPrimary("this volume identifier is definitely too long", clk, fixedRandom{})
	require.Error(t, err)
}

func TestImplementationUseRoundTrip(t *testing.T) {
	info, err := NewLVInfo("MYDISC")
	require.NoError(t, err)
	u, err := NewImplementationUse(1, info)
	require.NoError(t, err)
	u.SetLocation(18)

	raw, err := u.Marshal()
	require.NoError(t, err)

	parsed, err := ParseImplementationUse(raw, 18)
	require.NoError(t, err)
	require.Equal(t, u.VolDescSeqNum, parsed.VolDescSeqNum)
}

func TestPartitionRoundTrip(t *testing.T) {
	p, err := NewPartition(0, 100, 5000)
	require.NoError(t, err)
	p.SetLocation(19)

	raw, err := p.Marshal()
	require.NoError(t, err)

	parsed, err := ParsePartition(raw, 19)
	require.NoError(t, err)
	require.EqualValues(t, 100, parsed.PartStartLocation)
	require.EqualValues(t, 5000, parsed.PartLength)
}

func TestPartitionRejectsBadContentsIdentifier(t *testing.T) {
	p, err := NewPartition(0, 100, 5000)
	require.NoError(t, err)
	badContents, err := common.NewEntityID(2, "+XYZ01", nil)
	require.NoError(t, err)
	p.PartContents = badContents
	raw, err := p.Marshal()
	require.NoError(t, err)
	_, err = ParsePartition(raw, 0)
	require.Error(t, err)
}

func TestLogicalVolumeRoundTrip(t *testing.T) {
	fsExtent := common.NewLongAD(2048, 200)
	lv, err := NewLogicalVolume("MYDISC", 0, fsExtent, 300, 1)
	require.NoError(t, err)
	lv.SetLocation(20)

	raw, err := lv.Marshal()
	require.NoError(t, err)

	parsed, err := ParseLogicalVolume(raw, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2048, parsed.LogicalVolumeContentsUse.ExtentLength)
	require.EqualValues(t, 200, parsed.LogicalVolumeContentsUse.LogicalBlockNum)
	require.EqualValues(t, 0, parsed.PartitionMap.PartitionNum)
}

func TestLogicalVolumeRejectsWrongBlockSize(t *testing.T) {
	fsExtent := common.NewLongAD(2048, 200)
	lv, err := NewLogicalVolume("MYDISC", 0, fsExtent, 300, 1)
	require.NoError(t, err)
	lv.LogicalBlockSize = 512

	raw, err := lv.Marshal()
	require.NoError(t, err)
	_, err = ParseLogicalVolume(raw, 0)
	require.Error(t, err)
}

func TestUnallocatedSpaceRoundTrip(t *testing.T) {
	u := NewUnallocatedSpace()
	u.SetLocation(21)
	raw, err := u.Marshal()
	require.NoError(t, err)

	parsed, err := ParseUnallocatedSpace(raw, 21)
	require.NoError(t, err)
	require.EqualValues(t, 0, parsed.VolDescSeqNum)
}

func TestTerminatingRoundTrip(t *testing.T) {
	term := NewTerminating()
	term.SetLocation(22)
	raw, err := term.Marshal()
	require.NoError(t, err)

	parsed, err := ParseTerminating(raw, 22)
	require.NoError(t, err)
	require.EqualValues(t, 22, parsed.ExtentLocation())
}

func TestTerminatingPartitionRelative(t *testing.T) {
	// a file set terminator's tag location is relative to its partition,
	// not the absolute sector it's written at.
	term := NewTerminating()
	term.SetLocation(3)
	raw, err := term.Marshal()
	require.NoError(t, err)

	_, err = ParseTerminating(raw, 3)
	require.NoError(t, err)
}

func TestLogicalVolumeIntegrityRoundTrip(t *testing.T) {
	clk := fixedClock{t: time.Date(2026, time.July, 30, 9, 0, 0, 0, time.UTC)}
	implID, err := common.NewEntityID(0, "*genisoimage", nil)
	require.NoError(t, err)

	d := NewLogicalVolumeIntegrity(clk, 42, 10000, implID)
	d.SetLocation(300)

	raw, err := d.Marshal()
	require.NoError(t, err)

	parsed, err := ParseLogicalVolumeIntegrity(raw, 300)
	require.NoError(t, err)
	require.EqualValues(t, 42, parsed.LogicalVolumeContentsUse.UniqueID)
	require.Equal(t, IntegrityClose, parsed.IntegrityType)
	require.EqualValues(t, 10000, parsed.SizeTable)
}

func trimNul(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
