package fileset

import (
	"testing"
	"time"

	"github.com/bgrewell/go-udf/pkg/consts"
	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time      { return c.t }
func (c fixedClock) Offset(time.Time) int { return 0 }

func testClock() fixedClock {
	return fixedClock{t: time.Date(2026, time.July, 30, 9, 0, 0, 0, time.UTC)}
}

func TestFileSetDescriptorRoundTrip(t *testing.T) {
	rootICB := common.NewLongAD(2048, 5)
	fsd, err := NewFileSetDescriptor(testClock(), "MYDISC", rootICB)
	require.NoError(t, err)
	fsd.SetLocation(0)

	raw, err := fsd.Marshal()
	require.NoError(t, err)

	parsed, err := ParseFileSetDescriptor(raw, 0)
	require.NoError(t, err)
	require.EqualValues(t, 5, parsed.RootDirectoryICB.LogicalBlockNum)
	require.True(t, parsed.DomainIdent.HasPrefix("*OSTA UDF Compliant"))
}

func TestFileEntryRoundTripDirectory(t *testing.T) {
	allocDescs := []common.ShortAD{{Length: 2048, Position: 10}}
	fe, err := NewFileEntry(common.FileTypeDirectory, testClock(), allocDescs)
	require.NoError(t, err)
	fe.SetLocation(6)

	raw, err := fe.Marshal()
	require.NoError(t, err)

	parsed, err := ParseFileEntry(raw, 6)
	require.NoError(t, err)
	require.True(t, parsed.IsDirectory())
	require.Len(t, parsed.AllocationDescriptors, 1)
	require.EqualValues(t, 2048, parsed.AllocationDescriptors[0].Length)
	require.EqualValues(t, 10, parsed.AllocationDescriptors[0].Position)
}

func TestFileEntryRejectsShortCRCWindowAtMarshal(t *testing.T) {
	fe, err := NewFileEntry(common.FileTypeRegular, testClock(), nil)
	require.NoError(t, err)
	_, err = fe.Marshal()
	require.Error(t, err)
}

func TestFileEntryRejectsMisalignedAllocationDescriptorLength(t *testing.T) {
	allocDescs := []common.ShortAD{{Length: 2048, Position: 10}}
	fe, err := NewFileEntry(common.FileTypeRegular, testClock(), allocDescs)
	require.NoError(t, err)
	fe.SetLocation(6)

	raw, err := fe.Marshal()
	require.NoError(t, err)

	// corrupt the recorded allocation-descriptor length so it is no
	// longer a multiple of 8.
	lenADOffset := len(raw) - common.ShortADSize - 4
	raw[lenADOffset] = 5
	// reseal so the tag CRC matches and the length guard is what rejects it.
	raw, err = common.Seal(fe.Tag, 6, raw[common.TagSize:], consts.UDF_FILE_ENTRY_CRC_WINDOW)
	require.NoError(t, err)
	_, err = ParseFileEntry(raw, 6)
	require.Error(t, err)
}

func TestFileIdentifierDescriptorRoundTrip(t *testing.T) {
	icb := common.NewLongAD(2048, 12)
	fid := NewFileIdentifierDescriptor("hello.txt", 0, icb)
	fid.SetLocation(0)

	raw, err := fid.Marshal()
	require.NoError(t, err)
	require.Equal(t, 0, len(raw)%4)

	parsed, n, err := ParseFileIdentifierDescriptor(raw, 0)
	require.NoError(t, err)
	require.Equal(t, len(raw), n)
	require.Equal(t, "hello.txt", parsed.Name())
	require.False(t, parsed.IsDirectory())
}

func TestFileIdentifierDescriptorParentEntry(t *testing.T) {
	icb := common.NewLongAD(2048, 3)
	fid := NewFileIdentifierDescriptor("", CharParent|CharDirectory, icb)
	fid.SetLocation(0)

	raw, err := fid.Marshal()
	require.NoError(t, err)

	parsed, _, err := ParseFileIdentifierDescriptor(raw, 0)
	require.NoError(t, err)
	require.True(t, parsed.IsParent())
	require.True(t, parsed.IsDirectory())
	require.Equal(t, "", parsed.Name())
}

func TestFileIdentifierDescriptorPadAligns(t *testing.T) {
	icb := common.NewLongAD(2048, 12)
	for _, name := range []string{"a", "ab", "abc", "abcd", "abcde"} {
		fid := NewFileIdentifierDescriptor(name, 0, icb)
		raw, err := fid.Marshal()
		require.NoError(t, err)
		require.Equal(t, 0, len(raw)%4, "name %q produced unaligned record", name)
	}
}
