package recognition

import (
	"testing"

	"github.com/bgrewell/go-udf/pkg/consts"
	"github.com/stretchr/testify/require"
)

func TestBEA01RoundTrip(t *testing.T) {
	var raw [Size]byte
	raw[0] = 0
	copy(raw[1:6], "BEA01")
	raw[6] = 1

	s, err := Parse(raw[:], "BEA01", 17)
	require.NoError(t, err)
	require.EqualValues(t, 17, s.ExtentLocation())

	marshaled := s.Marshal()
	require.Equal(t, raw, marshaled)
}

func TestParseRejectsWrongIdentifier(t *testing.T) {
	var raw [Size]byte
	copy(raw[1:6], "XXXXX")
	raw[6] = 1
	_, err := Parse(raw[:], "NSR02", 0)
	require.Error(t, err)
}

func TestParseRejectsNonzeroReserved(t *testing.T) {
	var raw [Size]byte
	copy(raw[1:6], "TEA01")
	raw[6] = 1
	raw[2000] = 1
	_, err := Parse(raw[:], "TEA01", 0)
	require.Error(t, err)
}

func TestNewValidatesIdentifierLength(t *testing.T) {
	_, err := New("BEA0")
	require.Error(t, err)
}

func TestStdIdentifiersMatchConsts(t *testing.T) {
	require.Equal(t, "BEA01", consts.UDF_VRS_BEA01)
	require.Equal(t, "NSR02", consts.UDF_VRS_NSR02)
	require.Equal(t, "TEA01", consts.UDF_VRS_TEA01)
}
