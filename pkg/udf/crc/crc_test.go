package crc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableFirstTenEntries(t *testing.T) {
	want := []uint16{0x0000, 0x1021, 0x2042, 0x3063, 0x4084, 0x50A5, 0x60C6, 0x70E7, 0x8108, 0x9129}
	tbl := Table()
	for i, w := range want {
		require.Equalf(t, w, tbl[i], "table[%d]", i)
	}
}

func TestCRC16CCITTEmpty(t *testing.T) {
	require.Equal(t, uint16(0), CRC16CCITT(nil))
}

func TestHeaderChecksumExcludesItself(t *testing.T) {
	tag := make([]byte, 16)
	for i := range tag {
		tag[i] = byte(i + 1)
	}
	tag[4] = 0
	sum := HeaderChecksum(tag)
	tag[4] = sum

	var total byte
	for i, b := range tag {
		if i == 4 {
			continue
		}
		total += b
	}
	require.Equal(t, total, tag[4])
}
