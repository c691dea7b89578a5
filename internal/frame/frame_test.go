package frame

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"itchbook/internal/itch"
)

// appendRecord appends a length-prefixed record with the given tag and
// total body length (including the tag byte), zero-filling the rest.
func appendRecord(buf []byte, tag byte, bodyLen int) []byte {
	body := make([]byte, bodyLen)
	body[0] = tag
	var lenPrefix [2]byte
	binary.BigEndian.PutUint16(lenPrefix[:], uint16(bodyLen))
	buf = append(buf, lenPrefix[:]...)
	return append(buf, body...)
}

func TestFramingRoundTrip(t *testing.T) {
	var buf []byte
	buf = appendRecord(buf, byte(itch.TagSystemEvent), itch.FixedLen[itch.TagSystemEvent])
	buf = appendRecord(buf, byte(itch.TagOrderDelete), itch.FixedLen[itch.TagOrderDelete])

	dec := New(buf)
	f1, ok, err := dec.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, byte(itch.TagSystemEvent), f1.Tag)

	f2, ok, err := dec.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, byte(itch.TagOrderDelete), f2.Tag)

	_, ok, err = dec.Next()
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, int64(0), dec.UnknownCount())
}

func TestUnknownTagToleratedBetweenValidFrames(t *testing.T) {
	var buf []byte
	buf = appendRecord(buf, byte(itch.TagSystemEvent), itch.FixedLen[itch.TagSystemEvent])
	buf = appendRecord(buf, 'Z', 5) // unknown tag, arbitrary length
	buf = appendRecord(buf, byte(itch.TagOrderDelete), itch.FixedLen[itch.TagOrderDelete])

	dec := New(buf)
	f1, _, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, byte(itch.TagSystemEvent), f1.Tag)

	f2, _, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, byte('Z'), f2.Tag)
	require.Equal(t, int64(1), dec.UnknownCount())

	f3, _, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, byte(itch.TagOrderDelete), f3.Tag)
}

func TestTruncatedFrame(t *testing.T) {
	var buf []byte
	var lenPrefix [2]byte
	binary.BigEndian.PutUint16(lenPrefix[:], 10)
	buf = append(buf, lenPrefix[:]...)
	buf = append(buf, 0x01, 0x02) // only 2 of the promised 10 bytes

	dec := New(buf)
	_, ok, err := dec.Next()
	require.Error(t, err)
	require.False(t, ok)
}

func TestZeroLengthIsMalformed(t *testing.T) {
	var buf []byte
	var lenPrefix [2]byte
	binary.BigEndian.PutUint16(lenPrefix[:], 0)
	buf = append(buf, lenPrefix[:]...)

	dec := New(buf)
	_, ok, err := dec.Next()
	require.Error(t, err)
	require.False(t, ok)
}
