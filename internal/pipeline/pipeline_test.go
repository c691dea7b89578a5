package pipeline

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"itchbook/internal/book"
	"itchbook/internal/emit"
	"itchbook/internal/itch"
)

func putU48(b []byte, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	copy(b, buf[2:])
}

func stockDirectory(locate uint16, sym string) []byte {
	body := make([]byte, itch.FixedLen[itch.TagStockDirectory])
	body[0] = byte(itch.TagStockDirectory)
	binary.BigEndian.PutUint16(body[1:3], locate)
	paddedSym := itch.PadSymbol(sym)
	copy(body[11:19], paddedSym[:])
	return body
}

func addOrder(locate uint16, ref uint64, side byte, qty uint32, sym string, price uint32) []byte {
	body := make([]byte, itch.FixedLen[itch.TagAddOrder])
	body[0] = byte(itch.TagAddOrder)
	binary.BigEndian.PutUint16(body[1:3], locate)
	putU48(body[5:11], 1)
	binary.BigEndian.PutUint64(body[11:19], ref)
	body[19] = side
	binary.BigEndian.PutUint32(body[20:24], qty)
	paddedSym := itch.PadSymbol(sym)
	copy(body[24:32], paddedSym[:])
	binary.BigEndian.PutUint32(body[32:36], price)
	return body
}

func orderDelete(ref uint64) []byte {
	body := make([]byte, itch.FixedLen[itch.TagOrderDelete])
	body[0] = byte(itch.TagOrderDelete)
	binary.BigEndian.PutUint64(body[11:19], ref)
	return body
}

func frameOf(body []byte) []byte {
	var out []byte
	var lenPrefix [2]byte
	binary.BigEndian.PutUint16(lenPrefix[:], uint16(len(body)))
	out = append(out, lenPrefix[:]...)
	return append(out, body...)
}

// scenario 4: filter-across-symbols. Only the tracked symbol's traffic
// reaches the engine; a delete for another symbol's ref is a no-op.
func TestFilterAcrossSymbols(t *testing.T) {
	var data []byte
	data = append(data, frameOf(stockDirectory(1, "AAPL"))...)
	data = append(data, frameOf(stockDirectory(2, "MSFT"))...)
	data = append(data, frameOf(addOrder(2, 7, 'B', 100, "MSFT", 1000000))...)
	data = append(data, frameOf(orderDelete(7))...)

	b := book.New()
	var snaps []emit.Snapshot
	snapshots, _, err := Run(data, "AAPL", b, 10, func(s emit.Snapshot) error {
		snaps = append(snaps, s)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), snapshots)
	require.Empty(t, snaps)
	require.Equal(t, 0, b.Bids.Size())
	require.Equal(t, 0, b.Asks.Size())
	require.False(t, b.Has(7))
}

// P6: an unknown-tag frame between two valid frames affects neither their
// parse nor the resulting book state.
func TestUnknownTagDoesNotAffectBook(t *testing.T) {
	var data []byte
	data = append(data, frameOf(stockDirectory(1, "AAPL"))...)
	data = append(data, frameOf(addOrder(1, 1, 'B', 100, "AAPL", 1000000))...)

	unknown := make([]byte, 6)
	unknown[0] = 'Z'
	data = append(data, frameOf(unknown)...)

	data = append(data, frameOf(orderDelete(1))...)

	b := book.New()
	snapshots, unknownTags, err := Run(data, "AAPL", b, 10, func(s emit.Snapshot) error { return nil })
	require.NoError(t, err)
	require.Equal(t, int64(1), unknownTags)
	require.Equal(t, int64(2), snapshots) // Add then Delete
	require.Equal(t, 0, b.Bids.Size())
}

// MWCBStatus runs through its own typed decoder in decodeDiscard, not a
// bare length check, so a frame one byte short of its fixed length
// surfaces as *errs.ShortFrame.
func TestMWCBStatusShortFrameIsFatal(t *testing.T) {
	body := make([]byte, itch.FixedLen[itch.TagMWCBStatus]-1)
	body[0] = byte(itch.TagMWCBStatus)

	var data []byte
	data = append(data, frameOf(stockDirectory(1, "AAPL"))...)
	data = append(data, frameOf(body)...)

	b := book.New()
	_, _, err := Run(data, "AAPL", b, 10, func(s emit.Snapshot) error { return nil })
	require.Error(t, err)
}

func TestAddOrderProducesSnapshot(t *testing.T) {
	var data []byte
	data = append(data, frameOf(stockDirectory(1, "AAPL"))...)
	data = append(data, frameOf(addOrder(1, 1, 'B', 100, "AAPL", 1000000))...)

	b := book.New()
	var snaps []emit.Snapshot
	_, _, err := Run(data, "AAPL", b, 10, func(s emit.Snapshot) error {
		snaps = append(snaps, s)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	require.Equal(t, uint32(1000000), snaps[0].BidLevels[0].Price)
	require.Equal(t, uint32(100), snaps[0].BidLevels[0].Qty)
}
