package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"itchbook/internal/book"
	"itchbook/internal/itch"
)

func TestBuildPadsShortLevels(t *testing.T) {
	b := book.New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 100, 1000000, 0))

	snap := Build("AAPL", 42, b, 10)
	require.Len(t, snap.BidLevels, 10)
	require.Equal(t, uint32(1000000), snap.BidLevels[0].Price)
	require.Equal(t, Level{}, snap.BidLevels[1])
	require.Len(t, snap.AskLevels, 10)
	require.Equal(t, Level{}, snap.AskLevels[0])
	require.False(t, snap.Crossed)
}

func TestBuildDetectsCrossedBook(t *testing.T) {
	b := book.New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 100, 1000100, 0))
	require.NoError(t, b.AddOrder(2, itch.Sell, 100, 999900, 0))

	snap := Build("AAPL", 1, b, 10)
	require.True(t, snap.Crossed)
}

func TestBuildMidPriceAndImbalance(t *testing.T) {
	b := book.New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 300, 1000000, 0))
	require.NoError(t, b.AddOrder(2, itch.Sell, 100, 1000200, 0))

	snap := Build("AAPL", 1, b, 10)
	require.Equal(t, "100.0100", snap.MidPrice.StringFixed(4))
	// imbalance = (300-100)/(300+100) = 0.5
	require.Equal(t, "0.500000", snap.BookImbalance.StringFixed(6))
}

func TestCSVSinkHeaderAndRow(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewCSVSink(&buf, 2)
	require.NoError(t, err)

	b := book.New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 100, 1000000, 0))
	snap := Build("AAPL", 999, b, 2)
	require.NoError(t, sink.Write(snap))
	require.NoError(t, sink.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "timestamp_ns,bid_px_1,bid_sz_1,bid_cnt_1,bid_px_2,bid_sz_2,bid_cnt_2,ask_px_1,ask_sz_1,ask_cnt_1,ask_px_2,ask_sz_2,ask_cnt_2,mid_price,book_imbalance,crossed", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "999,100.0000,100,1,0,0,0,0,0,0,0,0,0"))
}
