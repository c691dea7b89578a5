// Package emit produces book-update snapshot records from the engine and
// serializes them to the CSV sink (component F).
package emit

import (
	"github.com/shopspring/decimal"

	"itchbook/internal/book"
)

// Level is one padded (price, qty, order_count) tuple in a snapshot.
type Level struct {
	Price      uint32
	Qty        uint32
	OrderCount int
}

// Snapshot is a point-in-time, top-K view of both ladders, produced after
// every applied order-book mutation on the tracked symbol.
type Snapshot struct {
	Symbol        string
	TimestampNs   uint64
	BidLevels     []Level
	AskLevels     []Level
	Crossed       bool
	MidPrice      decimal.Decimal
	BookImbalance decimal.Decimal
}

// priceScale matches the wire's 4-implied-decimal fixed point (spec.md §3).
var priceScale = decimal.New(1, 4)

// decimalPrice renders a raw fixed-point price as a decimal.Decimal with 4
// implied places, e.g. 1234567 -> 123.4567.
func decimalPrice(p uint32) decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(priceScale)
}

// Build collects the top-k levels from each side of b and computes the
// supplemented mid_price/book_imbalance columns. Fewer than k live levels
// on a side are padded with the zero Level, per spec.md §4.6.
func Build(symbol string, timestampNs uint64, b *book.Book, k int) Snapshot {
	s := Snapshot{Symbol: symbol, TimestampNs: timestampNs}
	s.BidLevels = topK(b.Bids.WalkDesc, k)
	s.AskLevels = topK(b.Asks.WalkAsc, k)

	var bestBid, bestAsk *Level
	if len(s.BidLevels) > 0 && s.BidLevels[0].Qty > 0 {
		bestBid = &s.BidLevels[0]
	}
	if len(s.AskLevels) > 0 && s.AskLevels[0].Qty > 0 {
		bestAsk = &s.AskLevels[0]
	}
	if bestBid != nil && bestAsk != nil {
		s.Crossed = bestBid.Price >= bestAsk.Price
		s.MidPrice = decimalPrice(bestBid.Price).Add(decimalPrice(bestAsk.Price)).Div(decimal.NewFromInt(2))
	}

	bidVol, askVol := sumQty(s.BidLevels), sumQty(s.AskLevels)
	if bidVol+askVol > 0 {
		num := decimal.NewFromInt(int64(bidVol) - int64(askVol))
		den := decimal.NewFromInt(int64(bidVol) + int64(askVol))
		s.BookImbalance = num.Div(den)
	}
	return s
}

func sumQty(levels []Level) uint32 {
	var total uint32
	for _, l := range levels {
		total += l.Qty
	}
	return total
}

func topK(walk func(func(*book.PriceLevel) bool), k int) []Level {
	out := make([]Level, 0, k)
	walk(func(pl *book.PriceLevel) bool {
		out = append(out, Level{Price: pl.Price, Qty: pl.TotalQty, OrderCount: pl.OrderCount})
		return len(out) < k
	})
	for len(out) < k {
		out = append(out, Level{})
	}
	return out
}
