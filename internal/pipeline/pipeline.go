// Package pipeline wires components B through F into the single-threaded
// parse loop: frame decoder -> message decoders -> symbol filter -> order
// book engine -> emitter (spec.md §2's data flow A → B → C → D → E → F).
package pipeline

import (
	"itchbook/internal/book"
	"itchbook/internal/emit"
	"itchbook/internal/errs"
	"itchbook/internal/frame"
	"itchbook/internal/itch"
	"itchbook/internal/symbol"
)

// Sink receives every snapshot emitted for the tracked symbol, in engine
// order. main wires this to the CSV writer and, optionally, the
// broadcaster queue.
type Sink func(emit.Snapshot) error

// Run processes the entire capture in data, applying order-book mutations
// for filt's resolved symbol and calling sink after every applied mutation.
// It returns the number of snapshots emitted and the number of unknown-tag
// frames skipped, or the first fatal error encountered (spec.md §7).
func Run(data []byte, symbolName string, b *book.Book, depth int, sink Sink) (snapshots int64, unknownTags int64, err error) {
	filt := symbol.New(symbolName)
	dec := frame.New(data)

	for {
		f, ok, ferr := dec.Next()
		if ferr != nil {
			return snapshots, dec.UnknownCount(), ferr
		}
		if !ok {
			return snapshots, dec.UnknownCount(), nil
		}

		emitted, perr := apply(f, filt, b)
		if perr != nil {
			return snapshots, dec.UnknownCount(), perr
		}
		if emitted {
			snap := emit.Build(symbolName, itch.Timestamp(f.Body), b, depth)
			if err := sink(snap); err != nil {
				return snapshots, dec.UnknownCount(), err
			}
			snapshots++
		}
	}
}

// apply decodes one frame and, if it mutates the order book for the
// tracked symbol, applies the mutation. It reports whether a snapshot
// should now be emitted.
func apply(f frame.Frame, filt *symbol.Filter, b *book.Book) (bool, error) {
	tag := itch.Tag(f.Tag)
	off := f.Offset

	switch tag {
	case itch.TagStockDirectory:
		d, err := itch.DecodeStockDirectory(f.Body, off)
		if err != nil {
			return false, err
		}
		filt.Observe(d)
		return false, nil

	case itch.TagAddOrder:
		d, err := itch.DecodeAddOrder(f.Body, off)
		if err != nil {
			return false, err
		}
		if !filt.AcceptLocate(d.StockLocate) {
			return false, nil
		}
		return true, b.AddOrder(d.OrderRef, d.Side, d.Shares, d.Price, off)

	case itch.TagAddOrderWithMpid:
		d, err := itch.DecodeAddOrderWithMpid(f.Body, off)
		if err != nil {
			return false, err
		}
		if !filt.AcceptLocate(d.StockLocate) {
			return false, nil
		}
		return true, b.AddOrder(d.OrderRef, d.Side, d.Shares, d.Price, off)

	case itch.TagOrderExecuted:
		d, err := itch.DecodeOrderExecuted(f.Body, off)
		if err != nil {
			return false, err
		}
		if !b.Has(d.OrderRef) {
			return false, nil
		}
		return true, b.OrderExecuted(d.OrderRef, d.ExecutedShares, off)

	case itch.TagOrderExecutedWithPrice:
		d, err := itch.DecodeOrderExecutedWithPrice(f.Body, off)
		if err != nil {
			return false, err
		}
		if !b.Has(d.OrderRef) {
			return false, nil
		}
		return true, b.OrderExecuted(d.OrderRef, d.ExecutedShares, off)

	case itch.TagOrderCancel:
		d, err := itch.DecodeOrderCancel(f.Body, off)
		if err != nil {
			return false, err
		}
		if !b.Has(d.OrderRef) {
			return false, nil
		}
		return true, b.OrderCancel(d.OrderRef, d.CancelledShares, off)

	case itch.TagOrderDelete:
		d, err := itch.DecodeOrderDelete(f.Body, off)
		if err != nil {
			return false, err
		}
		if !b.Has(d.OrderRef) {
			return false, nil
		}
		return true, b.OrderDelete(d.OrderRef, off)

	case itch.TagOrderReplace:
		d, err := itch.DecodeOrderReplace(f.Body, off)
		if err != nil {
			return false, err
		}
		if !b.Has(d.OriginalOrderRef) {
			return false, nil
		}
		return true, b.OrderReplace(d.OriginalOrderRef, d.NewOrderRef, d.Shares, d.Price, off)

	default:
		// All other known types (S, H, Y, L, V, W, K, J, h, P, Q, B, I, N,
		// O) have typed decoders but never mutate the book; decodeDiscard
		// still runs the matching decoder so a malformed record of that
		// type is caught, per spec.md §4.3.
		return false, decodeDiscard(tag, f.Body, off)
	}
}

// decodeDiscard still runs the matching decoder for every known
// non-mutating tag so that a malformed record of that type is caught as
// *errs.ShortFrame rather than silently passing through, per spec.md
// §4.3's "must still parse correctly."
func decodeDiscard(tag itch.Tag, body []byte, off int64) error {
	switch tag {
	case itch.TagSystemEvent:
		_, err := itch.DecodeSystemEvent(body, off)
		return err
	case itch.TagStockTradingAction:
		_, err := itch.DecodeStockTradingAction(body, off)
		return err
	case itch.TagTrade:
		_, err := itch.DecodeTrade(body, off)
		return err
	case itch.TagCrossTrade:
		_, err := itch.DecodeCrossTrade(body, off)
		return err
	case itch.TagBrokenTrade:
		_, err := itch.DecodeBrokenTrade(body, off)
		return err
	case itch.TagNOII:
		_, err := itch.DecodeNOII(body, off)
		return err
	case itch.TagRegSHORestriction:
		_, err := itch.DecodeRegSHORestriction(body, off)
		return err
	case itch.TagMarketParticipantPos:
		_, err := itch.DecodeMarketParticipantPos(body, off)
		return err
	case itch.TagMWCBDeclineLevel:
		_, err := itch.DecodeMWCBDeclineLevel(body, off)
		return err
	case itch.TagMWCBStatus:
		_, err := itch.DecodeMWCBStatus(body, off)
		return err
	case itch.TagIPOQuotingPeriodUpdate:
		_, err := itch.DecodeIPOQuotingPeriodUpdate(body, off)
		return err
	case itch.TagLULDAuctionCollar:
		_, err := itch.DecodeLULDAuctionCollar(body, off)
		return err
	case itch.TagOperationalHalt:
		_, err := itch.DecodeOperationalHalt(body, off)
		return err
	case itch.TagRPII:
		_, err := itch.DecodeRPII(body, off)
		return err
	case itch.TagDirectListingCapRaise:
		_, err := itch.DecodeDirectListingCapRaise(body, off)
		return err
	default:
		// Every one of the 23 documented tags is decoded above. Anything
		// else is an unknown tag already counted by the frame decoder;
		// nothing further to validate here.
		if !itch.Known(byte(tag)) {
			return nil
		}
		if len(body) < itch.FixedLen[tag] {
			return &errs.ShortFrame{Offset: off, Tag: byte(tag), Need: itch.FixedLen[tag], Have: len(body)}
		}
		return nil
	}
}
