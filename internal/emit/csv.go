package emit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"itchbook/internal/errs"
)

// CSVSink is the append-only file sink for snapshots, driven at engine
// rate from the engine thread (spec.md §4.6, §5). It is never dropped: the
// caller must flush it once at the end of a run and close the underlying
// writer itself.
type CSVSink struct {
	w *bufio.Writer
	k int
}

// NewCSVSink wraps w and writes the fixed header row for depth k.
func NewCSVSink(w io.Writer, k int) (*CSVSink, error) {
	s := &CSVSink{w: bufio.NewWriter(w), k: k}
	if err := s.writeHeader(); err != nil {
		return nil, &errs.IoError{Op: "write csv header", Err: err}
	}
	return s, nil
}

func (s *CSVSink) writeHeader() error {
	var b strings.Builder
	b.WriteString("timestamp_ns")
	for _, side := range []string{"bid", "ask"} {
		for i := 1; i <= s.k; i++ {
			fmt.Fprintf(&b, ",%s_px_%d,%s_sz_%d,%s_cnt_%d", side, i, side, i, side, i)
		}
	}
	b.WriteString(",mid_price,book_imbalance,crossed\n")
	_, err := s.w.WriteString(b.String())
	return err
}

// Write appends one snapshot row. Prices serialize as decimal with 4
// implied places (spec.md §6); empty slots are "0,0,0".
func (s *CSVSink) Write(snap Snapshot) error {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(snap.TimestampNs, 10))
	writeLevels(&b, snap.BidLevels)
	writeLevels(&b, snap.AskLevels)
	fmt.Fprintf(&b, ",%s,%s,%t\n", snap.MidPrice.StringFixed(4), snap.BookImbalance.StringFixed(6), snap.Crossed)
	if _, err := s.w.WriteString(b.String()); err != nil {
		return &errs.IoError{Op: "write csv row", Err: err}
	}
	return nil
}

func writeLevels(b *strings.Builder, levels []Level) {
	for _, l := range levels {
		if l.Qty == 0 && l.Price == 0 {
			b.WriteString(",0,0,0")
			continue
		}
		fmt.Fprintf(b, ",%s,%d,%d", decimalPrice(l.Price).StringFixed(4), l.Qty, l.OrderCount)
	}
}

// Flush writes out any buffered rows; the caller invokes it once at the end
// of a run. CSVSink has no Close of its own: closing the underlying writer
// is left to the caller.
func (s *CSVSink) Flush() error {
	if err := s.w.Flush(); err != nil {
		return &errs.IoError{Op: "flush csv", Err: err}
	}
	return nil
}
