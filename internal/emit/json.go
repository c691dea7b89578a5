package emit

import "encoding/json"

// wireLevel mirrors Level for JSON with lower_snake field names matching
// the CSV column naming convention.
type wireLevel struct {
	Px  string `json:"px"`
	Sz  uint32 `json:"sz"`
	Cnt int    `json:"cnt"`
}

// wireFrame is the broadcast wire format: the same fields as a CSV row,
// plus "symbol" (spec.md §6).
type wireFrame struct {
	Symbol        string      `json:"symbol"`
	TimestampNs   uint64      `json:"timestamp_ns"`
	BidLevels     []wireLevel `json:"bid_levels"`
	AskLevels     []wireLevel `json:"ask_levels"`
	MidPrice      string      `json:"mid_price"`
	BookImbalance string      `json:"book_imbalance"`
	Crossed       bool        `json:"crossed"`
}

// MarshalJSON renders one snapshot as the broadcast text frame.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	f := wireFrame{
		Symbol:        s.Symbol,
		TimestampNs:   s.TimestampNs,
		MidPrice:      s.MidPrice.StringFixed(4),
		BookImbalance: s.BookImbalance.StringFixed(6),
		Crossed:       s.Crossed,
	}
	f.BidLevels = wireLevels(s.BidLevels)
	f.AskLevels = wireLevels(s.AskLevels)
	return json.Marshal(f)
}

func wireLevels(levels []Level) []wireLevel {
	out := make([]wireLevel, len(levels))
	for i, l := range levels {
		out[i] = wireLevel{Px: decimalPrice(l.Price).StringFixed(4), Sz: l.Qty, Cnt: l.OrderCount}
	}
	return out
}
