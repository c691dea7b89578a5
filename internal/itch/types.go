// Package itch decodes NASDAQ TotalView-ITCH 5.0 message bodies.
//
// Every decoder is zero-copy: it reads fixed-offset big-endian fields
// directly out of the frame slice handed to it by internal/frame and
// returns a small value type. Nothing here allocates beyond the result
// struct, and nothing here retains the input slice.
package itch

// Tag identifies one of the 23 known ITCH 5.0 message types by its
// single-byte wire tag.
type Tag byte

const (
	TagSystemEvent              Tag = 'S'
	TagStockDirectory           Tag = 'R'
	TagStockTradingAction       Tag = 'H'
	TagRegSHORestriction        Tag = 'Y'
	TagMarketParticipantPos     Tag = 'L'
	TagMWCBDeclineLevel         Tag = 'V'
	TagMWCBStatus               Tag = 'W'
	TagIPOQuotingPeriodUpdate   Tag = 'K'
	TagLULDAuctionCollar        Tag = 'J'
	TagOperationalHalt          Tag = 'h'
	TagAddOrder                 Tag = 'A'
	TagAddOrderWithMpid         Tag = 'F'
	TagOrderExecuted            Tag = 'E'
	TagOrderExecutedWithPrice   Tag = 'C'
	TagOrderCancel              Tag = 'X'
	TagOrderDelete              Tag = 'D'
	TagOrderReplace             Tag = 'U'
	TagTrade                    Tag = 'P'
	TagCrossTrade               Tag = 'Q'
	TagBrokenTrade              Tag = 'B'
	TagNOII                     Tag = 'I'
	TagRPII                     Tag = 'N'
	TagDirectListingCapRaise    Tag = 'O'
)

// FixedLen is the exact on-wire body length (including the tag byte)
// for every known message type. Used by Decode* to fail fast with
// ShortFrame rather than read out of bounds.
var FixedLen = map[Tag]int{
	TagSystemEvent:            12,
	TagStockDirectory:         39,
	TagStockTradingAction:     25,
	TagRegSHORestriction:      20,
	TagMarketParticipantPos:   26,
	TagMWCBDeclineLevel:       35,
	TagMWCBStatus:             12,
	TagIPOQuotingPeriodUpdate: 28,
	TagLULDAuctionCollar:      35,
	TagOperationalHalt:        21,
	TagAddOrder:               36,
	TagAddOrderWithMpid:       40,
	TagOrderExecuted:          31,
	TagOrderExecutedWithPrice: 36,
	TagOrderCancel:            23,
	TagOrderDelete:            19,
	TagOrderReplace:           35,
	TagTrade:                  44,
	TagCrossTrade:             40,
	TagBrokenTrade:            19,
	TagNOII:                   50,
	TagRPII:                   20,
	TagDirectListingCapRaise:  48,
}

// Known reports whether tag is one of the 23 documented ITCH 5.0 types.
func Known(tag byte) bool {
	_, ok := FixedLen[Tag(tag)]
	return ok
}

// Side is the buy/sell indicator carried by order-scoped messages.
type Side byte

const (
	Buy  Side = 'B'
	Sell Side = 'S'
)

func sideFrom(b byte) Side {
	if b == byte(Buy) {
		return Buy
	}
	return Sell
}

// Symbol is a wire-format 8-byte, right-space-padded stock symbol.
type Symbol [8]byte

// Trimmed strips the trailing ASCII spaces mandated by the wire format.
func (s Symbol) Trimmed() string {
	n := len(s)
	for n > 0 && s[n-1] == ' ' {
		n--
	}
	return string(s[:n])
}

// PadSymbol renders a user-supplied symbol (<=8 chars) in wire form.
func PadSymbol(sym string) Symbol {
	var s Symbol
	for i := range s {
		s[i] = ' '
	}
	copy(s[:], sym)
	return s
}
