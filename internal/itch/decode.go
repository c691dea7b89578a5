package itch

import (
	"encoding/binary"

	"itchbook/internal/errs"
)

// ---- big-endian field readers -------------------------------------------
//
// All fields on the wire are big-endian per spec.md §4.3. The 48-bit
// timestamp is zero-extended into a uint64, matching the teacher's
// read_timestamp_be pattern (fill the missing high bytes with zero rather
// than reading past the field).

func beU16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func beU32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func beU64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

func beU48(b []byte) uint64 {
	var buf [8]byte
	copy(buf[2:], b[:6])
	return binary.BigEndian.Uint64(buf[:])
}

func readSymbol(b []byte) Symbol {
	var s Symbol
	copy(s[:], b[:8])
	return s
}

// header is the common prefix of every order-scoped and reference message:
// stock_locate(2) tracking_number(2) timestamp(6). Offsets below are all
// relative to the start of the frame, i.e. data[0] is still the tag byte.
type header struct {
	StockLocate    uint16
	TrackingNumber uint16
	Timestamp      uint64 // nanoseconds since midnight ET, 48-bit on wire
}

func readHeader(data []byte) header {
	return header{
		StockLocate:    beU16(data[1:3]),
		TrackingNumber: beU16(data[3:5]),
		Timestamp:      beU48(data[5:11]),
	}
}

// Timestamp reads the 48-bit nanosecond field at its fixed offset, valid
// for any frame at least 11 bytes long (every message type that carries a
// header per spec.md §3). Used by callers that need the event time without
// decoding the full message body.
func Timestamp(data []byte) uint64 {
	if len(data) < 11 {
		return 0
	}
	return beU48(data[5:11])
}

func checkLen(data []byte, offset int64, tag Tag) error {
	need := FixedLen[tag]
	if len(data) < need {
		return &errs.ShortFrame{Offset: offset, Tag: byte(tag), Need: need, Have: len(data)}
	}
	return nil
}

// ---- reference / informational messages ---------------------------------

type SystemEvent struct {
	header
	EventCode byte
}

func DecodeSystemEvent(data []byte, offset int64) (SystemEvent, error) {
	if err := checkLen(data, offset, TagSystemEvent); err != nil {
		return SystemEvent{}, err
	}
	return SystemEvent{header: readHeader(data), EventCode: data[11]}, nil
}

type StockDirectory struct {
	header
	Stock               Symbol
	MarketCategory      byte
	FinancialStatusInd  byte
	RoundLotSize        uint32
	RoundLotsOnly       byte
	IssueClassification byte
	IssueSubType        [2]byte
	Authenticity        byte
	ShortSaleThreshold  byte
	IPOFlag             byte
	LULDReferencePrice  byte
	ETPFlag             byte
	ETPLeverageFactor   uint32
	InverseIndicator    byte
}

func DecodeStockDirectory(data []byte, offset int64) (StockDirectory, error) {
	if err := checkLen(data, offset, TagStockDirectory); err != nil {
		return StockDirectory{}, err
	}
	d := StockDirectory{header: readHeader(data)}
	d.Stock = readSymbol(data[11:19])
	d.MarketCategory = data[19]
	d.FinancialStatusInd = data[20]
	d.RoundLotSize = beU32(data[21:25])
	d.RoundLotsOnly = data[25]
	d.IssueClassification = data[26]
	copy(d.IssueSubType[:], data[27:29])
	d.Authenticity = data[29]
	d.ShortSaleThreshold = data[30]
	d.IPOFlag = data[31]
	d.LULDReferencePrice = data[32]
	d.ETPFlag = data[33]
	d.ETPLeverageFactor = beU32(data[34:38])
	d.InverseIndicator = data[38]
	return d, nil
}

type StockTradingAction struct {
	header
	Stock        Symbol
	TradingState byte
	Reserved     byte
	Reason       [4]byte
}

func DecodeStockTradingAction(data []byte, offset int64) (StockTradingAction, error) {
	if err := checkLen(data, offset, TagStockTradingAction); err != nil {
		return StockTradingAction{}, err
	}
	d := StockTradingAction{header: readHeader(data)}
	d.Stock = readSymbol(data[11:19])
	d.TradingState = data[19]
	d.Reserved = data[20]
	copy(d.Reason[:], data[21:25])
	return d, nil
}

// ---- regulatory / auction / reference informational messages ------------

type RegSHORestriction struct {
	header
	Stock  Symbol
	Action byte
}

func DecodeRegSHORestriction(data []byte, offset int64) (RegSHORestriction, error) {
	if err := checkLen(data, offset, TagRegSHORestriction); err != nil {
		return RegSHORestriction{}, err
	}
	d := RegSHORestriction{header: readHeader(data)}
	d.Stock = readSymbol(data[11:19])
	d.Action = data[19]
	return d, nil
}

type MarketParticipantPos struct {
	header
	MPID                   [4]byte
	Stock                  Symbol
	PrimaryMarketMaker     byte
	MarketMakerMode        byte
	MarketParticipantState byte
}

func DecodeMarketParticipantPos(data []byte, offset int64) (MarketParticipantPos, error) {
	if err := checkLen(data, offset, TagMarketParticipantPos); err != nil {
		return MarketParticipantPos{}, err
	}
	d := MarketParticipantPos{header: readHeader(data)}
	copy(d.MPID[:], data[11:15])
	d.Stock = readSymbol(data[15:23])
	d.PrimaryMarketMaker = data[23]
	d.MarketMakerMode = data[24]
	d.MarketParticipantState = data[25]
	return d, nil
}

type MWCBDeclineLevel struct {
	header
	Level1 uint64
	Level2 uint64
	Level3 uint64
}

func DecodeMWCBDeclineLevel(data []byte, offset int64) (MWCBDeclineLevel, error) {
	if err := checkLen(data, offset, TagMWCBDeclineLevel); err != nil {
		return MWCBDeclineLevel{}, err
	}
	d := MWCBDeclineLevel{header: readHeader(data)}
	d.Level1 = beU64(data[11:19])
	d.Level2 = beU64(data[19:27])
	d.Level3 = beU64(data[27:35])
	return d, nil
}

type MWCBStatus struct {
	header
	BreachedLevel byte
}

func DecodeMWCBStatus(data []byte, offset int64) (MWCBStatus, error) {
	if err := checkLen(data, offset, TagMWCBStatus); err != nil {
		return MWCBStatus{}, err
	}
	d := MWCBStatus{header: readHeader(data)}
	d.BreachedLevel = data[11]
	return d, nil
}

type IPOQuotingPeriodUpdate struct {
	header
	Stock            Symbol
	ReleaseTime      uint32
	ReleaseQualifier byte
	IPOPrice         uint32
}

func DecodeIPOQuotingPeriodUpdate(data []byte, offset int64) (IPOQuotingPeriodUpdate, error) {
	if err := checkLen(data, offset, TagIPOQuotingPeriodUpdate); err != nil {
		return IPOQuotingPeriodUpdate{}, err
	}
	d := IPOQuotingPeriodUpdate{header: readHeader(data)}
	d.Stock = readSymbol(data[11:19])
	d.ReleaseTime = beU32(data[19:23])
	d.ReleaseQualifier = data[23]
	d.IPOPrice = beU32(data[24:28])
	return d, nil
}

type LULDAuctionCollar struct {
	header
	Stock            Symbol
	ReferencePrice   uint32
	UpperCollarPrice uint32
	LowerCollarPrice uint32
	Extension        uint32
}

func DecodeLULDAuctionCollar(data []byte, offset int64) (LULDAuctionCollar, error) {
	if err := checkLen(data, offset, TagLULDAuctionCollar); err != nil {
		return LULDAuctionCollar{}, err
	}
	d := LULDAuctionCollar{header: readHeader(data)}
	d.Stock = readSymbol(data[11:19])
	d.ReferencePrice = beU32(data[19:23])
	d.UpperCollarPrice = beU32(data[23:27])
	d.LowerCollarPrice = beU32(data[27:31])
	d.Extension = beU32(data[31:35])
	return d, nil
}

type OperationalHalt struct {
	header
	Stock      Symbol
	MarketCode byte
	Action     byte
}

func DecodeOperationalHalt(data []byte, offset int64) (OperationalHalt, error) {
	if err := checkLen(data, offset, TagOperationalHalt); err != nil {
		return OperationalHalt{}, err
	}
	d := OperationalHalt{header: readHeader(data)}
	d.Stock = readSymbol(data[11:19])
	d.MarketCode = data[19]
	d.Action = data[20]
	return d, nil
}

type RPII struct {
	header
	Stock        Symbol
	InterestFlag byte
}

func DecodeRPII(data []byte, offset int64) (RPII, error) {
	if err := checkLen(data, offset, TagRPII); err != nil {
		return RPII{}, err
	}
	d := RPII{header: readHeader(data)}
	d.Stock = readSymbol(data[11:19])
	d.InterestFlag = data[19]
	return d, nil
}

type DirectListingCapRaise struct {
	header
	Stock                 Symbol
	OpenEligibilityStatus byte
	MinimumAllowablePrice uint32
	MaximumAllowablePrice uint32
	NearExecutionPrice    uint32
	NearExecutionTime     uint64
	LowerPriceRangeCollar uint32
	UpperPriceRangeCollar uint32
}

func DecodeDirectListingCapRaise(data []byte, offset int64) (DirectListingCapRaise, error) {
	if err := checkLen(data, offset, TagDirectListingCapRaise); err != nil {
		return DirectListingCapRaise{}, err
	}
	d := DirectListingCapRaise{header: readHeader(data)}
	d.Stock = readSymbol(data[11:19])
	d.OpenEligibilityStatus = data[19]
	d.MinimumAllowablePrice = beU32(data[20:24])
	d.MaximumAllowablePrice = beU32(data[24:28])
	d.NearExecutionPrice = beU32(data[28:32])
	d.NearExecutionTime = beU64(data[32:40])
	d.LowerPriceRangeCollar = beU32(data[40:44])
	d.UpperPriceRangeCollar = beU32(data[44:48])
	return d, nil
}

// ---- order-scoped, book-mutating messages --------------------------------

type AddOrder struct {
	header
	OrderRef uint64
	Side     Side
	Shares   uint32
	Stock    Symbol
	Price    uint32
}

func DecodeAddOrder(data []byte, offset int64) (AddOrder, error) {
	if err := checkLen(data, offset, TagAddOrder); err != nil {
		return AddOrder{}, err
	}
	d := AddOrder{header: readHeader(data)}
	d.OrderRef = beU64(data[11:19])
	d.Side = sideFrom(data[19])
	d.Shares = beU32(data[20:24])
	d.Stock = readSymbol(data[24:32])
	d.Price = beU32(data[32:36])
	return d, nil
}

type AddOrderWithMpid struct {
	AddOrder
	Attribution [4]byte
}

func DecodeAddOrderWithMpid(data []byte, offset int64) (AddOrderWithMpid, error) {
	if err := checkLen(data, offset, TagAddOrderWithMpid); err != nil {
		return AddOrderWithMpid{}, err
	}
	base, err := DecodeAddOrder(data, offset)
	if err != nil {
		return AddOrderWithMpid{}, err
	}
	d := AddOrderWithMpid{AddOrder: base}
	copy(d.Attribution[:], data[36:40])
	return d, nil
}

type OrderExecuted struct {
	header
	OrderRef       uint64
	ExecutedShares uint32
	MatchNumber    uint64
}

func DecodeOrderExecuted(data []byte, offset int64) (OrderExecuted, error) {
	if err := checkLen(data, offset, TagOrderExecuted); err != nil {
		return OrderExecuted{}, err
	}
	d := OrderExecuted{header: readHeader(data)}
	d.OrderRef = beU64(data[11:19])
	d.ExecutedShares = beU32(data[19:23])
	d.MatchNumber = beU64(data[23:31])
	return d, nil
}

type OrderExecutedWithPrice struct {
	OrderExecuted
	Printable      byte
	ExecutionPrice uint32
}

func DecodeOrderExecutedWithPrice(data []byte, offset int64) (OrderExecutedWithPrice, error) {
	if err := checkLen(data, offset, TagOrderExecutedWithPrice); err != nil {
		return OrderExecutedWithPrice{}, err
	}
	base, err := DecodeOrderExecuted(data, offset)
	if err != nil {
		return OrderExecutedWithPrice{}, err
	}
	d := OrderExecutedWithPrice{OrderExecuted: base}
	d.Printable = data[31]
	d.ExecutionPrice = beU32(data[32:36])
	return d, nil
}

type OrderCancel struct {
	header
	OrderRef        uint64
	CancelledShares uint32
}

func DecodeOrderCancel(data []byte, offset int64) (OrderCancel, error) {
	if err := checkLen(data, offset, TagOrderCancel); err != nil {
		return OrderCancel{}, err
	}
	d := OrderCancel{header: readHeader(data)}
	d.OrderRef = beU64(data[11:19])
	d.CancelledShares = beU32(data[19:23])
	return d, nil
}

type OrderDelete struct {
	header
	OrderRef uint64
}

func DecodeOrderDelete(data []byte, offset int64) (OrderDelete, error) {
	if err := checkLen(data, offset, TagOrderDelete); err != nil {
		return OrderDelete{}, err
	}
	d := OrderDelete{header: readHeader(data)}
	d.OrderRef = beU64(data[11:19])
	return d, nil
}

type OrderReplace struct {
	header
	OriginalOrderRef uint64
	NewOrderRef      uint64
	Shares           uint32
	Price            uint32
}

func DecodeOrderReplace(data []byte, offset int64) (OrderReplace, error) {
	if err := checkLen(data, offset, TagOrderReplace); err != nil {
		return OrderReplace{}, err
	}
	d := OrderReplace{header: readHeader(data)}
	d.OriginalOrderRef = beU64(data[11:19])
	d.NewOrderRef = beU64(data[19:27])
	d.Shares = beU32(data[27:31])
	d.Price = beU32(data[31:35])
	return d, nil
}

// ---- trade / cross / broken-trade (informational only) -------------------

type Trade struct {
	header
	OrderRef    uint64
	Side        Side
	Shares      uint32
	Stock       Symbol
	Price       uint32
	MatchNumber uint64
}

func DecodeTrade(data []byte, offset int64) (Trade, error) {
	if err := checkLen(data, offset, TagTrade); err != nil {
		return Trade{}, err
	}
	d := Trade{header: readHeader(data)}
	d.OrderRef = beU64(data[11:19])
	d.Side = sideFrom(data[19])
	d.Shares = beU32(data[20:24])
	d.Stock = readSymbol(data[24:32])
	d.Price = beU32(data[32:36])
	d.MatchNumber = beU64(data[36:44])
	return d, nil
}

type CrossTrade struct {
	header
	Shares      uint64
	Stock       Symbol
	CrossPrice  uint32
	MatchNumber uint64
	CrossType   byte
}

func DecodeCrossTrade(data []byte, offset int64) (CrossTrade, error) {
	if err := checkLen(data, offset, TagCrossTrade); err != nil {
		return CrossTrade{}, err
	}
	d := CrossTrade{header: readHeader(data)}
	d.Shares = beU64(data[11:19])
	d.Stock = readSymbol(data[19:27])
	d.CrossPrice = beU32(data[27:31])
	d.MatchNumber = beU64(data[31:39])
	d.CrossType = data[39]
	return d, nil
}

type BrokenTrade struct {
	header
	MatchNumber uint64
}

func DecodeBrokenTrade(data []byte, offset int64) (BrokenTrade, error) {
	if err := checkLen(data, offset, TagBrokenTrade); err != nil {
		return BrokenTrade{}, err
	}
	d := BrokenTrade{header: readHeader(data)}
	d.MatchNumber = beU64(data[11:19])
	return d, nil
}

// ---- NOII ------------------------------------------------------------------
//
// NOII never mutates the book and the engine drops it. Its far, near and
// current reference prices are read from 4-byte wire fields (offsets 36-48)
// and widened into uint64 fields; no 8-byte price field is read.

type NOII struct {
	header
	PairedShares          uint64
	ImbalanceShares       uint64
	ImbalanceDirection    byte
	Stock                 Symbol
	FarPrice              uint64
	NearPrice             uint64
	CurrentReferencePrice uint64
	CrossType             byte
	PriceVariationInd     byte
}

func DecodeNOII(data []byte, offset int64) (NOII, error) {
	if err := checkLen(data, offset, TagNOII); err != nil {
		return NOII{}, err
	}
	d := NOII{header: readHeader(data)}
	d.PairedShares = beU64(data[11:19])
	d.ImbalanceShares = beU64(data[19:27])
	d.ImbalanceDirection = data[27]
	d.Stock = readSymbol(data[28:36])
	d.FarPrice = uint64(beU32(data[36:40]))
	d.NearPrice = uint64(beU32(data[40:44]))
	d.CurrentReferencePrice = uint64(beU32(data[44:48]))
	d.CrossType = data[48]
	d.PriceVariationInd = data[49]
	return d, nil
}
