// Package errs defines the typed error kinds produced by the capture
// pipeline and order book engine, per the fatal/recoverable split in the
// error handling design: fatal kinds abort the run with a non-zero exit
// code, recoverable kinds are counted and logged.
package errs

import "fmt"

// IoError wraps a failure to open, map, read, or write a file.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string { return fmt.Sprintf("io error during %s: %v", e.Op, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

// TruncatedFrame is returned when a frame's declared length exceeds the
// bytes remaining in the capture.
type TruncatedFrame struct {
	Offset int64
	Need   int
	Have   int
}

func (e *TruncatedFrame) Error() string {
	return fmt.Sprintf("truncated frame at offset %d: need %d bytes, have %d", e.Offset, e.Need, e.Have)
}

// ShortFrame is returned when a message body is shorter than the fixed
// length its type tag demands.
type ShortFrame struct {
	Offset int64
	Tag    byte
	Need   int
	Have   int
}

func (e *ShortFrame) Error() string {
	return fmt.Sprintf("short frame at offset %d: tag %q needs %d bytes, has %d", e.Offset, e.Tag, e.Need, e.Have)
}

// UnknownTag marks a frame whose type tag is not one of the 23 documented
// ITCH 5.0 messages. Recoverable: the frame decoder skips it using the
// frame's own length prefix and keeps going.
type UnknownTag struct {
	Offset int64
	Tag    byte
}

func (e *UnknownTag) Error() string {
	return fmt.Sprintf("unknown tag %q at offset %d", e.Tag, e.Offset)
}

// OverExecute is a fatal conservation-invariant violation (I1/I4): an
// OrderExecuted or OrderExecutedWithPrice reduced an order below zero.
type OverExecute struct {
	Offset    int64
	Ref       uint64
	Remaining uint32
	ExecQty   uint32
}

func (e *OverExecute) Error() string {
	return fmt.Sprintf("over-execute at offset %d: ref=%d remaining=%d exec=%d", e.Offset, e.Ref, e.Remaining, e.ExecQty)
}

// OverCancel is the cancel-side counterpart of OverExecute.
type OverCancel struct {
	Offset    int64
	Ref       uint64
	Remaining uint32
	CancelQty uint32
}

func (e *OverCancel) Error() string {
	return fmt.Sprintf("over-cancel at offset %d: ref=%d remaining=%d cancel=%d", e.Offset, e.Ref, e.Remaining, e.CancelQty)
}

// DuplicateOrderRef is a fatal I5 violation: two live orders sharing a ref.
type DuplicateOrderRef struct {
	Offset int64
	Ref    uint64
}

func (e *DuplicateOrderRef) Error() string {
	return fmt.Sprintf("duplicate order ref at offset %d: ref=%d", e.Offset, e.Ref)
}

// ConfigError wraps CLI/flag validation failures.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config error: %s", e.Msg) }
