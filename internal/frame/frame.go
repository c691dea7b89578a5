// Package frame splits a capture byte range into length-prefixed ITCH 5.0
// records and dispatches by type tag (component B).
package frame

import (
	"encoding/binary"

	"itchbook/internal/errs"
	"itchbook/internal/itch"
)

// Frame is one borrowed record: Tag is the first body byte, Body is the
// full length-prefixed record's body (including the tag byte, matching the
// offset convention internal/itch decoders expect). Neither field copies
// from the underlying capture buffer.
type Frame struct {
	Tag    byte
	Body   []byte
	Offset int64 // byte offset of the 2-byte length prefix within the capture
}

// Decoder walks a capture buffer frame by frame.
type Decoder struct {
	data    []byte
	cursor  int64
	unknown int64
}

// New returns a Decoder positioned at the start of data.
func New(data []byte) *Decoder {
	return &Decoder{data: data}
}

// UnknownCount reports how many frames carried a tag outside the 23
// documented ITCH 5.0 types, per the UnknownTag recoverable error kind.
func (d *Decoder) UnknownCount() int64 { return d.unknown }

// Next returns the next frame. It returns (Frame{}, false, nil) at clean
// end of file. A malformed N==0 length or a length that runs past the end
// of the buffer is reported via *errs.TruncatedFrame and is fatal, per
// spec.md §4.2.
func (d *Decoder) Next() (Frame, bool, error) {
	if d.cursor >= int64(len(d.data)) {
		return Frame{}, false, nil
	}
	if d.cursor+2 > int64(len(d.data)) {
		return Frame{}, false, &errs.TruncatedFrame{Offset: d.cursor, Need: 2, Have: len(d.data) - int(d.cursor)}
	}
	lenOff := d.cursor
	n := binary.BigEndian.Uint16(d.data[d.cursor : d.cursor+2])
	if n == 0 {
		return Frame{}, false, &errs.TruncatedFrame{Offset: lenOff, Need: 1, Have: 0}
	}
	bodyStart := d.cursor + 2
	bodyEnd := bodyStart + int64(n)
	if bodyEnd > int64(len(d.data)) {
		return Frame{}, false, &errs.TruncatedFrame{Offset: lenOff, Need: int(n), Have: len(d.data) - int(bodyStart)}
	}
	body := d.data[bodyStart:bodyEnd]
	tag := body[0]
	d.cursor = bodyEnd

	if !itch.Known(tag) {
		d.unknown++
	}
	return Frame{Tag: tag, Body: body, Offset: lenOff}, true, nil
}
