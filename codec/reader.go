package codec

import (
	"math"
	"unicode/utf8"
)

// reader walks a little-endian byte slice field by field, the way the
// teacher's readBuffer/writeBuffer helpers walk a bytes.Buffer, but without
// an intermediate allocation: the decode path is hot (≈60Hz per listener)
// and must stay allocation-light between I/O suspension points.
//
// Once err is set, every further read is a no-op that returns the zero
// value, mirroring the ok = ok && ... short-circuit chain the teacher uses
// in buffer.go — callers only need to check err once, at the end.
type reader struct {
	buf []byte
	pos int
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) need(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.buf) {
		r.err = ErrTruncated
		return nil
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out
}

func (r *reader) u8() uint8 {
	b := r.need(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) i8() int8 { return int8(r.u8()) }

func (r *reader) u16() uint16 {
	b := r.need(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func (r *reader) i16() int16 { return int16(r.u16()) }

func (r *reader) u32() uint32 {
	b := r.need(4)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (r *reader) i32() int32 { return int32(r.u32()) }

func (r *reader) u64() uint64 {
	b := r.need(8)
	if b == nil {
		return 0
	}
	lo := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24
	hi := uint64(b[4]) | uint64(b[5])<<8 | uint64(b[6])<<16 | uint64(b[7])<<24
	return lo | hi<<32
}

func (r *reader) f32() float32 {
	return math.Float32frombits(r.u32())
}

func (r *reader) f64() float64 {
	return math.Float64frombits(r.u64())
}

func (r *reader) raw(n int) []byte {
	return r.need(n)
}

// name reads a nul-terminated string within a fixed-width field (§4.1):
// truncate at the first nul; if there is none, the whole field must be
// valid UTF-8 or the packet is rejected.
func (r *reader) name(width int) string {
	raw := r.need(width)
	if raw == nil {
		return ""
	}
	if i := indexByte(raw, 0); i >= 0 {
		return string(raw[:i])
	}
	if !utf8.Valid(raw) {
		r.err = ErrMalformedName
		return ""
	}
	return string(raw)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
