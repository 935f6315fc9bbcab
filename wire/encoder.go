// Package wire implements the canonical binary encoding shared by every
// consensus-critical value: a deterministic byte sequence that two
// implementations must produce identically for the same logical value.
//
// Scalars are fixed-width little-endian. Collection lengths and the
// operation tag use an unsigned LEB128 varint rather than Bitcoin-style
// CompactSize — a concrete choice for the "variable-length tag" requirement,
// matching the convention of a Graphene-family chain's unsigned_int. Byte
// strings are length-prefixed with that same varint.
package wire

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned by Reader methods when the buffer runs out before
// the requested value is fully decoded.
var ErrTruncated = errors.New("wire: truncated input")

// ErrNonCanonical is returned when a varint was encoded with more bytes than
// its value required — a minimality violation that consensus code must
// reject rather than silently accept.
var ErrNonCanonical = errors.New("wire: non-canonical varint")

// Encoder accumulates the canonical byte sequence of a protocol value.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated canonical encoding.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of bytes written so far — the "packed size".
func (e *Encoder) Len() int { return len(e.buf) }

// U16 appends a 16-bit little-endian integer.
func (e *Encoder) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

// U32 appends a 32-bit little-endian integer.
func (e *Encoder) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

// U64 appends a 64-bit little-endian integer.
func (e *Encoder) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

// Byte appends a single byte.
func (e *Encoder) Byte(v byte) {
	e.buf = append(e.buf, v)
}

// Varint appends v as an unsigned LEB128 varint.
func (e *Encoder) Varint(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// BytesField appends a varint length prefix followed by the raw bytes.
func (e *Encoder) BytesField(b []byte) {
	e.Varint(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// Raw appends b verbatim, with no length prefix — used for fixed-size fields
// such as a public key or a digest.
func (e *Encoder) Raw(b []byte) {
	e.buf = append(e.buf, b...)
}

// Reader decodes a canonical byte sequence produced by Encoder.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps b for sequential decoding.
func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// Remaining reports how many bytes are left to read.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrTruncated
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// U16 decodes a 16-bit little-endian integer.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 decodes a 32-bit little-endian integer.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 decodes a 64-bit little-endian integer.
func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Byte decodes a single byte.
func (r *Reader) Byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Varint decodes an unsigned LEB128 varint, rejecting non-minimal encodings.
func (r *Reader) Varint() (uint64, error) {
	var v uint64
	var shift uint
	var byteCount int
	for {
		b, err := r.Byte()
		if err != nil {
			return 0, err
		}
		byteCount++
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 64 {
			return 0, ErrNonCanonical
		}
	}
	if byteCount != varintLen(v) {
		return 0, ErrNonCanonical
	}
	return v, nil
}

// varintLen returns the minimal number of LEB128 bytes needed to encode v.
func varintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// BytesField decodes a varint-length-prefixed byte string.
func (r *Reader) BytesField() ([]byte, error) {
	n, err := r.Varint()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}

// Raw decodes exactly n raw bytes with no length prefix.
func (r *Reader) Raw(n int) ([]byte, error) {
	return r.take(n)
}
