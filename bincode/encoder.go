package bincode

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MaxContainerDepth bounds nesting during both encoding and decoding,
// matching the limit enforced by the C++ support runtime.
const MaxContainerDepth = 500

// Encoder writes the bincode-compatible wire format: little-endian
// fixed-width integers, u64 length prefixes, one-byte option tags and
// u32 variant indexes.
type Encoder struct {
	buf   []byte
	depth int
}

// NewEncoder creates an empty encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded buffer
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

func (e *Encoder) WriteU8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) WriteU16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

func (e *Encoder) WriteU32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) WriteU64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// WriteU128 writes the low quadword first
func (e *Encoder) WriteU128(v U128) {
	e.WriteU64(v.Lo)
	e.WriteU64(v.Hi)
}

func (e *Encoder) WriteI8(v int8)   { e.WriteU8(uint8(v)) }
func (e *Encoder) WriteI16(v int16) { e.WriteU16(uint16(v)) }
func (e *Encoder) WriteI32(v int32) { e.WriteU32(uint32(v)) }
func (e *Encoder) WriteI64(v int64) { e.WriteU64(uint64(v)) }

func (e *Encoder) WriteI128(v I128) {
	e.WriteU64(v.Lo)
	e.WriteU64(uint64(v.Hi))
}

func (e *Encoder) WriteF32(v float32) {
	e.WriteU32(math.Float32bits(v))
}

func (e *Encoder) WriteF64(v float64) {
	e.WriteU64(math.Float64bits(v))
}

// WriteLen writes a sequence or string length prefix
func (e *Encoder) WriteLen(n int) {
	e.WriteU64(uint64(n))
}

// WriteString writes a u64 length prefix followed by the raw bytes
func (e *Encoder) WriteString(s string) {
	e.WriteLen(len(s))
	e.buf = append(e.buf, s...)
}

// WriteBytes writes a u64 length prefix followed by the raw bytes
func (e *Encoder) WriteBytes(b []byte) {
	e.WriteLen(len(b))
	e.buf = append(e.buf, b...)
}

// WriteVariantIndex writes the unsigned 32-bit tag of a union variant
func (e *Encoder) WriteVariantIndex(idx uint32) {
	e.WriteU32(idx)
}

// WriteOptionTag writes the one-byte presence tag of an option
func (e *Encoder) WriteOptionTag(present bool) {
	e.WriteBool(present)
}

// IncreaseContainerDepth brackets the encoding of a top-level record
func (e *Encoder) IncreaseContainerDepth() error {
	if e.depth >= MaxContainerDepth {
		return fmt.Errorf("exceeded maximum container depth %d", MaxContainerDepth)
	}
	e.depth++
	return nil
}

// DecreaseContainerDepth closes a record bracket
func (e *Encoder) DecreaseContainerDepth() {
	e.depth--
}

// U128 is an unsigned 128-bit wire integer
type U128 struct {
	Hi uint64
	Lo uint64
}

// I128 is a signed 128-bit wire integer
type I128 struct {
	Hi int64
	Lo uint64
}
