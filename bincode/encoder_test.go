package bincode

import (
	"bytes"
	"testing"
)

func TestEncoder_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		write func(*Encoder)
		want  []byte
	}{
		{"bool true", func(e *Encoder) { e.WriteBool(true) }, []byte{0x01}},
		{"bool false", func(e *Encoder) { e.WriteBool(false) }, []byte{0x00}},
		{"u8", func(e *Encoder) { e.WriteU8(0xAB) }, []byte{0xAB}},
		{"u16", func(e *Encoder) { e.WriteU16(0x1234) }, []byte{0x34, 0x12}},
		{"u32", func(e *Encoder) { e.WriteU32(0xDEADBEEF) }, []byte{0xEF, 0xBE, 0xAD, 0xDE}},
		{"i64 seven", func(e *Encoder) { e.WriteI64(7) }, []byte{0x07, 0, 0, 0, 0, 0, 0, 0}},
		{"i64 negative one", func(e *Encoder) { e.WriteI64(-1) }, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{"f64 one", func(e *Encoder) { e.WriteF64(1.0) }, []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}},
		{"variant index", func(e *Encoder) { e.WriteVariantIndex(1) }, []byte{0x01, 0, 0, 0}},
		{"option none", func(e *Encoder) { e.WriteOptionTag(false) }, []byte{0x00}},
		{"u128", func(e *Encoder) { e.WriteU128(U128{Hi: 1, Lo: 2}) },
			[]byte{2, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder()
			tt.write(e)
			if !bytes.Equal(e.Bytes(), tt.want) {
				t.Errorf("got % X, want % X", e.Bytes(), tt.want)
			}
		})
	}
}

func TestEncoder_String(t *testing.T) {
	e := NewEncoder()
	e.WriteString("hi")
	want := []byte{0x02, 0, 0, 0, 0, 0, 0, 0, 0x68, 0x69}
	if !bytes.Equal(e.Bytes(), want) {
		t.Errorf("got % X, want % X", e.Bytes(), want)
	}
}

func TestDecoder_RoundTrip(t *testing.T) {
	e := NewEncoder()
	e.WriteBool(true)
	e.WriteI64(-42)
	e.WriteString("hello")
	e.WriteF32(2.5)
	e.WriteVariantIndex(3)

	d := NewDecoder(e.Bytes())
	if v, err := d.ReadBool(); err != nil || v != true {
		t.Fatalf("bool: %v %v", v, err)
	}
	if v, err := d.ReadI64(); err != nil || v != -42 {
		t.Fatalf("i64: %v %v", v, err)
	}
	if v, err := d.ReadString(); err != nil || v != "hello" {
		t.Fatalf("string: %v %v", v, err)
	}
	if v, err := d.ReadF32(); err != nil || v != 2.5 {
		t.Fatalf("f32: %v %v", v, err)
	}
	if v, err := d.ReadVariantIndex(); err != nil || v != 3 {
		t.Fatalf("variant: %v %v", v, err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
}

func TestDecoder_TrailingBytes(t *testing.T) {
	d := NewDecoder([]byte{0x07, 0, 0, 0, 0, 0, 0, 0, 0xFF})
	if _, err := d.ReadI64(); err != nil {
		t.Fatalf("read: %v", err)
	}
	err := d.Finish()
	if err != ErrTrailingBytes {
		t.Errorf("got %v, want ErrTrailingBytes", err)
	}
}

func TestDecoder_ShortInput(t *testing.T) {
	d := NewDecoder([]byte{0x01, 0x02})
	if _, err := d.ReadU64(); err == nil {
		t.Error("expected error for short input")
	}
}

func TestDecoder_InvalidBool(t *testing.T) {
	d := NewDecoder([]byte{0x02})
	if _, err := d.ReadBool(); err == nil {
		t.Error("expected error for invalid bool byte")
	}
}

func TestDecoder_LengthOverflow(t *testing.T) {
	// declared length far beyond remaining input must fail before allocation
	d := NewDecoder([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F})
	if _, err := d.ReadLen(); err == nil {
		t.Error("expected error for oversized length")
	}
}

func TestContainerDepthLimit(t *testing.T) {
	e := NewEncoder()
	for i := 0; i < MaxContainerDepth; i++ {
		if err := e.IncreaseContainerDepth(); err != nil {
			t.Fatalf("depth %d: %v", i, err)
		}
	}
	if err := e.IncreaseContainerDepth(); err == nil {
		t.Error("expected depth overflow at encoder")
	}

	d := NewDecoder(nil)
	for i := 0; i < MaxContainerDepth; i++ {
		if err := d.IncreaseContainerDepth(); err != nil {
			t.Fatalf("depth %d: %v", i, err)
		}
	}
	if err := d.IncreaseContainerDepth(); err == nil {
		t.Error("expected depth overflow at decoder")
	}
}
