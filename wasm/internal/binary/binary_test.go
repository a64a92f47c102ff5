package binary

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(data)

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	_, err := r.ReadByte()
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestReaderReadBytes(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05})

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len: got %d, want 2", r.Len())
	}

	_, err = r.ReadBytes(10)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReaderSub(t *testing.T) {
	r := NewReader([]byte{0xAA, 0x01, 0x02, 0x03, 0xBB})
	if _, err := r.ReadByte(); err != nil {
		t.Fatal(err)
	}

	sub, err := r.Sub(3)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if sub.Position() != 1 {
		t.Errorf("sub position: got %d, want 1", sub.Position())
	}
	rest, err := sub.ReadRemaining()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rest, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("sub payload: got %v", rest)
	}

	b, err := r.ReadByte()
	if err != nil || b != 0xBB {
		t.Errorf("parent after Sub: got 0x%02x, %v", b, err)
	}

	if _, err := r.Sub(1); err == nil {
		t.Error("expected error for Sub past end")
	}
}

func TestReaderReadU32(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		got, err := NewReader(tt.encoded).ReadU32()
		if err != nil {
			t.Errorf("ReadU32(%v): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadU32(%v): got %d, want %d", tt.encoded, got, tt.want)
		}
	}
}

func TestReaderReadU32Overflow(t *testing.T) {
	_, err := NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01}).ReadU32()
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestSignedRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 64, -65, math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}

	for _, v := range values {
		w := NewWriter()
		w.WriteS64(v)
		got, err := NewReader(w.Bytes()).ReadS64()
		if err != nil {
			t.Errorf("ReadS64(%d): %v", v, err)
			continue
		}
		if got != v {
			t.Errorf("s64 round trip: got %d, want %d", got, v)
		}
	}

	for _, v := range []int32{0, -1, 127, -128, math.MaxInt32, math.MinInt32} {
		w := NewWriter()
		w.WriteS64(int64(v))
		got, err := NewReader(w.Bytes()).ReadS32()
		if err != nil {
			t.Errorf("ReadS32(%d): %v", v, err)
			continue
		}
		if got != v {
			t.Errorf("s32 round trip: got %d, want %d", got, v)
		}
	}
}

func TestFloatRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteF32(1.5)
	w.WriteF64(-2.25)

	r := NewReader(w.Bytes())
	f32, err := r.ReadF32()
	if err != nil || f32 != 1.5 {
		t.Errorf("ReadF32: got %v, %v", f32, err)
	}
	f64, err := r.ReadF64()
	if err != nil || f64 != -2.25 {
		t.Errorf("ReadF64: got %v, %v", f64, err)
	}
}

func TestReadName(t *testing.T) {
	w := NewWriter()
	w.WriteName("env")
	got, err := NewReader(w.Bytes()).ReadName()
	if err != nil || got != "env" {
		t.Errorf("ReadName: got %q, %v", got, err)
	}

	_, err = NewReader([]byte{0x02, 0xff, 0xfe}).ReadName()
	if err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestWriteSection(t *testing.T) {
	w := NewWriter()
	w.WriteSection(0x01, []byte{0xAA, 0xBB})
	want := []byte{0x01, 0x02, 0xAA, 0xBB}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("WriteSection: got %v, want %v", w.Bytes(), want)
	}
}

func TestParseError(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, _ = r.ReadByte()
	err := r.WrapError("header", io.EOF)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if pe.Position != 1 || pe.Section != "header" {
		t.Errorf("got position %d section %q", pe.Position, pe.Section)
	}
	if !errors.Is(err, io.EOF) {
		t.Error("ParseError should unwrap to cause")
	}
}
