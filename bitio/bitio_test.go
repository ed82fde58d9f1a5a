package bitio_test

import (
	"errors"
	"testing"

	"github.com/mpeghaptics/hmpg/bitio"
	"github.com/mpeghaptics/hmpg/herrors"
)

func TestWriteReadBits(t *testing.T) {
	tests := []struct {
		name string
		vals []uint64
		n    uint8
	}{
		{"3-bit values", []uint64{0, 1, 5, 7}, 3},
		{"13-bit values", []uint64{0, 1, 8191, 4096}, 13},
		{"32-bit values", []uint64{0, 1, 0xFFFFFFFF, 0x12345678}, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := bitio.NewWriter()
			for _, v := range tt.vals {
				if err := w.WriteBits(v, tt.n); err != nil {
					t.Fatalf("WriteBits(%d, %d): %v", v, tt.n, err)
				}
			}
			r := bitio.NewReader(w.Bytes())
			for _, want := range tt.vals {
				got, err := r.ReadBits(tt.n)
				if err != nil {
					t.Fatalf("ReadBits: %v", err)
				}
				if got != want {
					t.Errorf("got %d, want %d", got, want)
				}
			}
		})
	}
}

func TestWriteReadString(t *testing.T) {
	w := bitio.NewWriter()
	_ = w.WriteBits(0b101, 3)
	w.WriteString("hello")
	w.WriteString("")
	r := bitio.NewReader(w.Bytes())
	if _, err := r.ReadBits(3); err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	s, err := r.ReadString()
	if err != nil || s != "hello" {
		t.Fatalf("ReadString = %q, %v; want hello, nil", s, err)
	}
	s2, err := r.ReadString()
	if err != nil || s2 != "" {
		t.Fatalf("ReadString = %q, %v; want empty, nil", s2, err)
	}
}

func TestQuantizeRoundTrip(t *testing.T) {
	tests := []struct {
		x, lo, hi float32
		n         uint8
	}{
		{0, -1, 1, 8},
		{1, -1, 1, 8},
		{-1, -1, 1, 8},
		{0.5, 0, 1, 16},
		{12.0, 0, 16, 32},
	}
	for _, tt := range tests {
		code := bitio.QuantizeF32(tt.x, tt.lo, tt.hi, tt.n)
		got := bitio.DequantizeF32(code, tt.lo, tt.hi, tt.n)
		tol := (tt.hi - tt.lo) / float32(uint64(1)<<tt.n-1)
		if diff := got - tt.x; diff < -tol || diff > tol {
			t.Errorf("quantize(%v) round-trip = %v, want within %v", tt.x, got, tol)
		}
	}
}

func TestWriteBitsOverflow(t *testing.T) {
	w := bitio.NewWriter()
	err := w.WriteBits(0xFF, 3)
	if !errors.Is(err, herrors.Overflow) {
		t.Fatalf("WriteBits(0xFF, 3) = %v, want Overflow", err)
	}
}

func TestTruncatedRead(t *testing.T) {
	w := bitio.NewWriter()
	_ = w.WriteBits(1, 1)
	r := bitio.NewReader(w.Bytes())
	if _, err := r.ReadBits(1); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if _, err := r.ReadBits(1); !errors.Is(err, herrors.Truncated) {
		t.Fatalf("expected Truncated error past end of stream, got %v", err)
	}
}

func TestVarint(t *testing.T) {
	vals := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40}
	w := bitio.NewWriter()
	for _, v := range vals {
		w.WriteVarint(v)
	}
	r := bitio.NewReader(w.Bytes())
	for _, want := range vals {
		got, err := r.ReadVarint()
		if err != nil {
			t.Fatalf("ReadVarint: %v", err)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
}
