package iec104

import (
	"bytes"
	"testing"
)

func TestLittleEndianUint24(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{"zero", []byte{0x00, 0x00, 0x00}, 0},
		{"one", []byte{0x01, 0x00, 0x00}, 1},
		{"max", []byte{0xFF, 0xFF, 0xFF}, 0xFFFFFF},
		{"middle byte set", []byte{0x00, 0x01, 0x00}, 0x100},
		{"high byte set", []byte{0x00, 0x00, 0x01}, 0x10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLittleEndianUint24(tt.data); got != tt.want {
				t.Errorf("parseLittleEndianUint24() = %d, want %d", got, tt.want)
			}
			if got := serializeLittleEndianUint24(tt.want); !bytes.Equal(got, tt.data) {
				t.Errorf("serializeLittleEndianUint24() = % X, want % X", got, tt.data)
			}
		})
	}
}

func TestLittleEndianFloat32(t *testing.T) {
	data := []byte{0x9A, 0x99, 0x59, 0x40}
	got := parseLittleEndianFloat32(data)
	want := float32(3.4)
	if got != want {
		t.Errorf("parseLittleEndianFloat32() = %v, want %v", got, want)
	}
	if back := serializeLittleEndianFloat32(got); !bytes.Equal(back, data) {
		t.Errorf("serializeLittleEndianFloat32() = % X, want % X", back, data)
	}
}
