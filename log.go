package iec104

import (
	"encoding/binary"
	"math"

	"github.com/sirupsen/logrus"
)

// _lg is the package-level logger, swappable with SetLogger so a caller
// can route this package's debug trace into their own logging pipeline.
var _lg = logrus.New()

// SetLogger replaces the package-level logger used for decode-time branch
// tracing (which ASDU type / SQ branch was taken) and for warnings raised
// on the codec's error paths.
func SetLogger(lg *logrus.Logger) {
	_lg = lg
}

func parseLittleEndianUint16(x []byte) uint16 {
	return binary.LittleEndian.Uint16(x)
}

func serializeLittleEndianUint16(i uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, i)
	return b
}

// parseLittleEndianUint24 decodes a 3-byte little-endian unsigned integer,
// the width IEC 104 uses for the information-object address.
func parseLittleEndianUint24(x []byte) uint32 {
	return uint32(x[0]) | uint32(x[1])<<8 | uint32(x[2])<<16
}

// serializeLittleEndianUint24 encodes the low 24 bits of v as 3
// little-endian bytes.
func serializeLittleEndianUint24(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16)}
}

func parseLittleEndianFloat32(x []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(x))
}

func serializeLittleEndianFloat32(f float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
	return b
}
