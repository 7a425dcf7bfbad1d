package iec104

import "fmt"

/*
Information objects carry the payload of an ASDU. Their shape depends on
two things: the TypeID inherited from the ASDU header, and the SQ bit -
SQ=0 prefixes every element with its own IOA; SQ=1 prefixes the whole run
with a single IOA and lets the remaining elements occupy consecutive
addresses. This file implements the five supported TypeIDs as a
discriminated union (one concrete Go type per TypeID) rather than a single
record of optional fields.
*/

const ioaMax = 16777215 // 2^24 - 1, a 3-byte unsigned integer

// IOA is a 3-byte little-endian information-object address.
type IOA uint32

func validateIOA(ioa IOA) error {
	if ioa > ioaMax {
		return errRange("ioa", 0, ioaMax, "information object address")
	}
	return nil
}

// QDS is the 1-byte quality descriptor attached to monitored values. Bits
// 1-3 are reserved and always encoded as 0.
type QDS byte

const (
	QDSOverflow    QDS = 1 << 0
	QDSBlocked     QDS = 1 << 4
	QDSSubstituted QDS = 1 << 5
	QDSNotTopical  QDS = 1 << 6
	QDSInvalid     QDS = 1 << 7
)

func parseQDS(b byte) QDS {
	return QDS(b & (QDSOverflow | QDSBlocked | QDSSubstituted | QDSNotTopical | QDSInvalid))
}

// QOC is the qualifier of command: a 5-bit qualifier plus a select/execute
// bit, packed into the high 6 bits (bits 2-7) of an SCO byte.
type QOC struct {
	Qualifier     uint8 // 0-31
	SelectExecute bool
}

func validateQOC(q QOC) error {
	if q.Qualifier > 31 {
		return errRange("qoc.qualifier", 0, 31, "qualifier of command")
	}
	return nil
}

// SCO is the 1-byte single-command payload: state in bit 0, QOC in bits 2-7.
type SCO struct {
	State bool
	QOC   QOC
}

func encodeSCO(s SCO) (byte, error) {
	if err := validateQOC(s.QOC); err != nil {
		return 0, err
	}
	var b byte
	if s.State {
		b |= 0x01
	}
	b |= s.QOC.Qualifier << 2
	if s.QOC.SelectExecute {
		b |= 0x80
	}
	return b, nil
}

func decodeSCO(b byte) SCO {
	return SCO{
		State: b&0x01 != 0,
		QOC: QOC{
			Qualifier:     (b >> 2) & 0x1F,
			SelectExecute: b&0x80 != 0,
		},
	}
}

// BitstringElement is the M_BO_NA_1 element: 4 raw bytes of bitstring
// followed by a quality descriptor. The caller-supplied Bits is an opaque
// 4-byte slot, not a length-prefixed string: longer input is truncated
// and flagged with QDSOverflow; shorter input is null-padded. This
// truncation is intentionally non-lossless.
type BitstringElement struct {
	IOA  IOA
	Bits []byte // caller-supplied; encoded form is always exactly 4 bytes
	QDS  QDS
}

func encodeBitstringElement(e BitstringElement) []byte {
	buf := make([]byte, 4)
	copy(buf, e.Bits)
	qds := e.QDS
	if len(e.Bits) > 4 {
		qds |= QDSOverflow
	}
	return append(buf, byte(qds))
}

func decodeBitstringElement(ioa IOA, data []byte) BitstringElement {
	bits := make([]byte, 4)
	copy(bits, data[:4])
	return BitstringElement{IOA: ioa, Bits: bits, QDS: parseQDS(data[4])}
}

// FloatElement is the M_ME_NC_1 element: an IEEE-754 little-endian
// single-precision float followed by a quality descriptor. Overflow is
// never set by the encoder - float values don't truncate the way
// bitstrings do.
type FloatElement struct {
	IOA   IOA
	Value float32
	QDS   QDS
}

func encodeFloatElement(e FloatElement) []byte {
	qds := e.QDS &^ QDSOverflow
	return append(serializeLittleEndianFloat32(e.Value), byte(qds))
}

func decodeFloatElement(ioa IOA, data []byte) FloatElement {
	return FloatElement{IOA: ioa, Value: parseLittleEndianFloat32(data[:4]), QDS: parseQDS(data[4])}
}

// SingleCommandElement is the C_SC_NA_1 element: a single command byte.
type SingleCommandElement struct {
	IOA IOA
	SCO SCO
}

// InterrogationElement is the C_IC_NA_1 element: a qualifier of interrogation byte.
type InterrogationElement struct {
	IOA IOA
	QOI uint8
}

// ReadElement is the C_RD_NA_1 element: no payload beyond its IOA.
type ReadElement struct {
	IOA IOA
}

// InformationObjects is the sealed discriminated union over the five
// supported TypeIDs' element lists.
type InformationObjects interface {
	typeID() TypeID
	numElements() int
	sq() bool
}

// BitstringObjects holds M_BO_NA_1 elements, SQ=0 or SQ=1.
type BitstringObjects struct {
	Sequence bool
	Elements []BitstringElement
}

func (o BitstringObjects) typeID() TypeID    { return MBoNa1 }
func (o BitstringObjects) numElements() int  { return len(o.Elements) }
func (o BitstringObjects) sq() bool          { return o.Sequence }

// FloatObjects holds M_ME_NC_1 elements, SQ=0 or SQ=1.
type FloatObjects struct {
	Sequence bool
	Elements []FloatElement
}

func (o FloatObjects) typeID() TypeID   { return MMeNc1 }
func (o FloatObjects) numElements() int { return len(o.Elements) }
func (o FloatObjects) sq() bool         { return o.Sequence }

// SingleCommands holds the single C_SC_NA_1 element a command ASDU carries.
type SingleCommands struct {
	Elements []SingleCommandElement
}

func (o SingleCommands) typeID() TypeID   { return CScNa1 }
func (o SingleCommands) numElements() int { return len(o.Elements) }
func (o SingleCommands) sq() bool         { return false }

// Interrogations holds the single C_IC_NA_1 element a command ASDU carries.
type Interrogations struct {
	Elements []InterrogationElement
}

func (o Interrogations) typeID() TypeID   { return CIcNa1 }
func (o Interrogations) numElements() int { return len(o.Elements) }
func (o Interrogations) sq() bool         { return false }

// Reads holds the single payload-less C_RD_NA_1 element.
type Reads struct {
	Elements []ReadElement
}

func (o Reads) typeID() TypeID   { return CRdNa1 }
func (o Reads) numElements() int { return len(o.Elements) }
func (o Reads) sq() bool         { return false }

// elementSize is the per-element payload width (excluding IOA) for the
// two SQ-capable monitor types.
func elementSize(ti TypeID) int {
	switch ti {
	case MBoNa1, MMeNc1:
		return 5 // 4 payload bytes + 1 QDS byte
	default:
		return 0
	}
}

// expectedRegionLen computes the expected byte length of the
// information-objects region for the given type, SQ bit, and element count.
func expectedRegionLen(ti TypeID, sq bool, numElements int) (int, error) {
	switch ti {
	case MBoNa1, MMeNc1:
		es := elementSize(ti)
		if sq {
			return numElements*es + 3, nil
		}
		return numElements * (es + 3), nil
	case CScNa1, CIcNa1:
		return 4, nil
	case CRdNa1:
		return 3, nil
	default:
		return 0, errKind(ErrUnknownType, fmt.Sprintf("type id %s is not implemented by this codec", ti))
	}
}

// EncodeInformationObjects serializes objs: for SQ=1, one leading IOA
// followed by each element's payload; for SQ=0, each element emits its
// own IOA || payload.
func EncodeInformationObjects(objs InformationObjects) ([]byte, error) {
	switch v := objs.(type) {
	case BitstringObjects:
		return encodeRunLength(v.Sequence, len(v.Elements), func(i int) (IOA, []byte) {
			return v.Elements[i].IOA, encodeBitstringElement(v.Elements[i])
		})
	case FloatObjects:
		return encodeRunLength(v.Sequence, len(v.Elements), func(i int) (IOA, []byte) {
			return v.Elements[i].IOA, encodeFloatElement(v.Elements[i])
		})
	case SingleCommands:
		if len(v.Elements) != 1 {
			return nil, errKind(ErrTypeSequenceIllegal, "C_SC_NA_1 requires exactly one element")
		}
		e := v.Elements[0]
		if err := validateIOA(e.IOA); err != nil {
			return nil, err
		}
		scoByte, err := encodeSCO(e.SCO)
		if err != nil {
			return nil, err
		}
		return append(serializeLittleEndianUint24(uint32(e.IOA)), scoByte), nil
	case Interrogations:
		if len(v.Elements) != 1 {
			return nil, errKind(ErrTypeSequenceIllegal, "C_IC_NA_1 requires exactly one element")
		}
		e := v.Elements[0]
		if err := validateIOA(e.IOA); err != nil {
			return nil, err
		}
		return append(serializeLittleEndianUint24(uint32(e.IOA)), e.QOI), nil
	case Reads:
		if len(v.Elements) != 1 {
			return nil, errKind(ErrTypeSequenceIllegal, "C_RD_NA_1 requires exactly one element")
		}
		e := v.Elements[0]
		if err := validateIOA(e.IOA); err != nil {
			return nil, err
		}
		return serializeLittleEndianUint24(uint32(e.IOA)), nil
	default:
		return nil, errKind(ErrUnknownType, "unrecognized InformationObjects implementation")
	}
}

// encodeRunLength implements the shared SQ=0/SQ=1 emission order for the
// two monitor-direction types that may repeat.
func encodeRunLength(sq bool, n int, payloadAt func(i int) (IOA, []byte)) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if sq {
		firstIOA, _ := payloadAt(0)
		if err := validateIOA(firstIOA); err != nil {
			return nil, err
		}
		out := serializeLittleEndianUint24(uint32(firstIOA))
		for i := 0; i < n; i++ {
			_, payload := payloadAt(i)
			out = append(out, payload...)
		}
		return out, nil
	}
	var out []byte
	for i := 0; i < n; i++ {
		ioa, payload := payloadAt(i)
		if err := validateIOA(ioa); err != nil {
			return nil, err
		}
		out = append(out, serializeLittleEndianUint24(uint32(ioa))...)
		out = append(out, payload...)
	}
	return out, nil
}

// DecodeInformationObjects parses the information-objects region given
// the (type_id, sq, num_elements) already extracted from the ASDU header.
func DecodeInformationObjects(ti TypeID, sq bool, numElements uint8, data []byte) (InformationObjects, error) {
	if !ti.implemented() {
		return nil, errKind(ErrUnknownType, fmt.Sprintf("type id %s is not implemented by this codec", ti))
	}
	if sq && !ti.sqCapable() {
		return nil, errKind(ErrTypeSequenceIllegal, fmt.Sprintf("%s may not use sq=1", ti))
	}
	if !ti.sqCapable() && numElements != 1 {
		return nil, errKind(ErrTypeSequenceIllegal, fmt.Sprintf("%s requires exactly one element", ti))
	}
	n := int(numElements)

	expected, err := expectedRegionLen(ti, sq, n)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if len(data) != 0 {
			return nil, errKind(ErrUnexpectedPayload, "num_elements is 0 but residual bytes are present")
		}
	} else if len(data) != expected {
		return nil, errKind(ErrLengthMismatch, fmt.Sprintf("information-object region is %d bytes, expected %d", len(data), expected))
	}

	_lg.Debugf("decoding %d information object(s) of type %s, sq=%v", n, ti, sq)

	switch ti {
	case MBoNa1:
		elems, err := decodeRunLength(sq, n, elementSize(ti), data, func(ioa IOA, payload []byte) BitstringElement {
			return decodeBitstringElement(ioa, payload)
		})
		if err != nil {
			return nil, err
		}
		return BitstringObjects{Sequence: sq, Elements: elems}, nil
	case MMeNc1:
		elems, err := decodeRunLength(sq, n, elementSize(ti), data, func(ioa IOA, payload []byte) FloatElement {
			return decodeFloatElement(ioa, payload)
		})
		if err != nil {
			return nil, err
		}
		return FloatObjects{Sequence: sq, Elements: elems}, nil
	case CScNa1:
		if n == 0 {
			return SingleCommands{}, nil
		}
		ioa := IOA(parseLittleEndianUint24(data[:3]))
		return SingleCommands{Elements: []SingleCommandElement{{IOA: ioa, SCO: decodeSCO(data[3])}}}, nil
	case CIcNa1:
		if n == 0 {
			return Interrogations{}, nil
		}
		ioa := IOA(parseLittleEndianUint24(data[:3]))
		return Interrogations{Elements: []InterrogationElement{{IOA: ioa, QOI: data[3]}}}, nil
	case CRdNa1:
		if n == 0 {
			return Reads{}, nil
		}
		ioa := IOA(parseLittleEndianUint24(data[:3]))
		return Reads{Elements: []ReadElement{{IOA: ioa}}}, nil
	default:
		return nil, errKind(ErrUnknownType, fmt.Sprintf("type id %s is not implemented by this codec", ti))
	}
}

// decodeRunLength implements the shared SQ=0/SQ=1 parse order, mirroring
// encodeRunLength.
func decodeRunLength[T any](sq bool, n, payloadLen int, data []byte, build func(ioa IOA, payload []byte) T) ([]T, error) {
	if n == 0 {
		return nil, nil
	}
	elems := make([]T, 0, n)
	if sq {
		base := IOA(parseLittleEndianUint24(data[:3]))
		rest := data[3:]
		for i := 0; i < n; i++ {
			start := i * payloadLen
			elems = append(elems, build(base+IOA(i), rest[start:start+payloadLen]))
		}
		return elems, nil
	}
	stride := 3 + payloadLen
	for i := 0; i < n; i++ {
		start := i * stride
		ioa := IOA(parseLittleEndianUint24(data[start : start+3]))
		elems = append(elems, build(ioa, data[start+3:start+stride]))
	}
	return elems, nil
}
