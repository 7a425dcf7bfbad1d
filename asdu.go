package iec104

import "fmt"

/*
ASDU (Application Service Data Unit) is the payload an I-frame carries.
Its first six bytes are a fixed-shape header; what follows is the
information-object region, whose own shape depends on TypeID and SQ
(see information_object.go).

  | Type Identification (TI)               |  1 byte
  | SQ | Number of objects/elements (NOO)   |  1 byte  (VSQ)
  | T | P/N | Cause of transmission (COT)   |  1 byte
  | Originator address (OA)                |  1 byte
  | Common address (CA), little-endian     |  2 bytes
  | information objects ...                |  variable
*/

const asduHeaderLen = 6

// TypeID is IEC 104's 1-byte type identification. This module carries the
// full IEC 101/104 name table as documentation (a caller decoding a
// foreign APDU benefits from recognizing the identifier even when this
// codec does not implement its payload shape), but EncodeASDUHeader/DecodeASDUHeader
// only accept the five types this codec actually understands; every other
// recognized-but-unimplemented identifier, and every value outside the
// table, both yield ErrUnknownType from the codec's point of view.
type TypeID uint8

const (
	MSpNa1 TypeID = 1   // single-point information
	MSpTa1 TypeID = 2   // single-point information with CP24Time2a
	MDpNa1 TypeID = 3   // double-point information
	MDpTa1 TypeID = 4   // double-point information with CP24Time2a
	MBoNa1 TypeID = 7   // bitstring of 32 bit
	MMeNd1 TypeID = 21  // measured value, normalized, no quality descriptor
	MMeNc1 TypeID = 13  // measured value, short floating point
	MSpTb1 TypeID = 30  // single-point information with CP56Time2a
	MDpTb1 TypeID = 31  // double-point information with CP56Time2a
	CScNa1 TypeID = 45  // single command
	CDcNa1 TypeID = 46  // double command
	CRcNa1 TypeID = 47  // regulating step command
	CIcNa1 TypeID = 100 // general interrogation command
	CCiNa1 TypeID = 101 // counter interrogation command
	CRdNa1 TypeID = 102 // read command
	CCsNa1 TypeID = 103 // clock synchronization command
)

func (t TypeID) String() string {
	switch t {
	case MSpNa1:
		return "M_SP_NA_1"
	case MSpTa1:
		return "M_SP_TA_1"
	case MDpNa1:
		return "M_DP_NA_1"
	case MDpTa1:
		return "M_DP_TA_1"
	case MBoNa1:
		return "M_BO_NA_1"
	case MMeNd1:
		return "M_ME_ND_1"
	case MMeNc1:
		return "M_ME_NC_1"
	case MSpTb1:
		return "M_SP_TB_1"
	case MDpTb1:
		return "M_DP_TB_1"
	case CScNa1:
		return "C_SC_NA_1"
	case CDcNa1:
		return "C_DC_NA_1"
	case CRcNa1:
		return "C_RC_NA_1"
	case CIcNa1:
		return "C_IC_NA_1"
	case CCiNa1:
		return "C_CI_NA_1"
	case CRdNa1:
		return "C_RD_NA_1"
	case CCsNa1:
		return "C_CS_NA_1"
	default:
		return fmt.Sprintf("TypeID(%d)", uint8(t))
	}
}

// implemented reports whether this codec knows how to serialize/parse the
// information objects of t. Only five types qualify; every other
// named-but-unimplemented TypeID is still rejected as ErrUnknownType by
// EncodeASDUHeader/DecodeASDUHeader.
func (t TypeID) implemented() bool {
	switch t {
	case MBoNa1, MMeNc1, CScNa1, CIcNa1, CRdNa1:
		return true
	default:
		return false
	}
}

// sqCapable reports whether t may legally be transmitted with SQ=1. Only
// the two monitor-direction types with repeatable element shapes qualify;
// command types must always use SQ=0, num_elements=1.
func (t TypeID) sqCapable() bool {
	return t == MBoNa1 || t == MMeNc1
}

// Cause is the closed cause-of-transmission enum this codec validates
// against; COT's low 6 bits must decode to one of these six values.
type Cause uint8

const (
	Periodic                  Cause = 1
	Spontaneous               Cause = 3
	RequestRequested          Cause = 5
	Activation                Cause = 6
	ActivationConfirmation    Cause = 7
	ReturnInfoByRemoteCommand Cause = 11
)

func (c Cause) String() string {
	switch c {
	case Periodic:
		return "PERIODIC"
	case Spontaneous:
		return "SPONTANEOUS"
	case RequestRequested:
		return "REQUEST_REQUESTED"
	case Activation:
		return "ACTIVATION"
	case ActivationConfirmation:
		return "ACTIVATION_CONFIRMATION"
	case ReturnInfoByRemoteCommand:
		return "RETURN_INFORMATION_BY_REMOTE_COMMAND"
	default:
		return fmt.Sprintf("Cause(%d)", uint8(c))
	}
}

func (c Cause) valid() bool {
	switch c {
	case Periodic, Spontaneous, RequestRequested, Activation, ActivationConfirmation, ReturnInfoByRemoteCommand:
		return true
	default:
		return false
	}
}

// ASDUHeader is the fixed 6-byte prefix of an ASDU, decoupled from the
// information-object region it precedes.
type ASDUHeader struct {
	TypeID            TypeID
	SQ                bool
	NumElements       uint8 // 7 bits, 0-127
	Cause             Cause
	PN                bool // positive/negative confirmation
	Test              bool
	OriginatorAddress uint8
	CommonAddress     uint16
}

// EncodeASDUHeader serializes h's six header bytes, enforcing the VSQ and
// sequence-capability invariants.
func EncodeASDUHeader(h ASDUHeader) ([]byte, error) {
	if !h.TypeID.implemented() {
		return nil, errKind(ErrUnknownType, fmt.Sprintf("type id %s is not implemented by this codec", h.TypeID))
	}
	if h.NumElements > 127 {
		return nil, errKind(ErrCountOutOfRange, "VSQ only has 7 bits for the element count, max 127")
	}
	if h.SQ && !h.TypeID.sqCapable() {
		return nil, errKind(ErrTypeSequenceIllegal, fmt.Sprintf("%s may not use sq=1", h.TypeID))
	}
	if !h.TypeID.sqCapable() && h.NumElements != 1 {
		return nil, errKind(ErrTypeSequenceIllegal, fmt.Sprintf("%s requires exactly one element", h.TypeID))
	}
	if !h.Cause.valid() {
		return nil, errKind(ErrUnknownCause, fmt.Sprintf("cause %d is not in the closed set", uint8(h.Cause)))
	}

	var vsq byte = h.NumElements & 0x7F
	if h.SQ {
		vsq |= 0x80
	}

	var cot byte = byte(h.Cause) & 0x3F
	if h.PN {
		cot |= 0x40
	}
	if h.Test {
		cot |= 0x80
	}

	ca := serializeLittleEndianUint16(h.CommonAddress)
	return []byte{byte(h.TypeID), vsq, cot, h.OriginatorAddress, ca[0], ca[1]}, nil
}

// DecodeASDUHeader parses the fixed 6-byte ASDU prefix.
func DecodeASDUHeader(data []byte) (ASDUHeader, error) {
	if len(data) < asduHeaderLen {
		return ASDUHeader{}, errKind(ErrHeaderLength, "asdu header must be at least 6 bytes")
	}

	ti := TypeID(data[0])
	if !ti.implemented() {
		return ASDUHeader{}, errKind(ErrUnknownType, fmt.Sprintf("type id %s is not implemented by this codec", ti))
	}

	vsq := data[1]
	sq := vsq&0x80 != 0
	numElements := vsq & 0x7F

	if sq && !ti.sqCapable() {
		return ASDUHeader{}, errKind(ErrTypeSequenceIllegal, fmt.Sprintf("%s may not use sq=1", ti))
	}
	if !ti.sqCapable() && numElements != 1 {
		return ASDUHeader{}, errKind(ErrTypeSequenceIllegal, fmt.Sprintf("%s requires exactly one element", ti))
	}

	cot := data[2]
	causeID := Cause(cot & 0x3F)
	if !causeID.valid() {
		return ASDUHeader{}, errKind(ErrUnknownCause, fmt.Sprintf("cause %d is not in the closed set", cot&0x3F))
	}
	pn := cot&0x40 != 0
	test := cot&0x80 != 0

	oa := data[3]
	ca := parseLittleEndianUint16(data[4:6])

	h := ASDUHeader{
		TypeID:            ti,
		SQ:                sq,
		NumElements:       numElements,
		Cause:             causeID,
		PN:                pn,
		Test:              test,
		OriginatorAddress: oa,
		CommonAddress:     ca,
	}
	_lg.Debugf("decoded asdu header %+v", h)
	return h, nil
}
