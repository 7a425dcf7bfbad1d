package iec104

import "fmt"

/*
APDU (Application Protocol Data Unit) is the full wire unit: a 2-byte
start header (magic 0x68 + length) followed by a body of at most 253
bytes - the 4-byte APCI, and for I-frames, the ASDU that follows it.

  | Start byte (0x68) |  1 byte
  | Length             |  1 byte, counts everything after itself
  | APCI               |  4 bytes
  | ASDU (I-frame only)|  variable
*/

const (
	startByte    = 0x68
	maxBodyLen   = 253
	apciLen      = 4
	decodeHeader = asduHeaderLen // 6 bytes: TI,VSQ,COT,OA,CA[2]
)

// Message is the top-level value Encode/Decode operate on: a frame, and
// for I-frames the ASDU it carries.
type Message struct {
	Frame Frame
	ASDU  *ASDUBody // nil unless Frame is an IFrame
}

// ASDUBody is the ASDU minus its wire-only SQ/NumElements bookkeeping,
// which Encode/Decode derive from and restore onto Objects automatically.
type ASDUBody struct {
	Cause             Cause
	PN                bool
	Test              bool
	OriginatorAddress uint8
	CommonAddress     uint16
	Objects           InformationObjects
}

// Encode serializes a Message into its full wire representation,
// including the 0x68 + length header.
func Encode(msg Message) ([]byte, error) {
	apci, err := EncodeFrame(msg.Frame)
	if err != nil {
		return nil, err
	}

	body := apci
	if ifr, ok := msg.Frame.(IFrame); ok {
		_ = ifr
		if msg.ASDU == nil {
			return nil, errKind(ErrNotTuple, "I-frame message requires a non-nil ASDU")
		}
		asduBytes, err := encodeASDUBody(*msg.ASDU)
		if err != nil {
			return nil, err
		}
		body = append(body, asduBytes...)
	} else if msg.ASDU != nil {
		return nil, errKind(ErrNotTuple, "only I-frames may carry an ASDU")
	}

	if len(body) > maxBodyLen {
		return nil, errKind(ErrHeaderLength, fmt.Sprintf("apdu body is %d bytes, exceeds the 253-byte maximum", len(body)))
	}

	out := make([]byte, 0, len(body)+2)
	out = append(out, startByte, byte(len(body)))
	out = append(out, body...)
	return out, nil
}

// encodeASDUBody derives VSQ's SQ/NumElements from b.Objects and encodes
// the full ASDU (header + information objects).
func encodeASDUBody(b ASDUBody) ([]byte, error) {
	if b.Objects == nil {
		return nil, errKind(ErrNotTuple, "ASDU requires Objects")
	}
	if b.Objects.numElements() > 127 {
		return nil, errKind(ErrCountOutOfRange, "VSQ only has 7 bits for the element count, max 127")
	}
	header := ASDUHeader{
		TypeID:            b.Objects.typeID(),
		SQ:                b.Objects.sq(),
		NumElements:       uint8(b.Objects.numElements()),
		Cause:             b.Cause,
		PN:                b.PN,
		Test:              b.Test,
		OriginatorAddress: b.OriginatorAddress,
		CommonAddress:     b.CommonAddress,
	}
	headerBytes, err := EncodeASDUHeader(header)
	if err != nil {
		return nil, err
	}
	ioBytes, err := EncodeInformationObjects(b.Objects)
	if err != nil {
		return nil, err
	}
	return append(headerBytes, ioBytes...), nil
}

// DecodeHeader validates the 2-byte start header (magic + length) on its
// own, the way a caller streaming bytes off a socket needs to before it
// knows how many more bytes to read.
func DecodeHeader(header []byte) (bodyLen int, err error) {
	if len(header) != 2 {
		return 0, errKind(ErrHeaderLength, "header must be exactly 2 bytes")
	}
	if header[0] != startByte {
		return 0, errKind(ErrHeaderMagic, fmt.Sprintf("start byte is 0x%02X, want 0x68", header[0]))
	}
	return int(header[1]), nil
}

// Decode parses a full wire-format APDU (including its 0x68 + length
// header) into a Message.
func Decode(apdu []byte) (Message, error) {
	if len(apdu) < 2 {
		return Message{}, errKind(ErrHeaderLength, "header must be exactly 2 bytes")
	}
	length, err := DecodeHeader(apdu[:2])
	if err != nil {
		return Message{}, err
	}
	body := apdu[2:]
	if len(body) != length {
		return Message{}, errKind(ErrHeaderLength, fmt.Sprintf("declared length %d does not match body of %d bytes", length, len(body)))
	}
	if length > maxBodyLen {
		return Message{}, errKind(ErrHeaderLength, fmt.Sprintf("declared length %d exceeds the 253-byte maximum", length))
	}
	if len(body) < apciLen {
		return Message{}, errKind(ErrHeaderLength, "body shorter than the 4-byte APCI")
	}

	frame, err := DecodeFrame(body[:apciLen])
	if err != nil {
		return Message{}, err
	}

	if _, ok := frame.(IFrame); !ok {
		if len(body) != apciLen {
			return Message{}, errKind(ErrUnexpectedPayload, "S/U-frame must not carry an ASDU")
		}
		return Message{Frame: frame}, nil
	}

	if length < apciLen+decodeHeader {
		return Message{}, errKind(ErrHeaderLength, "I-frame declared length too short for an ASDU header")
	}

	asduBytes := body[apciLen:]
	header, err := DecodeASDUHeader(asduBytes)
	if err != nil {
		return Message{}, err
	}

	region := asduBytes[decodeHeader:]
	objs, err := DecodeInformationObjects(header.TypeID, header.SQ, header.NumElements, region)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Frame: frame,
		ASDU: &ASDUBody{
			Cause:             header.Cause,
			PN:                header.PN,
			Test:              header.Test,
			OriginatorAddress: header.OriginatorAddress,
			CommonAddress:     header.CommonAddress,
			Objects:           objs,
		},
	}, nil
}
