package iec104

import (
	"bytes"
	"testing"
)

func TestDecodeHeader_Magic(t *testing.T) {
	_, err := DecodeHeader([]byte{0x60, 0x1A})
	if !IsKind(err, ErrHeaderMagic) {
		t.Fatalf("err = %v, want HeaderMagic", err)
	}
}

func TestDecodeHeader_WrongSize(t *testing.T) {
	_, err := DecodeHeader([]byte{0x68})
	if !IsKind(err, ErrHeaderLength) {
		t.Fatalf("err = %v, want HeaderLength", err)
	}
}

func TestDecode_BitstringTwoElementMessage(t *testing.T) {
	body := []byte{
		0x02, 0x00, 0x02, 0x00, // APCI: I-frame ssn=1 rsn=1
		0x07, 0x02, 0x01, 0x00, 0x01, 0x00, // ASDU header
		0x00, 0x00, 0x00, 'T', 'e', 's', 't', 0x00,
		0x01, 0x00, 0x00, 'T', 'e', 's', 't', 0x00,
	}
	apdu := append([]byte{startByte, byte(len(body))}, body...)

	msg, err := Decode(apdu)
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	ifr, ok := msg.Frame.(IFrame)
	if !ok || ifr.SSN != 1 || ifr.RSN != 1 {
		t.Fatalf("Decode() frame = %#v, want IFrame{1,1}", msg.Frame)
	}
	if msg.ASDU == nil {
		t.Fatalf("Decode() ASDU is nil")
	}
	if msg.ASDU.Cause != Periodic || msg.ASDU.CommonAddress != 1 || msg.ASDU.OriginatorAddress != 0 {
		t.Errorf("Decode() asdu header fields = %+v", msg.ASDU)
	}
	bo, ok := msg.ASDU.Objects.(BitstringObjects)
	if !ok || len(bo.Elements) != 2 {
		t.Fatalf("Decode() objects = %#v", msg.ASDU.Objects)
	}
	if bo.Elements[0].IOA != 0 || bo.Elements[1].IOA != 1 {
		t.Errorf("Decode() ioas = %d, %d", bo.Elements[0].IOA, bo.Elements[1].IOA)
	}
	if !bytes.Equal(bo.Elements[0].Bits, []byte("Test")) || !bytes.Equal(bo.Elements[1].Bits, []byte("Test")) {
		t.Errorf("Decode() bits = %q, %q", bo.Elements[0].Bits, bo.Elements[1].Bits)
	}

	reencoded, err := Encode(msg)
	if err != nil {
		t.Fatalf("Encode() unexpected error: %v", err)
	}
	if !bytes.Equal(reencoded, apdu) {
		t.Errorf("round trip = % X, want % X", reencoded, apdu)
	}
}

func TestEncode_UFrame(t *testing.T) {
	msg := Message{Frame: UFrame{Function: StartDTAct}}
	got, err := Encode(msg)
	if err != nil {
		t.Fatalf("Encode() unexpected error: %v", err)
	}
	want := []byte{startByte, 0x04, 0x07, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = % X, want % X", got, want)
	}
}

func TestEncode_BodyLengthBoundary(t *testing.T) {
	// 253 bytes of body: 4 (apci) + 6 (header) + n*8 bitstring elements, sq=0.
	// (253-10)/8 = 30.375, so build an exact 253-byte body using sq=1 run length math instead:
	// 4 + 6 + (n*5+3) = 253 => n*5 = 240 => n = 48.
	elems := make([]BitstringElement, 48)
	for i := range elems {
		elems[i] = BitstringElement{IOA: IOA(i), Bits: []byte{0, 0, 0, 0}}
	}
	msg := Message{
		Frame: IFrame{},
		ASDU: &ASDUBody{
			Cause:         Periodic,
			CommonAddress: 1,
			Objects:       BitstringObjects{Sequence: true, Elements: elems},
		},
	}
	b, err := Encode(msg)
	if err != nil {
		t.Fatalf("Encode() unexpected error: %v", err)
	}
	if len(b) != 255 { // 2-byte header + 253-byte body
		t.Fatalf("len(Encode()) = %d, want 255", len(b))
	}
	if b[1] != 253 {
		t.Fatalf("declared length = %d, want 253", b[1])
	}

	// One more element pushes the body to 258 bytes, over the 253-byte maximum.
	elems = append(elems, BitstringElement{IOA: 48, Bits: []byte{0, 0, 0, 0}})
	msg.ASDU.Objects = BitstringObjects{Sequence: true, Elements: elems}
	_, err = Encode(msg)
	if !IsKind(err, ErrHeaderLength) {
		t.Fatalf("Encode() err = %v, want HeaderLength for oversized body", err)
	}
}

func TestDecode_LengthTooLong(t *testing.T) {
	_, err := Decode([]byte{startByte, 254})
	if !IsKind(err, ErrHeaderLength) {
		t.Fatalf("err = %v, want HeaderLength", err)
	}
}

func TestDecode_NonIFrameCarriesNoASDU(t *testing.T) {
	apdu := []byte{startByte, 0x04, 0x07, 0x00, 0x00, 0x00}
	msg, err := Decode(apdu)
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	if msg.ASDU != nil {
		t.Errorf("Decode() ASDU = %+v, want nil for U-frame", msg.ASDU)
	}
}

func TestEncode_IFrameRequiresASDU(t *testing.T) {
	_, err := Encode(Message{Frame: IFrame{}})
	if !IsKind(err, ErrNotTuple) {
		t.Fatalf("err = %v, want NotTuple", err)
	}
}
