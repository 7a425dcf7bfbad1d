package iec104

import (
	"bytes"
	"testing"
)

func TestEncodeFrame_IFrame(t *testing.T) {
	tests := []struct {
		name    string
		frame   IFrame
		want    []byte
		wantErr ErrorKind
	}{
		{"zero", IFrame{SSN: 0, RSN: 0}, []byte{0x00, 0x00, 0x00, 0x00}, 0},
		{"ssn=1 rsn=1", IFrame{SSN: 1, RSN: 1}, []byte{0x02, 0x00, 0x02, 0x00}, 0},
		{"ssn at max", IFrame{SSN: 32767, RSN: 0}, nil, 0},
		{"ssn over max", IFrame{SSN: 32768, RSN: 0}, nil, ErrRangeViolation},
		{"rsn over max", IFrame{SSN: 0, RSN: 32768}, nil, ErrRangeViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeFrame(tt.frame)
			if tt.wantErr != 0 {
				if !IsKind(err, tt.wantErr) {
					t.Fatalf("EncodeFrame() err = %v, want kind %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EncodeFrame() unexpected error: %v", err)
			}
			if tt.want != nil && !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeFrame() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestDecodeFrame_IFrame(t *testing.T) {
	frame, err := DecodeFrame([]byte{0x02, 0x00, 0x02, 0x00})
	if err != nil {
		t.Fatalf("DecodeFrame() unexpected error: %v", err)
	}
	ifr, ok := frame.(IFrame)
	if !ok {
		t.Fatalf("DecodeFrame() = %#v, want IFrame", frame)
	}
	if ifr.SSN != 1 || ifr.RSN != 1 {
		t.Errorf("DecodeFrame() = %+v, want ssn=1 rsn=1", ifr)
	}
}

func TestFrameRoundTrip_SFrame(t *testing.T) {
	for _, rsn := range []uint16{0, 1, 32767} {
		sf := SFrame{RSN: rsn}
		b, err := EncodeFrame(sf)
		if err != nil {
			t.Fatalf("EncodeFrame(%v) unexpected error: %v", sf, err)
		}
		if b[0] != 0x01 || b[1] != 0x00 {
			t.Fatalf("EncodeFrame(%v) = % X, want low byte 0x01 0x00", sf, b)
		}
		got, err := DecodeFrame(b)
		if err != nil {
			t.Fatalf("DecodeFrame(% X) unexpected error: %v", b, err)
		}
		if got != Frame(sf) {
			t.Errorf("round trip = %+v, want %+v", got, sf)
		}
	}
}

func TestUFrame_StartDTAct(t *testing.T) {
	uf := UFrame{Function: StartDTAct}
	got, err := EncodeFrame(uf)
	if err != nil {
		t.Fatalf("EncodeFrame() unexpected error: %v", err)
	}
	want := []byte{0x07, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeFrame(StartDTAct) = % X, want % X", got, want)
	}

	decoded, err := DecodeFrame(got)
	if err != nil {
		t.Fatalf("DecodeFrame() unexpected error: %v", err)
	}
	df, ok := decoded.(UFrame)
	if !ok || df.Function != StartDTAct {
		t.Errorf("DecodeFrame() = %#v, want UFrame{StartDTAct}", decoded)
	}
	if df.Function.String() != "STARTDT_ACT" {
		t.Errorf("String() = %q, want STARTDT_ACT", df.Function.String())
	}
}

func TestUFrame_UnknownFunction(t *testing.T) {
	_, err := DecodeFrame([]byte{0x2F, 0x00, 0x00, 0x00}) // low bits 11, value not in the closed set
	if !IsKind(err, ErrUnknownFunction) {
		t.Fatalf("DecodeFrame() err = %v, want UnknownFunction", err)
	}
}

func TestUFrame_AllClosedFunctions(t *testing.T) {
	for _, fn := range []UFunction{NoFunc, StartDTAct, StartDTCon, StopDTAct, StopDTCon, TestFRAct, TestFRCon} {
		b, err := EncodeFrame(UFrame{Function: fn})
		if err != nil {
			t.Fatalf("EncodeFrame(%s) unexpected error: %v", fn, err)
		}
		got, err := DecodeFrame(b)
		if err != nil {
			t.Fatalf("DecodeFrame(% X) unexpected error: %v", b, err)
		}
		if got != Frame(UFrame{Function: fn}) {
			t.Errorf("round trip of %s = %+v", fn, got)
		}
	}
}
