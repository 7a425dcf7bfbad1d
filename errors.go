package iec104

import "fmt"

/*
ErrorKind enumerates the closed error taxonomy a codec operation can raise.
Every fallible function in this package returns (value, error) where a
non-nil error is always a *CodecError with one of these kinds - there is
no string smuggled into the success slot.
*/
type ErrorKind int

const (
	ErrHeaderMagic ErrorKind = iota + 1
	ErrHeaderLength
	ErrNotBytes
	ErrNotInteger
	ErrNotTuple
	ErrRangeViolation
	ErrUnknownFrame
	ErrUnknownFunction
	ErrUnknownType
	ErrUnknownCause
	ErrBadSequenceBit
	ErrLengthMismatch
	ErrUnexpectedPayload
	ErrTypeSequenceIllegal
	ErrCountOutOfRange
)

func (k ErrorKind) String() string {
	switch k {
	case ErrHeaderMagic:
		return "HeaderMagic"
	case ErrHeaderLength:
		return "HeaderLength"
	case ErrNotBytes:
		return "NotBytes"
	case ErrNotInteger:
		return "NotInteger"
	case ErrNotTuple:
		return "NotTuple"
	case ErrRangeViolation:
		return "RangeViolation"
	case ErrUnknownFrame:
		return "UnknownFrame"
	case ErrUnknownFunction:
		return "UnknownFunction"
	case ErrUnknownType:
		return "UnknownType"
	case ErrUnknownCause:
		return "UnknownCause"
	case ErrBadSequenceBit:
		return "BadSequenceBit"
	case ErrLengthMismatch:
		return "LengthMismatch"
	case ErrUnexpectedPayload:
		return "UnexpectedPayload"
	case ErrTypeSequenceIllegal:
		return "TypeSequenceIllegal"
	case ErrCountOutOfRange:
		return "CountOutOfRange"
	default:
		return "Unknown"
	}
}

// CodecError is the single error type every fallible operation in this
// package returns. Field/Lo/Hi are only populated for ErrRangeViolation.
type CodecError struct {
	Kind   ErrorKind
	Field  string
	Lo, Hi int64
	Detail string
}

func (e *CodecError) Error() string {
	if e.Kind == ErrRangeViolation {
		return fmt.Sprintf("iec104: %s: field %q out of range [%d,%d]: %s", e.Kind, e.Field, e.Lo, e.Hi, e.Detail)
	}
	if e.Detail == "" {
		return fmt.Sprintf("iec104: %s", e.Kind)
	}
	return fmt.Sprintf("iec104: %s: %s", e.Kind, e.Detail)
}

// Is lets errors.Is match two CodecErrors of the same kind regardless of
// their Detail text, the way a caller typically wants to branch on failure.
func (e *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func errKind(kind ErrorKind, detail string) *CodecError {
	e := &CodecError{Kind: kind, Detail: detail}
	logError(e)
	return e
}

func errRange(field string, lo, hi int64, detail string) *CodecError {
	e := &CodecError{Kind: ErrRangeViolation, Field: field, Lo: lo, Hi: hi, Detail: detail}
	logError(e)
	return e
}

// logError traces every constructed CodecError through the package logger.
// Framing-level corruption (a bad magic byte, a length that can't be
// trusted) is logged at Error; a well-framed but invalid value is logged
// at Warn.
func logError(e *CodecError) {
	switch e.Kind {
	case ErrHeaderMagic, ErrHeaderLength, ErrUnknownFrame, ErrNotBytes, ErrNotTuple, ErrNotInteger:
		_lg.Errorf("%s", e.Error())
	default:
		_lg.Warnf("%s", e.Error())
	}
}

// KindOf reports the ErrorKind carried by err and whether err is a
// *CodecError at all.
func KindOf(err error) (ErrorKind, bool) {
	ce, ok := err.(*CodecError)
	if !ok {
		return 0, false
	}
	return ce.Kind, true
}

// IsKind reports whether err is a *CodecError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
