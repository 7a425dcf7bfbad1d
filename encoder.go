package iec104

/*
Encoder owns the one piece of mutable state this codec has: an
auto-incrementing information-object address counter. The counter lives
on a value the caller owns, not on global package state, with an
explicit Reset and an explicit override - so a caller who needs
deterministic addressing across encoding sessions can get it, and one
who shares an Encoder across goroutines knows they must serialize access
themselves; an Encoder is safe for a single logical flow only.
*/
type Encoder struct {
	nextIOA IOA
}

// NewEncoder returns an Encoder with its IOA counter at 0.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Reset sets the IOA counter back to 0.
func (e *Encoder) Reset() {
	e.nextIOA = 0
}

// SetNextIOA overrides the counter, so the next assigned address is ioa.
func (e *Encoder) SetNextIOA(ioa IOA) {
	e.nextIOA = ioa
}

// NextIOA reports the address the next assignment will use, without
// consuming it.
func (e *Encoder) NextIOA() IOA {
	return e.nextIOA
}

func (e *Encoder) take() (IOA, error) {
	ioa := e.nextIOA
	if err := validateIOA(ioa); err != nil {
		return 0, err
	}
	e.nextIOA++
	return ioa, nil
}

// assignIOAs stamps each element of elems with a freshly counted address,
// advancing the counter by len(elems) in input order.
func assignIOAs[T any](e *Encoder, elems []T, setIOA func(*T, IOA)) ([]T, error) {
	out := make([]T, len(elems))
	copy(out, elems)
	for i := range out {
		ioa, err := e.take()
		if err != nil {
			return nil, err
		}
		setIOA(&out[i], ioa)
	}
	return out, nil
}

// AssignBitstringIOAs stamps IOAs onto elems in order, consuming the
// counter.
func (e *Encoder) AssignBitstringIOAs(elems []BitstringElement) ([]BitstringElement, error) {
	return assignIOAs(e, elems, func(el *BitstringElement, ioa IOA) { el.IOA = ioa })
}

// AssignFloatIOAs stamps IOAs onto elems in order, consuming the counter.
func (e *Encoder) AssignFloatIOAs(elems []FloatElement) ([]FloatElement, error) {
	return assignIOAs(e, elems, func(el *FloatElement, ioa IOA) { el.IOA = ioa })
}

// AssignSingleCommandIOAs stamps IOAs onto elems in order, consuming the counter.
func (e *Encoder) AssignSingleCommandIOAs(elems []SingleCommandElement) ([]SingleCommandElement, error) {
	return assignIOAs(e, elems, func(el *SingleCommandElement, ioa IOA) { el.IOA = ioa })
}

// AssignInterrogationIOAs stamps IOAs onto elems in order, consuming the counter.
func (e *Encoder) AssignInterrogationIOAs(elems []InterrogationElement) ([]InterrogationElement, error) {
	return assignIOAs(e, elems, func(el *InterrogationElement, ioa IOA) { el.IOA = ioa })
}

// AssignReadIOAs stamps IOAs onto elems in order, consuming the counter.
func (e *Encoder) AssignReadIOAs(elems []ReadElement) ([]ReadElement, error) {
	return assignIOAs(e, elems, func(el *ReadElement, ioa IOA) { el.IOA = ioa })
}
