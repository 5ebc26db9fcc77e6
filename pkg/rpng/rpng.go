// Package rpng describes stabilizer plaquettes in the RPNG encoding and
// translates them into finite circuit fragments.
//
// An RPNG word describes one data-qubit corner of a plaquette with four
// characters: Reset basis, Pauli basis, gate time (N), and measurement basis
// (G), each '-' when absent. A full plaquette description is four words, one
// per corner in (top-left, top-right, bottom-left, bottom-right) order, e.g.
//
//	"-z1- -z2- -z3- -z4-"
//
// for a bulk Z stabilizer whose data qubits interact at times 1..4. A corner
// can be entirely absent ("----"), which is how boundary and border-trimmed
// plaquettes lose weight.
//
// The translation from a description to gates is the compiler's one external
// collaborator at this level and sits behind the [Translator] interface;
// [CSSTranslator] is the convention-default implementation.
package rpng

import (
	"strings"

	"github.com/topostim/topostim/pkg/errors"
)

// Basis is a Pauli basis letter.
type Basis byte

const (
	BasisX Basis = 'x'
	BasisY Basis = 'y'
	BasisZ Basis = 'z'
)

// None marks an absent field in an RPNG word.
const None byte = '-'

// Word is one parsed RPNG word: the behavior of a single data-qubit corner.
// The zero value (all fields zero) is not valid; an absent corner is
// represented by a word whose fields are all [None].
type Word struct {
	R byte // reset basis or None
	P byte // pauli basis taking part in the stabilizer, or None
	N int  // gate time in 1..maxGateTime, 0 when absent
	G byte // measurement basis or None
}

// maxGateTime bounds the two-qubit-gate schedule slots of one plaquette.
const maxGateTime = 4

// ParseWord parses a single four-character RPNG word.
func ParseWord(s string) (Word, error) {
	if len(s) != 4 {
		return Word{}, errors.New(errors.ErrCodeInvalidRPNG, "word %q must have 4 characters", s)
	}
	w := Word{R: s[0], P: s[1], G: s[3]}
	if !validBasisOrNone(w.R) || !validBasisOrNone(w.P) || !validBasisOrNone(w.G) {
		return Word{}, errors.New(errors.ErrCodeInvalidRPNG, "word %q has an invalid basis letter", s)
	}
	switch c := s[2]; {
	case c == None:
		w.N = 0
	case c >= '1' && c <= '0'+maxGateTime:
		w.N = int(c - '0')
	default:
		return Word{}, errors.New(errors.ErrCodeInvalidRPNG, "word %q has gate time %q outside 1..%d", s, c, maxGateTime)
	}
	if (w.P == None) != (w.N == 0) {
		return Word{}, errors.New(errors.ErrCodeInvalidRPNG, "word %q must give a pauli basis and a gate time together", s)
	}
	return w, nil
}

func validBasisOrNone(c byte) bool {
	return c == None || c == byte(BasisX) || c == byte(BasisY) || c == byte(BasisZ)
}

// IsAbsent reports whether the corner takes no part in the plaquette.
func (w Word) IsAbsent() bool {
	return w.R == None && w.P == None && w.N == 0 && w.G == None
}

func (w Word) String() string {
	b := [4]byte{w.R, w.P, None, w.G}
	if w.N > 0 {
		b[2] = byte('0' + w.N)
	}
	return string(b[:])
}

// Description is a full plaquette: four corner words in (top-left, top-right,
// bottom-left, bottom-right) order. Comparable value type.
type Description struct {
	Corners [4]Word
}

// Parse parses a whitespace-separated four-word plaquette description.
func Parse(s string) (Description, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return Description{}, errors.New(errors.ErrCodeInvalidRPNG,
			"description %q must have exactly 4 words, got %d", s, len(fields))
	}
	var d Description
	for i, f := range fields {
		w, err := ParseWord(f)
		if err != nil {
			return Description{}, err
		}
		d.Corners[i] = w
	}
	return d, d.validate(s)
}

// MustParse is Parse for statically known descriptions; it panics on error.
// Only the convention's constant tables use it.
func MustParse(s string) Description {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Description) validate(src string) error {
	if d.IsEmpty() {
		return errors.New(errors.ErrCodeInvalidRPNG, "description %q has no active corner", src)
	}
	seen := [maxGateTime + 1]bool{}
	for _, w := range d.Corners {
		if w.N == 0 {
			continue
		}
		if seen[w.N] {
			return errors.New(errors.ErrCodeInvalidRPNG, "description %q reuses gate time %d", src, w.N)
		}
		seen[w.N] = true
	}
	return nil
}

// IsEmpty reports whether no corner takes part in the plaquette.
func (d Description) IsEmpty() bool {
	for _, w := range d.Corners {
		if !w.IsAbsent() {
			return false
		}
	}
	return true
}

// Weight returns the number of active corners.
func (d Description) Weight() int {
	n := 0
	for _, w := range d.Corners {
		if !w.IsAbsent() {
			n++
		}
	}
	return n
}

// StabilizerBasis returns the common Pauli basis of the active corners. Mixed
// bases (e.g. Y-type or twist plaquettes) return false: callers that only
// handle CSS plaquettes must treat that as unsupported, not guess.
func (d Description) StabilizerBasis() (Basis, bool) {
	var basis Basis
	for _, w := range d.Corners {
		if w.P == None {
			continue
		}
		if basis == 0 {
			basis = Basis(w.P)
		} else if basis != Basis(w.P) {
			return 0, false
		}
	}
	if basis == 0 {
		return 0, false
	}
	return basis, true
}

// WithCornersDropped returns a copy of the description with the given corners
// (by index) replaced by absent words. Dropping every remaining corner is
// allowed; the caller decides whether an empty plaquette is an error.
func (d Description) WithCornersDropped(corners ...int) Description {
	out := d
	for _, c := range corners {
		out.Corners[c] = Word{R: None, P: None, G: None}
	}
	return out
}

func (d Description) String() string {
	parts := make([]string, 4)
	for i, w := range d.Corners {
		parts[i] = w.String()
	}
	return strings.Join(parts, " ")
}
