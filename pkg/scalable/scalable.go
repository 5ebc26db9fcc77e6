// Package scalable provides exact linear-in-k arithmetic for scale-parameterized
// quantities.
//
// Every geometric and temporal quantity in the compiler - template shapes,
// timestep counts, repetition counts - is a function of the scaling parameter k
// rather than a constant, so that one compiled structure remains valid for any
// future choice of k. This package defines [LinearFunction] (slope*k + offset)
// and [Shape2D] (a pair of linear functions) together with the exact arithmetic
// the rest of the pipeline routes through.
//
// All operations are exact integer arithmetic: there is no floating point
// anywhere in this package, and [LinearFunction.ExactIntegerDiv] fails rather
// than round.
package scalable

import (
	"errors"
	"fmt"
)

var (
	// ErrInexactDivision is returned by [LinearFunction.ExactIntegerDiv] when
	// the divisor does not evenly divide both the slope and the offset.
	// Rounding is never acceptable: an inexact division means a schedule or
	// shape computation is wrong, not imprecise.
	ErrInexactDivision = errors.New("division is not exact")

	// ErrZeroDivisor is returned by [LinearFunction.ExactIntegerDiv] when the
	// divisor is zero.
	ErrZeroDivisor = errors.New("division by zero")
)

// LinearFunction represents slope*k + offset for the scaling parameter k.
// LinearFunction is an immutable comparable value type: it can be used as a
// map key and compared with ==.
//
// The zero value is the constant function 0.
type LinearFunction struct {
	Slope  int64
	Offset int64
}

// Constant returns the linear function with the given offset and zero slope.
func Constant(offset int64) LinearFunction {
	return LinearFunction{Offset: offset}
}

// Linear returns the linear function slope*k + offset.
func Linear(slope, offset int64) LinearFunction {
	return LinearFunction{Slope: slope, Offset: offset}
}

// Add returns f + g.
func (f LinearFunction) Add(g LinearFunction) LinearFunction {
	return LinearFunction{Slope: f.Slope + g.Slope, Offset: f.Offset + g.Offset}
}

// Sub returns f - g.
func (f LinearFunction) Sub(g LinearFunction) LinearFunction {
	return LinearFunction{Slope: f.Slope - g.Slope, Offset: f.Offset - g.Offset}
}

// Mul returns the scalar product n*f.
func (f LinearFunction) Mul(n int64) LinearFunction {
	return LinearFunction{Slope: f.Slope * n, Offset: f.Offset * n}
}

// ExactIntegerDiv returns f/n, failing with [ErrInexactDivision] unless n
// evenly divides both the slope and the offset, and with [ErrZeroDivisor]
// when n is zero.
func (f LinearFunction) ExactIntegerDiv(n int64) (LinearFunction, error) {
	if n == 0 {
		return LinearFunction{}, ErrZeroDivisor
	}
	if f.Slope%n != 0 || f.Offset%n != 0 {
		return LinearFunction{}, fmt.Errorf("%w: (%s) / %d", ErrInexactDivision, f, n)
	}
	return LinearFunction{Slope: f.Slope / n, Offset: f.Offset / n}, nil
}

// IntegerEval evaluates the function at the given scaling parameter.
func (f LinearFunction) IntegerEval(k int64) int64 {
	return f.Slope*k + f.Offset
}

// IsConstant reports whether the function does not depend on k.
func (f LinearFunction) IsConstant() bool { return f.Slope == 0 }

// IsScalable reports whether the function depends on k.
func (f LinearFunction) IsScalable() bool { return f.Slope != 0 }

// String renders the function in "slope*k + offset" form, simplifying the
// constant and pure-slope cases.
func (f LinearFunction) String() string {
	switch {
	case f.Slope == 0:
		return fmt.Sprintf("%d", f.Offset)
	case f.Offset == 0:
		return fmt.Sprintf("%d*k", f.Slope)
	case f.Offset < 0:
		return fmt.Sprintf("%d*k - %d", f.Slope, -f.Offset)
	default:
		return fmt.Sprintf("%d*k + %d", f.Slope, f.Offset)
	}
}
