package scalable

import "fmt"

// Shape2D is a scale-parameterized 2D extent: independent linear functions for
// the X and Y dimensions. Like [LinearFunction] it is an immutable comparable
// value type usable as a map key.
type Shape2D struct {
	X LinearFunction
	Y LinearFunction
}

// Square returns the shape with identical X and Y extents.
func Square(f LinearFunction) Shape2D {
	return Shape2D{X: f, Y: f}
}

// Add returns the component-wise sum of the two shapes.
func (s Shape2D) Add(o Shape2D) Shape2D {
	return Shape2D{X: s.X.Add(o.X), Y: s.Y.Add(o.Y)}
}

// IntegerEval evaluates both dimensions at the given scaling parameter.
func (s Shape2D) IntegerEval(k int64) (x, y int64) {
	return s.X.IntegerEval(k), s.Y.IntegerEval(k)
}

// IsConstant reports whether neither dimension depends on k.
func (s Shape2D) IsConstant() bool {
	return s.X.IsConstant() && s.Y.IsConstant()
}

// IsPositive reports whether both dimensions are strictly positive and
// monotonically non-decreasing for every k >= 1. A shape failing this check
// would eventually vanish (or was never valid) as k grows, which no template
// is allowed to do.
func (s Shape2D) IsPositive() bool {
	return isPositiveNonDecreasing(s.X) && isPositiveNonDecreasing(s.Y)
}

// isPositiveNonDecreasing checks f(k) >= 1 and f non-decreasing on k >= 1.
// For a linear function this reduces to slope >= 0 and f(1) >= 1.
func isPositiveNonDecreasing(f LinearFunction) bool {
	return f.Slope >= 0 && f.IntegerEval(1) >= 1
}

func (s Shape2D) String() string {
	return fmt.Sprintf("(%s, %s)", s.X, s.Y)
}
