package datastructure

import (
	"math"

	"github.com/lintang-b-s/navreplan/pkg"
)

const (
	EPS = pkg.EPSILON
)

// Lt less than operator. a is less than b only if b exceeds it by at least EPS.
// Lt(+Inf, +Inf) is false because +Inf - +Inf is NaN.
func Lt(a, b float64) bool {
	return b-a >= EPS
}

// Gt greater than operator
func Gt(a, b float64) bool {
	return Lt(b, a)
}

// Le less than or equal operator
func Le(a, b float64) bool {
	return !Lt(b, a)
}

// Ge greater than or equal operator
func Ge(a, b float64) bool {
	return !Lt(a, b)
}

// Eq equal operator. two infinities of the same sign are equal.
func Eq(a, b float64) bool {
	return !Lt(a, b) && !Lt(b, a)
}

func IsInf(a float64) bool {
	return math.IsInf(a, 1)
}
