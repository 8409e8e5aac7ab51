package geometry

import (
	"github.com/golang/geo/r3"
	"golang.org/x/exp/constraints"
)

// Saturate clamps x into [lo, hi].
func Saturate[T constraints.Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// SaturateVector clamps each component of v into [-lim_i, lim_i].
func SaturateVector(v, lim r3.Vector) r3.Vector {
	return r3.Vector{
		X: Saturate(v.X, -lim.X, lim.X),
		Y: Saturate(v.Y, -lim.Y, lim.Y),
		Z: Saturate(v.Z, -lim.Z, lim.Z),
	}
}
