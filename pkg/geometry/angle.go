// Package geometry provides angular and interpolation helpers shared by the
// thickness field and mesh packages.
package geometry

import "math"

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeAngle maps an angle in [0, 2π) to (-π, π] so it can be compared
// against a coverage window centered on angle zero.
func NormalizeAngle(angle float64) float64 {
	if angle > math.Pi {
		return angle - 2*math.Pi
	}
	return angle
}

// ArcLength returns the length of a circular arc of the given radius
// spanning the given angle in degrees.
func ArcLength(radius, angleDeg float64) float64 {
	return radius * Radians(angleDeg)
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to the unit interval.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
