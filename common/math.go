package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Gravity is the default world gravity in world units per second squared.
// The world is Y-up.
const Gravity = -9.81

const angleEpsilon = 1e-15

var (
	WorldUp   = mgl64.Vec3{0, 1, 0}
	WorldDown = mgl64.Vec3{0, -1, 0}
	// WorldBack points away from the camera; crossing a ground normal with
	// it yields the lateral move axis.
	WorldBack = mgl64.Vec3{0, 0, -1}
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Angle returns the unsigned angle in degrees between a and b. It returns
// 0 when either vector has no length.
func Angle(a, b mgl64.Vec3) float64 {
	denom := math.Sqrt(a.Dot(a) * b.Dot(b))
	if denom < angleEpsilon {
		return 0
	}
	cos := mgl64.Clamp(a.Dot(b)/denom, -1, 1)
	return mgl64.RadToDeg(math.Acos(cos))
}

// ClampMagnitude rescales v to max when it is longer, keeping direction.
func ClampMagnitude(v mgl64.Vec3, max float64) mgl64.Vec3 {
	if v.Len() > max {
		return v.Normalize().Mul(max)
	}
	return v
}

// Vec3 lifts a planar vector into the Z=0 plane.
func Vec3(x, y float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, 0}
}
