package phys

import "math"

// Vec2 is a 2D cartesian vector.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Mod returns the modulus (length) of the vector.
func (v Vec2) Mod() float64 { return math.Hypot(v.X, v.Y) }

// Mod2 returns the squared modulus, avoiding the sqrt for comparisons.
func (v Vec2) Mod2() float64 { return v.X*v.X + v.Y*v.Y }

// Angle returns the direction the vector points in, in radians.
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Dist returns the distance between two points.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Mod() }

// Dist2 returns the squared distance between two points.
func (v Vec2) Dist2(o Vec2) float64 { return v.Sub(o).Mod2() }

// FromPolar builds a vector from a modulus and an angle.
func FromPolar(mod, angle float64) Vec2 {
	return Vec2{mod * math.Cos(angle), mod * math.Sin(angle)}
}

// AngleDiff returns the signed shortest rotation from angle ref to a,
// normalized to (-pi, pi].
func AngleDiff(ref, a float64) float64 {
	d := math.Mod(a-ref, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// NormalizeAngle wraps an angle into [0, 2*pi).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Clamp bounds v to [lo, hi].
func Clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
