package phys

// Solid is a rigid body integrated once per simulation tick. The combat core
// only ever writes Force and DirVel (thrust/turn intents translated by the
// owning entity) and reads back Pos, Vel, Dir and Mass.
type Solid struct {
	Mass   float64
	Pos    Vec2
	Vel    Vec2
	Dir    float64 // heading in radians, [0, 2*pi)
	DirVel float64 // angular velocity in rad/s
	Force  float64 // forward force along Dir, in mass units
}

// NewSolid creates a solid at the given pose.
func NewSolid(mass, dir float64, pos, vel Vec2) *Solid {
	return &Solid{
		Mass: mass,
		Pos:  pos,
		Vel:  vel,
		Dir:  NormalizeAngle(dir),
	}
}

// Update advances the solid by dt using semi-implicit Euler integration.
// Force is applied along the current heading.
func (s *Solid) Update(dt float64) {
	s.Dir = NormalizeAngle(s.Dir + s.DirVel*dt)

	if s.Force != 0 && s.Mass > 0 {
		acc := FromPolar(s.Force/s.Mass, s.Dir)
		s.Vel = s.Vel.Add(acc.Scale(dt))
	}
	s.Pos = s.Pos.Add(s.Vel.Scale(dt))
}

// LimitSpeed softly brakes the velocity toward limit when it is exceeded.
// The overshoot decays with a 1/3s time constant rather than clipping hard,
// so afterburner cut-off and hyperspace exit bleed off speed smoothly.
func (s *Solid) LimitSpeed(limit, dt float64) {
	vmod := s.Vel.Mod()
	if vmod <= limit {
		return
	}
	decay := 1 - dt*3
	if decay < 0 {
		decay = 0
	}
	s.Vel = FromPolar((vmod-limit)*decay+limit, s.Vel.Angle())
}
