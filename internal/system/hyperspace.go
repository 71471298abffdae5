package system

import (
	"math"

	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/core/event"
	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/world"
)

// updateHyperspace drives one ship through its jump. Behavior scripts are
// suspended for the duration; the state machine owns the intents.
//
//	Preparing: brake to a stop, then line up on the jump heading.
//	Warming:   hold the heading while the engines spool up.
//	InTransit: constant-acceleration run until the transit timer lapses.
func (s *BehaviorSystem) updateHyperspace(e *world.Entity) {
	switch e.HyperPhase {
	case world.HyperPreparing:
		if e.Solid.Vel.Mod() > s.sim.MinVelErr {
			// Kill the drift before the run-up.
			diff := face(e, e.Solid.Vel.Angle()+math.Pi)
			if math.Abs(diff) < s.sim.MaxDirErr {
				e.AccelIntent = 1
			}
			return
		}
		if diff := face(e, e.HyperDir); math.Abs(diff) < s.sim.MaxDirErr {
			e.HyperPhase = world.HyperWarming
			e.PTimer = s.sim.HyperEngineWarm
			s.log.Debug("hyperspace engines warming",
				zap.Uint32("id", e.ID))
		}

	case world.HyperWarming:
		face(e, e.HyperDir)
		if e.PTimer < 0 {
			e.Fuel -= s.sim.HyperFuel
			if e.Fuel < 0 {
				e.Fuel = 0
			}
			e.HyperPhase = world.HyperInTransit
			e.PTimer = s.sim.HyperFlyTime
			s.log.Debug("hyperspace transit started",
				zap.Uint32("id", e.ID))
		}

	case world.HyperInTransit:
		face(e, e.HyperDir)
		if e.Thrust > 0 {
			// Constant acceleration regardless of ship mass; the speed
			// limiter is bypassed while in transit.
			e.AccelIntent = s.sim.HyperThrust * e.Solid.Mass / e.Thrust
		}
		if e.PTimer < 0 {
			e.ZeroIntents()
			if e.Player {
				e.HyperPhase = world.HyperArrived
			} else {
				e.Delete = true
			}
			event.Emit(s.bus, event.Jumped{EntityID: e.ID})
			s.log.Info("ship jumped",
				zap.Uint32("id", e.ID),
				zap.String("name", e.Name))
		}
	}
}

// face steers toward an absolute heading and returns the remaining signed
// error.
func face(e *world.Entity, target float64) float64 {
	diff := phys.AngleDiff(e.Solid.Dir, target)
	e.TurnIntent = phys.Clamp(-1, 1, 10*diff)
	return diff
}
