package system

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/config"
	coresys "github.com/driftfire/sim/internal/core/system"
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/world"
)

// UpdateSystem advances every entity one step: timers, the staged death
// sequence, regeneration, energy recharge, hostility decay, physics
// integration and speed limiting.
type UpdateSystem struct {
	registry *world.Registry
	sim      config.SimulationConfig
	spawner  Spawner
	log      *zap.Logger
}

func NewUpdateSystem(reg *world.Registry, sim config.SimulationConfig, spawner Spawner, log *zap.Logger) *UpdateSystem {
	return &UpdateSystem{registry: reg, sim: sim, spawner: spawner, log: log}
}

func (s *UpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UpdateSystem) Update(dt time.Duration) {
	dts := dt.Seconds()
	s.registry.Each(func(e *world.Entity) {
		if !e.Delete {
			s.updateEntity(e, dts)
		}
	})
}

func (s *UpdateSystem) updateEntity(e *world.Entity, dt float64) {
	// Timers tick down everywhere; behavior reads lapse as "< 0".
	e.PTimer -= dt
	e.TControl -= dt
	for i := range e.Timers {
		e.Timers[i] -= dt
	}
	e.EachSlot(func(_ world.SlotTier, _ int, slot *world.Slot) {
		if slot.Timer > 0 {
			slot.Timer -= dt
		}
	})

	if e.Dead {
		s.updateDead(e, dt)
		return
	}

	if e.Disabled {
		// Dead in the water: no control, a slow drift decay, but the hulk
		// still moves and can still be hit or boarded.
		e.ZeroIntents()
		e.Solid.Force = 0
		e.Solid.DirVel = 0
		e.Solid.Vel = e.Solid.Vel.Scale(1 - dt*0.10)
		e.Solid.Update(dt)
		return
	}

	// Linear armour and shield regeneration.
	e.Armour = math.Min(e.Armour+e.ArmourRegen*dt, e.ArmourMax)
	e.Shield = math.Min(e.Shield+e.ShieldRegen*dt, e.ShieldMax)

	// Afterburner cuts out the moment the capacitor is empty.
	if e.AfterburnerOn && e.Energy < 1 {
		e.AfterburnerOn = false
	}

	// RC energy charge toward the capacitor ceiling.
	if e.EnergyTau > 0 {
		e.Energy += (e.EnergyMax - e.Energy) * (1 - math.Exp(-dt/e.EnergyTau))
	}
	if e.AfterburnerOn {
		if afb := e.AfterburnerSlot(); afb != nil {
			e.Energy -= afb.Outfit.AfterburnEnergy * dt
			if e.Energy < 0 {
				e.Energy = 0
				e.AfterburnerOn = false
			}
		}
	}

	// Hostility cools off over time.
	if e.Hostility > 0 {
		e.Hostility -= dt * s.sim.HostileDecay
		if e.Hostility <= 0 {
			e.Hostility = 0
			e.Hostile = false
		}
	}

	// Translate intents into forces and integrate.
	e.Solid.Force = e.Thrust * e.AccelIntent
	e.Solid.DirVel = e.Turn * e.TurnIntent
	e.Solid.Update(dt)

	// Speed limit, except while the hyperspace engine is pushing.
	if e.HyperPhase != world.HyperInTransit {
		limit := e.Speed
		if e.AfterburnerOn {
			if afb := e.AfterburnerSlot(); afb != nil {
				limit = e.Speed * afb.Outfit.AfterburnSpeed
			}
		}
		e.Solid.LimitSpeed(limit, dt)
	}

	// Transit exit: control returns once the exit velocity bleeds off.
	if e.HyperPhase == world.HyperArrived && e.Solid.Vel.Mod() < 2*e.Speed {
		e.HyperPhase = world.HyperCruising
	}
}

// updateDead runs the staged death sequence: a sound cue just before the
// end, the final blast with cargo jettison shortly before that, and
// periodic debris bursts through the whole burn-down.
func (s *UpdateSystem) updateDead(e *world.Entity, dt float64) {
	if e.PTimer < 0 {
		e.Delete = true
		return
	}

	if !e.DeathSound && e.PTimer < 0.050 {
		e.DeathSound = true
	}
	if !e.Exploded && e.PTimer < 0.200 {
		e.Exploded = true
		radius := 2 * math.Sqrt(e.Solid.Mass)
		s.spawner.SpawnExplosion(e.Solid.Pos, radius, e.ArmourMax, data.DamageKinetic, e.ID)
		if items := e.JettisonAll(); len(items) > 0 {
			s.spawner.SpawnCargo(e.Solid.Pos, items)
		}
		s.log.Debug("final explosion",
			zap.Uint32("id", e.ID),
			zap.String("name", e.Name))
	} else if e.Timers[1] <= 0 {
		e.Timers[1] = 0.08 * (e.PTimer - e.Timers[1]) / e.PTimer
		jitter := phys.FromPolar(math.Sqrt(e.Solid.Mass), float64(e.ID%7))
		s.spawner.SpawnDebris(e.Solid.Pos.Add(jitter), e.Solid.Vel, 1)
	}

	e.Solid.Update(dt)
}
