package system

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/config"
	"github.com/driftfire/sim/internal/core/event"
	coresys "github.com/driftfire/sim/internal/core/system"
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/faction"
	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/world"
)

// HitRequest is one weapon impact waiting for resolution. The arena layer
// queues these when a projectile or beam connects.
type HitRequest struct {
	TargetID   uint32
	ShooterID  uint32 // 0 for environmental damage
	Damage     float64
	Kind       data.DamageKind
	Knockback  float64
	ImpactVel  phys.Vec2 // velocity of the impacting body
	ImpactMass float64
}

// damageSplit returns the shield fraction, armour fraction and knockback
// fraction for a damage kind.
func damageSplit(kind data.DamageKind) (shield, armour, knock float64) {
	switch kind {
	case data.DamageKinetic:
		return 0.8, 1.2, 1.0
	case data.DamageEMP:
		return 1.25, 0.3, 0.0
	case data.DamageRadiation:
		return 0.15, 1.0, 0.0
	default: // energy
		return 1.1, 0.7, 0.1
	}
}

// CombatSystem drains the hit queue once per tick and resolves each impact
// against the target's shield and armour, driving the disable and death
// transitions.
type CombatSystem struct {
	registry *world.Registry
	factions *faction.Service
	sim      config.SimulationConfig
	rates    config.RatesConfig
	bus      *event.Bus
	log      *zap.Logger

	requests []HitRequest
}

func NewCombatSystem(reg *world.Registry, fs *faction.Service, sim config.SimulationConfig, rates config.RatesConfig, bus *event.Bus, log *zap.Logger) *CombatSystem {
	return &CombatSystem{
		registry: reg,
		factions: fs,
		sim:      sim,
		rates:    rates,
		bus:      bus,
		log:      log,
	}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseCombat }

// Queue adds a hit for resolution at the next combat phase.
func (s *CombatSystem) Queue(req HitRequest) {
	s.requests = append(s.requests, req)
}

func (s *CombatSystem) Update(_ time.Duration) {
	for _, req := range s.requests {
		target, ok := s.registry.Lookup(req.TargetID)
		if !ok || !target.Alive() {
			continue // target vanished, not an error
		}
		var shooter *world.Entity
		if req.ShooterID != 0 {
			shooter, _ = s.registry.Lookup(req.ShooterID)
		}
		s.Resolve(target, shooter, req)
	}
	s.requests = s.requests[:0]
}

// Resolve applies one impact and returns the damage the hull and shield
// actually absorbed.
func (s *CombatSystem) Resolve(target *world.Entity, shooter *world.Entity, req HitRequest) float64 {
	shieldMod, armourMod, knockMod := damageSplit(req.Kind)
	damShield := req.Damage * shieldMod
	damArmour := req.Damage * armourMod
	knockback := req.Knockback * knockMod

	// EMP has nothing left to overload on a dead hulk.
	if req.Kind == data.DamageEMP && target.Disabled {
		return 0
	}

	var absorbed, damMod float64
	switch {
	case target.Shield >= damShield:
		// Shield soaks the whole hit.
		target.Shield -= damShield
		absorbed = damShield
		if target.ShieldMax > 0 {
			damMod = damShield / target.ShieldMax
		}
	case target.Shield > 0:
		// Shield collapses; the leftover fraction spills onto armour.
		leftover := 1 - target.Shield/damShield
		absorbed = target.Shield + leftover*damArmour
		target.Armour -= leftover * damArmour
		target.Shield = 0
		damMod = (damShield + damArmour) / ((target.ShieldMax + target.ArmourMax) / 2)
	default:
		// Bare hull.
		target.Armour -= damArmour
		absorbed = damArmour
		if target.ArmourMax > 0 {
			damMod = damArmour / target.ArmourMax
		}
	}
	if target.Armour < 0 {
		target.Armour = 0
	}

	shooterID := uint32(0)
	playerShooter := false
	if shooter != nil {
		shooterID = shooter.ID
		playerShooter = shooter.Player || (shooter.Faction != "" && shooter.Faction == s.playerFaction())
	}

	// Hostility bookkeeping and the attacked notification.
	if shooter != nil && target.Alive() {
		if shooter.Player {
			target.Hostility += absorbed / (target.ShieldMax + target.ArmourMax)
			if target.Hostility > s.sim.HostileLevel {
				target.Hostile = true
			}
			if !target.Distressed && !target.Player {
				s.factions.ModPlayerStanding(target.Faction,
					-s.rates.ReputationRate*(math.Pow(target.Solid.Mass, 0.2)-1))
				target.Distressed = true
			}
		}
		target.InCombat = true
		shooter.InCombat = true
		event.Emit(s.bus, event.Attacked{EntityID: target.ID, AttackerID: shooterID})
	}

	if target.Armour <= 0 {
		s.kill(target, shooterID, playerShooter)
	} else if !target.Disabled && target.Armour < s.sim.DisabledArmour*target.ArmourMax {
		s.disable(target, shooterID, playerShooter)
	}

	// Momentum transfer from the impacting body.
	if knockback > 0 && target.Solid.Mass > 0 {
		scale := knockback * (damMod/9 + req.ImpactMass/target.Solid.Mass/6)
		target.Solid.Vel = target.Solid.Vel.Add(req.ImpactVel.Scale(scale))
	}

	return absorbed
}

// disable fires the first crossing below the disable threshold. The hostile
// score resets; a hulk that already hated the player keeps the flag, one
// that never did stays neutral.
func (s *CombatSystem) disable(target *world.Entity, shooterID uint32, playerShooter bool) {
	target.Disabled = true
	if !target.Player {
		wasHostile := target.Hostile || target.Hostility > 0
		target.Hostility = 0
		target.Hostile = wasHostile
		if playerShooter {
			s.factions.AddRating(s.rates.RatingRate * 2 * (math.Pow(target.Solid.Mass, 0.4) - 1))
		}
	}
	event.Emit(s.bus, event.Disabled{EntityID: target.ID, AttackerID: shooterID})
	s.log.Info("ship disabled",
		zap.Uint32("id", target.ID),
		zap.String("name", target.Name),
		zap.Uint32("by", shooterID))
}

// kill starts the death sequence. Idempotent: a ship only dies once no
// matter how many impacts land the same tick.
func (s *CombatSystem) kill(target *world.Entity, shooterID uint32, playerShooter bool) {
	if target.Dead {
		return
	}
	target.Dead = true
	target.Armour = 0
	target.Shield = 0
	target.ZeroIntents()

	// Killing a ship in front of its faction costs reputation.
	if playerShooter && !target.Player {
		s.factions.ModPlayerStanding(target.Faction,
			-s.rates.ReputationRate*2*(math.Pow(target.Solid.Mass, 0.4)-1))
	}

	// A death interrupts any jump attempt.
	target.HyperPhase = world.HyperCruising

	// Burn-down length scales with how big the ship was.
	target.PTimer = 1 + math.Sqrt(10*target.ArmourMax*target.ShieldMax)/1500
	target.Timers[1] = 0

	event.Emit(s.bus, event.Destroyed{
		EntityID:   target.ID,
		AttackerID: shooterID,
		Faction:    target.Faction,
	})
	s.log.Info("ship destroyed",
		zap.Uint32("id", target.ID),
		zap.String("name", target.Name),
		zap.Uint32("by", shooterID))
}

// ExplodeAt applies area damage with linear distance falloff. Used for the
// final death blast and any arena-triggered detonation.
func (s *CombatSystem) ExplodeAt(pos phys.Vec2, radius, damage float64, kind data.DamageKind, parent uint32) {
	if radius <= 0 {
		return
	}
	s.registry.Each(func(e *world.Entity) {
		if !e.Alive() || e.ID == parent {
			return
		}
		dist := e.Solid.Pos.Dist(pos)
		if dist >= radius {
			return
		}
		falloff := 1 - dist/radius
		var shooter *world.Entity
		if parent != 0 {
			shooter, _ = s.registry.Lookup(parent)
		}
		away := e.Solid.Pos.Sub(pos)
		if m := away.Mod(); m > 0 {
			away = away.Scale(1 / m)
		}
		s.Resolve(e, shooter, HitRequest{
			TargetID:   e.ID,
			ShooterID:  parent,
			Damage:     damage * falloff,
			Kind:       kind,
			Knockback:  falloff,
			ImpactVel:  away.Scale(damage * falloff),
			ImpactMass: damage / 10,
		})
	})
}

// playerFaction returns the player's faction name, or "" when the player
// is not in the arena.
func (s *CombatSystem) playerFaction() string {
	if p, ok := s.registry.Player(); ok {
		return p.Faction
	}
	return ""
}
