package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/config"
	"github.com/driftfire/sim/internal/core/event"
	coresys "github.com/driftfire/sim/internal/core/system"
	"github.com/driftfire/sim/internal/scripting"
	"github.com/driftfire/sim/internal/world"
)

// BehaviorSystem runs the Lua think step for every scripted ship and feeds
// the resulting fire intents into the weapon scheduler. Ships mid-jump run
// the hyperspace state machine instead of their scripts.
type BehaviorSystem struct {
	registry *world.Registry
	scripts  *scripting.Manager
	weapons  *WeaponSystem
	dock     *DockService
	board    *BoardService
	sim      config.SimulationConfig
	bus      *event.Bus
	log      *zap.Logger
}

func NewBehaviorSystem(reg *world.Registry, scripts *scripting.Manager, weapons *WeaponSystem, dock *DockService, board *BoardService, sim config.SimulationConfig, bus *event.Bus, log *zap.Logger) *BehaviorSystem {
	s := &BehaviorSystem{
		registry: reg,
		scripts:  scripts,
		weapons:  weapons,
		dock:     dock,
		board:    board,
		sim:      sim,
		bus:      bus,
		log:      log,
	}
	event.Subscribe(bus, func(ev event.Attacked) {
		s.onAttacked(ev)
	})
	return s
}

func (s *BehaviorSystem) Phase() coresys.Phase { return coresys.PhaseBehavior }

func (s *BehaviorSystem) Update(dt time.Duration) {
	dts := dt.Seconds()
	s.registry.Each(func(e *world.Entity) {
		if e.Delete || e.Dead || e.Disabled || e.Boarded {
			return
		}

		switch e.HyperPhase {
		case world.HyperPreparing, world.HyperWarming, world.HyperInTransit:
			e.ZeroIntents()
			s.updateHyperspace(e)
			return
		}

		if e.AIProfile == "" {
			// Player-driven ship; intents come from the input layer.
			s.applyFireIntents(e)
			return
		}

		eng := s.scripts.Engine(e.AIProfile)
		if eng == nil {
			e.ZeroIntents()
			return
		}
		if err := eng.Think(e, dts); err != nil {
			// Think already zeroed the intents on the way out.
			s.log.Warn("behavior think failed",
				zap.Uint32("id", e.ID),
				zap.String("profile", e.AIProfile),
				zap.Error(err))
			return
		}
		s.applyFireIntents(e)
	})
}

// applyFireIntents translates the think output into weapon scheduling and
// docking or boarding attempts.
func (s *BehaviorSystem) applyFireIntents(e *world.Entity) {
	switch {
	case e.FirePrimary:
		s.weapons.Shoot(e, e.FireGroup)
	case e.FireSecondary:
		s.weapons.ShootSecondary(e)
	default:
		s.weapons.ShootStop(e)
	}
	if e.FireSecondary && e.FirePrimary {
		s.weapons.ShootSecondary(e)
	}

	if e.DockIntent && e.Carried {
		if carrier, ok := s.registry.Lookup(e.Parent); ok && carrier.Alive() {
			// Fails quietly until the approach is good; the script keeps
			// closing in and retrying.
			_ = s.dock.Dock(e, carrier)
		}
	}
	if e.BoardIntent && e.Target != 0 {
		if target, ok := s.registry.Lookup(e.Target); ok {
			if _, err := s.board.Board(e, target); err == nil {
				e.Target = 0
			}
		}
	}
}

// onAttacked forwards hit notifications to the profile's attacked function.
func (s *BehaviorSystem) onAttacked(ev event.Attacked) {
	e, ok := s.registry.Lookup(ev.EntityID)
	if !ok || !e.Alive() || e.Disabled || e.AIProfile == "" {
		return
	}
	eng := s.scripts.Engine(e.AIProfile)
	if eng == nil {
		return
	}
	if err := eng.Attacked(e, ev.AttackerID); err != nil {
		s.log.Warn("behavior attacked failed",
			zap.Uint32("id", e.ID),
			zap.String("profile", e.AIProfile),
			zap.Error(err))
	}
}

// Create runs the profile's spawn-time setup for a newly added entity.
func (s *BehaviorSystem) Create(e *world.Entity) {
	if e.AIProfile == "" {
		return
	}
	eng := s.scripts.Engine(e.AIProfile)
	if eng == nil {
		return
	}
	if err := eng.Create(e); err != nil {
		s.log.Warn("behavior create failed",
			zap.Uint32("id", e.ID),
			zap.String("profile", e.AIProfile),
			zap.Error(err))
	}
}
