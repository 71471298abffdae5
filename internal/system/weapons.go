package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/driftfire/sim/internal/core/system"
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/world"
)

// WeaponSystem schedules weapon fire. Behavior invokes Shoot/ShootSecondary
// with the entity's intents; the per-tick Update only maintains running
// beams (energy drain, automatic shutoff).
type WeaponSystem struct {
	registry *world.Registry
	spawner  Spawner
	log      *zap.Logger
}

func NewWeaponSystem(reg *world.Registry, spawner Spawner, log *zap.Logger) *WeaponSystem {
	return &WeaponSystem{registry: reg, spawner: spawner, log: log}
}

func (s *WeaponSystem) Phase() coresys.Phase { return coresys.PhaseCombat }

func (s *WeaponSystem) Update(dt time.Duration) {
	dts := dt.Seconds()
	s.registry.Each(func(e *world.Entity) {
		for i := range e.Slots[world.TierHigh] {
			slot := &e.Slots[world.TierHigh][i]
			if slot.BeamID == 0 || slot.Outfit == nil {
				continue
			}
			o := slot.Outfit
			e.Energy -= o.Energy * dts
			// Beam runs for Duration then cools for Delay; Timer covers both.
			if e.Energy <= 0 || slot.Timer <= o.Delay || !e.Alive() || e.Disabled {
				s.spawner.StopBeam(slot.BeamID)
				slot.BeamID = 0
				if e.Energy < 0 {
					e.Energy = 0
				}
			}
		}
	})
}

// Shoot fires the primary weapons matching a group filter: 0 = everything,
// 1 = turrets only, 2 = forward mounts only. The selected secondary slot
// never fires as a primary.
func (s *WeaponSystem) Shoot(e *world.Entity, group int) {
	for i := range e.Slots[world.TierHigh] {
		ref := world.SlotRef{Tier: world.TierHigh, Index: i}
		slot := e.Slot(ref)
		if slot.Outfit == nil || !slot.Outfit.Kind.IsWeapon() {
			continue
		}
		if ref == e.Secondary {
			continue
		}
		if group == 1 && !slot.Outfit.Turret {
			continue
		}
		if group == 2 && slot.Outfit.Turret {
			continue
		}
		s.shootWeapon(e, ref)
	}
}

// ShootSecondary fires every slot equipping the selected secondary outfit.
func (s *WeaponSystem) ShootSecondary(e *world.Entity) {
	sec := e.SecondarySlot()
	if sec == nil || sec.Outfit == nil {
		return
	}
	for i := range e.Slots[world.TierHigh] {
		ref := world.SlotRef{Tier: world.TierHigh, Index: i}
		if slot := e.Slot(ref); slot.Outfit == sec.Outfit {
			s.shootWeapon(e, ref)
		}
	}
}

// ShootStop ends all running beams (fire intent released).
func (s *WeaponSystem) ShootStop(e *world.Entity) {
	for i := range e.Slots[world.TierHigh] {
		slot := &e.Slots[world.TierHigh][i]
		if slot.BeamID != 0 {
			s.spawner.StopBeam(slot.BeamID)
			slot.BeamID = 0
		}
	}
}

// shootWeapon fires one slot if its cooldown and the sibling rationing
// allow it. Identical weapons stagger their shots evenly across the shared
// delay instead of volleying.
func (s *WeaponSystem) shootWeapon(e *world.Entity, ref world.SlotRef) bool {
	slot := e.Slot(ref)
	o := slot.Outfit
	if slot.Timer > 0 {
		return false
	}

	if o.Kind != data.OutfitBeam {
		q := 0
		mint := 0.0
		for i := range e.Slots[world.TierHigh] {
			sib := &e.Slots[world.TierHigh][i]
			if sib.Outfit != o {
				continue
			}
			if o.Kind == data.OutfitLauncher && sib.AmmoQty <= 0 {
				continue
			}
			q++
			if sib.Timer > mint {
				mint = sib.Timer
			}
		}
		if q == 0 {
			return false
		}
		if mint > o.Delay*float64(q-1)/float64(q) {
			return false
		}
	}

	switch o.Kind {
	case data.OutfitBolt:
		if e.Energy < o.Energy {
			return false
		}
		e.Energy -= o.Energy
		s.spawner.SpawnBolt(e, ref, o, e.Target)

	case data.OutfitBeam:
		if slot.BeamID != 0 {
			return false // already firing
		}
		if e.Energy < o.Energy {
			return false
		}
		slot.BeamID = s.spawner.StartBeam(e, ref, o, e.Target)
		if slot.BeamID == 0 {
			return false
		}
		slot.Timer = o.Duration + o.Delay
		return true

	case data.OutfitLauncher:
		if slot.AmmoQty <= 0 || slot.Ammo == nil {
			return false
		}
		if e.Energy < o.Energy {
			return false
		}
		e.Energy -= o.Energy
		s.spawner.SpawnMissile(e, ref, slot.Ammo, e.Target)
		slot.AmmoQty--
		e.MassOutfit -= slot.Ammo.Mass
		if slot.AmmoQty == 0 {
			slot.Ammo = nil
		}
		e.UpdateMass()

	case data.OutfitFighterBay:
		if slot.AmmoQty <= 0 || slot.Ammo == nil {
			return false
		}
		id, ok := s.spawner.SpawnEscort(e, ref, slot.Ammo)
		if !ok {
			return false
		}
		fighterMass := slot.Ammo.Mass
		slot.AmmoQty--
		slot.Deployed++
		if slot.AmmoQty == 0 {
			slot.Ammo = nil
		}
		e.MassOutfit -= fighterMass
		e.UpdateMass()
		e.AddEscort(id)
		s.log.Debug("fighter deployed",
			zap.Uint32("carrier", e.ID),
			zap.Uint32("fighter", id))

	default:
		return false
	}

	slot.Timer += o.Delay
	return true
}
