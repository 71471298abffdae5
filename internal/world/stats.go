package world

import (
	"fmt"

	"github.com/driftfire/sim/internal/data"
)

// EquipError is a typed outfitting rejection. The entity is never mutated
// when one is returned.
type EquipError struct {
	Reason string
}

func (e *EquipError) Error() string { return e.Reason }

func equipErr(format string, args ...any) error {
	return &EquipError{Reason: fmt.Sprintf(format, args...)}
}

// CalcStats rebuilds every derived stat from the hull template plus the
// equipped outfits. Current armour/shield/energy/fuel keep their fill
// ratios across the rebuild, so refitting never grants free repairs.
func (e *Entity) CalcStats() {
	ship := e.Ship

	// Preserve fill ratios.
	ac, sc, ec, fc := 1.0, 1.0, 1.0, 1.0
	if e.ArmourMax > 0 {
		ac = e.Armour / e.ArmourMax
	}
	if e.ShieldMax > 0 {
		sc = e.Shield / e.ShieldMax
	}
	if e.EnergyMax > 0 {
		ec = e.Energy / e.EnergyMax
	}
	if e.FuelMax > 0 {
		fc = e.Fuel / e.FuelMax
	}

	// Reset to hull base.
	e.Thrust = ship.Thrust
	e.TurnBase = ship.Turn
	e.Speed = ship.Speed
	e.ArmourMax = ship.Armour
	e.ArmourRegen = ship.ArmourRegen
	e.ShieldMax = ship.Shield
	e.ShieldRegen = ship.ShieldRegen
	e.EnergyMax = ship.Energy
	e.EnergyRegen = ship.EnergyRegen
	e.FuelMax = ship.Fuel
	e.CPUMax = ship.CPU
	e.CargoCap = ship.Cargo
	e.MassOutfit = 0
	e.WeapRange = 0
	e.WeapSpeed = 0
	e.JamRange = 0
	e.JamChance = 0
	e.Secondary = e.revalidate(e.Secondary, func(o *data.Outfit) bool { return o.Kind.IsWeapon() })
	e.Afterburner = NoSlot

	cpuUsed := 0.0
	weapons := 0
	rangeSum, speedSum := 0.0, 0.0
	bestJam := -1.0

	e.EachSlot(func(tier SlotTier, idx int, s *Slot) {
		o := s.Outfit

		if o.CPU >= 0 {
			cpuUsed += o.CPU
		} else {
			e.CPUMax -= o.CPU // CPU providers raise the budget
		}
		e.MassOutfit += o.Mass
		if s.Ammo != nil {
			e.MassOutfit += float64(s.AmmoQty) * s.Ammo.Mass
		}

		m := &o.Mods
		e.Thrust += m.Thrust + m.ThrustRel*ship.Thrust
		e.TurnBase += m.Turn + m.TurnRel*ship.Turn
		e.Speed += m.Speed + m.SpeedRel*ship.Speed
		e.ArmourMax += m.Armour + m.ArmourRel*ship.Armour
		e.ArmourRegen += m.ArmourRegen
		e.ShieldMax += m.Shield + m.ShieldRel*ship.Shield
		e.ShieldRegen += m.ShieldRegen
		e.EnergyMax += m.Energy + m.EnergyRel*ship.Energy
		e.EnergyRegen += m.EnergyRegen
		e.FuelMax += m.Fuel
		e.CargoCap += m.Cargo
		e.MassOutfit += m.MassRel * ship.Mass

		switch o.Kind {
		case data.OutfitAfterburner:
			e.Afterburner = SlotRef{Tier: tier, Index: idx}
		case data.OutfitJammer:
			if o.JamChance > bestJam {
				bestJam = o.JamChance
				e.JamRange = o.JamRange
				e.JamChance = o.JamChance
			}
			e.EnergyRegen -= o.JamEnergy
		}

		ref := SlotRef{Tier: tier, Index: idx}
		if o.Kind.IsWeapon() && ref != e.Secondary {
			weapons++
			rangeSum += o.Range
			speedSum += o.Speed
		}
	})

	e.CPU = e.CPUMax - cpuUsed
	if weapons > 0 {
		e.WeapRange = rangeSum / float64(weapons)
		e.WeapSpeed = speedSum / float64(weapons)
	}
	if e.EnergyRegen > 0 {
		e.EnergyTau = e.EnergyMax / e.EnergyRegen
	} else {
		e.EnergyTau = 0
	}

	// Restore fill ratios.
	e.Armour = ac * e.ArmourMax
	e.Shield = sc * e.ShieldMax
	e.Energy = ec * e.EnergyMax
	e.Fuel = fc * e.FuelMax

	e.CalcCargoMass()
	e.UpdateMass()
}

// revalidate keeps a slot reference only while it still points at an
// outfit passing the predicate.
func (e *Entity) revalidate(r SlotRef, ok func(*data.Outfit) bool) SlotRef {
	s := e.Slot(r)
	if s == nil || s.Outfit == nil || !ok(s.Outfit) {
		return NoSlot
	}
	return r
}

// CalcCargoMass recomputes carried cargo mass from the ledger.
func (e *Entity) CalcCargoMass() {
	mass := 0.0
	for _, c := range e.Commodities {
		mass += float64(c.Qty)
	}
	e.MassCargo = mass
}

// UpdateMass pushes the total mass to the solid and re-modulates the turn
// rate: a hull loaded beyond its design mass turns proportionally slower.
func (e *Entity) UpdateMass() {
	e.Solid.Mass = e.Ship.Mass + e.MassOutfit + e.MassCargo
	e.Turn = e.TurnBase * e.Ship.Mass / e.Solid.Mass
}

// CanEquip checks whether an outfit can be added (add=true) or removed
// (add=false) without breaking the ship, returning a typed rejection and
// leaving the entity untouched.
func (e *Entity) CanEquip(o *data.Outfit, add bool) error {
	m := &o.Mods
	ship := e.Ship
	sign := 1.0
	if !add {
		sign = -1.0
	}

	if add {
		if o.Kind == data.OutfitAfterburner && e.Afterburner.Valid() {
			return equipErr("Already have an afterburner")
		}
		if o.CPU > 0 && e.CPU < o.CPU {
			return equipErr("Insufficient CPU")
		}
	} else {
		if o.CPU < 0 && e.CPU < -o.CPU {
			return equipErr("Lower CPU usage first")
		}
	}

	type check struct {
		name  string
		cur   float64
		delta float64
	}
	checks := []check{
		{"thrust", e.Thrust, m.Thrust + m.ThrustRel*ship.Thrust},
		{"speed", e.Speed, m.Speed + m.SpeedRel*ship.Speed},
		{"turn", e.TurnBase, m.Turn + m.TurnRel*ship.Turn},
		{"armour", e.ArmourMax, m.Armour + m.ArmourRel*ship.Armour},
		{"shield", e.ShieldMax, m.Shield + m.ShieldRel*ship.Shield},
		{"energy", e.EnergyMax, m.Energy + m.EnergyRel*ship.Energy},
		{"fuel", e.FuelMax, m.Fuel},
		{"cargo", e.CargoCap, m.Cargo},
	}
	for _, c := range checks {
		if c.cur+sign*c.delta < 0 {
			if add {
				return equipErr("Insufficient %s", c.name)
			}
			return equipErr("Increase %s first", c.name)
		}
	}
	if !add && o.Kind == data.OutfitFighterBay {
		for tier := range e.Slots {
			for i := range e.Slots[tier] {
				s := &e.Slots[tier][i]
				if s.Outfit == o && s.Deployed > 0 {
					return equipErr("Recall the fighters first")
				}
			}
		}
	}
	return nil
}

// AddOutfit equips an outfit into the first free slot of a tier and
// re-derives stats. Weapons only fit high-tier slots.
func (e *Entity) AddOutfit(o *data.Outfit, tier SlotTier) (SlotRef, error) {
	if o.Kind == data.OutfitAmmo || o.Kind == data.OutfitFighter {
		return NoSlot, equipErr("Cannot equip %s directly", o.Name)
	}
	if o.Kind.IsWeapon() && tier != TierHigh {
		return NoSlot, equipErr("Weapons need a weapon slot")
	}
	if err := e.CanEquip(o, true); err != nil {
		return NoSlot, err
	}
	for i := range e.Slots[tier] {
		if e.Slots[tier][i].Outfit == nil {
			e.Slots[tier][i] = Slot{Outfit: o}
			ref := SlotRef{Tier: tier, Index: i}
			e.CalcStats()
			return ref, nil
		}
	}
	return NoSlot, equipErr("No free slot")
}

// RemoveOutfit unequips a slot and re-derives stats. Secondary and
// afterburner references that pointed at it are dropped by the rebuild.
func (e *Entity) RemoveOutfit(ref SlotRef) error {
	s := e.Slot(ref)
	if s == nil || s.Outfit == nil {
		return equipErr("Slot is empty")
	}
	if err := e.CanEquip(s.Outfit, false); err != nil {
		return err
	}
	if ref == e.Secondary {
		e.Secondary = NoSlot
	}
	*s = Slot{}
	e.CalcStats()
	return nil
}

// AddAmmo loads ammo (or fighters) into a launcher/bay slot, clamped to
// the magazine, and propagates the mass change. Returns loaded quantity.
func (e *Entity) AddAmmo(ref SlotRef, ammo *data.Outfit, qty int) int {
	s := e.Slot(ref)
	if s == nil || s.Outfit == nil || qty <= 0 {
		return 0
	}
	if s.Outfit.AmmoName == "" || s.Outfit.AmmoName != ammo.Name {
		return 0
	}
	if s.Ammo != nil && s.Ammo.Name != ammo.Name {
		return 0
	}
	free := s.Outfit.AmmoCap - s.AmmoQty
	if qty > free {
		qty = free
	}
	if qty <= 0 {
		return 0
	}
	s.Ammo = ammo
	s.AmmoQty += qty
	e.MassOutfit += float64(qty) * ammo.Mass
	e.UpdateMass()
	return qty
}

// RemoveAmmo unloads ammo from a slot and propagates the mass change.
// Returns the quantity actually removed.
func (e *Entity) RemoveAmmo(ref SlotRef, qty int) int {
	s := e.Slot(ref)
	if s == nil || s.Ammo == nil || qty <= 0 {
		return 0
	}
	if qty > s.AmmoQty {
		qty = s.AmmoQty
	}
	s.AmmoQty -= qty
	e.MassOutfit -= float64(qty) * s.Ammo.Mass
	if s.AmmoQty == 0 {
		s.Ammo = nil
	}
	e.UpdateMass()
	return qty
}

// CheckSanity returns human-readable warnings for stat combinations that
// make the ship unflyable. Development aid, never fatal.
func (e *Entity) CheckSanity() []string {
	var warns []string
	add := func(format string, args ...any) {
		warns = append(warns, fmt.Sprintf(format, args...))
	}
	if e.CPU < 0 {
		add("CPU overdrawn by %.0f", -e.CPU)
	}
	if e.Thrust <= 0 {
		add("no thrust")
	}
	if e.Speed <= 0 {
		add("no top speed")
	}
	if e.TurnBase <= 0 {
		add("no turn rate")
	}
	if e.EnergyRegen <= 0 {
		add("negative energy regeneration (%.1f)", e.EnergyRegen)
	}
	if e.ArmourMax <= 0 {
		add("no armour")
	}
	if e.CargoCap < e.MassCargo {
		add("cargo overloaded by %.0ft", e.MassCargo-e.CargoCap)
	}
	return warns
}
