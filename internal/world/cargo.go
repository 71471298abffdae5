package world

import "github.com/driftfire/sim/internal/data"

// Cargo ledger. Every mutation keeps MassCargo and the solid in sync, so
// handling degrades the moment the hold fills up.

// CargoUsed returns the tonnage currently in the hold.
func (e *Entity) CargoUsed() int {
	used := 0
	for _, c := range e.Commodities {
		used += c.Qty
	}
	return used
}

// CargoFree returns the remaining hold capacity in tonnes.
func (e *Entity) CargoFree() int {
	free := int(e.CargoCap) - e.CargoUsed()
	if free < 0 {
		return 0
	}
	return free
}

// AddCargo loads a commodity, merging with an existing non-mission entry
// and clamping to free capacity. Returns the quantity actually loaded.
func (e *Entity) AddCargo(com *data.Commodity, qty int) int {
	if qty <= 0 {
		return 0
	}
	if free := e.CargoFree(); qty > free {
		qty = free
	}
	if qty == 0 {
		return 0
	}
	merged := false
	for i := range e.Commodities {
		c := &e.Commodities[i]
		if c.MissionID == 0 && c.Commodity == com {
			c.Qty += qty
			merged = true
			break
		}
	}
	if !merged {
		e.Commodities = append(e.Commodities, CargoItem{Commodity: com, Qty: qty})
	}
	e.CalcCargoMass()
	e.UpdateMass()
	return qty
}

// RemoveCargo unloads a commodity, skipping mission cargo. Returns the
// quantity actually removed.
func (e *Entity) RemoveCargo(com *data.Commodity, qty int) int {
	return e.removeCargo(com, qty, false)
}

func (e *Entity) removeCargo(com *data.Commodity, qty int, cleanup bool) int {
	if qty <= 0 {
		return 0
	}
	removed := 0
	for i := 0; i < len(e.Commodities) && removed < qty; {
		c := &e.Commodities[i]
		if c.Commodity != com || (c.MissionID != 0 && !cleanup) {
			i++
			continue
		}
		take := qty - removed
		if take > c.Qty {
			take = c.Qty
		}
		c.Qty -= take
		removed += take
		if c.Qty == 0 {
			e.Commodities = append(e.Commodities[:i], e.Commodities[i+1:]...)
		} else {
			i++
		}
	}
	if removed > 0 {
		e.CalcCargoMass()
		e.UpdateMass()
	}
	return removed
}

// AddMissionCargo loads cargo bound to a mission tag. Mission entries
// never merge and only RemoveMissionCargo (or a cleanup jettison) can
// take them back out. Returns the quantity actually loaded.
func (e *Entity) AddMissionCargo(com *data.Commodity, qty int, missionID uint32) int {
	if qty <= 0 || missionID == 0 {
		return 0
	}
	if free := e.CargoFree(); qty > free {
		qty = free
	}
	if qty == 0 {
		return 0
	}
	e.Commodities = append(e.Commodities, CargoItem{Commodity: com, Qty: qty, MissionID: missionID})
	e.CalcCargoMass()
	e.UpdateMass()
	return qty
}

// RemoveMissionCargo unloads the entry with the given mission tag.
// jettison marks a dump rather than a delivery; either way the entry is
// gone. Returns the removed quantity.
func (e *Entity) RemoveMissionCargo(missionID uint32, jettison bool) int {
	for i := range e.Commodities {
		c := e.Commodities[i]
		if c.MissionID != missionID {
			continue
		}
		e.Commodities = append(e.Commodities[:i], e.Commodities[i+1:]...)
		e.CalcCargoMass()
		e.UpdateMass()
		return c.Qty
	}
	return 0
}

// JettisonAll dumps the entire hold, mission cargo included. Used by the
// death sequence; returns what was carried for debris spawning.
func (e *Entity) JettisonAll() []CargoItem {
	dumped := make([]CargoItem, len(e.Commodities))
	copy(dumped, e.Commodities)
	e.Commodities = e.Commodities[:0]
	e.CalcCargoMass()
	e.UpdateMass()
	return dumped
}
