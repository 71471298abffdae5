package system

import (
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/world"
)

// Spawner is the projectile/effect factory the simulation fires through.
// The arena layer owns projectile flight and collision; the core only
// requests spawns and receives hits back through CombatSystem.Queue.
type Spawner interface {
	// SpawnBolt launches one bolt round from a weapon slot.
	SpawnBolt(shooter *world.Entity, ref world.SlotRef, o *data.Outfit, target uint32)
	// SpawnMissile launches one guided round from a launcher slot.
	SpawnMissile(shooter *world.Entity, ref world.SlotRef, ammo *data.Outfit, target uint32)
	// StartBeam turns a beam on and returns a handle (> 0) for StopBeam.
	StartBeam(shooter *world.Entity, ref world.SlotRef, o *data.Outfit, target uint32) int
	// StopBeam turns a running beam off.
	StopBeam(beamID int)
	// SpawnEscort deploys a fighter from a carrier bay, returning the new
	// entity id. ok is false when the arena refused the spawn. The entity
	// may join the registry later in the tick, never mid-iteration.
	SpawnEscort(carrier *world.Entity, bay world.SlotRef, fighter *data.Outfit) (id uint32, ok bool)
	// SpawnDebris scatters wreck fragments.
	SpawnDebris(pos, vel phys.Vec2, count int)
	// SpawnCargo dumps cargo containers into space.
	SpawnCargo(pos phys.Vec2, items []world.CargoItem)
	// SpawnExplosion detonates an area blast. Damage is applied by the
	// arena feeding ExplodeAt back into the combat system.
	SpawnExplosion(pos phys.Vec2, radius, damage float64, kind data.DamageKind, parent uint32)
}
