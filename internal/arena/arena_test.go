package arena

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/config"
	"github.com/driftfire/sim/internal/core/event"
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/faction"
	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/system"
	"github.com/driftfire/sim/internal/world"
)

const tick = 20 * time.Millisecond

// arenaRig is an arena wired to a live combat system, the way main boots
// them.
type arenaRig struct {
	arena    *Arena
	combat   *system.CombatSystem
	registry *world.Registry
}

func newArenaRig(t *testing.T) *arenaRig {
	t.Helper()
	dir := t.TempDir()
	shipBody := `
ships:
  - name: Testbed
    mass: 200
    thrust: 30000
    turn: 2.0
    speed: 250
    armour: 300
    shield: 200
    shield_regen: 10
    energy: 400
    energy_regen: 40
    fuel: 800
    cpu: 100
    cargo: 50
    slots_low: 2
    slots_medium: 3
    slots_high: 3
`
	factionBody := `
factions:
  - name: Concord
    player: 20
    standings:
      Veil: -80
  - name: Veil
    player: -40
`
	shipPath := filepath.Join(dir, "ships.yaml")
	factionPath := filepath.Join(dir, "factions.yaml")
	require.NoError(t, os.WriteFile(shipPath, []byte(shipBody), 0644))
	require.NoError(t, os.WriteFile(factionPath, []byte(factionBody), 0644))
	ships, err := data.LoadShipTable(shipPath)
	require.NoError(t, err)
	factionDefs, err := data.LoadFactionTable(factionPath)
	require.NoError(t, err)

	reg := world.NewRegistry()
	log := zap.NewNop()
	cfg := config.Defaults()
	ar := New(reg, ships, log)
	combat := system.NewCombatSystem(reg, faction.NewService(factionDefs, log),
		cfg.Simulation, cfg.Rates, event.NewBus(), log)
	ar.BindCombat(combat)
	return &arenaRig{arena: ar, combat: combat, registry: reg}
}

func (r *arenaRig) spawn(faction string, pos phys.Vec2) *world.Entity {
	ship := r.arena.ships.Get("Testbed")
	e := world.NewEntity(r.registry.NextID(), "testbed", ship, faction, "", 0, pos, phys.Vec2{})
	r.registry.Add(e)
	return e
}

func boltOutfit() *data.Outfit {
	return &data.Outfit{
		Name:       "Test Cannon",
		Kind:       data.OutfitBolt,
		Delay:      1.0,
		Damage:     15,
		DamageType: data.DamageEnergy,
		Range:      800,
		Speed:      600,
	}
}

func TestBolt_FliesAndHits(t *testing.T) {
	rig := newArenaRig(t)
	shooter := rig.spawn("Concord", phys.Vec2{})
	target := rig.spawn("Veil", phys.Vec2{X: 120})

	rig.arena.SpawnBolt(shooter, world.NoSlot, boltOutfit(), 0)
	require.Equal(t, 1, rig.arena.Bolts())

	// 120 units at 600/s crosses in 0.2s; run the hit through combat.
	for i := 0; i < 15; i++ {
		rig.arena.Update(tick)
		rig.combat.Update(tick)
	}

	assert.Zero(t, rig.arena.Bolts())
	assert.Less(t, target.Shield, target.ShieldMax)
	assert.Equal(t, shooter.ShieldMax, shooter.Shield) // never self-hit
}

func TestBolt_ExpiresAtRange(t *testing.T) {
	rig := newArenaRig(t)
	shooter := rig.spawn("Concord", phys.Vec2{})

	rig.arena.SpawnBolt(shooter, world.NoSlot, boltOutfit(), 0)

	// Lifetime is range/speed = 1.33s; nothing to hit downrange.
	for i := 0; i < 70; i++ {
		rig.arena.Update(tick)
	}
	assert.Zero(t, rig.arena.Bolts())
}

func TestBolt_TurretLeadsTarget(t *testing.T) {
	rig := newArenaRig(t)
	shooter := rig.spawn("Concord", phys.Vec2{})
	target := rig.spawn("Veil", phys.Vec2{Y: 100}) // perpendicular to the hull axis

	turret := boltOutfit()
	turret.Turret = true
	rig.arena.SpawnBolt(shooter, world.NoSlot, turret, target.ID)

	for i := 0; i < 15; i++ {
		rig.arena.Update(tick)
		rig.combat.Update(tick)
	}
	assert.Less(t, target.Shield, target.ShieldMax)
}

func TestMissile_TracksAndLocks(t *testing.T) {
	rig := newArenaRig(t)
	shooter := rig.spawn("Concord", phys.Vec2{})
	target := rig.spawn("Veil", phys.Vec2{X: 400, Y: 150})

	ammo := &data.Outfit{
		Name: "Test Rocket", Kind: data.OutfitAmmo,
		Mass: 2, Damage: 40, DamageType: data.DamageKinetic, Knockback: 1,
		Range: 3000, Speed: 300,
	}
	rig.arena.SpawnMissile(shooter, world.NoSlot, ammo, target.ID)

	rig.arena.Update(tick)
	assert.Equal(t, 1, target.Lockons)

	// The round curves onto the offset target well inside its flight time.
	for i := 0; i < 200 && rig.arena.Missiles() > 0; i++ {
		rig.arena.Update(tick)
		rig.combat.Update(tick)
	}
	assert.Zero(t, rig.arena.Missiles())
	assert.Zero(t, target.Lockons)
	assert.Less(t, target.Shield, target.ShieldMax)
}

func TestMissile_JammedGoesBallistic(t *testing.T) {
	rig := newArenaRig(t)
	shooter := rig.spawn("Concord", phys.Vec2{})
	target := rig.spawn("Veil", phys.Vec2{X: 400, Y: 150})
	target.JamRange = 5000 // jammer bubble covers the whole approach
	target.JamChance = 1.0

	ammo := &data.Outfit{
		Name: "Test Rocket", Kind: data.OutfitAmmo,
		Mass: 2, Damage: 40, DamageType: data.DamageKinetic,
		Range: 3000, Speed: 300,
	}
	rig.arena.SpawnMissile(shooter, world.NoSlot, ammo, target.ID)

	for i := 0; i < 200 && rig.arena.Missiles() > 0; i++ {
		rig.arena.Update(tick)
	}

	// Fired along the hull axis and never corrected, it sails past.
	assert.Zero(t, target.Lockons)
	assert.Equal(t, target.ShieldMax, target.Shield)
}

func TestBeam_BurnsInRange(t *testing.T) {
	rig := newArenaRig(t)
	shooter := rig.spawn("Concord", phys.Vec2{})
	target := rig.spawn("Veil", phys.Vec2{X: 200})

	o := &data.Outfit{
		Name: "Test Beam", Kind: data.OutfitBeam,
		Damage: 100, DamageType: data.DamageEnergy, Range: 600,
	}
	id := rig.arena.StartBeam(shooter, world.NoSlot, o, target.ID)
	require.Equal(t, 1, rig.arena.Beams())

	rig.arena.Update(tick)
	rig.combat.Update(tick)
	assert.InDelta(t, target.ShieldMax-100*tick.Seconds()*1.1, target.Shield, 1e-9)

	// Out of range the beam stays lit but burns nothing.
	target.Solid.Pos = phys.Vec2{X: 5000}
	before := target.Shield
	rig.arena.Update(tick)
	rig.combat.Update(tick)
	assert.Equal(t, before, target.Shield)

	rig.arena.StopBeam(id)
	assert.Zero(t, rig.arena.Beams())
}

func TestSpawnEscort_LaunchesAlongside(t *testing.T) {
	rig := newArenaRig(t)
	carrier := rig.spawn("Concord", phys.Vec2{X: 1000})
	carrier.Target = 77

	fighter := &data.Outfit{Name: "Testbed", Kind: data.OutfitFighter, Mass: 30}
	bayRef := world.SlotRef{Tier: world.TierHigh, Index: 0}
	id, ok := rig.arena.SpawnEscort(carrier, bayRef, fighter)
	require.True(t, ok)
	rig.arena.Update(tick)

	e, found := rig.registry.Lookup(id)
	require.True(t, found)
	assert.True(t, e.Escort)
	assert.True(t, e.Carried)
	assert.Equal(t, carrier.ID, e.Parent)
	assert.Equal(t, bayRef, e.ParentBay)
	assert.Equal(t, uint32(77), e.Target)
	assert.InDelta(t, escortOffset, e.Solid.Pos.Dist(carrier.Solid.Pos), 1e-9)
}

func TestSpawnEscort_DeferredUntilArenaUpdate(t *testing.T) {
	rig := newArenaRig(t)
	carrier := rig.spawn("Concord", phys.Vec2{})
	before := rig.registry.Count()

	fighter := &data.Outfit{Name: "Testbed", Kind: data.OutfitFighter, Mass: 30}
	id, ok := rig.arena.SpawnEscort(carrier, world.NoSlot, fighter)
	require.True(t, ok)

	// The launch reserves an id but must not grow the entity stack while
	// other systems may still be walking it.
	assert.Equal(t, before, rig.registry.Count())
	_, found := rig.registry.Lookup(id)
	assert.False(t, found)

	rig.arena.Update(tick)
	assert.Equal(t, before+1, rig.registry.Count())
	_, found = rig.registry.Lookup(id)
	assert.True(t, found)
}

func TestSpawnEscort_UnknownHull(t *testing.T) {
	rig := newArenaRig(t)
	carrier := rig.spawn("Concord", phys.Vec2{})
	_, ok := rig.arena.SpawnEscort(carrier, world.NoSlot, &data.Outfit{Name: "No Such Hull"})
	assert.False(t, ok)
}

func TestScoop_EmptiesContainers(t *testing.T) {
	rig := newArenaRig(t)
	ship := rig.spawn("Concord", phys.Vec2{})
	ore := &data.Commodity{Name: "Ore", BasePrice: 220}

	rig.arena.SpawnCargo(phys.Vec2{X: 10}, []world.CargoItem{{Commodity: ore, Qty: 20}})
	rig.arena.SpawnCargo(phys.Vec2{X: 900}, []world.CargoItem{{Commodity: ore, Qty: 5}})
	_, containers := rig.arena.Drifting()
	require.Equal(t, 2, containers)

	got := rig.arena.Scoop(ship, 100)
	assert.Equal(t, 20, got)
	assert.Equal(t, 20, ship.CargoUsed())

	// The emptied container decays on the next tick; the far one drifts on.
	rig.arena.Update(tick)
	_, containers = rig.arena.Drifting()
	assert.Equal(t, 1, containers)
}

func TestScoop_PartialLeavesRemainder(t *testing.T) {
	rig := newArenaRig(t)
	ship := rig.spawn("Concord", phys.Vec2{})
	ore := &data.Commodity{Name: "Ore", BasePrice: 220}
	ship.AddCargo(ore, 45) // 5 free

	rig.arena.SpawnCargo(phys.Vec2{}, []world.CargoItem{
		{Commodity: ore, Qty: 20},
	})
	got := rig.arena.Scoop(ship, 100)
	assert.Equal(t, 5, got)

	rig.arena.Update(tick)
	_, containers := rig.arena.Drifting()
	assert.Equal(t, 1, containers) // 15 tonnes still adrift
}

func TestDebris_DecaysOverTime(t *testing.T) {
	rig := newArenaRig(t)
	rig.arena.SpawnDebris(phys.Vec2{}, phys.Vec2{}, 6)
	debris, _ := rig.arena.Drifting()
	require.Equal(t, 6, debris)

	// Lifetime is randomized in [10s, 40s); a minute clears everything.
	for i := 0; i < 3000; i++ {
		rig.arena.Update(tick)
	}
	debris, _ = rig.arena.Drifting()
	assert.Zero(t, debris)
}
