package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/config"
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/faction"
	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/world"
)

func testShip() *data.Ship {
	return &data.Ship{
		Name:        "Testbed",
		Mass:        200,
		Thrust:      30000,
		Turn:        2.0,
		Speed:       250,
		Armour:      300,
		Shield:      200,
		ShieldRegen: 10,
		Energy:      400,
		EnergyRegen: 40,
		Fuel:        800,
		CPU:         100,
		Cargo:       50,
		SlotsLow:    2,
		SlotsMedium: 3,
		SlotsHigh:   3,
	}
}

func spawnShip(reg *world.Registry, faction string) *world.Entity {
	e := world.NewEntity(reg.NextID(), "testbed", testShip(), faction, "", 0, phys.Vec2{}, phys.Vec2{})
	reg.Add(e)
	return e
}

func testFactions(t *testing.T) *faction.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "factions.yaml")
	body := `
factions:
  - name: Concord
    player: 20
    standings:
      Veil: -80
  - name: Veil
    player: -40
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	defs, err := data.LoadFactionTable(path)
	require.NoError(t, err)
	return faction.NewService(defs, zap.NewNop())
}

func testSim() config.SimulationConfig {
	return config.Defaults().Simulation
}

var dataCommodity = data.Commodity{Name: "Ore", BasePrice: 220}

func afterburnerForTest() *data.Outfit {
	return &data.Outfit{
		Name:            "Test Burner",
		Kind:            data.OutfitAfterburner,
		Mass:            6,
		CPU:             8,
		AfterburnSpeed:  1.5,
		AfterburnEnergy: 20,
	}
}

// fakeSpawner records spawn requests for assertions.
type fakeSpawner struct {
	bolts      int
	missiles   int
	beams      int
	stopped    []int
	nextBeamID int
	escortOK   bool
	escorts    int
	debris     int
	cargo      [][]world.CargoItem
	explosions []float64 // damage of each blast
}

func (f *fakeSpawner) SpawnBolt(*world.Entity, world.SlotRef, *data.Outfit, uint32) { f.bolts++ }
func (f *fakeSpawner) SpawnMissile(*world.Entity, world.SlotRef, *data.Outfit, uint32) {
	f.missiles++
}
func (f *fakeSpawner) StartBeam(*world.Entity, world.SlotRef, *data.Outfit, uint32) int {
	f.beams++
	f.nextBeamID++
	return f.nextBeamID
}
func (f *fakeSpawner) StopBeam(id int) { f.stopped = append(f.stopped, id) }
func (f *fakeSpawner) SpawnEscort(*world.Entity, world.SlotRef, *data.Outfit) (uint32, bool) {
	if !f.escortOK {
		return 0, false
	}
	f.escorts++
	return uint32(1000 + f.escorts), true
}
func (f *fakeSpawner) SpawnDebris(_, _ phys.Vec2, count int) { f.debris += count }
func (f *fakeSpawner) SpawnCargo(_ phys.Vec2, items []world.CargoItem) {
	f.cargo = append(f.cargo, items)
}
func (f *fakeSpawner) SpawnExplosion(_ phys.Vec2, _, damage float64, _ data.DamageKind, _ uint32) {
	f.explosions = append(f.explosions, damage)
}
