package system

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/world"
)

const tick = 20 * time.Millisecond

func newUpdate(t *testing.T) (*UpdateSystem, *world.Registry, *fakeSpawner) {
	t.Helper()
	reg := world.NewRegistry()
	sp := &fakeSpawner{}
	return NewUpdateSystem(reg, testSim(), sp, zap.NewNop()), reg, sp
}

func TestUpdate_EnergyRCcharge(t *testing.T) {
	sys, reg, _ := newUpdate(t)
	e := spawnShip(reg, "Concord")
	e.Energy = 0
	require.Greater(t, e.EnergyTau, 0.0)

	// Integrate for exactly one time constant.
	steps := int(e.EnergyTau / tick.Seconds())
	for i := 0; i < steps; i++ {
		sys.Update(tick)
	}

	// RC charge reaches ~63.2% of the ceiling after one tau.
	assert.InDelta(t, 1-math.Exp(-1), e.Energy/e.EnergyMax, 0.01)
}

func TestUpdate_IntentsDrivePhysics(t *testing.T) {
	sys, reg, _ := newUpdate(t)
	e := spawnShip(reg, "Concord")
	e.AccelIntent = 1

	sys.Update(tick)

	assert.Greater(t, e.Solid.Vel.Mod(), 0.0)
	assert.InDelta(t, e.Thrust, e.Solid.Force, 1e-9)
}

func TestUpdate_SpeedLimited(t *testing.T) {
	sys, reg, _ := newUpdate(t)
	e := spawnShip(reg, "Concord")
	e.AccelIntent = 1

	for i := 0; i < 3000; i++ {
		sys.Update(tick)
	}
	assert.InDelta(t, e.Speed, e.Solid.Vel.Mod(), e.Speed*0.1)
}

func TestUpdate_DisabledDrifts(t *testing.T) {
	sys, reg, _ := newUpdate(t)
	e := spawnShip(reg, "Concord")
	e.Disabled = true
	e.Solid.Vel = phys.Vec2{X: 100}
	e.AccelIntent = 1 // ignored: no control while disabled

	sys.Update(tick)

	assert.Zero(t, e.AccelIntent)
	assert.Zero(t, e.Solid.Force)
	// Drift decays at 10%/s.
	assert.InDelta(t, 100*(1-0.10*tick.Seconds()), e.Solid.Vel.X, 1e-9)
	assert.Greater(t, e.Solid.Pos.X, 0.0) // still moving
}

func TestUpdate_HostilityDecay(t *testing.T) {
	sys, reg, _ := newUpdate(t)
	e := spawnShip(reg, "Veil")
	e.Hostility = 0.001
	e.Hostile = true

	for i := 0; i < 11; i++ { // 0.22s at decay 0.005/s clears 0.0011
		sys.Update(tick)
	}

	assert.Zero(t, e.Hostility)
	assert.False(t, e.Hostile)
}

func TestUpdate_DeathSequence(t *testing.T) {
	sys, reg, sp := newUpdate(t)
	e := spawnShip(reg, "Veil")
	e.AddCargo(&dataCommodity, 10)
	e.Dead = true
	e.PTimer = 1.0
	e.Timers[1] = 0

	for i := 0; i < 60; i++ { // 1.2s covers the whole burn-down
		sys.Update(tick)
	}

	assert.True(t, e.Exploded)
	assert.True(t, e.DeathSound)
	assert.True(t, e.Delete)
	assert.Greater(t, sp.debris, 0)
	require.Len(t, sp.explosions, 1)
	assert.Equal(t, e.ArmourMax, sp.explosions[0])
	// Cargo jettisoned with the final blast.
	require.Len(t, sp.cargo, 1)
	assert.Equal(t, 10, sp.cargo[0][0].Qty)
	assert.Empty(t, e.Commodities)
}

func TestUpdate_AfterburnerDrainsAndBreaks(t *testing.T) {
	sys, reg, _ := newUpdate(t)
	e := spawnShip(reg, "Concord")
	afb := afterburnerForTest()
	_, err := e.AddOutfit(afb, world.TierMedium)
	require.NoError(t, err)
	e.AfterburnerOn = true
	e.Energy = 0.5 // below the 1-unit cutoff

	sys.Update(tick)

	assert.False(t, e.AfterburnerOn)
}

func TestUpdate_HyperArrivedBleedsOff(t *testing.T) {
	sys, reg, _ := newUpdate(t)
	e := spawnShip(reg, "Concord")
	e.HyperPhase = world.HyperArrived
	e.Solid.Vel = phys.Vec2{X: 10 * e.Speed}

	sys.Update(tick)
	assert.Equal(t, world.HyperArrived, e.HyperPhase)

	for i := 0; i < 500; i++ {
		sys.Update(tick)
	}
	assert.Equal(t, world.HyperCruising, e.HyperPhase)
	assert.Less(t, e.Solid.Vel.Mod(), 2*e.Speed)
}
