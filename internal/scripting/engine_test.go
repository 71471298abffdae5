package scripting

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
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

// scriptRig is a profile engine over a temp directory plus a registry to
// spawn ships into.
type scriptRig struct {
	engine   *Engine
	registry *world.Registry
}

func newScriptRig(t *testing.T, script string) *scriptRig {
	t.Helper()
	reg := world.NewRegistry()
	eng, err := newScriptEngine(t, reg, script)
	require.NoError(t, err)
	return &scriptRig{engine: eng, registry: reg}
}

func newScriptEngine(t *testing.T, reg *world.Registry, script string) (*Engine, error) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(script), 0644))
	eng, err := NewEngine("test", dir, Deps{
		Registry: reg,
		Factions: testFactions(t),
		Sim:      config.Defaults().Simulation,
	}, zap.NewNop())
	if eng != nil {
		t.Cleanup(eng.Close)
	}
	return eng, err
}

func (r *scriptRig) spawn(faction string) *world.Entity {
	e := world.NewEntity(r.registry.NextID(), "testbed", testShip(), faction, "", 0, phys.Vec2{}, phys.Vec2{})
	r.registry.Add(e)
	return e
}

func TestThink_RunsControlThenTask(t *testing.T) {
	rig := newScriptRig(t, `
function control()
   ai.pushtask(0, "burn")
end

function burn()
   ai.accel(0.5)
   ai.turn(0.25)
end
`)
	e := rig.spawn("Concord")
	e.AccelIntent = 1.0 // stale from last tick

	require.NoError(t, rig.engine.Think(e, 0.02))

	assert.Equal(t, 0.5, e.AccelIntent)
	assert.Equal(t, 0.25, e.TurnIntent)
	assert.Equal(t, rig.engine.ControlRate(), e.TControl)
}

func TestThink_ClampsIntents(t *testing.T) {
	rig := newScriptRig(t, `
function control()
   ai.accel(5)
   ai.turn(-9)
end
`)
	e := rig.spawn("Concord")
	require.NoError(t, rig.engine.Think(e, 0.02))
	assert.Equal(t, 1.0, e.AccelIntent)
	assert.Equal(t, -1.0, e.TurnIntent)
}

func TestThink_ControlCadence(t *testing.T) {
	rig := newScriptRig(t, `
control_rate = 0.5
runs = 0

function control()
   runs = runs + 1
   ai.pushtask(1, "idle")
end

function idle()
end
`)
	e := rig.spawn("Concord")
	assert.Equal(t, 0.5, rig.engine.ControlRate())

	require.NoError(t, rig.engine.Think(e, 0.02))
	require.NoError(t, rig.engine.Think(e, 0.02))
	assert.Equal(t, 1, e.Tasks.Len()) // control ran once

	// Timer lapse forces another control pass.
	e.TControl = -0.01
	require.NoError(t, rig.engine.Think(e, 0.02))
	assert.Equal(t, 2, e.Tasks.Len())
	assert.Equal(t, 0.5, e.TControl)
}

func TestThink_TaskDataArgument(t *testing.T) {
	rig := newScriptRig(t, `
function control()
end

function chase(id)
   ai.settarget(id)
end
`)
	e := rig.spawn("Concord")
	e.Tasks.PushBack(world.Task{Name: "chase", Data: 77, HasData: true})

	require.NoError(t, rig.engine.Think(e, 0.02))
	assert.Equal(t, uint32(77), e.Target)
}

func TestThink_MissingControlIsScriptError(t *testing.T) {
	rig := newScriptRig(t, `-- no functions at all`)
	e := rig.spawn("Concord")
	e.AccelIntent = 0.9

	err := rig.engine.Think(e, 0.02)
	var serr *ScriptError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "control", serr.Fn)
	assert.Zero(t, e.AccelIntent)
}

func TestThink_RuntimeErrorZeroesIntents(t *testing.T) {
	rig := newScriptRig(t, `
function control()
   ai.accel()
   error("boom")
end
`)
	e := rig.spawn("Concord")

	err := rig.engine.Think(e, 0.02)
	var serr *ScriptError
	require.ErrorAs(t, err, &serr)
	assert.Zero(t, e.AccelIntent)
}

func TestBinding_OutsideInvocationFailsLoad(t *testing.T) {
	// Top-level binding calls run during load, outside any invocation.
	reg := world.NewRegistry()
	_, err := newScriptEngine(t, reg, `ai.accel()`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside an invocation")
}

func TestBinding_TargetQueries(t *testing.T) {
	rig := newScriptRig(t, `
function control()
   enemy = ai.getenemy()
   if enemy ~= 0 then
      ai.settarget(enemy)
      dist = ai.getdist(enemy)
   end
   ghost = ai.getdist(9999)
end
`)
	me := rig.spawn("Concord")
	foe := rig.spawn("Veil")
	foe.Solid.Pos = phys.Vec2{X: 300}
	friend := rig.spawn("Concord")
	friend.Solid.Pos = phys.Vec2{X: 50}

	require.NoError(t, rig.engine.Think(me, 0.02))

	assert.Equal(t, foe.ID, me.Target)
	vm := rig.engine.vm
	assert.InDelta(t, 300.0, float64(vm.GetGlobal("dist").(lua.LNumber)), 1e-9)
	assert.InDelta(t, farAway, float64(vm.GetGlobal("ghost").(lua.LNumber)), 1e-9)
}

func TestBinding_FaceTarget(t *testing.T) {
	rig := newScriptRig(t, `
function control()
   diff = ai.face_target(target_arg)
end
`)
	me := rig.spawn("Concord")
	other := rig.spawn("Veil")
	other.Solid.Pos = phys.Vec2{Y: 100} // due +Y, pi/2 from heading 0

	vm := rig.engine.vm
	vm.SetGlobal("target_arg", lua.LNumber(other.ID))
	require.NoError(t, rig.engine.Think(me, 0.02))
	assert.Equal(t, 1.0, me.TurnIntent) // hard left toward pi/2

	// A vanished target steers nothing and reports far-off.
	me.TControl = -1
	vm.SetGlobal("target_arg", lua.LNumber(9999))
	require.NoError(t, rig.engine.Think(me, 0.02))
	assert.Zero(t, me.TurnIntent)
	assert.InDelta(t, farAway, float64(vm.GetGlobal("diff").(lua.LNumber)), 1e-9)
}

func TestBinding_FaceIsAlwaysAnAngle(t *testing.T) {
	rig := newScriptRig(t, `
function control()
   ai.face(1.0)
end
`)
	me := rig.spawn("Concord") // id 1: a heading of 1.0 must not resolve to it
	me.Solid.Pos = phys.Vec2{X: 500}

	require.NoError(t, rig.engine.Think(me, 0.02))
	// Steering toward the absolute heading 1.0 rad, not toward entity 1.
	assert.Equal(t, 1.0, me.TurnIntent)
}

func TestBinding_BrakeSequence(t *testing.T) {
	rig := newScriptRig(t, `
function control()
   stopped = ai.brake()
end
`)
	e := rig.spawn("Concord")
	e.Solid.Vel = phys.Vec2{X: 100}
	e.Solid.Dir = 0 // facing prograde, must flip first

	vm := rig.engine.vm
	require.NoError(t, rig.engine.Think(e, 0.02))
	assert.Equal(t, lua.LFalse, vm.GetGlobal("stopped"))
	assert.NotZero(t, e.TurnIntent)
	assert.Zero(t, e.AccelIntent)

	// Retrograde and slow enough counts as stopped.
	e.Solid.Vel = phys.Vec2{X: 1}
	e.TControl = -1
	require.NoError(t, rig.engine.Think(e, 0.02))
	assert.Equal(t, lua.LTrue, vm.GetGlobal("stopped"))
}

func TestBinding_HyperspaceFuelGate(t *testing.T) {
	rig := newScriptRig(t, `
function control()
   ok = ai.hyperspace(0)
end
`)
	e := rig.spawn("Concord")
	e.Fuel = 10 // below the jump cost

	vm := rig.engine.vm
	require.NoError(t, rig.engine.Think(e, 0.02))
	assert.Equal(t, lua.LFalse, vm.GetGlobal("ok"))
	assert.Equal(t, world.HyperCruising, e.HyperPhase)

	e.Fuel = e.FuelMax
	e.TControl = -1
	require.NoError(t, rig.engine.Think(e, 0.02))
	assert.Equal(t, lua.LTrue, vm.GetGlobal("ok"))
	assert.Equal(t, world.HyperPreparing, e.HyperPhase)
}

func TestBinding_TimersAndTasks(t *testing.T) {
	rig := newScriptRig(t, `
function control()
   ai.settimer(0, 1.5)
   expired = ai.timeup(0)
   ai.pushtask(1, "second")
   ai.pushtask(0, "first")
end

function first()
   ai.poptask()
end
`)
	e := rig.spawn("Concord")
	require.NoError(t, rig.engine.Think(e, 0.02))

	assert.Equal(t, lua.LFalse, rig.engine.vm.GetGlobal("expired"))
	assert.InDelta(t, 1.5, e.Timers[0], 1e-9)

	// "first" ran this think and popped itself off the head.
	task, ok := e.Tasks.Current()
	require.True(t, ok)
	assert.Equal(t, "second", task.Name)
}

func TestAttacked_OptionalAndWired(t *testing.T) {
	rig := newScriptRig(t, `
function control()
end
`)
	e := rig.spawn("Concord")
	require.NoError(t, rig.engine.Attacked(e, 42)) // no handler is fine

	rig2 := newScriptRig(t, `
function control()
end

function attacked(who)
   ai.settarget(who)
   ai.hostile()
end
`)
	e2 := rig2.spawn("Concord")
	require.NoError(t, rig2.engine.Attacked(e2, 42))
	assert.Equal(t, uint32(42), e2.Target)
	assert.True(t, e2.Hostile)
}

func TestCreate_RunsSetup(t *testing.T) {
	rig := newScriptRig(t, `
function create()
   ai.credits(500)
end
`)
	e := rig.spawn("Concord")
	require.NoError(t, rig.engine.Create(e))
	assert.Equal(t, int64(500), e.Credits)
}

func TestManager_DefaultFallback(t *testing.T) {
	root := t.TempDir()
	for name, body := range map[string]string{
		"default":    "function control()\nend\n",
		"aggressive": "function control()\nend\n",
	} {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(body), 0644))
	}
	m, err := NewManager(root, Deps{
		Registry: world.NewRegistry(),
		Factions: testFactions(t),
		Sim:      config.Defaults().Simulation,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(m.Close)

	assert.Equal(t, 2, m.Count())
	assert.Equal(t, "aggressive", m.Engine("aggressive").profile)
	assert.Equal(t, "default", m.Engine("no-such-profile").profile)
}

func TestManager_MissingRootIsEmpty(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "nope"), Deps{}, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, m.Count())
	assert.Nil(t, m.Engine("anything"))
}

func TestScriptError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &ScriptError{Profile: "p", Fn: "f", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "p/f")
}
