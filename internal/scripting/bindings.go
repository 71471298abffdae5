package scripting

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/world"
)

// farAway is the distance reported for entities that do not exist.
const farAway = 1e9

// cur returns the invocation entity, raising a Lua error outside an
// invocation. The raise unwinds into the protected call and surfaces as a
// ScriptError.
func (e *Engine) cur(L *lua.LState) *world.Entity {
	if e.active == nil {
		L.RaiseError("ai binding called outside an invocation")
		return nil
	}
	return e.active.entity
}

// enemies reports mutual hostility, honoring per-entity hostile flags
// toward the player on top of the faction matrix.
func (e *Engine) enemies(a, b *world.Entity) bool {
	if a.ID == b.ID {
		return false
	}
	if (b.Player && a.Hostile) || (a.Player && b.Hostile) {
		return true
	}
	if (b.Player && a.Friendly) || (a.Player && b.Friendly) {
		return false
	}
	return e.deps.Factions.AreEnemies(a.Faction, b.Faction)
}

// registerBindings installs the ai.* binding table into the VM. Every
// binding operates on the active invocation only.
func (e *Engine) registerBindings() {
	vm := e.vm
	t := vm.NewTable()
	reg := func(name string, fn lua.LGFunction) {
		t.RawSetString(name, vm.NewFunction(fn))
	}

	// ── Accessors ──────────────────────────────────────────────

	reg("armour", func(L *lua.LState) int {
		L.Push(lua.LNumber(e.cur(L).Armour))
		return 1
	})
	reg("shield", func(L *lua.LState) int {
		L.Push(lua.LNumber(e.cur(L).Shield))
		return 1
	})
	reg("energy", func(L *lua.LState) int {
		L.Push(lua.LNumber(e.cur(L).Energy))
		return 1
	})
	reg("fuel", func(L *lua.LState) int {
		L.Push(lua.LNumber(e.cur(L).Fuel))
		return 1
	})
	reg("parmour", func(L *lua.LState) int {
		ent := e.cur(L)
		pct := 0.0
		if ent.ArmourMax > 0 {
			pct = 100 * ent.Armour / ent.ArmourMax
		}
		L.Push(lua.LNumber(pct))
		return 1
	})
	reg("pshield", func(L *lua.LState) int {
		ent := e.cur(L)
		pct := 0.0
		if ent.ShieldMax > 0 {
			pct = 100 * ent.Shield / ent.ShieldMax
		}
		L.Push(lua.LNumber(pct))
		return 1
	})
	reg("taskname", func(L *lua.LState) int {
		ent := e.cur(L)
		if task, ok := ent.Tasks.Current(); ok {
			L.Push(lua.LString(task.Name))
		} else {
			L.Push(lua.LString("none"))
		}
		return 1
	})
	reg("target", func(L *lua.LState) int {
		L.Push(lua.LNumber(e.cur(L).Target))
		return 1
	})
	reg("getpos", func(L *lua.LState) int {
		ent := e.cur(L)
		if L.GetTop() >= 1 {
			id := uint32(L.CheckNumber(1))
			other, ok := e.deps.Registry.Lookup(id)
			if !ok {
				return 0
			}
			ent = other
		}
		L.Push(lua.LNumber(ent.Solid.Pos.X))
		L.Push(lua.LNumber(ent.Solid.Pos.Y))
		return 2
	})
	reg("getdist", func(L *lua.LState) int {
		ent := e.cur(L)
		other, ok := e.deps.Registry.Lookup(uint32(L.CheckNumber(1)))
		if !ok {
			L.Push(lua.LNumber(farAway))
			return 1
		}
		L.Push(lua.LNumber(ent.Solid.Pos.Dist(other.Solid.Pos)))
		return 1
	})
	reg("getenemy", func(L *lua.LState) int {
		ent := e.cur(L)
		best := uint32(0)
		bestDist := math.MaxFloat64
		e.deps.Registry.Each(func(other *world.Entity) {
			if !other.Alive() || !e.enemies(ent, other) {
				return
			}
			if d := ent.Solid.Pos.Dist2(other.Solid.Pos); d < bestDist {
				bestDist = d
				best = other.ID
			}
		})
		L.Push(lua.LNumber(best))
		return 1
	})
	reg("getnearest", func(L *lua.LState) int {
		ent := e.cur(L)
		best := uint32(0)
		bestDist := math.MaxFloat64
		e.deps.Registry.Each(func(other *world.Entity) {
			if other.ID == ent.ID || !other.Alive() {
				return
			}
			if d := ent.Solid.Pos.Dist2(other.Solid.Pos); d < bestDist {
				bestDist = d
				best = other.ID
			}
		})
		L.Push(lua.LNumber(best))
		return 1
	})
	reg("shipmass", func(L *lua.LState) int {
		ent := e.cur(L)
		if L.GetTop() >= 1 {
			other, ok := e.deps.Registry.Lookup(uint32(L.CheckNumber(1)))
			if !ok {
				L.Push(lua.LNumber(0))
				return 1
			}
			ent = other
		}
		L.Push(lua.LNumber(ent.Solid.Mass))
		return 1
	})
	reg("cargofree", func(L *lua.LState) int {
		L.Push(lua.LNumber(e.cur(L).CargoFree()))
		return 1
	})
	reg("isstopped", func(L *lua.LState) int {
		L.Push(lua.LBool(e.cur(L).IsStopped(e.deps.Sim.MinVelErr)))
		return 1
	})
	reg("ismaxvel", func(L *lua.LState) int {
		ent := e.cur(L)
		L.Push(lua.LBool(ent.Solid.Vel.Mod() > ent.Speed-e.deps.Sim.MinVelErr))
		return 1
	})
	reg("exists", func(L *lua.LState) int {
		other, ok := e.deps.Registry.Lookup(uint32(L.CheckNumber(1)))
		L.Push(lua.LBool(ok && other.Alive()))
		return 1
	})
	reg("isenemy", func(L *lua.LState) int {
		ent := e.cur(L)
		other, ok := e.deps.Registry.Lookup(uint32(L.CheckNumber(1)))
		L.Push(lua.LBool(ok && e.enemies(ent, other)))
		return 1
	})
	reg("isally", func(L *lua.LState) int {
		ent := e.cur(L)
		other, ok := e.deps.Registry.Lookup(uint32(L.CheckNumber(1)))
		L.Push(lua.LBool(ok && e.deps.Factions.AreAllies(ent.Faction, other.Faction)))
		return 1
	})
	reg("incombat", func(L *lua.LState) int {
		ent := e.cur(L)
		if L.GetTop() >= 1 {
			other, ok := e.deps.Registry.Lookup(uint32(L.CheckNumber(1)))
			if !ok {
				L.Push(lua.LFalse)
				return 1
			}
			ent = other
		}
		L.Push(lua.LBool(ent.InCombat))
		return 1
	})
	reg("isdisabled", func(L *lua.LState) int {
		other, ok := e.deps.Registry.Lookup(uint32(L.CheckNumber(1)))
		L.Push(lua.LBool(ok && other.Disabled))
		return 1
	})
	reg("haslockon", func(L *lua.LState) int {
		L.Push(lua.LBool(e.cur(L).Lockons > 0))
		return 1
	})
	reg("getstanding", func(L *lua.LState) int {
		ent := e.cur(L)
		other, ok := e.deps.Registry.Lookup(uint32(L.CheckNumber(1)))
		if !ok {
			L.Push(lua.LNumber(0))
			return 1
		}
		if other.Player {
			L.Push(lua.LNumber(e.deps.Factions.PlayerStanding(ent.Faction)))
		} else {
			L.Push(lua.LNumber(e.deps.Factions.Standing(ent.Faction, other.Faction)))
		}
		return 1
	})
	reg("timeup", func(L *lua.LState) int {
		ent := e.cur(L)
		n := int(L.CheckNumber(1))
		if n < 0 || n >= world.MaxScriptTimers {
			L.Push(lua.LTrue)
			return 1
		}
		L.Push(lua.LBool(ent.Timers[n] < 0))
		return 1
	})

	// ── Mutators ───────────────────────────────────────────────

	reg("accel", func(L *lua.LState) int {
		ent := e.cur(L)
		v := 1.0
		if L.GetTop() >= 1 {
			v = float64(L.CheckNumber(1))
		}
		ent.AccelIntent = v
		return 0
	})
	reg("turn", func(L *lua.LState) int {
		e.cur(L).TurnIntent = float64(L.CheckNumber(1))
		return 0
	})
	reg("face", func(L *lua.LState) int {
		diff := faceAngle(e.cur(L), float64(L.CheckNumber(1)))
		L.Push(lua.LNumber(diff))
		return 1
	})
	reg("face_target", func(L *lua.LState) int {
		ent := e.cur(L)
		other, ok := e.deps.Registry.Lookup(uint32(L.CheckNumber(1)))
		if !ok {
			L.Push(lua.LNumber(farAway))
			return 1
		}
		diff := faceAngle(ent, other.Solid.Pos.Sub(ent.Solid.Pos).Angle())
		L.Push(lua.LNumber(diff))
		return 1
	})
	reg("brake", func(L *lua.LState) int {
		ent := e.cur(L)
		stopped := ent.IsStopped(e.deps.Sim.MinVelErr)
		if !stopped {
			diff := faceAngle(ent, ent.Solid.Vel.Angle()+math.Pi)
			if math.Abs(diff) < e.deps.Sim.MaxDirErr {
				ent.AccelIntent = 1
			}
		}
		L.Push(lua.LBool(stopped))
		return 1
	})
	reg("settarget", func(L *lua.LState) int {
		e.cur(L).Target = uint32(L.CheckNumber(1))
		return 0
	})
	reg("secondary", func(L *lua.LState) int {
		e.cur(L).FireSecondary = true
		return 0
	})
	reg("shoot", func(L *lua.LState) int {
		ent := e.cur(L)
		ent.FirePrimary = true
		if L.GetTop() >= 1 {
			ent.FireGroup = int(L.CheckNumber(1))
		}
		return 0
	})
	reg("hostile", func(L *lua.LState) int {
		e.cur(L).Hostile = true
		return 0
	})
	reg("combat", func(L *lua.LState) int {
		ent := e.cur(L)
		v := true
		if L.GetTop() >= 1 {
			v = lua.LVAsBool(L.Get(1))
		}
		ent.InCombat = v
		return 0
	})
	reg("settimer", func(L *lua.LState) int {
		ent := e.cur(L)
		n := int(L.CheckNumber(1))
		if n < 0 || n >= world.MaxScriptTimers {
			return 0
		}
		ent.Timers[n] = float64(L.CheckNumber(2))
		return 0
	})
	reg("pushtask", func(L *lua.LState) int {
		ent := e.cur(L)
		pos := int(L.CheckNumber(1)) // 0 = front, 1 = back
		task := world.Task{Name: L.CheckString(2)}
		if L.GetTop() >= 3 {
			task.Data = int64(L.CheckNumber(3))
			task.HasData = true
		}
		if pos == 0 {
			ent.Tasks.PushFront(task)
		} else {
			ent.Tasks.PushBack(task)
		}
		return 0
	})
	reg("poptask", func(L *lua.LState) int {
		e.cur(L).Tasks.Pop()
		return 0
	})
	reg("hyperspace", func(L *lua.LState) int {
		ent := e.cur(L)
		dir := ent.Solid.Dir
		if L.GetTop() >= 1 {
			dir = float64(L.CheckNumber(1))
		}
		err := ent.StartHyperspace(dir, e.deps.Sim.HyperFuel)
		L.Push(lua.LBool(err == nil))
		return 1
	})
	reg("dock", func(L *lua.LState) int {
		e.cur(L).DockIntent = true
		return 0
	})
	reg("board", func(L *lua.LState) int {
		e.cur(L).BoardIntent = true
		return 0
	})
	reg("credits", func(L *lua.LState) int {
		e.cur(L).Credits += int64(L.CheckNumber(1))
		return 0
	})

	vm.SetGlobal("ai", t)
}

// faceAngle steers toward an absolute heading with a proportional turn
// intent, returning the remaining signed error.
func faceAngle(ent *world.Entity, target float64) float64 {
	diff := phys.AngleDiff(ent.Solid.Dir, target)
	ent.TurnIntent = phys.Clamp(-1, 1, 10*diff)
	return diff
}
