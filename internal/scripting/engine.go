package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/config"
	"github.com/driftfire/sim/internal/faction"
	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/world"
)

// defaultControlRate is the control-task interval when a profile does not
// set the control_rate global.
const defaultControlRate = 2.0

// ScriptError wraps a Lua failure. Callers log it and zero the entity's
// intents for the tick; script failures are never fatal to the loop.
type ScriptError struct {
	Profile string
	Fn      string
	Err     error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s/%s: %v", e.Profile, e.Fn, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// Deps are the world services behavior bindings read through.
type Deps struct {
	Registry *world.Registry
	Factions *faction.Service
	Sim      config.SimulationConfig
}

// Invocation is the mutable context of one script entry. The engine holds
// at most one; bindings only ever touch the entity through it, which makes
// re-entry structurally impossible.
type Invocation struct {
	entity *world.Entity
	dt     float64
}

// Engine wraps one gopher-lua VM holding one behavior profile. Single
// goroutine access only (simulation loop).
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	profile string
	deps    Deps

	active      *Invocation
	controlRate float64
}

// NewEngine creates a profile engine and loads every .lua file in dir.
func NewEngine(profile, dir string, deps Deps, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	e := &Engine{
		vm:          vm,
		log:         log,
		profile:     profile,
		deps:        deps,
		controlRate: defaultControlRate,
	}
	e.registerBindings()

	if err := e.loadDir(dir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load profile %s: %w", profile, err)
	}
	if v := vm.GetGlobal("control_rate"); v != lua.LNil {
		if rate := float64(lua.LVAsNumber(v)); rate > 0 {
			e.controlRate = rate
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // empty profile runs on defaults
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded behavior script", zap.String("file", path))
	}
	return nil
}

// Think runs one behavior step for an entity: zero the intents, run the
// control task when it lapsed (or nothing is queued), then run the current
// task. Intents are clamped before returning.
func (e *Engine) Think(ent *world.Entity, dt float64) error {
	if e.active != nil {
		return &ScriptError{Profile: e.profile, Fn: "think",
			Err: fmt.Errorf("invocation already in flight for entity %d", e.active.entity.ID)}
	}
	e.active = &Invocation{entity: ent, dt: dt}
	defer func() { e.active = nil }()

	ent.ZeroIntents()

	if ent.TControl < 0 || ent.Tasks.Len() == 0 {
		if err := e.call("control"); err != nil {
			ent.ZeroIntents()
			return err
		}
		ent.TControl = e.controlRate
	}

	if task, ok := ent.Tasks.Current(); ok {
		var args []lua.LValue
		if task.HasData {
			args = append(args, lua.LNumber(task.Data))
		}
		if err := e.call(task.Name, args...); err != nil {
			ent.ZeroIntents()
			return err
		}
	}

	ent.AccelIntent = phys.Clamp(0, 1, ent.AccelIntent)
	ent.TurnIntent = phys.Clamp(-1, 1, ent.TurnIntent)
	return nil
}

// Attacked notifies the profile that an entity took a hit. Profiles
// without an attacked function ignore it.
func (e *Engine) Attacked(ent *world.Entity, attackerID uint32) error {
	if e.active != nil {
		return &ScriptError{Profile: e.profile, Fn: "attacked",
			Err: fmt.Errorf("invocation already in flight for entity %d", e.active.entity.ID)}
	}
	if e.vm.GetGlobal("attacked") == lua.LNil {
		return nil
	}
	e.active = &Invocation{entity: ent}
	defer func() { e.active = nil }()
	return e.call("attacked", lua.LNumber(attackerID))
}

// Create runs the profile's spawn-time setup for a new entity, if any.
func (e *Engine) Create(ent *world.Entity) error {
	if e.active != nil {
		return &ScriptError{Profile: e.profile, Fn: "create",
			Err: fmt.Errorf("invocation already in flight for entity %d", e.active.entity.ID)}
	}
	if e.vm.GetGlobal("create") == lua.LNil {
		return nil
	}
	e.active = &Invocation{entity: ent}
	defer func() { e.active = nil }()
	return e.call("create")
}

// call invokes a global Lua function under protection.
func (e *Engine) call(name string, args ...lua.LValue) error {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return &ScriptError{Profile: e.profile, Fn: name, Err: fmt.Errorf("function not found")}
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return &ScriptError{Profile: e.profile, Fn: name, Err: err}
	}
	return nil
}

// ControlRate returns the profile's control-task interval in seconds.
func (e *Engine) ControlRate() float64 { return e.controlRate }

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// Manager holds one engine per behavior profile, keyed by the profile
// directory name under the scripts root.
type Manager struct {
	engines map[string]*Engine
	log     *zap.Logger
}

// NewManager loads every profile directory under root. A "default"
// profile, when present, backs factions without one of their own.
func NewManager(root string, deps Deps, log *zap.Logger) (*Manager, error) {
	m := &Manager{engines: make(map[string]*Engine), log: log}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read scripts root: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		eng, err := NewEngine(entry.Name(), filepath.Join(root, entry.Name()), deps, log)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.engines[entry.Name()] = eng
	}
	return m, nil
}

// Engine returns the engine for a profile, falling back to "default".
// Returns nil when neither exists.
func (m *Manager) Engine(profile string) *Engine {
	if e, ok := m.engines[profile]; ok {
		return e
	}
	return m.engines["default"]
}

// Count returns the number of loaded profiles.
func (m *Manager) Count() int { return len(m.engines) }

// Close shuts down every profile VM.
func (m *Manager) Close() {
	for _, e := range m.engines {
		e.Close()
	}
}
