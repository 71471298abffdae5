package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/driftfire/sim/internal/arena"
	"github.com/driftfire/sim/internal/config"
	"github.com/driftfire/sim/internal/core/event"
	coresys "github.com/driftfire/sim/internal/core/system"
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/faction"
	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/scripting"
	"github.com/driftfire/sim/internal/system"
	"github.com/driftfire/sim/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(arenaName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Driftfire  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       spacecraft combat simulation        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1marena:\033[0m %s\n\n", arenaName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main simulation logic ──────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/driftfire.toml"
	if p := os.Getenv("DRIFTFIRE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch cfg.Profiling.Mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	printBanner(cfg.Arena.Name)

	// 3. Load static data
	printSection("data")

	ships, err := data.LoadShipTable(cfg.Data.Ships)
	if err != nil {
		return fmt.Errorf("load ships: %w", err)
	}
	printStat("hull templates", ships.Count())

	outfits, err := data.LoadOutfitTable(cfg.Data.Outfits)
	if err != nil {
		return fmt.Errorf("load outfits: %w", err)
	}
	printStat("outfits", outfits.Count())

	commodities, err := data.LoadCommodityTable(cfg.Data.Commodities)
	if err != nil {
		return fmt.Errorf("load commodities: %w", err)
	}
	printStat("commodities", commodities.Count())

	factionDefs, err := data.LoadFactionTable(cfg.Data.Factions)
	if err != nil {
		return fmt.Errorf("load factions: %w", err)
	}
	printStat("factions", factionDefs.Count())

	spawns, err := data.LoadSpawnList(cfg.Data.Spawns)
	if err != nil {
		return fmt.Errorf("load spawns: %w", err)
	}

	// 4. World services
	registry := world.NewRegistry()
	factions := faction.NewService(factionDefs, log)

	scripts, err := scripting.NewManager(cfg.Scripts.Dir, scripting.Deps{
		Registry: registry,
		Factions: factions,
		Sim:      cfg.Simulation,
	}, log)
	if err != nil {
		return fmt.Errorf("load behavior scripts: %w", err)
	}
	defer scripts.Close()
	printStat("behavior profiles", scripts.Count())
	printOK("behavior scripts loaded")

	// 5. Systems
	bus := event.NewBus()
	ar := arena.New(registry, ships, log)
	combat := system.NewCombatSystem(registry, factions, cfg.Simulation, cfg.Rates, bus, log)
	ar.BindCombat(combat)
	weapons := system.NewWeaponSystem(registry, ar, log)
	dock := system.NewDockService(outfits, cfg.Simulation, bus, log)
	board := system.NewBoardService(cfg.Simulation, bus, log)
	behavior := system.NewBehaviorSystem(registry, scripts, weapons, dock, board, cfg.Simulation, bus, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewDispatchSystem(bus))
	runner.Register(behavior)
	runner.Register(system.NewUpdateSystem(registry, cfg.Simulation, ar, log))
	runner.Register(ar)
	runner.Register(weapons)
	runner.Register(combat)
	runner.Register(system.NewCleanupSystem(registry, log))

	registerHookDispatch(bus, registry, log)

	// 6. Populate the arena
	count := spawnShips(registry, behavior, ships, outfits, factions, spawns, log)
	printStat("ships spawned", count)
	fmt.Println()

	// 7. Run the loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Arena.TickRate)
	defer ticker.Stop()

	printSection("arena ready")
	printReady(fmt.Sprintf("simulation loop started (tick: %s)", cfg.Arena.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Arena.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			log.Info("arena stopped",
				zap.Int("ships", registry.Count()),
				zap.Float64("rating", factions.Rating()))
			return nil
		}
	}
}

// spawnShips creates entities from the boot spawn list. The player entry,
// when present, claims the reserved player id.
func spawnShips(reg *world.Registry, behavior *system.BehaviorSystem, ships *data.ShipTable, outfits *data.OutfitTable, factions *faction.Service, spawns []data.SpawnEntry, log *zap.Logger) int {
	// Player first: the reserved player id is the smallest id the registry
	// ever hands out, so the player must claim it before anyone else spawns.
	sort.SliceStable(spawns, func(i, j int) bool {
		return spawns[i].Player && !spawns[j].Player
	})
	total := 0
	for _, spawn := range spawns {
		tmpl := ships.Get(spawn.Ship)
		if tmpl == nil {
			log.Warn("spawn: unknown hull template", zap.String("ship", spawn.Ship))
			continue
		}
		profile := spawn.Profile
		if profile == "" && !spawn.Player {
			profile = factions.Profile(spawn.Faction)
		}
		for i := 0; i < spawn.Count; i++ {
			pos := phys.Vec2{X: spawn.X, Y: spawn.Y}
			if spawn.Scatter > 0 {
				pos = pos.Add(phys.FromPolar(rand.Float64()*spawn.Scatter, rand.Float64()*2*math.Pi))
			}
			name := spawn.Name
			if name == "" {
				name = tmpl.Name
			}
			e := world.NewEntity(reg.NextID(), name, tmpl, spawn.Faction, profile,
				rand.Float64()*2*math.Pi, pos, phys.Vec2{})
			for _, oname := range spawn.Outfits {
				o := outfits.Get(oname)
				if o == nil {
					log.Warn("spawn: unknown outfit",
						zap.String("ship", name), zap.String("outfit", oname))
					continue
				}
				equipOutfit(e, o, outfits, log)
			}
			if warnings := e.CheckSanity(); len(warnings) > 0 {
				for _, w := range warnings {
					log.Warn("spawn: loadout check", zap.String("ship", name), zap.String("warn", w))
				}
			}
			reg.Add(e)
			behavior.Create(e)
			total++
		}
	}
	return total
}

// equipOutfit adds one outfit to the right tier, loading full ammo into
// launchers and bays.
func equipOutfit(e *world.Entity, o *data.Outfit, outfits *data.OutfitTable, log *zap.Logger) {
	tier := world.TierMedium
	switch {
	case o.Kind.IsWeapon():
		tier = world.TierHigh
	case o.Kind == data.OutfitModification:
		tier = world.TierLow
	}
	ref, err := e.AddOutfit(o, tier)
	if err != nil {
		log.Warn("spawn: equip failed",
			zap.String("ship", e.Name),
			zap.String("outfit", o.Name),
			zap.Error(err))
		return
	}
	if o.AmmoName != "" && o.AmmoCap > 0 {
		if ammo := outfits.Get(o.AmmoName); ammo != nil {
			e.AddAmmo(ref, ammo, o.AmmoCap)
		}
	}
}

// registerHookDispatch logs lifecycle hook firings. An embedding layer
// replaces this with real callback delivery.
func registerHookDispatch(bus *event.Bus, reg *world.Registry, log *zap.Logger) {
	fire := func(id uint32, trigger world.HookTrigger) {
		e, ok := reg.Lookup(id)
		if !ok {
			return
		}
		for _, hookID := range e.HooksFor(trigger) {
			log.Info("hook fired",
				zap.String("trigger", string(trigger)),
				zap.Uint32("hook", hookID),
				zap.Uint32("entity", id))
		}
	}
	event.Subscribe(bus, func(ev event.Destroyed) { fire(ev.EntityID, world.HookDeath) })
	event.Subscribe(bus, func(ev event.Disabled) { fire(ev.EntityID, world.HookDisable) })
	event.Subscribe(bus, func(ev event.Jumped) { fire(ev.EntityID, world.HookJump) })
	event.Subscribe(bus, func(ev event.Boarded) { fire(ev.EntityID, world.HookBoard) })
	event.Subscribe(bus, func(ev event.Hailed) { fire(ev.EntityID, world.HookHail) })
	event.Subscribe(bus, func(ev event.Attacked) { fire(ev.EntityID, world.HookAttacked) })
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
