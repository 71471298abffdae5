package world

import (
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/phys"
)

// PlayerID is the reserved entity id of the player's ship. It is the
// smallest id the generator ever hands out.
const PlayerID uint32 = 1

// MaxScriptTimers is the number of free-form countdown timers behavior
// scripts may use per entity.
const MaxScriptTimers = 2

// HyperspacePhase tracks progression through a jump. It is a strict state
// machine: Cruising -> Preparing -> Warming -> InTransit -> Arrived, with
// abort legal only from Preparing and Warming.
type HyperspacePhase int

const (
	HyperCruising HyperspacePhase = iota
	HyperPreparing
	HyperWarming
	HyperInTransit
	HyperArrived
)

func (p HyperspacePhase) String() string {
	switch p {
	case HyperCruising:
		return "cruising"
	case HyperPreparing:
		return "preparing"
	case HyperWarming:
		return "warming"
	case HyperInTransit:
		return "in_transit"
	case HyperArrived:
		return "arrived"
	}
	return "unknown"
}

// SlotTier indexes the three outfit slot groups.
type SlotTier int

const (
	TierLow    SlotTier = iota // structural modifications
	TierMedium                 // utility outfits
	TierHigh                   // weapons
)

// SlotRef identifies one equipped slot by tier and index. Index -1 means
// no slot.
type SlotRef struct {
	Tier  SlotTier
	Index int
}

// NoSlot is the empty slot reference.
var NoSlot = SlotRef{Index: -1}

// Valid reports whether the reference points at a slot.
func (r SlotRef) Valid() bool { return r.Index >= 0 }

// Slot is one equipped outfit plus its mutable per-slot state.
type Slot struct {
	Outfit   *data.Outfit
	Timer    float64 // cooldown remaining, seconds
	Ammo     *data.Outfit
	AmmoQty  int
	Deployed int // fighters currently out of this bay
	BeamID   int // spawner handle of the active beam, 0 = off
}

// CargoItem is one cargo ledger entry. MissionID > 0 marks mission cargo,
// which never merges and cannot be removed by normal trade operations.
type CargoItem struct {
	Commodity *data.Commodity
	Qty       int // tonnes
	MissionID uint32
}

// HookTrigger names the lifecycle moment a hook fires on.
type HookTrigger string

const (
	HookDeath    HookTrigger = "death"
	HookDisable  HookTrigger = "disable"
	HookJump     HookTrigger = "jump"
	HookBoard    HookTrigger = "board"
	HookHail     HookTrigger = "hail"
	HookAttacked HookTrigger = "attacked"
)

// Hook is an outer-layer callback registration carried on the entity and
// fired through the event bus.
type Hook struct {
	Trigger HookTrigger
	ID      uint32
}

// Entity is one spacecraft in the arena. Accessed only from the simulation
// loop goroutine, so no locks. Derived stats are rebuilt by CalcStats; never
// write them directly outside the stat calculator.
type Entity struct {
	ID        uint32
	Name      string
	Faction   string
	AIProfile string
	Ship      *data.Ship
	Solid     *phys.Solid

	// Derived stats (hull base + outfit contributions).
	Thrust   float64
	TurnBase float64 // turn rate before mass modulation
	Turn     float64 // effective turn rate at current total mass
	Speed    float64

	Armour      float64
	ArmourMax   float64
	ArmourRegen float64
	Shield      float64
	ShieldMax   float64
	ShieldRegen float64
	Energy      float64
	EnergyMax   float64
	EnergyRegen float64
	EnergyTau   float64 // RC charge time constant, EnergyMax / EnergyRegen

	Fuel    float64
	FuelMax float64
	CPU     float64 // remaining CPU budget
	CPUMax  float64

	WeapRange float64 // mean range over non-secondary weapons
	WeapSpeed float64 // mean projectile speed over non-secondary weapons
	JamRange  float64
	JamChance float64

	MassOutfit float64
	MassCargo  float64
	CargoCap   float64 // derived cargo capacity in tonnes

	Slots       [3][]Slot
	Secondary   SlotRef
	Afterburner SlotRef

	Commodities []CargoItem
	Credits     int64

	// Combat state.
	Target    uint32 // 0 = none
	Hostility float64
	Lockons   int

	// Behavior intents, zeroed before every think and applied after.
	AccelIntent   float64 // [0, 1]
	TurnIntent    float64 // [-1, 1]
	FirePrimary   bool
	FireGroup     int // 0 = all, 1 = turrets, 2 = forward
	FireSecondary bool
	DockIntent    bool // carried fighter wants back into its bay
	BoardIntent   bool // wants to board the current target

	// Capabilities and lifecycle flags, independent of each other.
	Player        bool
	Escort        bool
	Carried       bool // escort launched from a bay, returns ammo on dock
	Hostile       bool
	Friendly      bool
	InCombat      bool
	AfterburnerOn bool
	Boarded       bool
	Disabled      bool
	Dead          bool
	Distressed    bool
	DeathSound    bool // death-sequence sound cue already emitted
	Exploded      bool // final explosion already emitted
	Delete        bool // remove at next sweep

	// Hyperspace.
	HyperPhase HyperspacePhase
	HyperDir   float64 // heading toward the jump point

	// Timers, decremented each update tick.
	PTimer   float64 // current phase timer (death sequence, hyperspace)
	TControl float64 // time until the next control-task run
	Timers   [MaxScriptTimers]float64

	Tasks TaskStack
	Hooks []Hook

	Escorts   []uint32
	Parent    uint32  // carrier id for launched fighters, 0 = none
	ParentBay SlotRef // bay slot this fighter launched from
}

// NewEntity builds a live entity from a hull template. Stats come up at
// template values with full tanks; outfits are added afterwards through
// AddOutfit, which re-derives everything.
func NewEntity(id uint32, name string, ship *data.Ship, faction, profile string, dir float64, pos, vel phys.Vec2) *Entity {
	e := &Entity{
		ID:          id,
		Name:        name,
		Faction:     faction,
		AIProfile:   profile,
		Ship:        ship,
		Solid:       phys.NewSolid(ship.Mass, dir, pos, vel),
		Secondary:   NoSlot,
		Afterburner: NoSlot,
		ParentBay:   NoSlot,
		Player:      id == PlayerID,
	}
	e.Slots[TierLow] = make([]Slot, ship.SlotsLow)
	e.Slots[TierMedium] = make([]Slot, ship.SlotsMedium)
	e.Slots[TierHigh] = make([]Slot, ship.SlotsHigh)
	e.CalcStats()
	e.Armour = e.ArmourMax
	e.Shield = e.ShieldMax
	e.Energy = e.EnergyMax
	e.Fuel = e.FuelMax
	return e
}

// Slot returns the slot a reference points at, or nil.
func (e *Entity) Slot(r SlotRef) *Slot {
	if !r.Valid() || int(r.Tier) > 2 || r.Index >= len(e.Slots[r.Tier]) {
		return nil
	}
	return &e.Slots[r.Tier][r.Index]
}

// SecondarySlot returns the selected secondary weapon slot, or nil.
func (e *Entity) SecondarySlot() *Slot { return e.Slot(e.Secondary) }

// AfterburnerSlot returns the equipped afterburner slot, or nil.
func (e *Entity) AfterburnerSlot() *Slot { return e.Slot(e.Afterburner) }

// EachSlot calls fn for every equipped slot across all tiers.
func (e *Entity) EachSlot(fn func(tier SlotTier, idx int, s *Slot)) {
	for tier := range e.Slots {
		for i := range e.Slots[tier] {
			s := &e.Slots[tier][i]
			if s.Outfit != nil {
				fn(SlotTier(tier), i, s)
			}
		}
	}
}

// ZeroIntents clears the per-think control block.
func (e *Entity) ZeroIntents() {
	e.AccelIntent = 0
	e.TurnIntent = 0
	e.FirePrimary = false
	e.FireGroup = 0
	e.FireSecondary = false
	e.DockIntent = false
	e.BoardIntent = false
}

// AddHook registers an outer-layer callback for a lifecycle trigger.
func (e *Entity) AddHook(trigger HookTrigger, id uint32) {
	e.Hooks = append(e.Hooks, Hook{Trigger: trigger, ID: id})
}

// HooksFor returns the hook ids registered for a trigger.
func (e *Entity) HooksFor(trigger HookTrigger) []uint32 {
	var ids []uint32
	for _, h := range e.Hooks {
		if h.Trigger == trigger {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// AddEscort appends an escort id if not already present.
func (e *Entity) AddEscort(id uint32) {
	for _, x := range e.Escorts {
		if x == id {
			return
		}
	}
	e.Escorts = append(e.Escorts, id)
}

// RemoveEscort drops an escort id from the list.
func (e *Entity) RemoveEscort(id uint32) {
	for i, x := range e.Escorts {
		if x == id {
			e.Escorts = append(e.Escorts[:i], e.Escorts[i+1:]...)
			return
		}
	}
}

// HasDeployed reports whether any fighter bay still has fighters out.
func (e *Entity) HasDeployed() bool {
	for tier := range e.Slots {
		for i := range e.Slots[tier] {
			if e.Slots[tier][i].Deployed > 0 {
				return true
			}
		}
	}
	return false
}

// IsStopped reports whether the ship is effectively at rest.
func (e *Entity) IsStopped(minVel float64) bool {
	return e.Solid.Vel.Mod() < minVel
}

// Alive reports whether the entity still participates in the simulation.
func (e *Entity) Alive() bool {
	return !e.Dead && !e.Delete
}
