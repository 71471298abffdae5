package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OutfitKind discriminates how an equipped outfit behaves.
type OutfitKind string

const (
	OutfitModification OutfitKind = "modification"
	OutfitBolt         OutfitKind = "bolt"
	OutfitBeam         OutfitKind = "beam"
	OutfitLauncher     OutfitKind = "launcher"
	OutfitAmmo         OutfitKind = "ammo"
	OutfitFighterBay   OutfitKind = "fighter_bay"
	OutfitFighter      OutfitKind = "fighter"
	OutfitAfterburner  OutfitKind = "afterburner"
	OutfitJammer       OutfitKind = "jammer"
)

// DamageKind selects the shield/armour split and knockback behavior of a hit.
type DamageKind string

const (
	DamageEnergy    DamageKind = "energy"
	DamageKinetic   DamageKind = "kinetic"
	DamageEMP       DamageKind = "emp"
	DamageRadiation DamageKind = "radiation"
)

// IsWeapon reports whether the kind occupies a weapon slot and can fire.
func (k OutfitKind) IsWeapon() bool {
	switch k {
	case OutfitBolt, OutfitBeam, OutfitLauncher, OutfitFighterBay:
		return true
	}
	return false
}

// StatMods are stat deltas contributed by an equipped outfit. Absolute
// values add directly; Rel values add the given fraction of the hull base.
type StatMods struct {
	Thrust      float64 `yaml:"thrust"`
	Turn        float64 `yaml:"turn"`
	Speed       float64 `yaml:"speed"`
	Armour      float64 `yaml:"armour"`
	ArmourRegen float64 `yaml:"armour_regen"`
	Shield      float64 `yaml:"shield"`
	ShieldRegen float64 `yaml:"shield_regen"`
	Energy      float64 `yaml:"energy"`
	EnergyRegen float64 `yaml:"energy_regen"`
	Fuel        float64 `yaml:"fuel"`
	Cargo       float64 `yaml:"cargo"`

	ThrustRel float64 `yaml:"thrust_rel"`
	TurnRel   float64 `yaml:"turn_rel"`
	SpeedRel  float64 `yaml:"speed_rel"`
	ArmourRel float64 `yaml:"armour_rel"`
	ShieldRel float64 `yaml:"shield_rel"`
	EnergyRel float64 `yaml:"energy_rel"`
	MassRel   float64 `yaml:"mass_rel"` // fraction of hull mass added (or shed, if negative)
}

// Outfit is a static equipment definition. The runtime never mutates these;
// per-slot state (cooldown, ammo count) lives on the entity.
type Outfit struct {
	Name string     `yaml:"name"`
	Kind OutfitKind `yaml:"kind"`

	Mass   float64 `yaml:"mass"`
	CPU    float64 `yaml:"cpu"`
	Energy float64 `yaml:"energy"` // per shot (bolt/launcher) or per second (beam/afterburner)

	// Weapon parameters.
	Delay      float64    `yaml:"delay"` // seconds between shots
	Damage     float64    `yaml:"damage"`
	DamageType DamageKind `yaml:"damage_type"`
	Knockback  float64    `yaml:"knockback"`
	Range      float64    `yaml:"range"`
	Speed      float64    `yaml:"speed"`    // projectile speed (0 for beams)
	Duration   float64    `yaml:"duration"` // beam on-time, seconds
	Turret     bool       `yaml:"turret"`

	// Launcher / fighter bay.
	AmmoName string `yaml:"ammo"`     // ammo or fighter outfit this consumes
	AmmoCap  int    `yaml:"ammo_cap"` // magazine size

	// Afterburner.
	AfterburnSpeed  float64 `yaml:"afterburn_speed"`  // speed-limit multiplier while lit
	AfterburnEnergy float64 `yaml:"afterburn_energy"` // energy drain per second

	// Jammer.
	JamRange  float64 `yaml:"jam_range"`
	JamChance float64 `yaml:"jam_chance"`
	JamEnergy float64 `yaml:"jam_energy"` // constant energy-regen drain

	Mods StatMods `yaml:"mods"`
}

type outfitListFile struct {
	Outfits []Outfit `yaml:"outfits"`
}

// OutfitTable holds all outfit definitions indexed by name.
type OutfitTable struct {
	outfits map[string]*Outfit
}

// LoadOutfitTable loads outfit definitions from a YAML file and resolves
// ammo references.
func LoadOutfitTable(path string) (*OutfitTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read outfit_list: %w", err)
	}
	var f outfitListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse outfit_list: %w", err)
	}
	t := &OutfitTable{outfits: make(map[string]*Outfit, len(f.Outfits))}
	for i := range f.Outfits {
		o := &f.Outfits[i]
		t.outfits[o.Name] = o
	}
	for _, o := range t.outfits {
		if o.AmmoName != "" && t.outfits[o.AmmoName] == nil {
			return nil, fmt.Errorf("outfit %q: unknown ammo %q", o.Name, o.AmmoName)
		}
	}
	return t, nil
}

// Get returns an outfit definition by name, or nil if not found.
func (t *OutfitTable) Get(name string) *Outfit {
	return t.outfits[name]
}

// Count returns the number of loaded definitions.
func (t *OutfitTable) Count() int {
	return len(t.outfits)
}
