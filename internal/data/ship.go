package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Ship holds the static hull template a spacecraft is built from. All
// runtime stats start from these values and are re-derived whenever the
// equipped outfits change.
type Ship struct {
	Name  string `yaml:"name"`
	Class string `yaml:"class"` // fighter, corvette, freighter, cruiser...

	Mass float64 `yaml:"mass"` // hull mass, excluding outfits and cargo

	Thrust float64 `yaml:"thrust"`
	Turn   float64 `yaml:"turn"` // base turn rate at hull mass, rad/s
	Speed  float64 `yaml:"speed"`

	Armour      float64 `yaml:"armour"`
	ArmourRegen float64 `yaml:"armour_regen"`
	Shield      float64 `yaml:"shield"`
	ShieldRegen float64 `yaml:"shield_regen"`
	Energy      float64 `yaml:"energy"`
	EnergyRegen float64 `yaml:"energy_regen"`

	Fuel  float64 `yaml:"fuel"`
	CPU   float64 `yaml:"cpu"`
	Cargo float64 `yaml:"cargo"` // cargo capacity in tonnes

	SlotsLow    int `yaml:"slots_low"`    // structural modifications
	SlotsMedium int `yaml:"slots_medium"` // utility outfits
	SlotsHigh   int `yaml:"slots_high"`   // weapons
}

type shipListFile struct {
	Ships []Ship `yaml:"ships"`
}

// ShipTable holds all ship templates indexed by name.
type ShipTable struct {
	ships map[string]*Ship
}

// LoadShipTable loads ship templates from a YAML file.
func LoadShipTable(path string) (*ShipTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ship_list: %w", err)
	}
	var f shipListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse ship_list: %w", err)
	}
	t := &ShipTable{ships: make(map[string]*Ship, len(f.Ships))}
	for i := range f.Ships {
		s := &f.Ships[i]
		t.ships[s.Name] = s
	}
	return t, nil
}

// Get returns a ship template by name, or nil if not found.
func (t *ShipTable) Get(name string) *Ship {
	return t.ships[name]
}

// Count returns the number of loaded templates.
func (t *ShipTable) Count() int {
	return len(t.ships)
}
