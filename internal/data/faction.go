package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FactionDef is a static faction definition. Standings are directional
// seeds: the runtime matrix mirrors them unless the other side declares
// its own value.
type FactionDef struct {
	Name      string             `yaml:"name"`
	AIProfile string             `yaml:"ai_profile"` // behavior-script profile directory
	Standings map[string]float64 `yaml:"standings"`  // other faction -> initial standing
	Player    float64            `yaml:"player"`     // initial player standing
}

type factionListFile struct {
	Factions []FactionDef `yaml:"factions"`
}

// FactionTable holds all faction definitions indexed by name.
type FactionTable struct {
	factions map[string]*FactionDef
}

// LoadFactionTable loads faction definitions from a YAML file.
func LoadFactionTable(path string) (*FactionTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faction_list: %w", err)
	}
	var f factionListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse faction_list: %w", err)
	}
	t := &FactionTable{factions: make(map[string]*FactionDef, len(f.Factions))}
	for i := range f.Factions {
		fd := &f.Factions[i]
		t.factions[fd.Name] = fd
	}
	for _, fd := range t.factions {
		for other := range fd.Standings {
			if t.factions[other] == nil {
				return nil, fmt.Errorf("faction %q: unknown faction %q in standings", fd.Name, other)
			}
		}
	}
	return t, nil
}

// Get returns a faction definition by name, or nil if not found.
func (t *FactionTable) Get(name string) *FactionDef {
	return t.factions[name]
}

// All iterates every loaded faction definition.
func (t *FactionTable) All() map[string]*FactionDef {
	return t.factions
}

// Count returns the number of loaded factions.
func (t *FactionTable) Count() int {
	return len(t.factions)
}
