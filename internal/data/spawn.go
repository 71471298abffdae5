package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnEntry places ships into the arena at boot.
type SpawnEntry struct {
	Ship    string   `yaml:"ship"`
	Name    string   `yaml:"name"`
	Faction string   `yaml:"faction"`
	Profile string   `yaml:"profile"` // behavior profile, empty for the player
	Count   int      `yaml:"count"`
	X       float64  `yaml:"x"`
	Y       float64  `yaml:"y"`
	Scatter float64  `yaml:"scatter"` // random placement radius around (x, y)
	Outfits []string `yaml:"outfits"`
	Player  bool     `yaml:"player"`
}

type spawnListFile struct {
	Spawns []SpawnEntry `yaml:"spawns"`
}

// LoadSpawnList loads the boot spawn list from a YAML file.
func LoadSpawnList(path string) ([]SpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn_list: %w", err)
	}
	var f spawnListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_list: %w", err)
	}
	for i := range f.Spawns {
		if f.Spawns[i].Count <= 0 {
			f.Spawns[i].Count = 1
		}
	}
	return f.Spawns, nil
}
