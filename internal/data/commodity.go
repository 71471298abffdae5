package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Commodity is a tradeable cargo type. One tonne of any commodity weighs
// the same; price and description only matter to outer layers.
type Commodity struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	BasePrice   int64  `yaml:"base_price"`
}

type commodityListFile struct {
	Commodities []Commodity `yaml:"commodities"`
}

// CommodityTable holds all commodities indexed by name.
type CommodityTable struct {
	commodities map[string]*Commodity
}

// LoadCommodityTable loads commodities from a YAML file.
func LoadCommodityTable(path string) (*CommodityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read commodity_list: %w", err)
	}
	var f commodityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse commodity_list: %w", err)
	}
	t := &CommodityTable{commodities: make(map[string]*Commodity, len(f.Commodities))}
	for i := range f.Commodities {
		c := &f.Commodities[i]
		t.commodities[c.Name] = c
	}
	return t, nil
}

// Get returns a commodity by name, or nil if not found.
func (t *CommodityTable) Get(name string) *Commodity {
	return t.commodities[name]
}

// Count returns the number of loaded commodities.
func (t *CommodityTable) Count() int {
	return len(t.commodities)
}
