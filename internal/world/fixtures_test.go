package world

import (
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/phys"
)

// Shared hull and outfit fixtures for the world package tests.

func testShip() *data.Ship {
	return &data.Ship{
		Name:        "Testbed",
		Class:       "corvette",
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

func testEntity(id uint32) *Entity {
	return NewEntity(id, "testbed", testShip(), "Concord", "default", 0, phys.Vec2{}, phys.Vec2{})
}

func boltOutfit() *data.Outfit {
	return &data.Outfit{
		Name:       "Test Cannon",
		Kind:       data.OutfitBolt,
		Mass:       5,
		CPU:        10,
		Energy:     6,
		Delay:      0.5,
		Damage:     15,
		DamageType: data.DamageEnergy,
		Range:      800,
		Speed:      600,
	}
}

func launcherOutfit() (*data.Outfit, *data.Outfit) {
	ammo := &data.Outfit{
		Name:       "Test Rocket",
		Kind:       data.OutfitAmmo,
		Mass:       2,
		Damage:     50,
		DamageType: data.DamageKinetic,
		Speed:      400,
		Range:      2500,
	}
	launcher := &data.Outfit{
		Name:     "Test Rack",
		Kind:     data.OutfitLauncher,
		Mass:     8,
		CPU:      8,
		Delay:    1.5,
		AmmoName: ammo.Name,
		AmmoCap:  10,
	}
	return launcher, ammo
}

func shieldMod() *data.Outfit {
	return &data.Outfit{
		Name: "Test Shield Booster",
		Kind: data.OutfitModification,
		Mass: 6,
		CPU:  15,
		Mods: data.StatMods{ShieldRel: 0.5, ShieldRegen: 5},
	}
}

func jammerOutfit(chance float64) *data.Outfit {
	return &data.Outfit{
		Name:      "Test Jammer",
		Kind:      data.OutfitJammer,
		Mass:      4,
		CPU:       12,
		JamRange:  500,
		JamChance: chance,
		JamEnergy: 3,
	}
}

func afterburnerOutfit() *data.Outfit {
	return &data.Outfit{
		Name:            "Test Burner",
		Kind:            data.OutfitAfterburner,
		Mass:            6,
		CPU:             8,
		AfterburnSpeed:  1.5,
		AfterburnEnergy: 20,
	}
}

func testCommodity(name string) *data.Commodity {
	return &data.Commodity{Name: name, BasePrice: 100}
}
