package system

import (
	"errors"

	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/config"
	"github.com/driftfire/sim/internal/core/event"
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/world"
)

// dockRange is how close a fighter must be to its carrier to dock.
const dockRange = 100.0

var (
	ErrNotCarried   = errors.New("ship was not launched from a bay")
	ErrWrongCarrier = errors.New("ship did not launch from this carrier")
	ErrDockApproach = errors.New("too far or too fast to dock")
	ErrBayGone      = errors.New("launch bay no longer equipped")
)

// DockService recovers launched fighters into their carrier's bay. Docking
// reverses the deployment: the fighter leaves the arena and the bay regains
// one unit of ammo.
type DockService struct {
	outfits *data.OutfitTable
	sim     config.SimulationConfig
	bus     *event.Bus
	log     *zap.Logger
}

func NewDockService(outfits *data.OutfitTable, sim config.SimulationConfig, bus *event.Bus, log *zap.Logger) *DockService {
	return &DockService{outfits: outfits, sim: sim, bus: bus, log: log}
}

// Dock returns a fighter to its carrier. The fighter must be alongside and
// nearly velocity-matched. On success the fighter is flagged for removal.
func (s *DockService) Dock(fighter, carrier *world.Entity) error {
	if !fighter.Carried || fighter.Parent == 0 {
		return ErrNotCarried
	}
	if fighter.Parent != carrier.ID {
		return ErrWrongCarrier
	}
	if fighter.Solid.Pos.Dist(carrier.Solid.Pos) > dockRange {
		return ErrDockApproach
	}
	if fighter.Solid.Vel.Sub(carrier.Solid.Vel).Mod() > s.sim.MinVelErr {
		return ErrDockApproach
	}

	bay := carrier.Slot(fighter.ParentBay)
	if bay == nil || bay.Outfit == nil || bay.Outfit.Kind != data.OutfitFighterBay {
		return ErrBayGone
	}

	if bay.Deployed > 0 {
		bay.Deployed--
	}
	// The bay may have emptied while the fighter was out.
	if bay.Ammo == nil {
		bay.Ammo = s.outfits.Get(bay.Outfit.AmmoName)
	}
	if bay.Ammo != nil {
		bay.AmmoQty++
		carrier.MassOutfit += bay.Ammo.Mass
		carrier.UpdateMass()
	}

	carrier.RemoveEscort(fighter.ID)
	fighter.Delete = true

	event.Emit(s.bus, event.Docked{EntityID: fighter.ID, CarrierID: carrier.ID})
	s.log.Debug("fighter docked",
		zap.Uint32("fighter", fighter.ID),
		zap.Uint32("carrier", carrier.ID))
	return nil
}
