package system

import (
	"errors"

	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/config"
	"github.com/driftfire/sim/internal/core/event"
	"github.com/driftfire/sim/internal/world"
)

// boardRange is how close a boarder must be to a hulk to board it.
const boardRange = 60.0

var (
	ErrNotDisabled    = errors.New("ship is not disabled")
	ErrAlreadyBoarded = errors.New("ship has already been boarded")
	ErrBoardApproach  = errors.New("too far or too fast to board")
)

// BoardService handles boarding actions against disabled ships: credits
// and cargo transfer to the boarder, and the hulk is marked so it can only
// be plundered once.
type BoardService struct {
	sim config.SimulationConfig
	bus *event.Bus
	log *zap.Logger
}

func NewBoardService(sim config.SimulationConfig, bus *event.Bus, log *zap.Logger) *BoardService {
	return &BoardService{sim: sim, bus: bus, log: log}
}

// Board plunders a disabled ship. Returns the credits taken; cargo moves
// across up to the boarder's free hold.
func (s *BoardService) Board(boarder, target *world.Entity) (int64, error) {
	if !target.Disabled || target.Dead {
		return 0, ErrNotDisabled
	}
	if target.Boarded {
		return 0, ErrAlreadyBoarded
	}
	if boarder.Solid.Pos.Dist(target.Solid.Pos) > boardRange {
		return 0, ErrBoardApproach
	}
	if boarder.Solid.Vel.Sub(target.Solid.Vel).Mod() > s.sim.MinVelErr {
		return 0, ErrBoardApproach
	}

	credits := target.Credits
	boarder.Credits += credits
	target.Credits = 0

	moved := 0
	hold := make([]world.CargoItem, len(target.Commodities))
	copy(hold, target.Commodities)
	for _, item := range hold {
		if item.MissionID != 0 {
			continue // mission cargo stays with the hulk
		}
		got := boarder.AddCargo(item.Commodity, item.Qty)
		if got > 0 {
			target.RemoveCargo(item.Commodity, got)
			moved += got
		}
	}

	target.Boarded = true
	event.Emit(s.bus, event.Boarded{EntityID: target.ID, BoarderID: boarder.ID})
	s.log.Info("ship boarded",
		zap.Uint32("target", target.ID),
		zap.Uint32("boarder", boarder.ID),
		zap.Int64("credits", credits),
		zap.Int("cargo", moved))
	return credits, nil
}
