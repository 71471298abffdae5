package world

import "errors"

var (
	// ErrJumpInProgress means a jump sequence is already running.
	ErrJumpInProgress = errors.New("jump already in progress")
	// ErrInsufficientFuel means the tank cannot cover a jump.
	ErrInsufficientFuel = errors.New("insufficient fuel")
)

// StartHyperspace begins the jump sequence toward the given heading. The
// fuel cost is only checked here; it is consumed when transit actually
// starts.
func (e *Entity) StartHyperspace(dir, fuelCost float64) error {
	if e.HyperPhase != HyperCruising {
		return ErrJumpInProgress
	}
	if e.Fuel < fuelCost {
		return ErrInsufficientFuel
	}
	e.HyperDir = dir
	e.HyperPhase = HyperPreparing
	return nil
}

// AbortHyperspace cancels a jump that has not entered transit yet. Returns
// false when it is too late to abort.
func (e *Entity) AbortHyperspace() bool {
	switch e.HyperPhase {
	case HyperPreparing, HyperWarming:
		e.HyperPhase = HyperCruising
		e.PTimer = 0
		return true
	}
	return false
}
