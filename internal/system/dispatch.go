package system

import (
	"time"

	"github.com/driftfire/sim/internal/core/event"
	coresys "github.com/driftfire/sim/internal/core/system"
)

// DispatchSystem rotates the event bus buffers and delivers last tick's
// events to their handlers. Runs first in the tick.
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *DispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
