package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/driftfire/sim/internal/core/system"
	"github.com/driftfire/sim/internal/world"
)

// CleanupSystem compacts the registry at tick end. This is the only point
// in the tick where entities are actually removed; everything before it
// only sets the Delete flag.
type CleanupSystem struct {
	registry *world.Registry
	log      *zap.Logger
}

func NewCleanupSystem(reg *world.Registry, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{registry: reg, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.registry.Sweep(); n > 0 {
		s.log.Debug("swept entities", zap.Int("count", n))
	}
}
