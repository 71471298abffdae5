package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseEvents   Phase = iota // 0: deliver last tick's events
	PhaseBehavior              // 1: script thinking, hyperspace state machine
	PhaseUpdate                // 2: timers, regen, physics integration
	PhaseCombat                // 3: resolve queued weapon hits
	PhaseCleanup               // 4: compact delete-flagged entities
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
