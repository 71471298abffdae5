package faction

import (
	"go.uber.org/zap"

	"github.com/driftfire/sim/internal/data"
)

// pair is an unordered faction-faction key.
type pair struct {
	a, b string
}

func key(a, b string) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// Service holds the faction standing matrix, the player's per-faction
// reputation and the player's combat rating. Single-goroutine access only
// (simulation loop).
type Service struct {
	log *zap.Logger

	defs      *data.FactionTable
	standings map[pair]float64   // faction <-> faction, symmetric
	player    map[string]float64 // faction -> player reputation
	profiles  map[string]string  // faction -> behavior profile

	rating float64 // player combat rating accumulator
}

// NewService builds the standing matrix from faction definitions. When both
// sides of a pair declare a standing, the lower (more hostile) one wins.
func NewService(defs *data.FactionTable, log *zap.Logger) *Service {
	s := &Service{
		log:       log,
		defs:      defs,
		standings: make(map[pair]float64),
		player:    make(map[string]float64, defs.Count()),
		profiles:  make(map[string]string, defs.Count()),
	}
	for name, fd := range defs.All() {
		s.player[name] = fd.Player
		s.profiles[name] = fd.AIProfile
		for other, st := range fd.Standings {
			k := key(name, other)
			if cur, ok := s.standings[k]; !ok || st < cur {
				s.standings[k] = st
			}
		}
	}
	return s
}

// Standing returns the mutual standing between two factions. Unknown pairs
// are neutral. A faction always stands with itself.
func (s *Service) Standing(a, b string) float64 {
	if a == b {
		return 100
	}
	return s.standings[key(a, b)]
}

// AreEnemies reports whether two factions shoot at each other on sight.
func (s *Service) AreEnemies(a, b string) bool {
	if a == b {
		return false
	}
	return s.Standing(a, b) < 0
}

// AreAllies reports whether two factions come to each other's aid.
func (s *Service) AreAllies(a, b string) bool {
	if a == b {
		return true
	}
	return s.Standing(a, b) > 0
}

// Profile returns the behavior-script profile name for a faction, or ""
// when the faction is unknown.
func (s *Service) Profile(faction string) string {
	return s.profiles[faction]
}

// PlayerStanding returns the player's reputation with a faction.
func (s *Service) PlayerStanding(faction string) float64 {
	return s.player[faction]
}

// PlayerIsEnemy reports whether a faction treats the player as hostile.
func (s *Service) PlayerIsEnemy(faction string) bool {
	return s.player[faction] < 0
}

// ModPlayerStanding shifts the player's reputation with a faction. Allied
// factions absorb the same shift at half weight, enemy factions the inverse
// at half weight.
func (s *Service) ModPlayerStanding(faction string, delta float64) {
	if s.defs.Get(faction) == nil {
		return
	}
	s.player[faction] += delta
	for other := range s.defs.All() {
		if other == faction {
			continue
		}
		switch {
		case s.AreAllies(faction, other):
			s.player[other] += delta * 0.5
		case s.AreEnemies(faction, other):
			s.player[other] -= delta * 0.5
		}
	}
	s.log.Debug("player standing changed",
		zap.String("faction", faction),
		zap.Float64("delta", delta),
		zap.Float64("standing", s.player[faction]))
}

// Rating returns the player's combat rating.
func (s *Service) Rating() float64 {
	return s.rating
}

// AddRating accumulates player combat rating (never below zero).
func (s *Service) AddRating(delta float64) {
	s.rating += delta
	if s.rating < 0 {
		s.rating = 0
	}
}
