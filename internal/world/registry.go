package world

import "sort"

// Registry owns every live entity, kept in a slice sorted by ascending id.
// Ids are handed out monotonically so Add is always an append; the sorted
// order makes lookups a binary search. Single-goroutine access only
// (simulation loop).
type Registry struct {
	entities []*Entity
	nextID   uint32
}

func NewRegistry() *Registry {
	return &Registry{
		entities: make([]*Entity, 0, 64),
		nextID:   PlayerID, // first id handed out is the player's
	}
}

// NextID reserves and returns the next entity id.
func (r *Registry) NextID() uint32 {
	id := r.nextID
	r.nextID++
	return id
}

// Add inserts an entity. Ids come from NextID, so the append preserves
// sorted order; out-of-order ids (tests, restores) get a sort fixup.
func (r *Registry) Add(e *Entity) {
	r.entities = append(r.entities, e)
	n := len(r.entities)
	if n > 1 && r.entities[n-2].ID > e.ID {
		sort.Slice(r.entities, func(i, j int) bool {
			return r.entities[i].ID < r.entities[j].ID
		})
	}
	if e.ID >= r.nextID {
		r.nextID = e.ID + 1
	}
}

// Lookup finds an entity by id. The player is checked first before the
// ordered search, so player lookups never depend on stack layout.
func (r *Registry) Lookup(id uint32) (*Entity, bool) {
	if len(r.entities) == 0 {
		return nil, false
	}
	if id == PlayerID {
		if p := r.entities[0]; p.ID == PlayerID {
			return p, true
		}
		return nil, false
	}
	if i := r.indexOf(id); i >= 0 {
		return r.entities[i], true
	}
	return nil, false
}

// indexOf binary-searches for an id, returning -1 when absent.
func (r *Registry) indexOf(id uint32) int {
	lo, hi := 0, len(r.entities)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case r.entities[mid].ID == id:
			return mid
		case r.entities[mid].ID < id:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}

// Destroy removes an entity immediately, compacting the stack. Prefer
// flagging Delete and letting Sweep remove it at the tick's single
// compaction point; direct Destroy is for out-of-band teardown.
func (r *Registry) Destroy(e *Entity) {
	if i := r.indexOf(e.ID); i >= 0 {
		r.entities = append(r.entities[:i], r.entities[i+1:]...)
	}
}

// Sweep removes every delete-flagged entity in one compacting pass and
// returns how many were dropped. This is the only place entities leave the
// stack during a normal tick, so iteration elsewhere stays index-stable.
func (r *Registry) Sweep() int {
	kept := r.entities[:0]
	removed := 0
	for _, e := range r.entities {
		if e.Delete {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(r.entities); i++ {
		r.entities[i] = nil
	}
	r.entities = kept
	return removed
}

// Clean removes every entity except the player in one pass (arena reset).
// The player keeps slot 0; since the player id is the smallest id ever
// issued, the one-element stack is still sorted. Targets, lockons and
// timers on the surviving player are reset.
func (r *Registry) Clean() {
	var player *Entity
	for i, e := range r.entities {
		if e.Player {
			player = e
		}
		r.entities[i] = nil
	}
	r.entities = r.entities[:0]
	if player != nil {
		player.Target = 0
		player.Lockons = 0
		player.PTimer = 0
		player.TControl = 0
		for i := range player.Timers {
			player.Timers[i] = 0
		}
		player.Tasks.Clear()
		r.entities = append(r.entities, player)
	}
}

// Player returns the player entity, if present.
func (r *Registry) Player() (*Entity, bool) {
	return r.Lookup(PlayerID)
}

// Each iterates entities in id order. The callback must not add or remove
// entities; flag Delete instead.
func (r *Registry) Each(fn func(*Entity)) {
	for _, e := range r.entities {
		fn(e)
	}
}

// Count returns the number of live entities.
func (r *Registry) Count() int {
	return len(r.entities)
}
