package event

// Entity lifecycle events. IDs are registry entity ids; consumers must
// tolerate the entity being gone by the time the event is dispatched.

// Attacked fires whenever a live entity takes a hit from a known shooter.
// Behavior scripts use it to retaliate.
type Attacked struct {
	EntityID   uint32
	AttackerID uint32
}

// Disabled fires on the first armour crossing below the disable threshold.
type Disabled struct {
	EntityID   uint32
	AttackerID uint32
}

// Destroyed fires once, when armour is exhausted and the death sequence
// begins (not when the wreck is finally removed).
type Destroyed struct {
	EntityID   uint32
	AttackerID uint32
	Faction    string
}

// Jumped fires when a ship completes hyperspace transit and leaves the arena.
type Jumped struct {
	EntityID uint32
}

// Boarded fires when a boarding action on a disabled ship succeeds.
type Boarded struct {
	EntityID   uint32
	BoarderID  uint32
}

// Hailed fires when a ship is hailed over comms.
type Hailed struct {
	EntityID uint32
	SenderID uint32
}

// Docked fires when a deployed fighter returns to its carrier's bay.
type Docked struct {
	EntityID  uint32
	CarrierID uint32
}
