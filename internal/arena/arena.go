package arena

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	coresys "github.com/driftfire/sim/internal/core/system"
	"github.com/driftfire/sim/internal/data"
	"github.com/driftfire/sim/internal/phys"
	"github.com/driftfire/sim/internal/system"
	"github.com/driftfire/sim/internal/world"
)

const (
	// hitRadius is the collision radius of a ship for projectile impacts.
	hitRadius = 24.0
	// missileTurn is the guided-round turn rate, rad/s.
	missileTurn = 2.0
	// escortOffset is how far from the carrier a fighter launches.
	escortOffset = 40.0
	// debrisTTL and containerTTL bound how long wreckage drifts.
	debrisTTL    = 20.0
	containerTTL = 120.0
)

// bolt is one unguided round in flight.
type bolt struct {
	pos, vel  phys.Vec2
	life      float64
	outfit    *data.Outfit
	shooterID uint32
}

// missile is one guided round. It tracks its target until jammed.
type missile struct {
	bolt
	targetID uint32
	jammed   bool
	jamRoll  bool // jam chance already rolled
	locked   bool // currently counted in the target's lockons
}

// beam is a continuous-fire weapon between a ship and its target.
type beam struct {
	shooterID uint32
	targetID  uint32
	outfit    *data.Outfit
}

// fragment is an inert drifting wreck piece.
type fragment struct {
	pos, vel phys.Vec2
	life     float64
}

// Container is jettisoned cargo floating in space, scoopable until it
// drifts out of existence.
type Container struct {
	Pos, Vel phys.Vec2
	Items    []world.CargoItem
	life     float64
}

// Arena owns projectile flight and collision. The simulation core requests
// spawns through the Spawner interface; impacts feed back into the combat
// system as queued hits.
type Arena struct {
	registry *world.Registry
	ships    *data.ShipTable
	combat   *system.CombatSystem
	log      *zap.Logger

	bolts      []bolt
	missiles   []missile
	beams      map[int]*beam
	nextBeamID int
	debris     []fragment
	containers []*Container

	// Escorts spawned mid-phase; inserted into the registry at the start
	// of the arena's own update so no iteration sees the stack grow.
	pending []*world.Entity
}

func New(reg *world.Registry, ships *data.ShipTable, log *zap.Logger) *Arena {
	return &Arena{
		registry: reg,
		ships:    ships,
		log:      log,
		beams:    make(map[int]*beam),
	}
}

// BindCombat closes the spawn/hit loop. Set once at boot, before the first
// tick; the combat system itself is constructed after the arena.
func (a *Arena) BindCombat(c *system.CombatSystem) { a.combat = c }

func (a *Arena) Phase() coresys.Phase { return coresys.PhaseUpdate }

// Update advances every projectile and effect by one tick.
func (a *Arena) Update(dt time.Duration) {
	a.flushSpawns()
	dts := dt.Seconds()
	a.updateBolts(dts)
	a.updateMissiles(dts)
	a.updateBeams(dts)
	a.updateDrifters(dts)
}

func (a *Arena) updateBolts(dts float64) {
	kept := a.bolts[:0]
	for i := range a.bolts {
		b := &a.bolts[i]
		b.pos = b.pos.Add(b.vel.Scale(dts))
		b.life -= dts
		if b.life <= 0 {
			continue
		}
		if hit := a.collide(b.pos, b.shooterID); hit != nil {
			a.queueHit(hit, b.shooterID, b.outfit, b.vel, 1)
			continue
		}
		kept = append(kept, *b)
	}
	a.bolts = kept
}

func (a *Arena) updateMissiles(dts float64) {
	kept := a.missiles[:0]
	for i := range a.missiles {
		m := &a.missiles[i]
		m.life -= dts
		target, tracking := a.registry.Lookup(m.targetID)
		if tracking {
			tracking = target.Alive() && !m.jammed
		}

		if tracking {
			// Roll the jam once, when first inside the target's jammer bubble.
			if !m.jamRoll && target.JamRange > 0 &&
				m.pos.Dist(target.Solid.Pos) < target.JamRange {
				m.jamRoll = true
				if rand.Float64() < target.JamChance {
					m.jammed = true
					tracking = false
				}
			}
		}

		if tracking {
			want := target.Solid.Pos.Sub(m.pos).Angle()
			have := m.vel.Angle()
			diff := phys.AngleDiff(have, want)
			turn := phys.Clamp(-missileTurn*dts, missileTurn*dts, diff)
			m.vel = phys.FromPolar(m.vel.Mod(), have+turn)
			if !m.locked {
				target.Lockons++
				m.locked = true
			}
		} else if m.locked {
			if target != nil {
				target.Lockons--
			}
			m.locked = false
		}

		m.pos = m.pos.Add(m.vel.Scale(dts))
		if m.life <= 0 {
			if m.locked && target != nil {
				target.Lockons--
			}
			continue
		}
		if hit := a.collide(m.pos, m.shooterID); hit != nil {
			if m.locked && target != nil {
				target.Lockons--
			}
			a.queueHit(hit, m.shooterID, m.outfit, m.vel, m.outfit.Mass)
			continue
		}
		kept = append(kept, *m)
	}
	a.missiles = kept
}

func (a *Arena) updateBeams(dts float64) {
	for id, b := range a.beams {
		shooter, ok := a.registry.Lookup(b.shooterID)
		if !ok || !shooter.Alive() {
			delete(a.beams, id)
			continue
		}
		target, ok := a.registry.Lookup(b.targetID)
		if !ok || !target.Alive() {
			continue // beam stays lit, nothing to burn
		}
		if shooter.Solid.Pos.Dist(target.Solid.Pos) > b.outfit.Range {
			continue
		}
		a.combat.Queue(system.HitRequest{
			TargetID:  target.ID,
			ShooterID: shooter.ID,
			Damage:    b.outfit.Damage * dts,
			Kind:      b.outfit.DamageType,
		})
	}
}

func (a *Arena) updateDrifters(dts float64) {
	keptD := a.debris[:0]
	for i := range a.debris {
		f := &a.debris[i]
		f.pos = f.pos.Add(f.vel.Scale(dts))
		f.life -= dts
		if f.life > 0 {
			keptD = append(keptD, *f)
		}
	}
	a.debris = keptD

	keptC := a.containers[:0]
	for _, c := range a.containers {
		c.Pos = c.Pos.Add(c.Vel.Scale(dts))
		c.life -= dts
		if c.life > 0 {
			keptC = append(keptC, c)
		}
	}
	a.containers = keptC
}

// collide returns the first live ship within hit radius of a point,
// excluding the shooter.
func (a *Arena) collide(pos phys.Vec2, shooterID uint32) *world.Entity {
	var hit *world.Entity
	a.registry.Each(func(e *world.Entity) {
		if hit != nil || e.ID == shooterID || !e.Alive() {
			return
		}
		if e.Solid.Pos.Dist2(pos) < hitRadius*hitRadius {
			hit = e
		}
	})
	return hit
}

func (a *Arena) queueHit(target *world.Entity, shooterID uint32, o *data.Outfit, vel phys.Vec2, mass float64) {
	a.combat.Queue(system.HitRequest{
		TargetID:   target.ID,
		ShooterID:  shooterID,
		Damage:     o.Damage,
		Kind:       o.DamageType,
		Knockback:  o.Knockback,
		ImpactVel:  vel,
		ImpactMass: mass,
	})
}

// ── Spawner ────────────────────────────────────────────────────────

func (a *Arena) SpawnBolt(shooter *world.Entity, ref world.SlotRef, o *data.Outfit, targetID uint32) {
	dir := a.aimDir(shooter, o, targetID)
	a.bolts = append(a.bolts, bolt{
		pos:       shooter.Solid.Pos,
		vel:       shooter.Solid.Vel.Add(phys.FromPolar(o.Speed, dir)),
		life:      flightTime(o),
		outfit:    o,
		shooterID: shooter.ID,
	})
}

func (a *Arena) SpawnMissile(shooter *world.Entity, ref world.SlotRef, ammo *data.Outfit, targetID uint32) {
	a.missiles = append(a.missiles, missile{
		bolt: bolt{
			pos:       shooter.Solid.Pos,
			vel:       shooter.Solid.Vel.Add(phys.FromPolar(ammo.Speed, shooter.Solid.Dir)),
			life:      flightTime(ammo),
			outfit:    ammo,
			shooterID: shooter.ID,
		},
		targetID: targetID,
	})
}

func (a *Arena) StartBeam(shooter *world.Entity, ref world.SlotRef, o *data.Outfit, targetID uint32) int {
	a.nextBeamID++
	a.beams[a.nextBeamID] = &beam{
		shooterID: shooter.ID,
		targetID:  targetID,
		outfit:    o,
	}
	return a.nextBeamID
}

func (a *Arena) StopBeam(beamID int) {
	delete(a.beams, beamID)
}

// SpawnEscort deploys a fighter alongside its carrier. The fighter outfit
// names the hull template it flies. The entity gets its id immediately but
// joins the registry at the next arena update; the entity stack never
// changes size while another system is walking it.
func (a *Arena) SpawnEscort(carrier *world.Entity, bay world.SlotRef, fighter *data.Outfit) (uint32, bool) {
	ship := a.ships.Get(fighter.Name)
	if ship == nil {
		a.log.Warn("no hull template for fighter",
			zap.String("fighter", fighter.Name))
		return 0, false
	}
	pos := carrier.Solid.Pos.Add(phys.FromPolar(escortOffset, carrier.Solid.Dir))
	e := world.NewEntity(a.registry.NextID(), fighter.Name, ship,
		carrier.Faction, carrier.AIProfile, carrier.Solid.Dir,
		pos, carrier.Solid.Vel)
	e.Escort = true
	e.Carried = true
	e.Parent = carrier.ID
	e.ParentBay = bay
	e.Target = carrier.Target
	a.pending = append(a.pending, e)
	return e.ID, true
}

// flushSpawns inserts mid-phase escort launches. Ids were reserved in
// launch order, so each Add is a sorted append.
func (a *Arena) flushSpawns() {
	for i, e := range a.pending {
		a.registry.Add(e)
		a.pending[i] = nil
	}
	a.pending = a.pending[:0]
}

func (a *Arena) SpawnDebris(pos, vel phys.Vec2, count int) {
	for i := 0; i < count; i++ {
		a.debris = append(a.debris, fragment{
			pos:  pos,
			vel:  vel.Add(phys.FromPolar(20+rand.Float64()*60, rand.Float64()*2*math.Pi)),
			life: debrisTTL * (0.5 + rand.Float64()),
		})
	}
}

func (a *Arena) SpawnCargo(pos phys.Vec2, items []world.CargoItem) {
	if len(items) == 0 {
		return
	}
	a.containers = append(a.containers, &Container{
		Pos:   pos,
		Vel:   phys.FromPolar(rand.Float64()*15, rand.Float64()*2*math.Pi),
		Items: items,
		life:  containerTTL,
	})
}

func (a *Arena) SpawnExplosion(pos phys.Vec2, radius, damage float64, kind data.DamageKind, parent uint32) {
	a.combat.ExplodeAt(pos, radius, damage, kind, parent)
}

// ── Scooping ───────────────────────────────────────────────────────

// Scoop transfers a drifting container's cargo into a ship's hold, up to
// free capacity. The container is consumed when fully emptied.
func (a *Arena) Scoop(e *world.Entity, scoopRange float64) int {
	total := 0
	for _, c := range a.containers {
		if c.Pos.Dist(e.Solid.Pos) > scoopRange {
			continue
		}
		kept := c.Items[:0]
		for _, item := range c.Items {
			got := e.AddCargo(item.Commodity, item.Qty)
			total += got
			if got < item.Qty {
				item.Qty -= got
				kept = append(kept, item)
			}
		}
		c.Items = kept
		if len(c.Items) == 0 {
			c.life = 0
		}
	}
	return total
}

// Bolts, Missiles, Beams and Containers report live arena object counts.
func (a *Arena) Bolts() int           { return len(a.bolts) }
func (a *Arena) Missiles() int        { return len(a.missiles) }
func (a *Arena) Beams() int           { return len(a.beams) }
func (a *Arena) Drifting() (int, int) { return len(a.debris), len(a.containers) }

// aimDir picks the launch heading: turrets lead straight at the target,
// fixed mounts fire along the hull axis.
func (a *Arena) aimDir(shooter *world.Entity, o *data.Outfit, targetID uint32) float64 {
	if o.Turret && targetID != 0 {
		if t, ok := a.registry.Lookup(targetID); ok && t.Alive() {
			return t.Solid.Pos.Sub(shooter.Solid.Pos).Angle()
		}
	}
	return shooter.Solid.Dir
}

// flightTime derives projectile lifetime from range and muzzle speed.
func flightTime(o *data.Outfit) float64 {
	if o.Duration > 0 {
		return o.Duration
	}
	if o.Speed <= 0 {
		return 0
	}
	return o.Range / o.Speed
}
