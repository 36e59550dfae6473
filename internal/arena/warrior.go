package arena

import "github.com/turnpilot/turnpilot/internal/core/observability/log"

type act int

const (
	actNone act = iota
	actWalk
	actAttack
	actShoot
	actRescue
	actRest
	actPivot
)

func (a act) String() string {
	switch a {
	case actWalk:
		return "walk"
	case actAttack:
		return "attack"
	case actShoot:
		return "shoot"
	case actRescue:
		return "rescue"
	case actRest:
		return "rest"
	case actPivot:
		return "pivot"
	default:
		return "none"
	}
}

// Warrior is the handle leaves sense and act through. Senses answer
// immediately and cost nothing. Act methods queue at most one act per turn;
// the world applies it on Resolve. Extra act calls in the same turn are
// dropped and report false.
type Warrior struct {
	world     *World
	pos       int
	facing    Facing
	hp        int
	maxHP     int
	queued    act
	queuedDir Direction
}

// step translates a relative direction into a cell delta.
func (wr *Warrior) step(dir Direction) int {
	delta := 1
	if wr.facing == West {
		delta = -1
	}
	if dir == Backward {
		delta = -delta
	}
	return delta
}

// Feel reports what stands in the adjacent cell.
func (wr *Warrior) Feel(dir Direction) Kind {
	return wr.world.kindAt(wr.pos + wr.step(dir))
}

// Look reports the next cells in the given direction, nearest first, as far
// as arrows fly.
func (wr *Warrior) Look(dir Direction) []Kind {
	out := make([]Kind, 0, lookRange)
	for i := 1; i <= lookRange; i++ {
		out = append(out, wr.world.kindAt(wr.pos+i*wr.step(dir)))
	}
	return out
}

// Health returns the current hit points.
func (wr *Warrior) Health() int {
	return wr.hp
}

// MaxHealth returns the hit point ceiling.
func (wr *Warrior) MaxHealth() int {
	return wr.maxHP
}

// At returns the warrior's cell.
func (wr *Warrior) At() int {
	return wr.pos
}

// Facing returns the warrior's absolute orientation.
func (wr *Warrior) Facing() Facing {
	return wr.facing
}

func (wr *Warrior) queue(a act, dir Direction) bool {
	if wr.queued != actNone {
		wr.world.log.Warn("act already queued this turn, ignoring",
			log.String("queued", wr.queued.String()),
			log.String("ignored", a.String()),
		)
		return false
	}
	wr.queued = a
	wr.queuedDir = dir
	return true
}

// Walk queues a one-cell step.
func (wr *Warrior) Walk(dir Direction) bool {
	return wr.queue(actWalk, dir)
}

// Attack queues a melee strike at the adjacent cell.
func (wr *Warrior) Attack(dir Direction) bool {
	return wr.queue(actAttack, dir)
}

// Shoot queues an arrow that hits the first unit within range.
func (wr *Warrior) Shoot(dir Direction) bool {
	return wr.queue(actShoot, dir)
}

// Rescue queues freeing an adjacent captive.
func (wr *Warrior) Rescue(dir Direction) bool {
	return wr.queue(actRescue, dir)
}

// Rest queues a recovery turn.
func (wr *Warrior) Rest() bool {
	return wr.queue(actRest, Forward)
}

// Pivot queues turning around.
func (wr *Warrior) Pivot() bool {
	return wr.queue(actPivot, Forward)
}

// Stats is a value snapshot of the warrior's vitals, fit for end-of-turn
// comparisons.
type Stats struct {
	Turn   int
	HP     int
	MaxHP  int
	Pos    int
	Facing Facing
}

// Stats captures the current vitals.
func (wr *Warrior) Stats() Stats {
	return Stats{
		Turn:   wr.world.turn,
		HP:     wr.hp,
		MaxHP:  wr.maxHP,
		Pos:    wr.pos,
		Facing: wr.facing,
	}
}

// TakeSnapshot adapts Stats to the driver's end-of-turn snapshot hook.
func TakeSnapshot(world any) any {
	if wr, ok := world.(*Warrior); ok {
		return wr.Stats()
	}
	return nil
}
