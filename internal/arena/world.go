// Package arena is a tiny corridor crawl for exercising behavior trees: one
// warrior walks a single row of cells toward the stairs, fighting whatever
// stands in the way. Senses are free, acts cost the turn, and the world only
// moves when Resolve is called.
package arena

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turnpilot/turnpilot/internal/core/observability/log"
)

// Kind identifies what occupies a cell or answers a sense.
type Kind int

const (
	KindEmpty Kind = iota
	KindWall
	KindSludge
	KindArcher
	KindCaptive
	KindStairs
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindWall:
		return "wall"
	case KindSludge:
		return "sludge"
	case KindArcher:
		return "archer"
	case KindCaptive:
		return "captive"
	case KindStairs:
		return "stairs"
	default:
		return "unknown"
	}
}

// Enemy reports whether the kind fights back.
func (k Kind) Enemy() bool {
	return k == KindSludge || k == KindArcher
}

func (k Kind) rune() byte {
	switch k {
	case KindSludge:
		return 's'
	case KindArcher:
		return 'a'
	case KindCaptive:
		return 'C'
	case KindStairs:
		return '>'
	default:
		return ' '
	}
}

// Direction is relative to the warrior's facing.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Facing is the absolute orientation in the corridor. East looks toward the
// higher cell indices.
type Facing int

const (
	East Facing = iota
	West
)

func (f Facing) String() string {
	if f == West {
		return "west"
	}
	return "east"
}

func (f Facing) opposite() Facing {
	if f == West {
		return East
	}
	return West
}

// Combat tuning. The warrior hits harder up close than at range; enemies
// are weaker but there are more of them.
const (
	warriorMaxHP  = 20
	attackPower   = 5
	shootPower    = 3
	lookRange     = 3
	sludgeHP      = 12
	sludgePower   = 3
	archerHP      = 7
	archerPower   = 3
	captiveHP     = 1
	restHealRatio = 10 // heal maxHP/restHealRatio per rest
)

// Unit is anything standing in the corridor besides the warrior.
type Unit struct {
	Kind Kind
	HP   int
}

// UnitSpec places one unit at level construction time.
type UnitSpec struct {
	Pos  int
	Kind Kind
}

// Level is the construction-time layout of a corridor.
type Level struct {
	Name   string
	Size   int
	Start  int
	Facing Facing
	Stairs int
	Units  []UnitSpec
}

// World is the corridor the warrior fights through. One Resolve call applies
// a full turn: the warrior's queued act first, then every enemy, then the
// end conditions. Not safe for concurrent use; one game, one goroutine.
type World struct {
	level   Level
	units   map[int]*Unit
	warrior *Warrior
	turn    int
	events  []string
	escaped bool
	rescued int
	slain   int
	log     log.Log
}

// NewWorld validates the level and builds a playable world around it.
func NewWorld(level Level) (*World, error) {
	if level.Size < 2 {
		return nil, fmt.Errorf("level %q: corridor size %d is too small", level.Name, level.Size)
	}
	if level.Start < 0 || level.Start >= level.Size {
		return nil, fmt.Errorf("level %q: start %d out of bounds", level.Name, level.Start)
	}
	if level.Stairs < 0 || level.Stairs >= level.Size {
		return nil, fmt.Errorf("level %q: stairs %d out of bounds", level.Name, level.Stairs)
	}
	if level.Stairs == level.Start {
		return nil, fmt.Errorf("level %q: stairs on the start cell", level.Name)
	}

	units := make(map[int]*Unit, len(level.Units))
	for _, spec := range level.Units {
		if spec.Pos < 0 || spec.Pos >= level.Size {
			return nil, fmt.Errorf("level %q: unit at %d out of bounds", level.Name, spec.Pos)
		}
		if spec.Pos == level.Start || spec.Pos == level.Stairs {
			return nil, fmt.Errorf("level %q: unit at %d blocks the start or stairs", level.Name, spec.Pos)
		}
		if _, taken := units[spec.Pos]; taken {
			return nil, fmt.Errorf("level %q: two units at %d", level.Name, spec.Pos)
		}
		hp, err := unitHP(spec.Kind)
		if err != nil {
			return nil, fmt.Errorf("level %q: %w", level.Name, err)
		}
		units[spec.Pos] = &Unit{Kind: spec.Kind, HP: hp}
	}

	w := &World{
		level: level,
		units: units,
		log:   log.Provide().Named("arena").With(log.String("level", level.Name)),
	}
	w.warrior = &Warrior{
		world:  w,
		pos:    level.Start,
		facing: level.Facing,
		hp:     warriorMaxHP,
		maxHP:  warriorMaxHP,
	}
	return w, nil
}

func unitHP(kind Kind) (int, error) {
	switch kind {
	case KindSludge:
		return sludgeHP, nil
	case KindArcher:
		return archerHP, nil
	case KindCaptive:
		return captiveHP, nil
	default:
		return 0, fmt.Errorf("kind %s cannot be placed as a unit", kind)
	}
}

// Warrior returns the handle leaves sense and act through.
func (w *World) Warrior() *Warrior {
	return w.warrior
}

// Turn returns the number of resolved turns.
func (w *World) Turn() int {
	return w.turn
}

// Over reports whether the game ended, by escape or by death.
func (w *World) Over() bool {
	return w.escaped || w.warrior.hp <= 0
}

// Escaped reports whether the warrior reached the stairs.
func (w *World) Escaped() bool {
	return w.escaped
}

// Dead reports whether the warrior died.
func (w *World) Dead() bool {
	return w.warrior.hp <= 0
}

// Rescued returns the number of captives freed so far.
func (w *World) Rescued() int {
	return w.rescued
}

// Slain returns the number of enemies felled so far.
func (w *World) Slain() int {
	return w.slain
}

// Size returns the corridor length.
func (w *World) Size() int {
	return w.level.Size
}

// Events returns the combat log of the last resolved turn.
func (w *World) Events() []string {
	out := make([]string, len(w.events))
	copy(out, w.events)
	return out
}

// kindAt answers a sense. Positions outside the corridor are wall.
func (w *World) kindAt(pos int) Kind {
	if pos < 0 || pos >= w.level.Size {
		return KindWall
	}
	if u, ok := w.units[pos]; ok {
		return u.Kind
	}
	if pos == w.level.Stairs {
		return KindStairs
	}
	return KindEmpty
}

// Resolve applies one full turn. It is a no-op once the game is over.
func (w *World) Resolve() {
	if w.Over() {
		return
	}
	w.turn++
	w.events = w.events[:0]
	w.applyWarriorAct()
	if !w.Over() {
		w.enemyPhase()
	}
}

func (w *World) applyWarriorAct() {
	wr := w.warrior
	verb, dir := wr.queued, wr.queuedDir
	wr.queued = actNone

	switch verb {
	case actNone:
		w.say("warrior hesitates")
	case actWalk:
		target := wr.pos + wr.step(dir)
		switch w.kindAt(target) {
		case KindEmpty:
			wr.pos = target
			w.say("warrior walks %s", dir)
		case KindStairs:
			wr.pos = target
			w.escaped = true
			w.say("warrior takes the stairs")
		default:
			w.say("warrior bumps into the %s", w.kindAt(target))
		}
	case actAttack:
		target := wr.pos + wr.step(dir)
		if u, ok := w.units[target]; ok {
			w.damageUnit(target, u, attackPower, "hits")
		} else {
			w.say("warrior swings at nothing")
		}
	case actShoot:
		step := wr.step(dir)
		hit := false
		for i := 1; i <= lookRange; i++ {
			pos := wr.pos + i*step
			if u, ok := w.units[pos]; ok {
				w.damageUnit(pos, u, shootPower, "shoots")
				hit = true
				break
			}
			if w.kindAt(pos) == KindWall {
				break
			}
		}
		if !hit {
			w.say("warrior's arrow sails away")
		}
	case actRescue:
		target := wr.pos + wr.step(dir)
		if u, ok := w.units[target]; ok && u.Kind == KindCaptive {
			delete(w.units, target)
			w.rescued++
			w.say("warrior unbinds the captive")
		} else {
			w.say("warrior finds nothing to rescue")
		}
	case actRest:
		heal := wr.maxHP / restHealRatio
		if wr.hp+heal > wr.maxHP {
			heal = wr.maxHP - wr.hp
		}
		if heal > 0 {
			wr.hp += heal
			w.say("warrior rests and recovers %d hp (%d/%d)", heal, wr.hp, wr.maxHP)
		} else {
			w.say("warrior rests at full strength")
		}
	case actPivot:
		wr.facing = wr.facing.opposite()
		w.say("warrior pivots to face %s", wr.facing)
	}
}

func (w *World) damageUnit(pos int, u *Unit, power int, verb string) {
	u.HP -= power
	if u.HP <= 0 {
		delete(w.units, pos)
		if u.Kind.Enemy() {
			w.slain++
		}
		w.say("warrior %s the %s and it falls", verb, u.Kind)
		return
	}
	w.say("warrior %s the %s for %d (%d hp left)", verb, u.Kind, power, u.HP)
}

// enemyPhase lets every surviving enemy act, in corridor order so runs are
// deterministic.
func (w *World) enemyPhase() {
	positions := make([]int, 0, len(w.units))
	for pos := range w.units {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	for _, pos := range positions {
		u, ok := w.units[pos]
		if !ok {
			continue
		}
		switch u.Kind {
		case KindSludge:
			if abs(pos-w.warrior.pos) == 1 {
				w.hurtWarrior(sludgePower, "the sludge lashes the warrior")
			}
		case KindArcher:
			d := abs(pos - w.warrior.pos)
			if d >= 1 && d <= lookRange && w.clearShot(pos, w.warrior.pos) {
				w.hurtWarrior(archerPower, "the archer looses an arrow")
			}
		}
		if w.warrior.hp <= 0 {
			w.say("warrior falls")
			return
		}
	}
}

// clearShot reports whether no unit blocks the line between two cells.
func (w *World) clearShot(from, to int) bool {
	step := 1
	if to < from {
		step = -1
	}
	for pos := from + step; pos != to; pos += step {
		if _, blocked := w.units[pos]; blocked {
			return false
		}
	}
	return true
}

func (w *World) hurtWarrior(power int, what string) {
	w.warrior.hp -= power
	if w.warrior.hp < 0 {
		w.warrior.hp = 0
	}
	w.say("%s for %d (%d hp left)", what, power, w.warrior.hp)
}

func (w *World) say(format string, args ...any) {
	w.events = append(w.events, fmt.Sprintf(format, args...))
}

// Render draws the corridor as a single ASCII row.
func (w *World) Render() string {
	var b strings.Builder
	b.WriteByte('|')
	for pos := 0; pos < w.level.Size; pos++ {
		switch {
		case pos == w.warrior.pos:
			b.WriteByte('@')
		case w.units[pos] != nil:
			b.WriteByte(w.units[pos].Kind.rune())
		case pos == w.level.Stairs:
			b.WriteByte('>')
		default:
			b.WriteByte(' ')
		}
	}
	b.WriteByte('|')
	return b.String()
}

// Cells returns the corridor contents as kind names, warrior included, for
// watchers that render their own view.
func (w *World) Cells() []string {
	out := make([]string, w.level.Size)
	for pos := range out {
		switch {
		case pos == w.warrior.pos:
			out[pos] = "warrior"
		case w.units[pos] != nil:
			out[pos] = w.units[pos].Kind.String()
		case pos == w.level.Stairs:
			out[pos] = KindStairs.String()
		default:
			out[pos] = KindEmpty.String()
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
