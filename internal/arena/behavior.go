package arena

import (
	"fmt"

	"github.com/turnpilot/turnpilot/internal/core/bt"
)

// warriorOf pulls the typed handle out of the turn's world slot.
func warriorOf(t *bt.Turn) (*Warrior, bool) {
	wr, ok := t.World.(*Warrior)
	return wr, ok
}

// Leaves. Each queues one act; a dropped act (or a missing handle) is a
// Failure so the tree can route around it.

func Walk(dir Direction) bt.LeafFunc {
	return func(t *bt.Turn) bt.Status {
		if wr, ok := warriorOf(t); ok && wr.Walk(dir) {
			return bt.StatusSuccess
		}
		return bt.StatusFailure
	}
}

func Attack(dir Direction) bt.LeafFunc {
	return func(t *bt.Turn) bt.Status {
		if wr, ok := warriorOf(t); ok && wr.Attack(dir) {
			return bt.StatusSuccess
		}
		return bt.StatusFailure
	}
}

func Shoot(dir Direction) bt.LeafFunc {
	return func(t *bt.Turn) bt.Status {
		if wr, ok := warriorOf(t); ok && wr.Shoot(dir) {
			return bt.StatusSuccess
		}
		return bt.StatusFailure
	}
}

func Rescue(dir Direction) bt.LeafFunc {
	return func(t *bt.Turn) bt.Status {
		if wr, ok := warriorOf(t); ok && wr.Rescue(dir) {
			return bt.StatusSuccess
		}
		return bt.StatusFailure
	}
}

func Rest() bt.LeafFunc {
	return func(t *bt.Turn) bt.Status {
		if wr, ok := warriorOf(t); ok && wr.Rest() {
			return bt.StatusSuccess
		}
		return bt.StatusFailure
	}
}

func Pivot() bt.LeafFunc {
	return func(t *bt.Turn) bt.Status {
		if wr, ok := warriorOf(t); ok && wr.Pivot() {
			return bt.StatusSuccess
		}
		return bt.StatusFailure
	}
}

// Predicates.

func FeelEnemy(dir Direction) bt.Predicate {
	return func(t *bt.Turn) bool {
		wr, ok := warriorOf(t)
		return ok && wr.Feel(dir).Enemy()
	}
}

func FeelCaptive(dir Direction) bt.Predicate {
	return func(t *bt.Turn) bool {
		wr, ok := warriorOf(t)
		return ok && wr.Feel(dir) == KindCaptive
	}
}

func FeelWall(dir Direction) bt.Predicate {
	return func(t *bt.Turn) bool {
		wr, ok := warriorOf(t)
		return ok && wr.Feel(dir) == KindWall
	}
}

// FeelOpen reports whether the adjacent cell can be stepped onto. Stairs
// count as open ground.
func FeelOpen(dir Direction) bt.Predicate {
	return func(t *bt.Turn) bool {
		wr, ok := warriorOf(t)
		if !ok {
			return false
		}
		k := wr.Feel(dir)
		return k == KindEmpty || k == KindStairs
	}
}

// LookEnemy reports whether the first thing in sight is an enemy. Anything
// closer, a captive included, blocks the shot and reports false.
func LookEnemy(dir Direction) bt.Predicate {
	return func(t *bt.Turn) bool {
		wr, ok := warriorOf(t)
		return ok && firstSight(wr, dir).Enemy()
	}
}

// HealthBelow reports whether hp dropped under ratio*max.
func HealthBelow(ratio float64) bt.Predicate {
	return func(t *bt.Turn) bool {
		wr, ok := warriorOf(t)
		return ok && float64(wr.Health()) < ratio*float64(wr.MaxHealth())
	}
}

// HealthAtLeast reports whether hp recovered to ratio*max or better.
func HealthAtLeast(ratio float64) bt.Predicate {
	return func(t *bt.Turn) bool {
		wr, ok := warriorOf(t)
		return ok && float64(wr.Health()) >= ratio*float64(wr.MaxHealth())
	}
}

// TakingDamage compares the warrior's hp against the previous turn's
// snapshot.
func TakingDamage() bt.Predicate {
	return func(t *bt.Turn) bool {
		wr, ok := warriorOf(t)
		if !ok {
			return false
		}
		prev, ok := t.Prev.(Stats)
		return ok && wr.Health() < prev.HP
	}
}

// firstSight is the first non-open kind within look range, or KindEmpty when
// the way is clear.
func firstSight(wr *Warrior, dir Direction) Kind {
	for _, k := range wr.Look(dir) {
		if k == KindEmpty || k == KindStairs {
			continue
		}
		return k
	}
	return KindEmpty
}

func direction(params bt.Params) (Direction, error) {
	switch s := params.String("dir", "forward"); s {
	case "forward":
		return Forward, nil
	case "backward":
		return Backward, nil
	default:
		return Forward, fmt.Errorf("unknown direction: %s", s)
	}
}

// Register wires the warrior catalog into a registry so config files can
// name these pieces.
func Register(reg *bt.Registry) {
	reg.RegisterLeaf("walk", func(p bt.Params) (bt.LeafFunc, error) {
		dir, err := direction(p)
		if err != nil {
			return nil, err
		}
		return Walk(dir), nil
	})
	reg.RegisterLeaf("attack", func(p bt.Params) (bt.LeafFunc, error) {
		dir, err := direction(p)
		if err != nil {
			return nil, err
		}
		return Attack(dir), nil
	})
	reg.RegisterLeaf("shoot", func(p bt.Params) (bt.LeafFunc, error) {
		dir, err := direction(p)
		if err != nil {
			return nil, err
		}
		return Shoot(dir), nil
	})
	reg.RegisterLeaf("rescue", func(p bt.Params) (bt.LeafFunc, error) {
		dir, err := direction(p)
		if err != nil {
			return nil, err
		}
		return Rescue(dir), nil
	})
	reg.RegisterLeaf("rest", func(bt.Params) (bt.LeafFunc, error) {
		return Rest(), nil
	})
	reg.RegisterLeaf("pivot", func(bt.Params) (bt.LeafFunc, error) {
		return Pivot(), nil
	})

	reg.RegisterPred("feel-enemy", func(p bt.Params) (bt.Predicate, error) {
		dir, err := direction(p)
		if err != nil {
			return nil, err
		}
		return FeelEnemy(dir), nil
	})
	reg.RegisterPred("feel-captive", func(p bt.Params) (bt.Predicate, error) {
		dir, err := direction(p)
		if err != nil {
			return nil, err
		}
		return FeelCaptive(dir), nil
	})
	reg.RegisterPred("feel-wall", func(p bt.Params) (bt.Predicate, error) {
		dir, err := direction(p)
		if err != nil {
			return nil, err
		}
		return FeelWall(dir), nil
	})
	reg.RegisterPred("feel-open", func(p bt.Params) (bt.Predicate, error) {
		dir, err := direction(p)
		if err != nil {
			return nil, err
		}
		return FeelOpen(dir), nil
	})
	reg.RegisterPred("look-enemy", func(p bt.Params) (bt.Predicate, error) {
		dir, err := direction(p)
		if err != nil {
			return nil, err
		}
		return LookEnemy(dir), nil
	})
	reg.RegisterPred("health-below", func(p bt.Params) (bt.Predicate, error) {
		return HealthBelow(p.Float("ratio", 0.5)), nil
	})
	reg.RegisterPred("health-at-least", func(p bt.Params) (bt.Predicate, error) {
		return HealthAtLeast(p.Float("ratio", 0.9)), nil
	})
	reg.RegisterPred("taking-damage", func(bt.Params) (bt.Predicate, error) {
		return TakingDamage(), nil
	})

	reg.RegisterSensor("vitals", func(bt.Params) (bt.Sensor, error) {
		return VitalsSensor{}, nil
	})
	reg.RegisterSensor("scout", func(bt.Params) (bt.Sensor, error) {
		return ScoutSensor{}, nil
	})
}

// BuildWarriorTree assembles the stock corridor strategy programmatically:
// fight what is adjacent, free captives, pull back to rest when hurt and
// not under fire, trade arrows at range, turn around at walls, otherwise
// advance.
func BuildWarriorTree() (*bt.Tree, error) {
	engage := bt.NewSequence("engage").
		AddChild(bt.NewCondition("enemy-ahead", FeelEnemy(Forward))).
		AddChild(bt.NewLeaf("strike", Attack(Forward)))

	freeCaptive := bt.NewSequence("free-captive").
		AddChild(bt.NewCondition("captive-ahead", FeelCaptive(Forward))).
		AddChild(bt.NewLeaf("unbind", Rescue(Forward)))

	recover := bt.NewSequence("recover").KeepState().
		AddChild(bt.NewCondition("hurt", HealthBelow(0.5))).
		AddChild(bt.NewNegate("safe").
			Bind(bt.NewCondition("under-fire", TakingDamage()))).
		AddChild(bt.NewUntil("rest-up", HealthAtLeast(0.9)).
			Bind(bt.NewLeaf("rest", Rest())))

	volley := bt.NewSequence("volley").
		AddChild(bt.NewCondition("enemy-in-range", LookEnemy(Forward))).
		AddChild(bt.NewDelay("loose-arrow").
			Bind(bt.NewLeaf("shoot", Shoot(Forward))))

	turnAround := bt.NewSequence("turn-around").
		AddChild(bt.NewCondition("wall-ahead", FeelWall(Forward))).
		AddChild(bt.NewLeaf("pivot", Pivot()))

	root := bt.NewSelector("warrior").
		AddChild(engage).
		AddChild(freeCaptive).
		AddChild(recover).
		AddChild(volley).
		AddChild(turnAround).
		AddChild(bt.NewLeaf("advance", Walk(Forward)))

	return bt.NewTree("escape-the-corridor", root)
}
