package arena

import (
	"context"
	"fmt"

	"github.com/turnpilot/turnpilot/internal/core/bt"
)

// VitalsSensor publishes the warrior's vitals for watchers and for
// blackboard-driven conditions.
type VitalsSensor struct{}

func (VitalsSensor) Name() string { return "vitals" }

func (VitalsSensor) Sense(_ context.Context, world any, bb *bt.Blackboard) error {
	wr, ok := world.(*Warrior)
	if !ok {
		return fmt.Errorf("vitals: world is %T, want *arena.Warrior", world)
	}
	bb.Set("hp", wr.Health())
	bb.Set("max_hp", wr.MaxHealth())
	bb.Set("hp_ratio", float64(wr.Health())/float64(wr.MaxHealth()))
	bb.Set("pos", wr.At())
	bb.Set("facing", wr.Facing().String())
	return nil
}

// ScoutSensor publishes what the warrior can feel and see in both
// directions.
type ScoutSensor struct{}

func (ScoutSensor) Name() string { return "scout" }

func (ScoutSensor) Sense(_ context.Context, world any, bb *bt.Blackboard) error {
	wr, ok := world.(*Warrior)
	if !ok {
		return fmt.Errorf("scout: world is %T, want *arena.Warrior", world)
	}
	bb.Set("feel_forward", wr.Feel(Forward).String())
	bb.Set("feel_backward", wr.Feel(Backward).String())

	sighting := firstSight(wr, Forward)
	bb.Set("sighting_forward", sighting.String())
	bb.Set("enemy_in_range", sighting.Enemy())
	bb.Set("captive_in_range", sighting == KindCaptive)
	return nil
}
