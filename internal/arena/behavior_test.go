package arena

import (
	"context"
	"strings"
	"testing"

	"github.com/turnpilot/turnpilot/internal/core/bt"
)

// warriorYAML is the config-file twin of BuildWarriorTree. The shipped
// default config follows the same shape.
const warriorYAML = `
name: escape-the-corridor
root: warrior
nodes:
  warrior:
    type: selector
    children: [engage, free-captive, recover, volley, turn-around, advance]
  engage:
    type: sequence
    children: [enemy-ahead, strike]
  enemy-ahead:
    type: condition
    condition: feel-enemy
  strike:
    type: leaf
    leaf: attack
  free-captive:
    type: sequence
    children: [captive-ahead, unbind]
  captive-ahead:
    type: condition
    condition: feel-captive
  unbind:
    type: leaf
    leaf: rescue
  recover:
    type: sequence
    keep_state: true
    children: [hurt, safe, rest-up]
  hurt:
    type: condition
    condition: health-below
    params: {ratio: 0.5}
  safe:
    type: negate
    child: under-fire
  under-fire:
    type: condition
    condition: taking-damage
  rest-up:
    type: until
    condition: health-at-least
    params: {ratio: 0.9}
    child: rest
  rest:
    type: leaf
    leaf: rest
  volley:
    type: sequence
    children: [enemy-in-range, loose-arrow]
  enemy-in-range:
    type: condition
    condition: look-enemy
  loose-arrow:
    type: delay
    child: shoot
  shoot:
    type: leaf
    leaf: shoot
  turn-around:
    type: sequence
    children: [wall-ahead, pivot]
  wall-ahead:
    type: condition
    condition: feel-wall
  pivot:
    type: leaf
    leaf: pivot
  advance:
    type: leaf
    leaf: walk
sensors:
  - name: vitals
    type: vitals
  - name: scout
    type: scout
`

func warriorRegistry() *bt.Registry {
	reg := bt.NewRegistry()
	bt.RegisterBuiltins(reg)
	Register(reg)
	return reg
}

// runBot plays the level with the given tree until the game ends or the
// turn budget runs out, and returns the lowest hp seen along the way.
func runBot(t *testing.T, w *World, tree *bt.Tree, sensors []bt.Sensor) int {
	t.Helper()
	driver := bt.NewDriver("test-bot", tree, nil, nil, sensors).
		WithSnapshot(TakeSnapshot)
	ctx := context.Background()
	wr := w.Warrior()

	minHP := wr.Health()
	for !w.Over() && w.Turn() < 120 {
		if _, err := driver.PlayTurn(ctx, wr); err != nil {
			t.Fatalf("turn %d: %v", w.Turn()+1, err)
		}
		w.Resolve()
		if wr.Health() < minHP {
			minHP = wr.Health()
		}
	}
	return minHP
}

func TestBuildWarriorTreeShape(t *testing.T) {
	tree, err := BuildWarriorTree()
	if err != nil {
		t.Fatalf("BuildWarriorTree: %v", err)
	}
	if tree.Name() != "escape-the-corridor" {
		t.Errorf("name = %q", tree.Name())
	}
	if tree.Size() != 21 {
		t.Errorf("size = %d, want 21", tree.Size())
	}
	if tree.Fingerprint() == 0 {
		t.Error("fingerprint is zero")
	}

	again, err := BuildWarriorTree()
	if err != nil {
		t.Fatalf("BuildWarriorTree: %v", err)
	}
	if tree.Fingerprint() != again.Fingerprint() {
		t.Errorf("two builds fingerprint differently: %x vs %x",
			tree.Fingerprint(), again.Fingerprint())
	}
}

func TestStockStrategyClearsCampaign(t *testing.T) {
	for _, level := range Levels() {
		t.Run(level.Name, func(t *testing.T) {
			tree, err := BuildWarriorTree()
			if err != nil {
				t.Fatalf("BuildWarriorTree: %v", err)
			}
			w := mustWorld(t, level)
			runBot(t, w, tree, []bt.Sensor{VitalsSensor{}, ScoutSensor{}})

			if !w.Escaped() {
				t.Fatalf("bot stuck on turn %d at cell %d (dead=%v):\n%s",
					w.Turn(), w.Warrior().At(), w.Dead(), w.Render())
			}
		})
	}
}

func TestGauntletRun(t *testing.T) {
	tree, err := BuildWarriorTree()
	if err != nil {
		t.Fatalf("BuildWarriorTree: %v", err)
	}
	w := mustWorld(t, mustLevel(t, "the-gauntlet"))
	wr := w.Warrior()

	minHP := runBot(t, w, tree, []bt.Sensor{VitalsSensor{}, ScoutSensor{}})

	if !w.Escaped() || w.Dead() {
		t.Fatalf("escaped=%v dead=%v on turn %d:\n%s", w.Escaped(), w.Dead(), w.Turn(), w.Render())
	}
	if w.Rescued() != 1 {
		t.Errorf("rescued = %d, want 1", w.Rescued())
	}
	if w.Slain() != 3 {
		t.Errorf("slain = %d, want 3", w.Slain())
	}
	if minHP >= wr.MaxHealth()/2 {
		t.Errorf("min hp = %d, expected the archer trade to force a recovery", minHP)
	}
	if wr.Health() != wr.MaxHealth() {
		t.Errorf("hp = %d at the stairs, want a full rest to %d", wr.Health(), wr.MaxHealth())
	}
	if w.Turn() > 60 {
		t.Errorf("took %d turns, the corridor is only 12 cells", w.Turn())
	}
}

func TestYAMLStrategyMatchesBuilt(t *testing.T) {
	cfg, err := bt.LoadYAML(strings.NewReader(warriorYAML))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	tree, sensors, err := cfg.Build(warriorRegistry())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(sensors) != 2 {
		t.Fatalf("len(sensors) = %d, want 2", len(sensors))
	}

	built, err := BuildWarriorTree()
	if err != nil {
		t.Fatalf("BuildWarriorTree: %v", err)
	}
	if tree.Fingerprint() != built.Fingerprint() {
		t.Errorf("config tree fingerprint %x differs from the built tree %x",
			tree.Fingerprint(), built.Fingerprint())
	}

	w := mustWorld(t, mustLevel(t, "the-gauntlet"))
	runBot(t, w, tree, sensors)
	if !w.Escaped() {
		t.Fatalf("config-built bot stuck on turn %d:\n%s", w.Turn(), w.Render())
	}
}

func TestTakingDamagePredicate(t *testing.T) {
	w := mustWorld(t, mustLevel(t, "first-blood"))
	wr := w.Warrior()
	pred := TakingDamage()

	if pred(&bt.Turn{World: wr, Prev: Stats{HP: wr.Health()}}) {
		t.Error("reported damage before any was taken")
	}

	w.Resolve() // hesitate; the sludge lashes
	if wr.Health() != 17 {
		t.Fatalf("hp = %d, want 17 after one lash", wr.Health())
	}
	if !pred(&bt.Turn{World: wr, Prev: Stats{HP: 20}}) {
		t.Error("missed the hp drop against the snapshot")
	}
	if pred(&bt.Turn{World: wr, Prev: nil}) {
		t.Error("reported damage with no snapshot to compare against")
	}
	if pred(&bt.Turn{World: "not a warrior", Prev: Stats{HP: 20}}) {
		t.Error("reported damage for a foreign world")
	}
}

func TestLookEnemyScreenedByCaptive(t *testing.T) {
	w := mustWorld(t, Level{
		Name:   "hostage",
		Size:   6,
		Start:  0,
		Facing: East,
		Stairs: 5,
		Units: []UnitSpec{
			{Pos: 1, Kind: KindCaptive},
			{Pos: 2, Kind: KindSludge},
		},
	})
	wr := w.Warrior()
	turn := &bt.Turn{World: wr}

	if LookEnemy(Forward)(turn) {
		t.Error("saw the sludge through the captive")
	}
	if !FeelCaptive(Forward)(turn) {
		t.Error("missed the adjacent captive")
	}

	wr.Rescue(Forward)
	w.Resolve()
	if !LookEnemy(Forward)(turn) {
		t.Error("missed the sludge once the lane cleared")
	}
}

func TestSensorsPublish(t *testing.T) {
	w := mustWorld(t, mustLevel(t, "the-gauntlet"))
	wr := w.Warrior()
	bb := bt.NewBlackboard()
	ctx := context.Background()

	if err := (VitalsSensor{}).Sense(ctx, wr, bb); err != nil {
		t.Fatalf("vitals: %v", err)
	}
	if err := (ScoutSensor{}).Sense(ctx, wr, bb); err != nil {
		t.Fatalf("scout: %v", err)
	}

	if hp, ok := bb.GetInt("hp"); !ok || hp != 20 {
		t.Errorf("hp = %d (%v), want 20", hp, ok)
	}
	if ratio, ok := bb.GetFloat("hp_ratio"); !ok || ratio != 1.0 {
		t.Errorf("hp_ratio = %v (%v), want 1.0", ratio, ok)
	}
	if facing, _ := bb.GetString("facing"); facing != "east" {
		t.Errorf("facing = %q, want east", facing)
	}
	if feel, _ := bb.GetString("feel_forward"); feel != "sludge" {
		t.Errorf("feel_forward = %q, want sludge", feel)
	}
	if enemy, _ := bb.GetBool("enemy_in_range"); !enemy {
		t.Error("enemy_in_range = false with a sludge one cell ahead")
	}
	if captive, _ := bb.GetBool("captive_in_range"); captive {
		t.Error("captive_in_range = true, the captive is out of sight")
	}

	if err := (VitalsSensor{}).Sense(ctx, 42, bb); err == nil {
		t.Error("vitals accepted a foreign world")
	}
	if err := (ScoutSensor{}).Sense(ctx, 42, bb); err == nil {
		t.Error("scout accepted a foreign world")
	}
}

func TestRegisterCatalog(t *testing.T) {
	reg := warriorRegistry()
	w := mustWorld(t, Level{
		Name:   "two-way",
		Size:   4,
		Start:  1,
		Facing: East,
		Stairs: 3,
	})
	wr := w.Warrior()

	leaf, err := reg.NewLeaf("walk", bt.Params{"dir": "backward"})
	if err != nil {
		t.Fatalf("walk factory: %v", err)
	}
	if got := leaf(&bt.Turn{World: wr}); got != bt.StatusSuccess {
		t.Fatalf("walk leaf = %v, want Success", got)
	}
	w.Resolve()
	if wr.At() != 0 {
		t.Fatalf("warrior at %d, want 0 after walking backward", wr.At())
	}

	if _, err = reg.NewLeaf("walk", bt.Params{"dir": "sideways"}); err == nil {
		t.Error("walk factory accepted an unknown direction")
	}
	if _, err = reg.NewLeaf("moonwalk", nil); err == nil {
		t.Error("registry built an unregistered leaf")
	}

	pred, err := reg.NewPred("health-below", nil)
	if err != nil {
		t.Fatalf("health-below factory: %v", err)
	}
	if pred(&bt.Turn{World: wr}) {
		t.Error("health-below fired at full health")
	}

	open, err := reg.NewPred("feel-open", bt.Params{"dir": "backward"})
	if err != nil {
		t.Fatalf("feel-open factory: %v", err)
	}
	if open(&bt.Turn{World: wr}) {
		t.Error("feel-open reported the wall behind cell 0 as walkable")
	}
	if !FeelOpen(Forward)(&bt.Turn{World: wr}) {
		t.Error("feel-open missed the empty cell ahead")
	}

	sensor, err := reg.NewSensor("scout", nil)
	if err != nil {
		t.Fatalf("scout factory: %v", err)
	}
	if sensor.Name() != "scout" {
		t.Errorf("sensor name = %q", sensor.Name())
	}
}

func BenchmarkGauntletTurn(b *testing.B) {
	tree, err := BuildWarriorTree()
	if err != nil {
		b.Fatal(err)
	}
	w, err := NewWorld(mustLevelB(b, "the-gauntlet"))
	if err != nil {
		b.Fatal(err)
	}
	driver := bt.NewDriver("bench-bot", tree, nil, nil,
		[]bt.Sensor{VitalsSensor{}, ScoutSensor{}}).
		WithSnapshot(TakeSnapshot)
	ctx := context.Background()
	wr := w.Warrior()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := driver.PlayTurn(ctx, wr); err != nil {
			b.Fatal(err)
		}
		w.Resolve()
	}
}
