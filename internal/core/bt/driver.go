package bt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turnpilot/turnpilot/internal/core/observability/log"
	"github.com/turnpilot/turnpilot/pkg/encoding"
)

// Sensor pulls data from the world into the blackboard before each turn.
type Sensor interface {
	Name() string
	Sense(ctx context.Context, world any, bb *Blackboard) error
}

// SnapshotFunc captures whatever end-of-turn state the next turn should see
// as Turn.Prev, typically the agent's vital stats.
type SnapshotFunc func(world any) any

// Driver owns one tree and plays it one turn at a time: sensors first, then
// a single root tick, then the journal entry and the snapshot the next turn
// will compare itself against. One driver, one goroutine.
type Driver struct {
	id       string
	tree     *Tree
	bb       *Blackboard
	journal  *Journal
	sensors  []Sensor
	snapshot SnapshotFunc
	clock    func() time.Time
	log      log.Log
	turn     int
	prev     any
}

// NewDriver assembles a driver. A blank id gets a generated one; nil
// blackboard and journal get fresh defaults.
func NewDriver(id string, tree *Tree, bb *Blackboard, journal *Journal, sensors []Sensor) *Driver {
	if id == "" {
		id = uuid.NewString()
	}
	if bb == nil {
		bb = NewBlackboard()
	}
	if journal == nil {
		journal = NewJournal(0)
	}
	return &Driver{
		id:      id,
		tree:    tree,
		bb:      bb,
		journal: journal,
		sensors: sensors,
		clock:   time.Now,
		log:     log.Provide().Named("driver").With(log.String("driver", id)),
	}
}

// WithSnapshot installs the end-of-turn snapshot hook. Chainable, assembly
// time only.
func (d *Driver) WithSnapshot(fn SnapshotFunc) *Driver {
	d.snapshot = fn
	return d
}

// WithClock overrides the turn clock, mostly for tests.
func (d *Driver) WithClock(clock func() time.Time) *Driver {
	d.clock = clock
	return d
}

func (d *Driver) ID() string {
	return d.id
}

func (d *Driver) Tree() *Tree {
	return d.tree
}

func (d *Driver) Blackboard() *Blackboard {
	return d.bb
}

func (d *Driver) Journal() *Journal {
	return d.journal
}

// TurnNumber returns the number of the last played turn.
func (d *Driver) TurnNumber() int {
	return d.turn
}

// PlayTurn runs one full turn against the given world handle. A sensor error
// aborts the turn before the tree ticks and comes back as StatusFailure.
func (d *Driver) PlayTurn(ctx context.Context, world any) (Status, error) {
	for _, sensor := range d.sensors {
		if err := sensor.Sense(ctx, world, d.bb); err != nil {
			return StatusFailure, fmt.Errorf("sensor %s: %w", sensor.Name(), err)
		}
	}

	d.turn++
	turn := &Turn{
		Ctx:    ctx,
		World:  world,
		BB:     d.bb,
		Prev:   d.prev,
		Number: d.turn,
		Clock:  d.clock,
	}

	start := d.clock()
	status := d.tree.Tick(turn)
	took := d.clock().Sub(start)

	d.journal.Append(Decision{
		ID:       uuid.New(),
		Turn:     d.turn,
		Node:     d.tree.Name(),
		Status:   status,
		Duration: took,
		At:       start,
	})
	d.log.Debug("turn played",
		log.Int("turn", d.turn),
		log.String("status", status.String()),
		log.Duration("took", took),
	)

	if d.snapshot != nil {
		d.prev = d.snapshot(world)
	}
	return status, nil
}

// SaveState persists the blackboard, the journal and the turn counter.
// Cursor positions and hook state stay in memory only; a restored driver
// replays its tree from the top.
func (d *Driver) SaveState() ([]byte, error) {
	bbData, err := d.bb.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("save blackboard: %w", err)
	}
	journalData, err := d.journal.Save()
	if err != nil {
		return nil, fmt.Errorf("save journal: %w", err)
	}
	return encoding.EncodeGob(driverState{BB: bbData, Journal: journalData, Turn: d.turn})
}

// LoadState restores what SaveState persisted.
func (d *Driver) LoadState(data []byte) error {
	var state driverState
	if err := encoding.DecodeGob(data, &state); err != nil {
		return err
	}
	if len(state.BB) > 0 {
		if err := d.bb.UnmarshalBinary(state.BB); err != nil {
			return fmt.Errorf("load blackboard: %w", err)
		}
	}
	if len(state.Journal) > 0 {
		if err := d.journal.Load(state.Journal); err != nil {
			return fmt.Errorf("load journal: %w", err)
		}
	}
	d.turn = state.Turn
	d.prev = nil
	return nil
}

type driverState struct {
	BB      []byte
	Journal []byte
	Turn    int
}
