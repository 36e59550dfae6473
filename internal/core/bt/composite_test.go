package bt

import (
	"context"
	"testing"
	"time"
)

func testTurn() *Turn {
	return &Turn{
		Ctx:    context.Background(),
		BB:     NewBlackboard(),
		Number: 1,
		Clock:  time.Now,
	}
}

// scriptLeaf returns the scripted statuses in order, repeating the last one,
// and counts how many times it was ticked.
func scriptLeaf(name string, ticks *int, steps ...Status) *Leaf {
	i := 0
	return NewLeaf(name, func(*Turn) Status {
		*ticks++
		status := steps[min(i, len(steps)-1)]
		i++
		return status
	})
}

func TestSequenceAllSucceed(t *testing.T) {
	var a, b, c int
	seq := NewSequence("seq").
		AddChild(scriptLeaf("a", &a, StatusSuccess)).
		AddChild(scriptLeaf("b", &b, StatusSuccess)).
		AddChild(scriptLeaf("c", &c, StatusSuccess))

	if got := seq.Tick(testTurn()); got != StatusSuccess {
		t.Fatalf("expected Success, got %v", got)
	}
	if a != 1 || b != 1 || c != 1 {
		t.Errorf("expected each child ticked once, got %d/%d/%d", a, b, c)
	}
	if seq.cur.index != 0 {
		t.Errorf("expected cursor reset to 0, got %d", seq.cur.index)
	}
}

func TestSequenceFailureShortCircuits(t *testing.T) {
	var a, b, c int
	seq := NewSequence("seq").
		AddChild(scriptLeaf("a", &a, StatusSuccess)).
		AddChild(scriptLeaf("b", &b, StatusFailure)).
		AddChild(scriptLeaf("c", &c, StatusSuccess))

	if got := seq.Tick(testTurn()); got != StatusFailure {
		t.Fatalf("expected Failure, got %v", got)
	}
	if c != 0 {
		t.Errorf("expected third child untouched, got %d ticks", c)
	}
	if seq.cur.index != 0 {
		t.Errorf("expected cursor reset to 0, got %d", seq.cur.index)
	}
}

func TestSequenceRunningParksCursor(t *testing.T) {
	var a, b, c int
	seq := NewSequence("seq").
		AddChild(scriptLeaf("a", &a, StatusSuccess)).
		AddChild(scriptLeaf("b", &b, StatusRunning)).
		AddChild(scriptLeaf("c", &c, StatusSuccess))

	if got := seq.Tick(testTurn()); got != StatusRunning {
		t.Fatalf("expected Running, got %v", got)
	}
	if c != 0 {
		t.Errorf("expected third child untouched, got %d ticks", c)
	}
	if seq.cur.index != 1 {
		t.Errorf("expected cursor parked on child 1, got %d", seq.cur.index)
	}
}

func TestSequenceKeepStateResumes(t *testing.T) {
	var a, b, c int
	seq := NewSequence("seq").KeepState().
		AddChild(scriptLeaf("a", &a, StatusSuccess)).
		AddChild(scriptLeaf("b", &b, StatusRunning, StatusSuccess)).
		AddChild(scriptLeaf("c", &c, StatusSuccess))

	if got := seq.Tick(testTurn()); got != StatusRunning {
		t.Fatalf("turn 1: expected Running, got %v", got)
	}
	if got := seq.Tick(testTurn()); got != StatusSuccess {
		t.Fatalf("turn 2: expected Success, got %v", got)
	}
	if a != 1 {
		t.Errorf("expected first child not re-ticked on resume, got %d ticks", a)
	}
	if b != 2 || c != 1 {
		t.Errorf("unexpected tick counts b=%d c=%d", b, c)
	}
}

func TestSequenceRestartsWithoutKeepState(t *testing.T) {
	var a, b int
	seq := NewSequence("seq").
		AddChild(scriptLeaf("a", &a, StatusSuccess)).
		AddChild(scriptLeaf("b", &b, StatusRunning, StatusSuccess))

	if got := seq.Tick(testTurn()); got != StatusRunning {
		t.Fatalf("turn 1: expected Running, got %v", got)
	}
	if got := seq.Tick(testTurn()); got != StatusSuccess {
		t.Fatalf("turn 2: expected Success, got %v", got)
	}
	if a != 2 {
		t.Errorf("expected first child re-ticked on every turn, got %d ticks", a)
	}
}

func TestSequenceKeepStateRestartsAfterFailure(t *testing.T) {
	var a, b int
	seq := NewSequence("seq").KeepState().
		AddChild(scriptLeaf("a", &a, StatusSuccess)).
		AddChild(scriptLeaf("b", &b, StatusRunning, StatusFailure, StatusSuccess))

	if got := seq.Tick(testTurn()); got != StatusRunning {
		t.Fatalf("turn 1: expected Running, got %v", got)
	}
	if got := seq.Tick(testTurn()); got != StatusFailure {
		t.Fatalf("turn 2: expected Failure, got %v", got)
	}
	// The failure must reset the walk: the next turn starts from child 0.
	if got := seq.Tick(testTurn()); got != StatusSuccess {
		t.Fatalf("turn 3: expected Success, got %v", got)
	}
	if a != 2 {
		t.Errorf("expected first child ticked on turns 1 and 3, got %d ticks", a)
	}
}

func TestSelectorFirstSuccessWins(t *testing.T) {
	var a, b, c int
	sel := NewSelector("sel").
		AddChild(scriptLeaf("a", &a, StatusFailure)).
		AddChild(scriptLeaf("b", &b, StatusSuccess)).
		AddChild(scriptLeaf("c", &c, StatusSuccess))

	if got := sel.Tick(testTurn()); got != StatusSuccess {
		t.Fatalf("expected Success, got %v", got)
	}
	if c != 0 {
		t.Errorf("expected third child untouched, got %d ticks", c)
	}
	if sel.cur.index != 0 {
		t.Errorf("expected cursor reset to 0, got %d", sel.cur.index)
	}
}

func TestSelectorRunningParksCursor(t *testing.T) {
	var a, b, c int
	sel := NewSelector("sel").
		AddChild(scriptLeaf("a", &a, StatusFailure)).
		AddChild(scriptLeaf("b", &b, StatusRunning)).
		AddChild(scriptLeaf("c", &c, StatusSuccess))

	if got := sel.Tick(testTurn()); got != StatusRunning {
		t.Fatalf("expected Running, got %v", got)
	}
	if c != 0 {
		t.Errorf("expected third child untouched, got %d ticks", c)
	}
	if sel.cur.index != 1 {
		t.Errorf("expected cursor parked on child 1, got %d", sel.cur.index)
	}
}

func TestSelectorExhaustionFails(t *testing.T) {
	var a, b, c int
	sel := NewSelector("sel").
		AddChild(scriptLeaf("a", &a, StatusFailure)).
		AddChild(scriptLeaf("b", &b, StatusFailure)).
		AddChild(scriptLeaf("c", &c, StatusFailure))

	if got := sel.Tick(testTurn()); got != StatusFailure {
		t.Fatalf("expected Failure after exhausting all children, got %v", got)
	}
	if a != 1 || b != 1 || c != 1 {
		t.Errorf("expected each child ticked once, got %d/%d/%d", a, b, c)
	}
	if sel.cur.index != 0 {
		t.Errorf("expected cursor reset to 0, got %d", sel.cur.index)
	}
}

func TestSelectorKeepStateResumes(t *testing.T) {
	var a, b, c int
	sel := NewSelector("sel").KeepState().
		AddChild(scriptLeaf("a", &a, StatusFailure)).
		AddChild(scriptLeaf("b", &b, StatusRunning, StatusFailure)).
		AddChild(scriptLeaf("c", &c, StatusSuccess))

	if got := sel.Tick(testTurn()); got != StatusRunning {
		t.Fatalf("turn 1: expected Running, got %v", got)
	}
	// Resume on the running child; its failure moves the walk on to the next
	// alternative without revisiting the first one.
	if got := sel.Tick(testTurn()); got != StatusSuccess {
		t.Fatalf("turn 2: expected Success, got %v", got)
	}
	if a != 1 {
		t.Errorf("expected first child not re-ticked on resume, got %d ticks", a)
	}
	if b != 2 || c != 1 {
		t.Errorf("unexpected tick counts b=%d c=%d", b, c)
	}
}

func TestSelectorWalksAllAlternatives(t *testing.T) {
	const n = 5
	counts := make([]int, n)
	sel := NewSelector("sel")
	for i := 0; i < n-1; i++ {
		sel.AddChild(scriptLeaf("f", &counts[i], StatusFailure))
	}
	sel.AddChild(scriptLeaf("s", &counts[n-1], StatusSuccess))

	if got := sel.Tick(testTurn()); got != StatusSuccess {
		t.Fatalf("expected Success, got %v", got)
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != n {
		t.Errorf("expected %d child ticks in one walk, got %d", n, total)
	}
}

func TestEmptyCompositePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty composite")
		}
	}()
	NewSequence("empty").Tick(testTurn())
}

func TestCursorAdvanceReset(t *testing.T) {
	children := []Node{
		NewLeaf("a", func(*Turn) Status { return StatusSuccess }),
		NewLeaf("b", func(*Turn) Status { return StatusSuccess }),
	}
	cur := newCursor(children)
	if cur.current().Name() != "a" {
		t.Fatalf("expected cursor to start at the first child")
	}
	if !cur.advance() {
		t.Fatal("expected advance to move to the second child")
	}
	if cur.hasNext() {
		t.Error("expected no next child after the last one")
	}
	if cur.advance() {
		t.Error("expected advance past the end to report false")
	}
	cur.reset()
	if cur.index != 0 {
		t.Errorf("expected reset to index 0, got %d", cur.index)
	}
}

func BenchmarkSequenceTick(b *testing.B) {
	seq := NewSequence("bench")
	for i := 0; i < 8; i++ {
		seq.AddChild(NewLeaf("leaf", func(*Turn) Status { return StatusSuccess }))
	}
	turn := testTurn()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seq.Tick(turn)
	}
}
