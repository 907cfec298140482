package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestQueue_RunsTasksInOrder(t *testing.T) {
	q := NewQueue(16)
	q.Start()
	defer q.Stop()

	var order []int
	done := make(chan struct{})

	for i := 0; i < 5; i++ {
		i := i
		q.Post(func() {
			order = append(order, i)
			if i == 4 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks did not run")
	}

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
}

func TestQueue_PostBeforeStart(t *testing.T) {
	q := NewQueue(4)
	if q.Post(func() {}) {
		t.Error("Post should fail before Start")
	}
}

func TestQueue_StopDrains(t *testing.T) {
	q := NewQueue(16)
	q.Start()

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		q.Post(func() { count.Add(1) })
	}

	q.Stop()

	if count.Load() != 10 {
		t.Errorf("ran %d tasks, want 10 (Stop should drain)", count.Load())
	}
}

func TestQueue_StopIdempotent(t *testing.T) {
	q := NewQueue(4)
	q.Start()
	q.Stop()
	q.Stop()

	if q.Running() {
		t.Error("queue should not be running after Stop")
	}
}

func TestQueue_RestartAfterStop(t *testing.T) {
	q := NewQueue(4)
	q.Start()
	q.Stop()

	q.Start()
	defer q.Stop()

	if !q.Running() {
		t.Fatal("queue should be running after restart")
	}

	done := make(chan struct{})
	if !q.Post(func() { close(done) }) {
		t.Fatal("Post failed on restarted queue")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run on restarted queue")
	}
}

func TestQueue_DropsWhenFull(t *testing.T) {
	q := NewQueue(1)

	block := make(chan struct{})
	q.Start()
	defer q.Stop()

	q.Post(func() { <-block })
	q.Post(func() {}) // fills the buffer

	// Buffer full now; further posts are dropped, not blocked.
	posted := q.Post(func() {})
	close(block)

	if posted {
		t.Error("Post should report false when the buffer is full")
	}
	if q.Dropped() == 0 {
		t.Error("Dropped should count the discarded task")
	}
}

func TestTimerSet_FiresAfterDelay(t *testing.T) {
	ts := NewTimerSet()
	var fired atomic.Int32

	ts.Schedule("doc", 20*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(60 * time.Millisecond)

	if fired.Load() != 1 {
		t.Errorf("fired = %d, want 1", fired.Load())
	}
	if ts.Pending("doc") {
		t.Error("timer should not be pending after firing")
	}
}

func TestTimerSet_Coalesces(t *testing.T) {
	ts := NewTimerSet()
	var fired atomic.Int32

	for i := 0; i < 10; i++ {
		ts.Schedule("doc", 30*time.Millisecond, func() { fired.Add(1) })
	}

	time.Sleep(80 * time.Millisecond)

	if fired.Load() != 1 {
		t.Errorf("fired = %d, want 1 (last-write-wins coalescing)", fired.Load())
	}
}

func TestTimerSet_CancelNeverFires(t *testing.T) {
	ts := NewTimerSet()
	var fired atomic.Int32

	ts.Schedule("doc", 20*time.Millisecond, func() { fired.Add(1) })
	ts.Cancel("doc")

	time.Sleep(60 * time.Millisecond)

	if fired.Load() != 0 {
		t.Errorf("fired = %d, want 0", fired.Load())
	}
}

func TestTimerSet_CancelUnknownKey(t *testing.T) {
	ts := NewTimerSet()
	ts.Cancel("missing") // must not panic
	ts.Remove("missing")
}

func TestTimerSet_IndependentKeys(t *testing.T) {
	ts := NewTimerSet()
	var a, b atomic.Int32

	ts.Schedule("a", 20*time.Millisecond, func() { a.Add(1) })
	ts.Schedule("b", 20*time.Millisecond, func() { b.Add(1) })
	ts.Cancel("a")

	time.Sleep(60 * time.Millisecond)

	if a.Load() != 0 {
		t.Errorf("a fired = %d, want 0", a.Load())
	}
	if b.Load() != 1 {
		t.Errorf("b fired = %d, want 1", b.Load())
	}
}

func TestTimerSet_CancelAll(t *testing.T) {
	ts := NewTimerSet()
	var fired atomic.Int32

	ts.Schedule("a", 20*time.Millisecond, func() { fired.Add(1) })
	ts.Schedule("b", 20*time.Millisecond, func() { fired.Add(1) })
	ts.CancelAll()

	time.Sleep(60 * time.Millisecond)

	if fired.Load() != 0 {
		t.Errorf("fired = %d, want 0", fired.Load())
	}
}

func TestTimerSet_RearmAfterCancel(t *testing.T) {
	ts := NewTimerSet()
	var fired atomic.Int32

	ts.Schedule("doc", 20*time.Millisecond, func() { fired.Add(1) })
	ts.Cancel("doc")
	ts.Schedule("doc", 20*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(60 * time.Millisecond)

	if fired.Load() != 1 {
		t.Errorf("fired = %d, want 1", fired.Load())
	}
}
