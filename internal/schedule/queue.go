// Package schedule provides the engine's task queue and per-document timers.
//
// All prediction logic runs on a single task queue goroutine. Timer fires and
// transport responses are posted onto the queue rather than executing in the
// timer or network callback frame, so engine operations never run concurrently
// with each other.
package schedule

import (
	"sync"
	"sync/atomic"
)

// defaultQueueSize is the task buffer used when none is configured.
const defaultQueueSize = 256

// Queue is a single-goroutine task executor.
type Queue struct {
	tasks   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
	dropped atomic.Int64
}

// NewQueue creates a queue with the given task buffer size.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Queue{
		tasks: make(chan func(), size),
	}
}

// Start launches the worker goroutine. Starting a running queue is a no-op;
// a stopped queue starts a fresh worker.
func (q *Queue) Start() {
	if !q.running.CompareAndSwap(false, true) {
		return
	}

	done := make(chan struct{})
	q.done = done

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case task := <-q.tasks:
				task()
			case <-done:
				// Drain tasks already posted before shutdown.
				for {
					select {
					case task := <-q.tasks:
						task()
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop shuts the worker down after draining posted tasks. Safe to call more
// than once; Start brings a stopped queue back up.
func (q *Queue) Stop() {
	if !q.running.CompareAndSwap(true, false) {
		return
	}
	close(q.done)
	q.wg.Wait()
}

// Post schedules a task. Tasks posted from the queue goroutine itself must
// fit in the buffer; a full buffer drops the task and counts it rather than
// deadlocking.
func (q *Queue) Post(task func()) bool {
	if task == nil || !q.running.Load() {
		return false
	}
	select {
	case q.tasks <- task:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Dropped returns how many tasks were discarded due to a full buffer.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

// Running reports whether the worker is active.
func (q *Queue) Running() bool {
	return q.running.Load()
}
