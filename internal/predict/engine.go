// Package predict implements the per-document prediction lifecycle.
//
// The engine owns one state machine per open document: it debounces change
// triggers, issues backend requests, converts responses into hunks against a
// captured baseline, and exposes accept/partial-accept/reject/clear
// operations. At most one prediction is visible per document, and a later
// trigger always invalidates earlier in-flight work through a per-document
// sequence number.
package predict

import (
	"context"
	"sync"

	"github.com/dshills/nextedit/internal/assemble"
	"github.com/dshills/nextedit/internal/config"
	"github.com/dshills/nextedit/internal/logging"
	"github.com/dshills/nextedit/internal/render"
	"github.com/dshills/nextedit/internal/schedule"
	"github.com/dshills/nextedit/internal/state"
	"github.com/dshills/nextedit/internal/transport"
)

// Host abstracts the real document the engine predicts for. The host layer
// mutates documents only through ApplyDocument and only as a result of an
// accept operation.
type Host interface {
	// ReadDocument returns the current content of the document.
	ReadDocument(id state.DocumentID) (string, error)

	// ApplyDocument replaces the document content.
	ApplyDocument(id state.DocumentID, content string) error
}

// EngineStatus is the engine's lifecycle state.
type EngineStatus int

const (
	// EngineStopped means Init has not run or Shutdown completed.
	EngineStopped EngineStatus = iota
	// EngineReady means the engine is processing triggers.
	EngineReady
	// EngineShuttingDown means Shutdown is in progress.
	EngineShuttingDown
)

// String returns the status name.
func (s EngineStatus) String() string {
	switch s {
	case EngineStopped:
		return "stopped"
	case EngineReady:
		return "ready"
	case EngineShuttingDown:
		return "shutting down"
	default:
		return "unknown"
	}
}

// inflightCall tracks one outstanding backend request.
type inflightCall struct {
	cancel context.CancelFunc
	seq    uint64
}

// Engine coordinates prediction state machines for all open documents.
//
// The engine is constructed once by the host and passed by handle to every
// entry point; there is no package-level state.
type Engine struct {
	mu     sync.Mutex
	status EngineStatus

	cfg config.Engine

	store     *state.Store
	assembler *assemble.Assembler
	backend   transport.Backend
	host      Host
	notifier  render.Notifier
	log       *logging.Logger

	queue      *schedule.Queue
	editTimers *schedule.TimerSet
	idleTimers *schedule.TimerSet

	inflight map[state.DocumentID]*inflightCall

	// enabled gates triggers; the host flips it when an external completion
	// UI should take precedence.
	enabled bool
}

// New creates an engine. The host and backend are required; everything else
// has defaults overridable through options.
func New(host Host, backend transport.Backend, opts ...Option) (*Engine, error) {
	if host == nil {
		return nil, ErrNoHost
	}
	if backend == nil {
		return nil, ErrNoBackend
	}

	e := &Engine{
		status:     EngineStopped,
		cfg:        config.Default().Engine,
		backend:    backend,
		host:       host,
		notifier:   render.NopNotifier{},
		log:        logging.Nop,
		editTimers: schedule.NewTimerSet(),
		idleTimers: schedule.NewTimerSet(),
		inflight:   make(map[state.DocumentID]*inflightCall),
		enabled:    true,
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := validateEngineConfig(e.cfg); err != nil {
		return nil, err
	}

	if e.store == nil {
		e.store = state.NewStore(state.WithHistoryLimit(e.cfg.HistoryLimit))
	}
	if e.assembler == nil {
		e.assembler = assemble.New(e.store,
			assemble.WithHistoryEntries(e.cfg.HistoryLimit),
			assemble.WithSelectionContext(e.cfg.SelectionContext),
		)
	}
	if e.queue == nil {
		e.queue = schedule.NewQueue(0)
	}

	return e, nil
}

func validateEngineConfig(cfg config.Engine) error {
	full := config.Default()
	full.Engine = cfg
	return full.Validate()
}

// Init starts the engine's task queue. Calling Init on a running engine is a
// no-op.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == EngineReady {
		return nil
	}
	if e.status == EngineShuttingDown {
		return ErrShuttingDown
	}

	e.queue.Start()
	e.status = EngineReady
	e.log.WithComponent("engine").Debug("initialized")
	return nil
}

// Shutdown cancels all pending work, clears any shown predictions, and stops
// the task queue. Safe to call more than once; Init brings the engine back
// up.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.status != EngineReady {
		e.mu.Unlock()
		return
	}
	e.status = EngineShuttingDown

	e.editTimers.CancelAll()
	e.idleTimers.CancelAll()
	for id, call := range e.inflight {
		call.cancel()
		delete(e.inflight, id)
	}
	for _, id := range e.store.IDs() {
		doc := e.store.Get(id)
		if doc == nil {
			continue
		}
		if doc.Status == state.StatusShowing {
			doc.ActiveHunks = nil
			e.notifier.Clear(string(id))
		}
		doc.Status = state.StatusIdle
		doc.PendingSnapshot = ""
		doc.HasPending = false
	}
	e.mu.Unlock()

	e.queue.Stop()

	e.mu.Lock()
	e.status = EngineStopped
	e.mu.Unlock()
}

// Status returns the engine lifecycle status.
func (e *Engine) Status() EngineStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// SetEnabled gates trigger processing. The host disables the engine while an
// external completion UI is open; user operations (accept, reject, clear,
// cancel) still work while disabled.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// UpdateConfig applies new tunables, typically from a configuration reload.
// The history cap set at construction is unchanged.
func (e *Engine) UpdateConfig(cfg config.Engine) error {
	if err := validateEngineConfig(cfg); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.assembler.SetSelectionEnabled(cfg.SelectionContext)
	return nil
}
