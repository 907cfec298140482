package predict

import (
	"github.com/dshills/nextedit/internal/assemble"
	"github.com/dshills/nextedit/internal/config"
	"github.com/dshills/nextedit/internal/logging"
	"github.com/dshills/nextedit/internal/render"
	"github.com/dshills/nextedit/internal/schedule"
	"github.com/dshills/nextedit/internal/state"
)

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the engine tunables. Defaults come from config.Default.
func WithConfig(cfg config.Engine) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithNotifier sets the rendering notifier.
func WithNotifier(n render.Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithStore supplies a pre-built document store, mainly for tests.
func WithStore(s *state.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithAssembler supplies a pre-built context assembler.
func WithAssembler(a *assemble.Assembler) Option {
	return func(e *Engine) {
		e.assembler = a
	}
}

// WithQueue supplies the task queue the engine serializes work on.
func WithQueue(q *schedule.Queue) Option {
	return func(e *Engine) {
		e.queue = q
	}
}
