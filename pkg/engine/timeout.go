package engine

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single evaluation unless WithTimeout overrides it.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs longer than the engine's
	// timeout. The interpreter goroutine is abandoned, not killed.
	ErrTimeout = errors.New("engine: evaluation timed out")

	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

// outcome carries an evaluation from the interpreter goroutine.
type outcome struct {
	res EvalResult
	err error
}

// wait blocks for the outcome of evaluation gen. Outcomes that arrive
// after a newer evaluation started are discarded.
func (e *Engine) wait(ch <-chan outcome, gen uint64) (EvalResult, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case o := <-ch:
		if !e.current(gen) {
			return EvalResult{}, ErrSuperseded
		}
		return o.res, o.err
	case <-timer.C:
		return EvalResult{}, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}

// current reports whether gen is the latest evaluation.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
