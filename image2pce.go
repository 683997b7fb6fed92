/*
Package image2pce converts arbitrary RGB(A) raster images into the native
tile/palette/BAT graphics format of a tile-based retro console.
*/
package image2pce

import (
	"context"
	"fmt"
	stdimage "image"
	"io"
	"log"
	"sync"
)

// State is a conversion's position in its lifecycle.
type State int

const (
	Idle State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Converter runs one conversion at a time. It is not reentrant: calling
// Convert while a previous call on the same instance is still running
// returns an error. Concurrent conversions must use independent instances
// (spec.md §5).
type Converter struct {
	logger *log.Logger

	mu     sync.Mutex
	state  State
	result *Result
	err    error
}

// Option configures a Converter at construction time.
type Option func(*Converter)

// WithLogger sets the logger stage transitions and warnings are written to.
// The default discards all output.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// New creates a Converter in the Idle state.
func New(opts ...Option) *Converter {
	c := &Converter{
		logger: log.New(io.Discard, "", 0),
		state:  Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Converter) logf(format string, args ...interface{}) {
	c.logger.Output(2, fmt.Sprintf(format, args...))
}

// State returns the converter's current lifecycle state.
func (c *Converter) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the last completed result, if the state is Completed.
func (c *Converter) Result() (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Completed {
		return nil, false
	}
	return c.result, true
}

// Convert runs the full seven-stage pipeline against source using cfg,
// reporting progress after each stage. It transitions Idle -> Running ->
// Completed|Failed. Calling Convert on an instance that is already Running
// returns an InvalidInput error rather than queuing or blocking.
func (c *Converter) Convert(ctx context.Context, source stdimage.Image, cfg Config, progress ProgressFunc) (*Result, error) {
	c.mu.Lock()
	if c.state == Running {
		c.mu.Unlock()
		return nil, newError(InvalidInput, "conversion already running on this instance")
	}
	c.state = Running
	c.result = nil
	c.err = nil
	c.mu.Unlock()

	if verr := cfg.Validate(); verr != nil {
		c.finish(nil, verr)
		return nil, verr
	}

	// cfg is already a value copy, but DitherMask and Constraints share
	// backing storage with the caller's Config, which the caller may reuse
	// and mutate; clone them (and Curve) so the pipeline never observes a
	// change made concurrently with (or after) this call.
	cfg.DitherMask = cfg.DitherMask.Clone()
	cfg.Curve = cfg.Curve.Clone()
	cfg.Constraints = append([]int(nil), cfg.Constraints...)

	result, perr := c.runPipeline(ctx, source, cfg, progress)
	if perr != nil {
		c.finish(nil, perr)
		return nil, perr
	}

	c.finish(result, nil)
	return result, nil
}

func (c *Converter) finish(result *Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Failed
		c.err = err
		return
	}
	c.state = Completed
	c.result = result
}
