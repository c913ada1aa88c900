package slugcheck

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

// Source answers availability queries.
type Source interface {
	Check(ctx context.Context, slug, exclude string) (bool, error)
}

type Options struct {
	MinLength int
	Debounce  time.Duration
	// OnChange receives every state transition in order, on a goroutine
	// owned by the Checker. Set never waits for it, so OnChange may block
	// (for example on tea.Program.Send) while the caller of Set is busy.
	OnChange func(State)
}

// Checker owns the debounce timer and the in-flight query for one input.
type Checker struct {
	source   Source
	debounce time.Duration
	onChange func(State)
	logger   *zap.Logger

	mu     sync.Mutex
	state  State
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool

	// pending transitions for onChange, oldest first.
	qmu     sync.Mutex
	pending []State
	wake    chan struct{}
	done    chan struct{}
}

func NewChecker(source Source, opts Options, logger *zap.Logger) *Checker {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	c := &Checker{
		source:   source,
		debounce: opts.Debounce,
		onChange: opts.OnChange,
		logger:   logger,
		state:    NewState(opts.MinLength),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	if c.onChange != nil {
		go c.deliver()
	}
	return c
}

// Set records a new candidate and exclude value. It never blocks on the
// network.
func (c *Checker) Set(candidate, exclude string) {
	c.dispatch(CandidateChanged{Candidate: candidate, Exclude: exclude})
}

func (c *Checker) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close stops pending work and delivery. Later events are ignored.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopLocked()
	close(c.done)
}

func (c *Checker) dispatch(ev Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	prev := c.state
	next, cmd := Reduce(c.state, ev)
	c.state = next
	c.runLocked(cmd)
	if c.onChange != nil && next != prev {
		c.enqueue(next)
	}
	c.mu.Unlock()
}

// enqueue is called with c.mu held, so the queue order is the transition
// order.
func (c *Checker) enqueue(s State) {
	c.qmu.Lock()
	c.pending = append(c.pending, s)
	c.qmu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Checker) deliver() {
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
		}

		for {
			c.qmu.Lock()
			if len(c.pending) == 0 {
				c.qmu.Unlock()
				break
			}
			s := c.pending[0]
			c.pending = c.pending[1:]
			c.qmu.Unlock()

			select {
			case <-c.done:
				return
			default:
			}
			c.onChange(s)
		}
	}
}

func (c *Checker) runLocked(cmd Command) {
	switch cmd.Kind {
	case CmdCancel:
		c.stopLocked()

	case CmdSchedule:
		c.stopLocked()
		gen := cmd.Generation
		c.timer = time.AfterFunc(c.debounce, func() {
			c.dispatch(TimerFired{Generation: gen})
		})

	case CmdQuery:
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		go c.query(ctx, cmd)
	}
}

func (c *Checker) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Checker) query(ctx context.Context, cmd Command) {
	available, err := c.source.Check(ctx, cmd.Slug, cmd.Exclude)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Debug("availability query failed", zap.String("slug", cmd.Slug), zap.Error(err))
		}
		c.dispatch(ResultFailed{Generation: cmd.Generation, Err: err})
		return
	}
	c.dispatch(ResultReceived{Generation: cmd.Generation, Available: available})
}
