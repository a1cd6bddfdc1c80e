package countdown

import (
	"context"
	"sync"
	"time"
)

const (
	DEFAULT_TICKS    = 5
	DEFAULT_INTERVAL = time.Second
)

type State int

const (
	Idle State = iota
	Counting
	Confirmed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Counting:
		return "counting"
	case Confirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

type Option func(c *Controller)

func WithTicks(ticks int) Option {
	return func(c *Controller) {
		if ticks > 0 {
			c.ticks = ticks
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(c *Controller) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// OnTick registers fn to be called with the remaining count after every tick.
func OnTick(fn func(remaining int)) Option {
	return func(c *Controller) {
		c.onTick = fn
	}
}

// OnConfirmed registers fn to be called once a countdown completes without being cancelled.
func OnConfirmed(fn func()) Option {
	return func(c *Controller) {
		c.onConfirmed = fn
	}
}

// Controller gates an SOS press behind a cancellable countdown.
//
//	Idle --press--> Counting --press--> Idle
//	Counting --count reaches 0--> Confirmed
//	Confirmed --press--> Confirmed
//
// Every Counting episode owns its own cancel func & episode number, a tick is only
// applied while the episode that scheduled it is still the current one.
type Controller struct {
	mu        sync.Mutex
	state     State
	remaining int
	episode   uint64
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	ticks       int
	interval    time.Duration
	onTick      func(remaining int)
	onConfirmed func()
}

func New(opts ...Option) *Controller {
	c := &Controller{
		state:    Idle,
		ticks:    DEFAULT_TICKS,
		interval: DEFAULT_INTERVAL,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.remaining = c.ticks
	return c
}

// Press applies a button press & returns the resulting state.
func (c *Controller) Press() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Idle:
		c.startEpisode()
	case Counting:
		c.cancelEpisode()
		c.state = Idle
	case Confirmed:
		// inert until Reset
	}

	return c.state
}

// Reset moves a Confirmed controller back to Idle, e.g. when the alert that
// followed the confirmation could not be delivered. It reports whether it did anything.
func (c *Controller) Reset() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Confirmed {
		return false
	}

	c.state = Idle
	c.remaining = c.ticks
	return true
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.remaining
}

// Stop cancels a running countdown, without confirming it, & waits for its loop to exit.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == Counting {
		c.cancelEpisode()
		c.state = Idle
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// must be called with c.mu held
func (c *Controller) startEpisode() {
	ctx, cancel := context.WithCancel(context.Background())

	c.episode++
	c.cancel = cancel
	c.remaining = c.ticks
	c.state = Counting

	c.wg.Add(1)
	go c.loop(ctx, c.episode)
}

// must be called with c.mu held
func (c *Controller) cancelEpisode() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.remaining = c.ticks
}

func (c *Controller) loop(ctx context.Context, episode uint64) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining, confirmed, ok := c.tick(episode)
			if !ok {
				return
			}

			if c.onTick != nil {
				c.onTick(remaining)
			}

			if confirmed {
				if c.onConfirmed != nil {
					c.onConfirmed()
				}
				return
			}
		}
	}
}

// tick decrements the count for episode. ok is false when episode is stale or cancelled.
func (c *Controller) tick(episode uint64) (remaining int, confirmed bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.episode != episode || c.state != Counting {
		return 0, false, false
	}

	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.state = Confirmed
		c.cancel()
		c.cancel = nil
		return 0, true, true
	}

	return c.remaining, false, true
}
