package app

import (
	"sync"
	"time"
)

// Countdown drives one room timer from an initial value down to zero.
type Countdown struct {
	initial int
	tick    time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newCountdown(initial int, tick time.Duration) *Countdown {
	return &Countdown{
		initial: initial,
		tick:    tick,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// run emits the initial value immediately, then one decremented value per tick.
// finish is called from the countdown goroutine when zero is reached.
func (c *Countdown) run(onTick func(int), finish func()) {
	defer close(c.done)

	current := c.initial
	onTick(current)
	if current <= 0 {
		finish()
		return
	}

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			select {
			case <-c.stop:
				return
			default:
			}
			current--
			onTick(current)
			if current <= 0 {
				finish()
				return
			}
		}
	}
}

func (c *Countdown) halt() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Done is closed once the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
