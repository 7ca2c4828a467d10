package game

import "time"

// countdown is the per-question timer. It is only touched under Controller.mu.
// Each arm bumps the generation so ticks from an earlier question are ignored.
type countdown struct {
	armed      bool
	generation uint64
	stop       chan struct{}
}

// arm starts a new countdown. With a zero interval no goroutine runs and
// ticks must come from Controller.Tick.
func (t *countdown) arm(interval time.Duration, onTick func(gen uint64)) {
	t.disarm()
	t.generation++
	t.armed = true
	if interval <= 0 {
		return
	}

	stop := make(chan struct{})
	t.stop = stop
	gen := t.generation
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				onTick(gen)
			}
		}
	}()
}

func (t *countdown) disarm() {
	t.armed = false
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
