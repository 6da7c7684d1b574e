package duel

import "sync"

// Finish-gate signals. The battle may not surface as finished until all of
// them have fired: the attack sound finished, the hit-reaction animation
// window elapsed, and the settle delay elapsed. This replaces the original
// client's chain of nested timers with one awaitable value.
const (
	SignalAudioDone     = "audio_done"
	SignalAnimationDone = "animation_done"
	SignalSettleElapsed = "settle_elapsed"
)

// Gate completes once every named signal has fired at least once. Signals
// are idempotent; unknown names are ignored.
type Gate struct {
	mu      sync.Mutex
	pending map[string]bool
	done    chan struct{}
}

func NewGate(signals ...string) *Gate {
	g := &Gate{
		pending: make(map[string]bool, len(signals)),
		done:    make(chan struct{}),
	}
	for _, s := range signals {
		g.pending[s] = true
	}
	if len(g.pending) == 0 {
		close(g.done)
	}
	return g
}

func (g *Gate) Signal(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.pending[name] {
		return
	}
	delete(g.pending, name)
	if len(g.pending) == 0 {
		close(g.done)
	}
}

// Done is closed once all signals have fired.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}
