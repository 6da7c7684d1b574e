package duel

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jaehyuk-c/voiceduel-client/internal/battle"
	"github.com/jaehyuk-c/voiceduel-client/internal/gauge"
)

// TurnDriver is the voice-capture orchestrator from the duel's point of
// view. BeginTurn returns false when a turn is already in flight (the signal
// is then ignored, single-flight). Abort cancels any in-flight capture
// without an attack being emitted.
type TurnDriver interface {
	BeginTurn(info TurnInfo) bool
	Abort()
}

type TurnInfo struct {
	SessionID     string
	UltimateReady bool
}

type Config struct {
	// HitAnimationWindow is the fixed hit-reaction window the finish gate
	// waits out before the battle may surface as concluded.
	HitAnimationWindow time.Duration
	// SettleDelay is the additional settle period after the final hit.
	SettleDelay time.Duration
	// AudioDoneTimeout fires the audio signal if presentation never reports
	// playback completion, so a missing sound hook cannot wedge the finish.
	AudioDoneTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		HitAnimationWindow: 600 * time.Millisecond,
		SettleDelay:        1500 * time.Millisecond,
		AudioDoneTimeout:   5 * time.Second,
	}
}

// Snapshot is what observers receive on every state change. Effects carry
// the presentation cues (hit numbers, MISS, gauge changes) produced by the
// transition that made this snapshot.
type Snapshot struct {
	Version int
	State   battle.State
	Gauges  map[battle.Side]gauge.View
	Effects []battle.Effect
}

// View is a test/debug readout of internal state.
type View struct {
	Version      int
	NumObservers int
	State        battle.State
	Gauges       map[battle.Side]gauge.View
}

// Duel is the actor owning one battle session: battle state, both gauges,
// observer outboxes, and the deferred finish gate. Everything runs on one
// goroutine; concurrency is event ordering, not shared memory.
type Duel struct {
	inbox     chan Msg
	state     battle.State
	version   int
	gauges    map[battle.Side]*gauge.Gauge
	observers map[string]chan Snapshot
	driver    TurnDriver
	cfg       Config
	log       *zap.Logger

	gate *Gate

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, driver TurnDriver, cfg Config, log *zap.Logger) *Duel {
	ctx, cancel := context.WithCancel(parent)

	d := &Duel{
		inbox: make(chan Msg, 64),
		state: battle.NewPendingState(),
		gauges: map[battle.Side]*gauge.Gauge{
			battle.SideLocal:  gauge.New(),
			battle.SideRemote: gauge.New(),
		},
		observers: make(map[string]chan Snapshot),
		driver:    driver,
		cfg:       cfg,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}

	go d.loop()
	return d
}

// Inbox is where the network adapter, orchestrator, and presentation layer
// post messages.
func (d *Duel) Inbox() chan<- Msg { return d.inbox }

func (d *Duel) loop() {
	for {
		select {
		case <-d.ctx.Done():
			d.shutdown()
			return

		case m := <-d.inbox:
			switch msg := m.(type) {
			case Start:
				fx, ns, err := battle.Initialize(d.state, msg.Params)
				if err != nil {
					d.log.Warn("start ignored", zap.Error(err))
					break
				}
				d.state = ns
				d.commit(fx)

			case FromServer:
				fx, ns, err := battle.Apply(d.state, msg.Event)
				if err != nil {
					// Late/duplicate delivery after a finish is expected
					// noise, not a fault.
					if errors.Is(err, battle.ErrNotActive) {
						d.log.Debug("event dropped",
							zap.String("type", string(msg.Event.Type)),
							zap.String("lifecycle", string(d.state.Lifecycle)))
						break
					}
					d.log.Warn("event rejected", zap.String("type", string(msg.Event.Type)), zap.Error(err))
					break
				}
				d.state = ns
				d.commit(fx)

			case MarkAttackSubmitted:
				if d.state.Lifecycle != battle.LifecycleActive {
					break
				}
				// Placeholder only; the next authoritative turn event wins.
				d.state.LocalTurn = false
				d.commit(nil)

			case AudioDone:
				if d.gate != nil {
					d.gate.Signal(SignalAudioDone)
				}

			case finishReady:
				fx, ns := battle.Finalize(d.state, msg.result)
				if len(fx) == 0 {
					break
				}
				d.state = ns
				d.gate = nil
				if d.driver != nil {
					d.driver.Abort()
				}
				d.commit(fx)

			case ResetSession:
				d.state = battle.Reset()
				for _, g := range d.gauges {
					g.Reset()
				}
				d.gate = nil
				if d.driver != nil {
					d.driver.Abort()
				}
				d.commit(nil)

			case Join:
				d.observers[msg.ObserverID] = msg.Outbox
				msg.Outbox <- d.snapshot(nil)

			case Leave:
				delete(d.observers, msg.ObserverID)

			case GetState:
				msg.Reply <- View{
					Version:      d.version,
					NumObservers: len(d.observers),
					State:        d.state,
					Gauges:       d.gaugeViews(),
				}

			case Shutdown:
				d.shutdown()
				return
			}
		}
	}
}

// commit runs the effects of one transition, bumps the version, and
// broadcasts the resulting snapshot.
func (d *Duel) commit(effects []battle.Effect) {
	for _, fx := range effects {
		d.runEffect(fx)
	}
	d.version++
	d.broadcast(d.snapshot(effects))
}

func (d *Duel) runEffect(fx battle.Effect) {
	switch fx.Type {
	case battle.FxTurnStarted:
		d.gauges[fx.Side].OnTurnStart()
		if fx.Side == battle.SideLocal && d.driver != nil {
			info := TurnInfo{
				SessionID:     d.state.SessionID,
				UltimateReady: d.gauges[battle.SideLocal].UltimateReady(),
			}
			if !d.driver.BeginTurn(info) {
				d.log.Debug("turn start ignored, capture already in flight")
			}
		}

	case battle.FxGaugeCharged:
		d.gauges[fx.Side].OnSkillSuccess()

	case battle.FxGaugeSpent:
		if err := d.gauges[fx.Side].OnUltimateUsed(); err != nil {
			// Server claims an ultimate we never saw charge. Keep the gauge
			// intact rather than corrupt it.
			d.log.Warn("gauge spend rejected", zap.String("side", string(fx.Side)), zap.Error(err))
		}

	case battle.FxHitLanded:
		d.log.Info("hit landed",
			zap.String("target", string(fx.Side)),
			zap.Int("amount", fx.Amount),
			zap.String("grade", string(fx.Grade)),
			zap.Bool("critical", fx.Critical),
			zap.Bool("miss", fx.Miss))

	case battle.FxFinishPending:
		d.armFinishGate(*fx.Result)

	case battle.FxFinished:
		d.log.Info("battle concluded",
			zap.String("winner", fx.Result.WinnerID),
			zap.Int("elo_change", fx.Result.EloChange))
	}
}

// armFinishGate defers the finished transition until the attack audio, the
// hit-reaction window, and the settle delay have all completed, so the
// HP-to-zero animation is never cut short.
func (d *Duel) armFinishGate(res battle.Result) {
	if d.gate != nil {
		return // already arming for this result
	}
	gate := NewGate(SignalAudioDone, SignalAnimationDone, SignalSettleElapsed)
	d.gate = gate

	time.AfterFunc(d.cfg.HitAnimationWindow, func() { gate.Signal(SignalAnimationDone) })
	time.AfterFunc(d.cfg.SettleDelay, func() { gate.Signal(SignalSettleElapsed) })
	time.AfterFunc(d.cfg.AudioDoneTimeout, func() { gate.Signal(SignalAudioDone) })

	go func() {
		select {
		case <-gate.Done():
			select {
			case d.inbox <- finishReady{result: res}:
			case <-d.ctx.Done():
			}
		case <-d.ctx.Done():
		}
	}()
}

func (d *Duel) snapshot(effects []battle.Effect) Snapshot {
	return Snapshot{
		Version: d.version,
		State:   d.state,
		Gauges:  d.gaugeViews(),
		Effects: effects,
	}
}

func (d *Duel) gaugeViews() map[battle.Side]gauge.View {
	return map[battle.Side]gauge.View{
		battle.SideLocal:  d.gauges[battle.SideLocal].View(),
		battle.SideRemote: d.gauges[battle.SideRemote].View(),
	}
}

func (d *Duel) broadcast(snap Snapshot) {
	for id, ch := range d.observers {
		select {
		case ch <- snap:
		default:
			// Observer is slow/full - drop them.
			close(ch)
			delete(d.observers, id)
		}
	}
}

func (d *Duel) shutdown() {
	if d.driver != nil {
		d.driver.Abort()
	}
	for id, ch := range d.observers {
		close(ch)
		delete(d.observers, id)
	}
	d.cancel()
}
