package capture

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jaehyuk-c/voiceduel-client/internal/duel"
	"github.com/jaehyuk-c/voiceduel-client/internal/scoring"
	"github.com/jaehyuk-c/voiceduel-client/internal/similarity"
	"github.com/jaehyuk-c/voiceduel-client/pkg/types"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseCountdown Phase = "countdown"
	PhaseCapturing Phase = "capturing"
	PhaseScoring   Phase = "scoring"
)

// Recorder is the audio capture handle. Release must be safe to call on any
// exit path, including after a failed Start.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (transcript string, err error)
	Release()
}

// Scorer is the remote scoring collaborator.
type Scorer interface {
	Score(ctx context.Context, req scoring.Request) (scoring.Result, error)
}

// Submitter carries the resolved attack back onto the wire.
type Submitter interface {
	SubmitAttack(ctx context.Context, damage types.DamagePayload, ultimateUsed bool) error
}

// Events are optional presentation callbacks. Any field may be nil. They are
// invoked from the orchestrator's turn goroutine.
type Events struct {
	OnPhase         func(Phase)
	OnCountdown     func(step int) // steps..1, then 0 as the start marker
	OnRemaining     func(seconds float64)
	OnCaptureFailed func(err error)
}

type Config struct {
	CountdownSteps int
	CountdownTick  time.Duration
	CaptureWindow  time.Duration
	CaptureTick    time.Duration
	ScoreTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		CountdownSteps: 3,
		CountdownTick:  time.Second,
		CaptureWindow:  5 * time.Second,
		CaptureTick:    100 * time.Millisecond,
		ScoreTimeout:   3 * time.Second,
	}
}

// Profile is the local character's static catalog data the orchestrator
// needs: which phrases to expect.
type Profile struct {
	CharacterID    string
	SkillPhrase    string
	UltimatePhrase string
}

// Orchestrator drives one local turn at a time through
// countdown -> capture -> scoring -> submission. It implements
// duel.TurnDriver. Single-flight: a turn-start signal while any phase is in
// progress is ignored, which closes the race between a turn-change event and
// a completing capture.
type Orchestrator struct {
	cfg     Config
	profile Profile
	rec     Recorder
	scorer  Scorer
	sub     Submitter
	events  Events
	log     *zap.Logger

	parent context.Context

	mu        sync.Mutex
	phase     Phase
	cancel    context.CancelFunc
	forceStop chan struct{}

	session chan<- duel.Msg
}

func New(parent context.Context, cfg Config, profile Profile, rec Recorder, scorer Scorer, sub Submitter, events Events, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		profile: profile,
		rec:     rec,
		scorer:  scorer,
		sub:     sub,
		events:  events,
		log:     log,
		parent:  parent,
		phase:   PhaseIdle,
	}
}

// BindSession points the orchestrator at the duel inbox for the local-turn
// placeholder. Must be called before the first turn.
func (o *Orchestrator) BindSession(inbox chan<- duel.Msg) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session = inbox
}

func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// BeginTurn starts the turn sequence. Returns false if a turn is already in
// flight; the caller drops the signal.
func (o *Orchestrator) BeginTurn(info duel.TurnInfo) bool {
	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(o.parent)
	o.cancel = cancel
	o.forceStop = make(chan struct{}, 1)
	o.phase = PhaseCountdown
	o.mu.Unlock()

	o.notifyPhase(PhaseCountdown)
	go o.runTurn(ctx, info)
	return true
}

// Abort cancels any in-flight turn without emitting an attack. Called when
// the session finishes or resets mid-capture.
func (o *Orchestrator) Abort() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// ForceStop ends the capture window early; the captured utterance so far
// still goes to scoring. Not user-facing yet, but the preemption contract
// is part of the capture window design.
func (o *Orchestrator) ForceStop() {
	o.mu.Lock()
	stop := o.forceStop
	phase := o.phase
	o.mu.Unlock()
	if phase != PhaseCapturing || stop == nil {
		return
	}
	select {
	case stop <- struct{}{}:
	default:
	}
}

func (o *Orchestrator) runTurn(ctx context.Context, info duel.TurnInfo) {
	defer o.finishTurn()

	if !o.countdown(ctx) {
		return
	}

	o.setPhase(PhaseCapturing)
	transcript, ok := o.captureWindow(ctx)
	if ctx.Err() != nil {
		return // session gone; no attack
	}
	if !ok {
		// Mic failure forfeits the turn as a miss; the attack is still
		// submitted so the duel keeps moving.
		o.setPhase(PhaseScoring)
		o.submit(scoring.Miss(), false)
		return
	}

	o.setPhase(PhaseScoring)
	result, ultimateUsed := o.score(ctx, info, transcript)
	if ctx.Err() != nil {
		return
	}
	o.submit(result, ultimateUsed)
}

func (o *Orchestrator) finishTurn() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.forceStop = nil
	o.phase = PhaseIdle
	o.mu.Unlock()
	o.notifyPhase(PhaseIdle)
}

// countdown runs the fixed 3-2-1 sequence, one tick per step, then the
// transition marker. Returns false when aborted.
func (o *Orchestrator) countdown(ctx context.Context) bool {
	for step := o.cfg.CountdownSteps; step >= 1; step-- {
		if o.events.OnCountdown != nil {
			o.events.OnCountdown(step)
		}
		select {
		case <-time.After(o.cfg.CountdownTick):
		case <-ctx.Done():
			return false
		}
	}
	if o.events.OnCountdown != nil {
		o.events.OnCountdown(0)
	}
	return true
}

// captureWindow owns the audio device for its duration and releases it on
// every path out.
func (o *Orchestrator) captureWindow(ctx context.Context) (string, bool) {
	o.mu.Lock()
	stop := o.forceStop
	o.mu.Unlock()

	if err := o.rec.Start(ctx); err != nil {
		o.log.Warn("capture start failed", zap.Error(err))
		if o.events.OnCaptureFailed != nil {
			o.events.OnCaptureFailed(err)
		}
		o.rec.Release()
		return "", false
	}
	defer o.rec.Release()

	remaining := o.cfg.CaptureWindow
	ticker := time.NewTicker(o.cfg.CaptureTick)
	defer ticker.Stop()

	for remaining > 0 {
		select {
		case <-ticker.C:
			remaining -= o.cfg.CaptureTick
			if remaining < 0 {
				remaining = 0
			}
			if o.events.OnRemaining != nil {
				o.events.OnRemaining(remaining.Seconds())
			}
		case <-stop:
			remaining = 0
		case <-ctx.Done():
			_, _ = o.rec.Stop()
			return "", false
		}
	}

	transcript, err := o.rec.Stop()
	if err != nil {
		o.log.Warn("capture stop failed", zap.Error(err))
		if o.events.OnCaptureFailed != nil {
			o.events.OnCaptureFailed(err)
		}
		return "", false
	}
	return transcript, true
}

// score resolves the utterance to a grade and damage. The ultimate decision
// is local: when the gauge is ready and the transcript clears the stricter
// threshold against the ultimate phrase, this attack spends the gauge.
func (o *Orchestrator) score(ctx context.Context, info duel.TurnInfo, transcript string) (scoring.Result, bool) {
	expected := o.profile.SkillPhrase
	ultimateUsed := false
	if info.UltimateReady && similarity.MatchesUltimate(transcript, o.profile.UltimatePhrase) {
		expected = o.profile.UltimatePhrase
		ultimateUsed = true
	}

	req := scoring.Request{
		CapturedUtteranceText: transcript,
		ExpectedPhrase:        expected,
		CharacterID:           o.profile.CharacterID,
	}

	sctx, cancel := context.WithTimeout(ctx, o.cfg.ScoreTimeout)
	defer cancel()

	result, err := o.scorer.Score(sctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return scoring.Result{}, false
		}
		// Degrade to the local estimate so the turn still completes.
		o.log.Warn("scoring service failed, using local estimate", zap.Error(err))
		result = scoring.LocalEstimate(transcript, expected)
	}
	return result, ultimateUsed
}

func (o *Orchestrator) submit(result scoring.Result, ultimateUsed bool) {
	damage := types.DamagePayload{
		Amount:     result.DamageAmount,
		Grade:      string(result.Grade),
		IsCritical: result.IsCritical,
		Accuracy:   result.Accuracy,
		Confidence: result.Confidence,
	}

	// Submission gets its own context: the attack must go out even while
	// the turn context is winding down normally.
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.ScoreTimeout)
	defer cancel()
	if err := o.sub.SubmitAttack(ctx, damage, ultimateUsed); err != nil {
		o.log.Error("attack submission failed", zap.Error(err))
		return
	}

	o.mu.Lock()
	session := o.session
	o.mu.Unlock()
	if session != nil {
		session <- duel.MarkAttackSubmitted{}
	}
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
	o.notifyPhase(p)
}

func (o *Orchestrator) notifyPhase(p Phase) {
	if o.events.OnPhase != nil {
		o.events.OnPhase(p)
	}
}
