package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jaehyuk-c/voiceduel-client/internal/duel"
	"github.com/jaehyuk-c/voiceduel-client/internal/scoring"
	"github.com/jaehyuk-c/voiceduel-client/pkg/types"
)

type fakeRecorder struct {
	mu         sync.Mutex
	transcript string
	startErr   error
	stopErr    error
	started    int
	released   int
}

func (f *fakeRecorder) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	return nil
}

func (f *fakeRecorder) Stop() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transcript, f.stopErr
}

func (f *fakeRecorder) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
}

func (f *fakeRecorder) releaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

type fakeScorer struct {
	mu     sync.Mutex
	result scoring.Result
	err    error
	reqs   []scoring.Request
}

func (f *fakeScorer) Score(ctx context.Context, req scoring.Request) (scoring.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.result, f.err
}

type fakeSubmitter struct {
	mu       sync.Mutex
	attacks  []types.DamagePayload
	ults     []bool
	err      error
	notified chan struct{}
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{notified: make(chan struct{}, 8)}
}

func (f *fakeSubmitter) SubmitAttack(ctx context.Context, damage types.DamagePayload, ultimateUsed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.attacks = append(f.attacks, damage)
	f.ults = append(f.ults, ultimateUsed)
	f.notified <- struct{}{}
	return nil
}

func (f *fakeSubmitter) last(t *testing.T) (types.DamagePayload, bool) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.attacks)
	return f.attacks[len(f.attacks)-1], f.ults[len(f.ults)-1]
}

func waitSubmission(t *testing.T, f *fakeSubmitter, within time.Duration) {
	t.Helper()
	select {
	case <-f.notified:
	case <-time.After(within):
		t.Fatalf("timed out waiting for attack submission")
	}
}

func testConfig() Config {
	return Config{
		CountdownSteps: 3,
		CountdownTick:  time.Millisecond,
		CaptureWindow:  20 * time.Millisecond,
		CaptureTick:    2 * time.Millisecond,
		ScoreTimeout:   time.Second,
	}
}

func testProfile() Profile {
	return Profile{
		CharacterID:    "char-local",
		SkillPhrase:    "얼음 창이여 꿰뚫어라",
		UltimatePhrase: "만물이여 얼어붙어라",
	}
}

func newOrchestrator(t *testing.T, rec Recorder, scorer Scorer, sub Submitter) *Orchestrator {
	t.Helper()
	return New(context.Background(), testConfig(), testProfile(), rec, scorer, sub, Events{}, zap.NewNop())
}

func TestTurnCompletesAndSubmitsAttack(t *testing.T) {
	rec := &fakeRecorder{transcript: "얼음 창이여 꿰뚫어라"}
	scorer := &fakeScorer{result: scoring.Result{Grade: "S", DamageAmount: 22, Accuracy: 0.96}}
	sub := newFakeSubmitter()
	o := newOrchestrator(t, rec, scorer, sub)

	require.True(t, o.BeginTurn(duel.TurnInfo{SessionID: "sess-1"}))
	waitSubmission(t, sub, time.Second)

	damage, ult := sub.last(t)
	assert.Equal(t, "S", damage.Grade)
	assert.Equal(t, 22, damage.Amount)
	assert.False(t, ult)
	assert.Equal(t, 1, rec.releaseCount())

	require.Eventually(t, func() bool { return o.Phase() == PhaseIdle },
		time.Second, time.Millisecond)
}

func TestCaptureTimeoutWithNoSpeechStillSubmits(t *testing.T) {
	// Empty transcript: the window runs to zero, scoring grades it a miss,
	// and the attack is submitted rather than silently dropped.
	rec := &fakeRecorder{transcript: ""}
	scorer := &fakeScorer{err: errors.New("unreachable")} // force local estimate
	sub := newFakeSubmitter()
	o := newOrchestrator(t, rec, scorer, sub)

	require.True(t, o.BeginTurn(duel.TurnInfo{}))
	waitSubmission(t, sub, time.Second)

	damage, ult := sub.last(t)
	assert.Equal(t, "F", damage.Grade)
	assert.Equal(t, 0, damage.Amount)
	assert.False(t, ult)
}

func TestMicFailureForfeitsAsMiss(t *testing.T) {
	rec := &fakeRecorder{startErr: errors.New("mic unavailable")}
	scorer := &fakeScorer{}
	sub := newFakeSubmitter()

	var failed error
	var mu sync.Mutex
	o := New(context.Background(), testConfig(), testProfile(), rec, scorer, sub, Events{
		OnCaptureFailed: func(err error) {
			mu.Lock()
			failed = err
			mu.Unlock()
		},
	}, zap.NewNop())

	require.True(t, o.BeginTurn(duel.TurnInfo{}))
	waitSubmission(t, sub, time.Second)

	damage, _ := sub.last(t)
	assert.Equal(t, "F", damage.Grade)
	assert.Equal(t, 0, damage.Amount)
	assert.GreaterOrEqual(t, rec.releaseCount(), 1, "device released on the failure path")

	mu.Lock()
	defer mu.Unlock()
	require.Error(t, failed)

	// Scoring never consulted for a forfeited capture.
	scorer.mu.Lock()
	defer scorer.mu.Unlock()
	assert.Empty(t, scorer.reqs)
}

func TestScoringFailureFallsBackToLocalEstimate(t *testing.T) {
	rec := &fakeRecorder{transcript: "얼음 창이여 꿰뚫어라"}
	scorer := &fakeScorer{err: errors.New("scoring down")}
	sub := newFakeSubmitter()
	o := newOrchestrator(t, rec, scorer, sub)

	require.True(t, o.BeginTurn(duel.TurnInfo{}))
	waitSubmission(t, sub, time.Second)

	damage, _ := sub.last(t)
	// Exact transcript: local estimate grades it SSS.
	assert.Equal(t, "SSS", damage.Grade)
	assert.Equal(t, 30, damage.Amount)
	assert.False(t, damage.IsCritical, "criticals never awarded locally")
}

func TestUltimateSpokenWhenReady(t *testing.T) {
	rec := &fakeRecorder{transcript: "만물이여 얼어붙어라"}
	scorer := &fakeScorer{result: scoring.Result{Grade: "SSS", DamageAmount: 45}}
	sub := newFakeSubmitter()
	o := newOrchestrator(t, rec, scorer, sub)

	require.True(t, o.BeginTurn(duel.TurnInfo{UltimateReady: true}))
	waitSubmission(t, sub, time.Second)

	_, ult := sub.last(t)
	assert.True(t, ult)

	scorer.mu.Lock()
	defer scorer.mu.Unlock()
	require.Len(t, scorer.reqs, 1)
	assert.Equal(t, testProfile().UltimatePhrase, scorer.reqs[0].ExpectedPhrase)
}

func TestUltimatePhraseIgnoredWhenNotReady(t *testing.T) {
	rec := &fakeRecorder{transcript: "만물이여 얼어붙어라"}
	scorer := &fakeScorer{result: scoring.Result{Grade: "C", DamageAmount: 8}}
	sub := newFakeSubmitter()
	o := newOrchestrator(t, rec, scorer, sub)

	require.True(t, o.BeginTurn(duel.TurnInfo{UltimateReady: false}))
	waitSubmission(t, sub, time.Second)

	_, ult := sub.last(t)
	assert.False(t, ult)

	scorer.mu.Lock()
	defer scorer.mu.Unlock()
	require.Len(t, scorer.reqs, 1)
	assert.Equal(t, testProfile().SkillPhrase, scorer.reqs[0].ExpectedPhrase)
}

func TestSingleFlight(t *testing.T) {
	rec := &fakeRecorder{transcript: "x"}
	scorer := &fakeScorer{result: scoring.Result{Grade: "B", DamageAmount: 14}}
	sub := newFakeSubmitter()
	o := newOrchestrator(t, rec, scorer, sub)

	require.True(t, o.BeginTurn(duel.TurnInfo{}))
	// A second turn-start racing the capture must be ignored.
	assert.False(t, o.BeginTurn(duel.TurnInfo{}))

	waitSubmission(t, sub, time.Second)
	require.Eventually(t, func() bool { return o.Phase() == PhaseIdle },
		time.Second, time.Millisecond)

	// Idle again: the next turn may begin.
	assert.True(t, o.BeginTurn(duel.TurnInfo{}))
	waitSubmission(t, sub, time.Second)
}

func TestAbortMidCaptureSubmitsNothingAndReleases(t *testing.T) {
	cfg := testConfig()
	cfg.CaptureWindow = time.Second // long enough to abort mid-window
	rec := &fakeRecorder{transcript: "x"}
	scorer := &fakeScorer{}
	sub := newFakeSubmitter()
	o := New(context.Background(), cfg, testProfile(), rec, scorer, sub, Events{}, zap.NewNop())

	require.True(t, o.BeginTurn(duel.TurnInfo{}))
	require.Eventually(t, func() bool { return o.Phase() == PhaseCapturing },
		time.Second, time.Millisecond)

	o.Abort()
	require.Eventually(t, func() bool { return o.Phase() == PhaseIdle },
		time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return rec.releaseCount() >= 1 },
		time.Second, time.Millisecond)

	sub.mu.Lock()
	defer sub.mu.Unlock()
	assert.Empty(t, sub.attacks, "aborted capture must not emit an attack")
}

func TestForceStopEndsWindowEarly(t *testing.T) {
	cfg := testConfig()
	cfg.CaptureWindow = time.Minute // would time the test out without preemption
	rec := &fakeRecorder{transcript: "조기 종료"}
	scorer := &fakeScorer{result: scoring.Result{Grade: "B", DamageAmount: 14}}
	sub := newFakeSubmitter()
	o := New(context.Background(), cfg, testProfile(), rec, scorer, sub, Events{}, zap.NewNop())

	require.True(t, o.BeginTurn(duel.TurnInfo{}))
	require.Eventually(t, func() bool { return o.Phase() == PhaseCapturing },
		time.Second, time.Millisecond)

	o.ForceStop()
	waitSubmission(t, sub, time.Second)
	damage, _ := sub.last(t)
	assert.Equal(t, "B", damage.Grade)
}

func TestMarkAttackSubmittedSentToSession(t *testing.T) {
	rec := &fakeRecorder{transcript: "x"}
	scorer := &fakeScorer{result: scoring.Result{Grade: "A", DamageAmount: 18}}
	sub := newFakeSubmitter()
	o := newOrchestrator(t, rec, scorer, sub)

	inbox := make(chan duel.Msg, 4)
	o.BindSession(inbox)

	require.True(t, o.BeginTurn(duel.TurnInfo{}))
	waitSubmission(t, sub, time.Second)

	select {
	case msg := <-inbox:
		_, ok := msg.(duel.MarkAttackSubmitted)
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatalf("expected MarkAttackSubmitted on the session inbox")
	}
}
