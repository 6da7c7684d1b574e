package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jaehyuk-c/voiceduel-client/internal/battle"
	"github.com/jaehyuk-c/voiceduel-client/internal/similarity"
)

// Request is one scoring call for a captured utterance against the expected
// trigger phrase.
type Request struct {
	CapturedUtteranceText  string `json:"captured_utterance_text"`
	CapturedUtteranceAudio []byte `json:"captured_utterance_audio,omitempty"`
	ExpectedPhrase         string `json:"expected_phrase"`
	CharacterID            string `json:"character_id"`
}

type Result struct {
	Grade        battle.Grade `json:"grade"`
	DamageAmount int          `json:"damage_amount"`
	IsCritical   bool         `json:"is_critical"`
	Accuracy     float64      `json:"accuracy"`
	Confidence   float64      `json:"confidence"`
}

// Client calls the remote scoring service. Failures are expected and
// recoverable; callers fall back to LocalEstimate.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Score(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("encode scoring request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build scoring request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("scoring call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Result{}, fmt.Errorf("scoring call: unexpected status %d", resp.StatusCode)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decode scoring response: %w", err)
	}
	if _, ok := battle.ParseGrade(string(res.Grade)); !ok {
		return Result{}, fmt.Errorf("scoring response: unknown grade %q", res.Grade)
	}
	return res, nil
}

// fallbackDamage is the per-grade damage used when the remote scorer is
// unreachable and the turn still has to resolve.
var fallbackDamage = map[battle.Grade]int{
	battle.GradeSSS: 30,
	battle.GradeSS:  26,
	battle.GradeS:   22,
	battle.GradeA:   18,
	battle.GradeB:   14,
	battle.GradeC:   8,
	battle.GradeF:   0,
}

// LocalEstimate grades an utterance from text similarity alone so a turn can
// complete when the scoring service fails. Criticals are never awarded
// locally; the similarity doubles as the accuracy signal and confidence is
// zero to mark the estimate as degraded.
func LocalEstimate(transcript, expected string) Result {
	s := similarity.Score(transcript, expected)

	var grade battle.Grade
	switch {
	case s >= 0.97:
		grade = battle.GradeSSS
	case s >= similarity.UltimateThreshold:
		grade = battle.GradeSS
	case s >= 0.92:
		grade = battle.GradeS
	case s >= similarity.SkillThreshold:
		grade = battle.GradeA
	case s >= 0.80:
		grade = battle.GradeB
	case s >= 0.60:
		grade = battle.GradeC
	default:
		grade = battle.GradeF
	}

	return Result{
		Grade:        grade,
		DamageAmount: fallbackDamage[grade],
		Accuracy:     s,
	}
}

// Miss is the zero-damage result for a forfeited turn (capture failure or
// silence).
func Miss() Result {
	return Result{Grade: battle.GradeF}
}
