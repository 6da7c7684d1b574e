package duel

import "github.com/jaehyuk-c/voiceduel-client/internal/battle"

type Msg interface{ isDuelMsg() }

// Start initializes the session once the room layer has matched both
// players.
type Start struct {
	Params battle.InitParams
}

func (Start) isDuelMsg() {}

// FromServer carries one decoded network event, in arrival order.
type FromServer struct {
	Event battle.Event
}

func (FromServer) isDuelMsg() {}

// MarkAttackSubmitted is the orchestrator's placeholder after sending an
// attack: local turn shows as over until the authoritative turn signal
// arrives and overwrites it.
type MarkAttackSubmitted struct{}

func (MarkAttackSubmitted) isDuelMsg() {}

// AudioDone is reported by the presentation layer when the final attack's
// sound effect finished playing. One of the three finish-gate signals.
type AudioDone struct{}

func (AudioDone) isDuelMsg() {}

type Join struct {
	ObserverID string
	Outbox     chan Snapshot // where this observer receives snapshots
}

func (Join) isDuelMsg() {}

type Leave struct{ ObserverID string }

func (Leave) isDuelMsg() {}

type ResetSession struct{}

func (ResetSession) isDuelMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isDuelMsg() {}

type Shutdown struct{}

func (Shutdown) isDuelMsg() {}

// finishReady is posted back to the inbox when the finish gate drains.
type finishReady struct {
	result battle.Result
}

func (finishReady) isDuelMsg() {}
