package battle

import "errors"

var ErrNotActive = errors.New("session not active")
var ErrNotPending = errors.New("session already initialized")
var ErrUnsupportedEvent = errors.New("unsupported event")

type Side string

const (
	SideLocal  Side = "local"
	SideRemote Side = "remote"
)

func (s Side) Other() Side {
	if s == SideLocal {
		return SideRemote
	}
	return SideLocal
}

type Lifecycle string

const (
	LifecyclePending  Lifecycle = "pending"
	LifecycleActive   Lifecycle = "active"
	LifecycleFinished Lifecycle = "finished"
)

// Combatant is one side of a duel. Mutated only by damage application.
type Combatant struct {
	CharacterID string `json:"character_id"`
	HP          int    `json:"hp"`
	MaxHP       int    `json:"max_hp"`
}

type Result struct {
	WinnerID  string `json:"winner_id"`
	LoserID   string `json:"loser_id"`
	EloChange int    `json:"elo_change"`
}

// State is the full session state. Values are copied through Apply, never
// mutated in place, so callers can hold old snapshots safely.
type State struct {
	SessionID string    `json:"session_id"`
	Lifecycle Lifecycle `json:"lifecycle"`
	LocalTurn bool      `json:"local_turn"`
	Local     Combatant `json:"local"`
	Remote    Combatant `json:"remote"`
	Result    *Result   `json:"result,omitempty"`
}

func (s State) Combatant(side Side) Combatant {
	if side == SideLocal {
		return s.Local
	}
	return s.Remote
}

// Inbound events, delivered by the network adapter in arrival order.
type EventType string

const (
	EvtTurnChanged    EventType = "TurnChanged"
	EvtDamageResolved EventType = "DamageResolved"
	EvtBattleResult   EventType = "BattleResult"
)

type Event struct {
	Type EventType

	// TurnChanged
	LocalTurn bool

	// DamageResolved
	Target       Side
	Amount       int
	Grade        Grade
	Critical     bool
	UltimateUsed bool

	// DamageResolved (optional) / BattleResult
	WinnerID  string
	LoserID   string
	EloChange int
}

// Effects are side-effect requests emitted toward the session owner: gauge
// updates, presentation cues, and the deferred finish.
type EffectType string

const (
	FxTurnStarted   EffectType = "TurnStarted"
	FxHitLanded     EffectType = "HitLanded"
	FxGaugeCharged  EffectType = "GaugeCharged"
	FxGaugeSpent    EffectType = "GaugeSpent"
	FxFinishPending EffectType = "FinishPending"
	FxFinished      EffectType = "Finished"
)

type Effect struct {
	Type     EffectType
	Side     Side
	Amount   int
	Grade    Grade
	Critical bool
	Miss     bool
	Result   *Result
}

type InitParams struct {
	SessionID         string
	LocalCharacterID  string
	RemoteCharacterID string
	MaxHP             int
	LocalGoesFirst    bool
}

// Initialize moves a pending session to active with both combatants at full
// HP and emits the opening TurnStarted.
func Initialize(s State, p InitParams) ([]Effect, State, error) {
	if s.Lifecycle != LifecyclePending {
		return nil, s, ErrNotPending
	}

	ns := State{
		SessionID: p.SessionID,
		Lifecycle: LifecycleActive,
		LocalTurn: p.LocalGoesFirst,
		Local:     Combatant{CharacterID: p.LocalCharacterID, HP: p.MaxHP, MaxHP: p.MaxHP},
		Remote:    Combatant{CharacterID: p.RemoteCharacterID, HP: p.MaxHP, MaxHP: p.MaxHP},
	}

	first := SideRemote
	if p.LocalGoesFirst {
		first = SideLocal
	}
	return []Effect{{Type: FxTurnStarted, Side: first}}, ns, nil
}

// Apply consumes one network event against the current state and returns the
// effects to perform plus the successor state. Events that require an active
// session return ErrNotActive; the caller drops them (late and duplicate
// delivery after a finish is expected noise, not a fault).
func Apply(s State, ev Event) ([]Effect, State, error) {
	if s.Lifecycle != LifecycleActive {
		return nil, s, ErrNotActive
	}

	ns := s

	switch ev.Type {
	case EvtTurnChanged:
		// Authoritative: overwrites any local placeholder, never merged.
		ns.LocalTurn = ev.LocalTurn
		side := SideRemote
		if ev.LocalTurn {
			side = SideLocal
		}
		return []Effect{{Type: FxTurnStarted, Side: side}}, ns, nil

	case EvtDamageResolved:
		target := ev.Target
		attacker := target.Other()

		victim := ns.Combatant(target)
		victim.HP -= ev.Amount
		if victim.HP < 0 {
			victim.HP = 0
		}
		if target == SideLocal {
			ns.Local = victim
		} else {
			ns.Remote = victim
		}

		effects := []Effect{{
			Type:     FxHitLanded,
			Side:     target,
			Amount:   ev.Amount,
			Grade:    ev.Grade,
			Critical: ev.Critical,
			Miss:     ev.Grade.Miss(),
		}}

		// The attacker's gauge charges on a successful grade; an ultimate
		// spends it instead.
		if ev.UltimateUsed {
			effects = append(effects, Effect{Type: FxGaugeSpent, Side: attacker})
		} else if ev.Grade.ChargesGauge() {
			effects = append(effects, Effect{Type: FxGaugeCharged, Side: attacker})
		}

		// Being hit ends the attacker's turn and starts the defender's.
		// Only the local-defender direction flips here; when we were the
		// attacker the authoritative turn_changed event does it.
		if target == SideLocal {
			ns.LocalTurn = true
			effects = append(effects, Effect{Type: FxTurnStarted, Side: SideLocal})
		}

		if ev.WinnerID != "" {
			res := &Result{WinnerID: ev.WinnerID, LoserID: ev.LoserID, EloChange: ev.EloChange}
			if res.LoserID == "" {
				if res.WinnerID == ns.Local.CharacterID {
					res.LoserID = ns.Remote.CharacterID
				} else {
					res.LoserID = ns.Local.CharacterID
				}
			}
			effects = append(effects, Effect{Type: FxFinishPending, Result: res})
		}
		return effects, ns, nil

	case EvtBattleResult:
		res := &Result{WinnerID: ev.WinnerID, LoserID: ev.LoserID, EloChange: ev.EloChange}
		return []Effect{{Type: FxFinishPending, Result: res}}, ns, nil

	default:
		return nil, s, ErrUnsupportedEvent
	}
}

// Finalize surfaces the finished lifecycle once the finish gate has drained.
// Idempotent: finalizing a finished session is a no-op.
func Finalize(s State, res Result) ([]Effect, State) {
	if s.Lifecycle == LifecycleFinished {
		return nil, s
	}
	ns := s
	ns.Lifecycle = LifecycleFinished
	ns.Result = &res
	return []Effect{{Type: FxFinished, Result: &res}}, ns
}

// NewPendingState is the fresh pre-initialization state; Reset returns to it
// from anywhere.
func NewPendingState() State {
	return State{Lifecycle: LifecyclePending}
}

func Reset() State {
	return NewPendingState()
}
