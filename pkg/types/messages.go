package types

// Server -> Client
//
// turn_changed:
//   is_local_turn: boolean
//
// damage_resolved:
//   target_side: "local" | "remote"
//   amount: number
//   grade: "SSS" | "SS" | "S" | "A" | "B" | "C" | "F"
//   is_critical: boolean
//   is_ultimate_used: boolean
//   winner_id: string (optional, present on the killing blow)
//   loser_id: string (optional)
//   elo_change: number (optional)
//
// battle_result:
//   winner_id: string
//   loser_id: string
//   elo_change: number
type ServerMessage struct {
	Type           string `json:"type"`
	IsLocalTurn    bool   `json:"is_local_turn,omitempty"`
	TargetSide     string `json:"target_side,omitempty"`
	Amount         int    `json:"amount,omitempty"`
	Grade          string `json:"grade,omitempty"`
	IsCritical     bool   `json:"is_critical,omitempty"`
	IsUltimateUsed bool   `json:"is_ultimate_used,omitempty"`
	WinnerID       string `json:"winner_id,omitempty"`
	LoserID        string `json:"loser_id,omitempty"`
	EloChange      int    `json:"elo_change,omitempty"`
}

// Client -> Server
//
// attack_submitted:
//   damage: DamagePayload
//   is_ultimate_used: boolean
type ClientMessage struct {
	Type           string         `json:"type"`
	Damage         *DamagePayload `json:"damage,omitempty"`
	IsUltimateUsed bool           `json:"is_ultimate_used,omitempty"`
}

type DamagePayload struct {
	Amount     int     `json:"amount"`
	Grade      string  `json:"grade"`
	IsCritical bool    `json:"is_critical"`
	Accuracy   float64 `json:"accuracy"`
	Confidence float64 `json:"confidence"`
}

const (
	MsgTurnChanged     = "turn_changed"
	MsgDamageResolved  = "damage_resolved"
	MsgBattleResult    = "battle_result"
	MsgAttackSubmitted = "attack_submitted"
)
