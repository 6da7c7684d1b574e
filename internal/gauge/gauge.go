package gauge

import "errors"

var ErrNotReady = errors.New("ultimate not ready")

// Step is the charge gained per successful skill. Three successes fill the
// gauge.
const Step = 100.0 / 3.0

const full = 100.0

// Gauge tracks one combatant's progress toward their ultimate. Readiness is
// deliberately delayed by one turn: reaching full charge latches
// pendingFullCharge, and only the next OnTurnStart flips UltimateReady.
// This keeps a telegraph window open for the opponent.
type Gauge struct {
	charge            float64
	ultimateReady     bool
	pendingFullCharge bool
}

func New() *Gauge {
	return &Gauge{}
}

// OnSkillSuccess adds one charge step, clamped to full. Reaching full only
// latches the pending flag; readiness waits for the next turn boundary.
func (g *Gauge) OnSkillSuccess() {
	g.charge += Step
	if g.charge >= full {
		g.charge = full
		g.pendingFullCharge = true
	}
}

// OnTurnStart is the single place readiness flips on.
func (g *Gauge) OnTurnStart() {
	if g.pendingFullCharge && !g.ultimateReady {
		g.ultimateReady = true
	}
}

// OnUltimateUsed consumes the gauge. Calling it while not ready is a caller
// contract violation: the call is rejected and no state changes.
func (g *Gauge) OnUltimateUsed() error {
	if !g.ultimateReady {
		return ErrNotReady
	}
	g.charge = 0
	g.ultimateReady = false
	g.pendingFullCharge = false
	return nil
}

func (g *Gauge) Reset() {
	g.charge = 0
	g.ultimateReady = false
	g.pendingFullCharge = false
}

func (g *Gauge) Charge() float64 { return g.charge }

func (g *Gauge) UltimateReady() bool { return g.ultimateReady }

// View is an immutable copy for snapshots.
type View struct {
	Charge        float64 `json:"charge"`
	UltimateReady bool    `json:"ultimate_ready"`
}

func (g *Gauge) View() View {
	return View{Charge: g.charge, UltimateReady: g.ultimateReady}
}
