package gauge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreeSkillSuccessesFillTheGauge(t *testing.T) {
	g := New()

	g.OnSkillSuccess()
	assert.InDelta(t, 100.0/3.0, g.Charge(), 1e-9)
	assert.False(t, g.UltimateReady())

	g.OnSkillSuccess()
	assert.InDelta(t, 200.0/3.0, g.Charge(), 1e-9)
	assert.False(t, g.UltimateReady())

	g.OnSkillSuccess()
	assert.InDelta(t, 100.0, g.Charge(), 1e-9)
	// Full, but readiness waits for the next turn boundary.
	assert.False(t, g.UltimateReady())
}

func TestChargeClampsAtFull(t *testing.T) {
	g := New()
	for i := 0; i < 10; i++ {
		g.OnSkillSuccess()
	}
	assert.InDelta(t, 100.0, g.Charge(), 1e-9)
}

func TestUltimateReadyOnlyOnNextTurnStart(t *testing.T) {
	g := New()
	g.OnSkillSuccess()
	g.OnSkillSuccess()

	// Turn boundaries before full charge do nothing.
	g.OnTurnStart()
	assert.False(t, g.UltimateReady())

	g.OnSkillSuccess()
	assert.False(t, g.UltimateReady(), "must not be ready on the turn that filled the gauge")

	g.OnTurnStart()
	assert.True(t, g.UltimateReady())
}

func TestOnUltimateUsedConsumesGauge(t *testing.T) {
	g := New()
	g.OnSkillSuccess()
	g.OnSkillSuccess()
	g.OnSkillSuccess()
	g.OnTurnStart()
	require.True(t, g.UltimateReady())

	require.NoError(t, g.OnUltimateUsed())
	assert.Zero(t, g.Charge())
	assert.False(t, g.UltimateReady())

	// Latch is cleared too: a later turn start must not re-arm.
	g.OnTurnStart()
	assert.False(t, g.UltimateReady())
}

func TestOnUltimateUsedRejectedWhenNotReady(t *testing.T) {
	g := New()
	g.OnSkillSuccess()

	err := g.OnUltimateUsed()
	require.ErrorIs(t, err, ErrNotReady)
	// Rejection leaves state untouched.
	assert.InDelta(t, 100.0/3.0, g.Charge(), 1e-9)
}

func TestReset(t *testing.T) {
	g := New()
	g.OnSkillSuccess()
	g.OnSkillSuccess()
	g.OnSkillSuccess()
	g.OnTurnStart()

	g.Reset()
	assert.Zero(t, g.Charge())
	assert.False(t, g.UltimateReady())
	g.OnTurnStart()
	assert.False(t, g.UltimateReady())
}
