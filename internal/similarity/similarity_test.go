package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_BaseCases(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "both empty", a: "", b: "", want: 1},
		{name: "left empty", a: "", b: "x", want: 0},
		{name: "right empty", a: "x", b: "", want: 0},
		{name: "identical", a: "fireball", b: "fireball", want: 1},
		{name: "punctuation only vs empty", a: "!?.", b: "", want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.a, tc.b))
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"completely different", "전혀 다른 문장"},
		{"a", "zzzzzzzzzzzz"},
		{"안녕 친구야", "안녕 친구야!"},
		{"", "  \t "},
	}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0, "pair %q", p)
		assert.LessOrEqual(t, s, 1.0, "pair %q", p)
	}
}

func TestScore_NormalizationStripsPunctuationAndCase(t *testing.T) {
	// Zero edits after normalization, so well above both thresholds.
	assert.Equal(t, 1.0, Score("안녕 친구야!", "안녕 친구야"))
	assert.Equal(t, 1.0, Score("Ice Lance!!", "ice lance"))
	assert.True(t, MatchesSkill("안녕 친구야!", "안녕 친구야"))
	assert.True(t, MatchesUltimate("안녕 친구야!", "안녕 친구야"))
}

func TestScore_RuneLevelDistance(t *testing.T) {
	// "abcd" vs "abed": one substitution over length 4.
	assert.InDelta(t, 0.75, Score("abcd", "abed"), 1e-9)
	// Hangul syllables count as single runes, not bytes.
	assert.InDelta(t, 0.8, Score("가나다라마", "가나다라바"), 1e-9)
}

func TestThresholds(t *testing.T) {
	// One edit over ten runes = 0.9, right on the skill boundary.
	a := "가나다라마바사아자차"
	b := "가나다라마바사아자카"
	assert.InDelta(t, 0.9, Score(a, b), 1e-9)
	assert.True(t, MatchesSkill(a, b))
	assert.False(t, MatchesUltimate(a, b))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "안녕친구야", Normalize(" 안녕 친구야! "))
	assert.Equal(t, "helloworld", Normalize("Hello, World..."))
	assert.Equal(t, "", Normalize("—“”‘’…"))
}
