package similarity

import "strings"

const (
	// SkillThreshold is the minimum score for a spoken phrase to count as
	// the skill trigger. Balance-critical, do not tune casually.
	SkillThreshold = 0.90
	// UltimateThreshold gates ultimate activation.
	UltimateThreshold = 0.95
)

// Punctuation stripped during normalization. Covers the glyphs speech
// recognition tends to insert around Korean and English phrases.
const strippedRunes = "!?.,;:~‥…·―—–-‐'\"‘’“”、。！？"

// Normalize lowercases s and removes whitespace and trailing-noise
// punctuation so that "안녕 친구야!" and "안녕 친구야" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if strings.ContainsRune(strippedRunes, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Score returns a similarity in [0,1] between a and b after normalization.
// Both empty compares as identical (1); exactly one empty is a total miss
// (0). Never fails on malformed input.
func Score(a, b string) float64 {
	na := []rune(Normalize(a))
	nb := []rune(Normalize(b))

	if len(na) == 0 && len(nb) == 0 {
		return 1
	}
	if len(na) == 0 || len(nb) == 0 {
		return 0
	}

	d := levenshtein(na, nb)
	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	return 1 - float64(d)/float64(longest)
}

// MatchesSkill reports whether transcript is close enough to trigger to
// count as a successful skill utterance.
func MatchesSkill(transcript, trigger string) bool {
	return Score(transcript, trigger) >= SkillThreshold
}

// MatchesUltimate applies the stricter ultimate threshold.
func MatchesUltimate(transcript, trigger string) bool {
	return Score(transcript, trigger) >= UltimateThreshold
}

// levenshtein computes edit distance with unit insert/delete/substitute
// costs, two-row rolling table.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
