package battle

// Grade is the quality tier the scoring service assigns to one spoken
// attempt, best to worst. The core treats it as opaque except for the gauge
// predicate and the miss display rule.
type Grade string

const (
	GradeSSS Grade = "SSS"
	GradeSS  Grade = "SS"
	GradeS   Grade = "S"
	GradeA   Grade = "A"
	GradeB   Grade = "B"
	GradeC   Grade = "C"
	GradeF   Grade = "F"
)

// ChargesGauge reports whether an attack at this grade counts toward the
// attacker's ultimate gauge. C and F do not.
func (g Grade) ChargesGauge() bool {
	switch g {
	case GradeSSS, GradeSS, GradeS, GradeA, GradeB:
		return true
	default:
		return false
	}
}

// Miss reports whether the attempt displays as MISS instead of a number.
func (g Grade) Miss() bool {
	return g == GradeF
}

func ParseGrade(s string) (Grade, bool) {
	switch Grade(s) {
	case GradeSSS, GradeSS, GradeS, GradeA, GradeB, GradeC, GradeF:
		return Grade(s), true
	default:
		return "", false
	}
}
