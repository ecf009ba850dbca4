// Package game implements grading and the answer-submission state machine of a play session.
package game

// Grade is the performance tier of one answer.
type Grade int

const (
	GradeWrongAnswer Grade = iota
	GradeOkay
	GradeNotBad
	GradeGood
	GradeVeryGood
	GradeExcellent
)

func (g Grade) String() string {
	switch g {
	case GradeExcellent:
		return "Excellent"
	case GradeVeryGood:
		return "Very Good"
	case GradeGood:
		return "Good"
	case GradeNotBad:
		return "Not Bad"
	case GradeOkay:
		return "Okay"
	case GradeWrongAnswer:
		return "Wrong Answer"
	default:
		return "Unknown"
	}
}

var gradePoints = map[Grade]int{
	GradeExcellent:   50,
	GradeVeryGood:    40,
	GradeGood:        30,
	GradeNotBad:      20,
	GradeOkay:        10,
	GradeWrongAnswer: -10,
}

// Points returns the score awarded for the grade.
func (g Grade) Points() int {
	return gradePoints[g]
}

// GradeAnswer compares the elapsed time against fractions of the time limit.
func GradeAnswer(elapsedSeconds, limitSeconds float64, correct bool) Grade {
	if !correct {
		return GradeWrongAnswer
	}
	switch {
	case elapsedSeconds < limitSeconds*0.5:
		return GradeExcellent
	case elapsedSeconds < limitSeconds*0.75:
		return GradeVeryGood
	case elapsedSeconds < limitSeconds:
		return GradeGood
	case elapsedSeconds < limitSeconds*1.25:
		return GradeNotBad
	default:
		return GradeOkay
	}
}

// ClampScore returns the score as displayed to the player: never negative.
func ClampScore(score int) int {
	return max(score, 0)
}
