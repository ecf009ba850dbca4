package game

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
)

// DefaultMaxAttempts is the number of wrong submissions before the answer is revealed.
const DefaultMaxAttempts = 3

// ErrSessionEnded indicates a submission after the session ended.
var ErrSessionEnded = errors.New("session has ended")

// ErrNoQuestions indicates a round created without questions.
var ErrNoQuestions = errors.New("round needs at least one question")

// State is the state of a round.
type State int

const (
	StateAwaitingInput State = iota
	StateSessionEnded
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "AwaitingInput"
	case StateSessionEnded:
		return "SessionEnded"
	default:
		return "Unknown"
	}
}

// Outcome is what a submission led to.
type Outcome int

const (
	// OutcomeRetry keeps the same question after a wrong answer.
	OutcomeRetry Outcome = iota
	// OutcomeCorrect grades the answer and advances.
	OutcomeCorrect
	// OutcomeReveal shows the correct answer after the last attempt and advances.
	OutcomeReveal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRetry:
		return "Retry"
	case OutcomeCorrect:
		return "Correct"
	case OutcomeReveal:
		return "Reveal"
	default:
		return "Unknown"
	}
}

// Rules configure a round. A WrongCeiling of 0 disables the early end.
type Rules struct {
	MaxAttempts  int
	WrongCeiling int
}

// RuleBook resolves per-mode rules.
type RuleBook struct {
	MaxAttempts   int
	ModeAttempts  map[string]int
	WrongCeilings map[string]int
}

// For returns the rules of a mode.
func (b RuleBook) For(mode string) Rules {
	mode = strings.ToLower(strings.TrimSpace(mode))
	rules := Rules{MaxAttempts: b.MaxAttempts}
	if n, ok := lookupFold(b.ModeAttempts, mode); ok && n > 0 {
		rules.MaxAttempts = n
	}
	if rules.MaxAttempts <= 0 {
		rules.MaxAttempts = DefaultMaxAttempts
	}
	if n, ok := lookupFold(b.WrongCeilings, mode); ok && n > 0 {
		rules.WrongCeiling = n
	}
	return rules
}

func lookupFold(m map[string]int, key string) (int, bool) {
	for k, v := range m {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return v, true
		}
	}
	return 0, false
}

// Event reports the result of one submission.
type Event struct {
	Outcome  Outcome
	Grade    Grade
	Points   int
	Attempt  int
	Answer   string
	Question models.Question
	Next     *models.Question
	Ended    bool
}

// Summary is reported when a session ends.
type Summary struct {
	Score          int
	RawScore       int
	Answered       int
	Correct        int
	WrongQuestions int
	EndedEarly     bool
	Grades         map[Grade]int
}

// Round drives one play session over a list of questions.
// It is not safe for concurrent submissions.
type Round struct {
	questions []models.Question
	rules     Rules

	index              int
	attemptCount       int
	wrongQuestionsSeen int
	score              int
	correct            int
	endedEarly         bool
	state              State
	grades             map[Grade]int
}

// NewRound starts a round at the first question.
func NewRound(questions []models.Question, rules Rules) (*Round, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if rules.MaxAttempts <= 0 {
		rules.MaxAttempts = DefaultMaxAttempts
	}
	return &Round{
		questions: questions,
		rules:     rules,
		state:     StateAwaitingInput,
		grades:    make(map[Grade]int),
	}, nil
}

// State returns the current state.
func (r *Round) State() State { return r.state }

// Current returns the question awaiting input.
func (r *Round) Current() (models.Question, bool) {
	if r.state == StateSessionEnded {
		return models.Question{}, false
	}
	return r.questions[r.index], true
}

// Attempts returns the wrong attempts made on the current question.
func (r *Round) Attempts() int { return r.attemptCount }

// Score returns the score as displayed: never negative.
func (r *Round) Score() int { return ClampScore(r.score) }

// SubmitAnswer judges answer against the current question and submits the result.
func (r *Round) SubmitAnswer(answer string, elapsed time.Duration) (Event, error) {
	q, ok := r.Current()
	if !ok {
		return Event{}, ErrSessionEnded
	}
	return r.Submit(Judge(q, answer), elapsed)
}

// Submit records a correct or incorrect answer for the current question.
func (r *Round) Submit(correct bool, elapsed time.Duration) (Event, error) {
	if r.state == StateSessionEnded {
		return Event{}, ErrSessionEnded
	}
	q := r.questions[r.index]
	ev := Event{Question: q, Answer: answerText(q)}

	if correct {
		ev.Outcome = OutcomeCorrect
		ev.Attempt = r.attemptCount + 1
		ev.Grade = GradeAnswer(elapsed.Seconds(), float64(q.TimeLimitSeconds), true)
		ev.Points = ev.Grade.Points()
		r.attemptCount = 0
		r.correct++
		r.record(ev.Grade)
		r.advance(&ev)
		return ev, nil
	}

	r.attemptCount++
	ev.Attempt = r.attemptCount
	if r.attemptCount < r.rules.MaxAttempts {
		ev.Outcome = OutcomeRetry
		return ev, nil
	}

	ev.Outcome = OutcomeReveal
	ev.Grade = GradeWrongAnswer
	ev.Points = GradeWrongAnswer.Points()
	r.attemptCount = 0
	r.wrongQuestionsSeen++
	r.record(ev.Grade)

	if r.rules.WrongCeiling > 0 && r.wrongQuestionsSeen >= r.rules.WrongCeiling {
		r.endedEarly = true
		r.end(&ev)
		return ev, nil
	}
	r.advance(&ev)
	return ev, nil
}

// Stop ends the session before the last question.
func (r *Round) Stop() Summary {
	if r.state != StateSessionEnded {
		r.endedEarly = true
		r.state = StateSessionEnded
	}
	return r.Summary()
}

// Summary returns the session totals.
func (r *Round) Summary() Summary {
	grades := make(map[Grade]int, len(r.grades))
	answered := 0
	for g, n := range r.grades {
		grades[g] = n
		answered += n
	}
	return Summary{
		Score:          ClampScore(r.score),
		RawScore:       r.score,
		Answered:       answered,
		Correct:        r.correct,
		WrongQuestions: r.wrongQuestionsSeen,
		EndedEarly:     r.endedEarly,
		Grades:         grades,
	}
}

func (r *Round) record(g Grade) {
	r.score += g.Points()
	r.grades[g]++
}

func (r *Round) advance(ev *Event) {
	r.index++
	if r.index >= len(r.questions) {
		r.end(ev)
		return
	}
	next := r.questions[r.index]
	ev.Next = &next
}

func (r *Round) end(ev *Event) {
	r.state = StateSessionEnded
	ev.Ended = true
	ev.Next = nil
}

func answerText(q models.Question) string {
	if q.Target != "" {
		return q.Target
	}
	return strconv.Itoa(q.Answer)
}
