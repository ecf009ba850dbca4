package question

import (
	"errors"
	"log"
	"strconv"

	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
)

// Loader turns table records into resolved questions
type Loader struct {
	resolver *Resolver
	modes    Modes
}

// NewLoader creates a loader
func NewLoader(resolver *Resolver, modes Modes) *Loader {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	return &Loader{resolver: resolver, modes: modes}
}

// Load resolves every record matching mode and difficulty, in source order.
// The first record is the header and is skipped. Rows that cannot be used are
// skipped and logged; the scan never stops early.
func (l *Loader) Load(records [][]string, mode, difficulty string) []models.Question {
	wantMode := NormalizeMode(mode)
	wantDifficulty := CanonicalDifficulty(difficulty)
	kind := l.modes.Classify(wantMode)

	var questions []models.Question
	for i, cells := range records {
		if i == 0 {
			continue
		}
		row, ok := ParseRow(cells)
		if !ok {
			continue
		}
		if NormalizeMode(row.Mode) != wantMode || strconv.Itoa(row.Difficulty) != wantDifficulty {
			continue
		}

		q, err := l.resolve(row, kind)
		if err != nil {
			log.Printf("Skipping row %d (%s): %v", i, row.OperandSpec, err)
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

// errCountMismatch indicates an operand column whose variables and tokens disagree
var errCountMismatch = errors.New("variable count does not match operand count")

func (l *Loader) resolve(row models.QuestionRow, kind Kind) (models.Question, error) {
	variables := ExtractVariables(row.OperandSpec)
	tokens := SplitOperands(row.OperandSpec)
	if len(variables) != len(tokens) {
		return models.Question{}, errCountMismatch
	}

	values := make([]Value, len(tokens))
	for i, token := range tokens {
		v, err := l.resolver.Resolve(token, kind)
		if err != nil {
			log.Printf("Error parsing operand: %v", err)
			if kind == Label {
				v = LabelValue(FallbackLabel)
			} else {
				v = NumberValue(0)
			}
		}
		values[i] = v
	}

	q := models.Question{
		Expression:       Render(row.QuestionTemplate, variables, values),
		TimeLimitSeconds: row.TimeLimitSeconds,
		Celebration:      row.Celebration,
		Mode:             NormalizeMode(row.Mode),
	}

	if kind == Label {
		if len(values) > 0 {
			q.Target = values[0].Label
		}
		return q, nil
	}

	rendered := Render(row.AnswerTemplate, variables, values)
	answer, err := Evaluate(rendered)
	if err != nil {
		log.Printf("Failed to evaluate: %v", err)
	}
	q.Answer = answer
	return q, nil
}

// FallbackLabel is substituted when a label token has nothing to pick
const FallbackLabel = ""
