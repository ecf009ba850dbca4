package question

import (
	"math"
	"strconv"
	"strings"

	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
)

// Column layout of a question table
const (
	colQuestion = iota
	colMode
	colOperand
	colDifficulty
	colAnswer
	colTimeLimit
	colCelebration
)

// DefaultTimeLimit applies when a row has no usable time limit cell
const DefaultTimeLimit = 20

// ParseRow converts table cells into a QuestionRow.
// It reports false when a required cell is missing or blank, or the difficulty is not a number.
func ParseRow(cells []string) (models.QuestionRow, bool) {
	if len(cells) <= colAnswer {
		return models.QuestionRow{}, false
	}

	for _, i := range []int{colQuestion, colMode, colOperand, colDifficulty, colAnswer} {
		if strings.TrimSpace(cells[i]) == "" {
			return models.QuestionRow{}, false
		}
	}

	difficulty, ok := parseWhole(cells[colDifficulty])
	if !ok {
		return models.QuestionRow{}, false
	}

	row := models.QuestionRow{
		QuestionTemplate: cells[colQuestion],
		Mode:             strings.TrimSpace(cells[colMode]),
		OperandSpec:      cells[colOperand],
		Difficulty:       difficulty,
		AnswerTemplate:   cells[colAnswer],
		TimeLimitSeconds: DefaultTimeLimit,
	}

	if len(cells) > colTimeLimit {
		if limit, ok := parseWhole(cells[colTimeLimit]); ok {
			row.TimeLimitSeconds = limit
		}
	}

	if len(cells) > colCelebration {
		switch strings.ToLower(strings.TrimSpace(cells[colCelebration])) {
		case "1", "true", "yes":
			row.Celebration = true
		}
	}

	return row, true
}

// parseWhole parses an integer that may be written as a float ("20.0")
func parseWhole(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
