package models

// QuestionRow is one parsed row of a question table
type QuestionRow struct {
	QuestionTemplate string
	Mode             string
	OperandSpec      string
	Difficulty       int
	AnswerTemplate   string
	TimeLimitSeconds int
	Celebration      bool
}

// Question is a resolved question ready to be played.
// Target holds the first resolved label for label modes and is empty otherwise.
type Question struct {
	Expression       string
	Answer           int
	TimeLimitSeconds int
	Celebration      bool
	Mode             string
	Target           string
}

// RoundResult stores the outcome of one question inside a session
type RoundResult struct {
	SessionID  string
	UserID     int64
	Mode       string
	Difficulty string
	Expression string
	Grade      string
	Points     int
	Correct    bool
	Attempts   int
	Timestamp  int64
}

// Session stores the summary of a finished session
type Session struct {
	ID             string
	UserID         int64
	Language       string
	Mode           string
	Difficulty     string
	Score          int
	Answered       int
	Correct        int
	WrongQuestions int
	EndedEarly     bool
	StartedAt      int64
	EndedAt        int64
}

// UserSettings stores a user's language and difficulty preferences
type UserSettings struct {
	UserID     int64
	Language   string
	Difficulty string
}

// ExplanationCache stores cached explanations from the AI API
type ExplanationCache struct {
	Expression string
	Response   string
}
