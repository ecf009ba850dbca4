package bot

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/shadil-rayyan/Math-Mantra-sub000/game"
	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
	"github.com/shadil-rayyan/Math-Mantra-sub000/question"
)

// session is the play session of one chat.
// round is nil while the questions are still loading.
type session struct {
	id         string
	userID     int64
	language   string
	mode       string
	difficulty string
	round      *game.Round
	number     int
	askedAt    time.Time
	startedAt  time.Time
}

func (b *Bot) session(chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[chatID]
}

// handlePlayCommand starts a session and loads its questions off the update loop
func (b *Bot) handlePlayCommand(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	mode := question.NormalizeMode(args)
	if mode == "" {
		b.sendMessage(chatID, "Use /play <mode>. See /modes for the list.")
		return
	}
	settings := b.settings(message.From.ID)

	s := &session{
		id:         uuid.NewString(),
		userID:     message.From.ID,
		language:   settings.Language,
		mode:       mode,
		difficulty: settings.Difficulty,
		startedAt:  b.now(),
	}

	b.mu.Lock()
	if _, busy := b.sessions[chatID]; busy {
		b.mu.Unlock()
		b.sendMessage(chatID, "A session is already running. Use /stop to end it first.")
		return
	}
	b.sessions[chatID] = s
	b.mu.Unlock()

	b.sendMessage(chatID, fmt.Sprintf("Loading %s questions...", mode))

	results := b.questions.Fetch(b.ctx, s.language, s.mode, s.difficulty)
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		res := <-results
		b.beginRound(chatID, s, res)
	}()
}

// beginRound installs the loaded questions and asks the first one
func (b *Bot) beginRound(chatID int64, s *session, res question.Result) {
	if res.Err != nil {
		b.dropSession(chatID, s)
		if errors.Is(res.Err, question.ErrNoQuestions) {
			b.sendMessage(chatID, fmt.Sprintf("No questions available for %s at difficulty %s. Try another mode or /difficulty.", s.mode, s.difficulty))
			return
		}
		log.Printf("Error loading questions: %v", res.Err)
		b.sendMessage(chatID, "Sorry, I couldn't load the questions. Please try again later.")
		return
	}

	round, err := game.NewRound(res.Questions, b.rules.For(s.mode))
	if err != nil {
		b.dropSession(chatID, s)
		log.Printf("Error starting round: %v", err)
		b.sendMessage(chatID, "Sorry, I couldn't start the session.")
		return
	}

	b.mu.Lock()
	if b.sessions[chatID] != s {
		b.mu.Unlock()
		return
	}
	s.round = round
	q, _ := round.Current()
	text := b.ask(s, q)
	b.mu.Unlock()

	log.Printf("Started session %s for user %d: %s", s.id, s.userID, question.NewKey(s.language, s.mode, s.difficulty))
	b.sendMessage(chatID, text)
}

// dropSession removes s if it is still the chat's session
func (b *Bot) dropSession(chatID int64, s *session) {
	b.mu.Lock()
	if b.sessions[chatID] == s {
		delete(b.sessions, chatID)
	}
	b.mu.Unlock()
}

// ask marks q as asked now and returns its text. Must be called with b.mu held.
func (b *Bot) ask(s *session, q models.Question) string {
	s.number++
	s.askedAt = b.now()
	return fmt.Sprintf("Question %d: %s\n(%d seconds)", s.number, q.Expression, q.TimeLimitSeconds)
}

// handleAnswer submits a typed answer to the chat's session
func (b *Bot) handleAnswer(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	b.mu.Lock()
	s := b.sessions[chatID]
	if s == nil {
		b.mu.Unlock()
		b.sendMessage(chatID, "Use /play <mode> to start a session, or /help for assistance.")
		return
	}
	if s.round == nil {
		b.mu.Unlock()
		b.sendMessage(chatID, "Still loading questions, one moment please.")
		return
	}

	elapsed := b.now().Sub(s.askedAt)
	ev, err := s.round.SubmitAnswer(message.Text, elapsed)
	if err != nil {
		b.mu.Unlock()
		log.Printf("Error submitting answer: %v", err)
		return
	}

	var reply []string
	switch ev.Outcome {
	case game.OutcomeRetry:
		reply = append(reply, fmt.Sprintf("❌ Not quite. Try again (attempt %d of %d).", ev.Attempt+1, b.rules.For(s.mode).MaxAttempts))
	case game.OutcomeCorrect:
		line := fmt.Sprintf("✅ %s! +%d", ev.Grade, ev.Points)
		if ev.Question.Celebration {
			line = "🎉 " + line
		}
		reply = append(reply, line)
	case game.OutcomeReveal:
		reply = append(reply, fmt.Sprintf("❌ The correct answer is %s.", ev.Answer))
		b.lastMissed[chatID] = ev.Question
		if b.explainer != nil {
			reply = append(reply, "Use /explain to see how to solve it.")
		}
	}

	var summary *game.Summary
	if ev.Ended {
		sum := s.round.Summary()
		summary = &sum
		delete(b.sessions, chatID)
	} else if ev.Next != nil {
		reply = append(reply, "", b.ask(s, *ev.Next))
	}
	b.mu.Unlock()

	if ev.Outcome != game.OutcomeRetry {
		b.saveResult(s, ev)
	}
	b.sendMessage(chatID, strings.Join(reply, "\n"))
	if summary != nil {
		b.finish(chatID, s, *summary)
	}
}

// handleStopCommand ends the chat's session early
func (b *Bot) handleStopCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	b.mu.Lock()
	s := b.sessions[chatID]
	delete(b.sessions, chatID)
	b.mu.Unlock()

	if s == nil {
		b.sendMessage(chatID, "There is no session to stop.")
		return
	}
	if s.round == nil {
		b.sendMessage(chatID, "Session cancelled.")
		return
	}
	b.finish(chatID, s, s.round.Stop())
}

func (b *Bot) saveResult(s *session, ev game.Event) {
	err := b.db.SaveRoundResult(models.RoundResult{
		SessionID:  s.id,
		UserID:     s.userID,
		Mode:       s.mode,
		Difficulty: s.difficulty,
		Expression: ev.Question.Expression,
		Grade:      ev.Grade.String(),
		Points:     ev.Points,
		Correct:    ev.Outcome == game.OutcomeCorrect,
		Attempts:   ev.Attempt,
		Timestamp:  b.now().Unix(),
	})
	if err != nil {
		log.Printf("Error saving round result: %v", err)
	}
}

// finish stores the session and sends its summary
func (b *Bot) finish(chatID int64, s *session, sum game.Summary) {
	err := b.db.SaveSession(models.Session{
		ID:             s.id,
		UserID:         s.userID,
		Language:       s.language,
		Mode:           s.mode,
		Difficulty:     s.difficulty,
		Score:          sum.Score,
		Answered:       sum.Answered,
		Correct:        sum.Correct,
		WrongQuestions: sum.WrongQuestions,
		EndedEarly:     sum.EndedEarly,
		StartedAt:      s.startedAt.Unix(),
		EndedAt:        b.now().Unix(),
	})
	if err != nil {
		log.Printf("Error saving session: %v", err)
	}
	log.Printf("Finished session %s with score %d", s.id, sum.Score)

	plain, markdown := summaryText(s.mode, sum)
	b.sendMarkdownMessage(chatID, markdown, plain)
}

var summaryGrades = []game.Grade{
	game.GradeExcellent, game.GradeVeryGood, game.GradeGood,
	game.GradeNotBad, game.GradeOkay, game.GradeWrongAnswer,
}

// summaryText renders a session summary as plain text and as MarkdownV2
func summaryText(mode string, sum game.Summary) (plain, markdown string) {
	title := "Session over"
	if sum.EndedEarly {
		title = "Session ended early"
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Mode: %s", mode))
	lines = append(lines, fmt.Sprintf("Score: %d", sum.Score))
	lines = append(lines, fmt.Sprintf("Correct: %d of %d", sum.Correct, sum.Answered))
	for _, g := range summaryGrades {
		if n := sum.Grades[g]; n > 0 {
			lines = append(lines, fmt.Sprintf("%s: %d", g, n))
		}
	}
	lines = append(lines, "", "Play again with /play "+mode)

	body := strings.Join(lines, "\n")
	plain = title + "\n\n" + body
	markdown = "*" + escapeMarkdown(title) + "*\n\n" + escapeMarkdown(body)
	return plain, markdown
}
