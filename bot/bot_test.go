package bot

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shadil-rayyan/Math-Mantra-sub000/config"
	"github.com/shadil-rayyan/Math-Mantra-sub000/database"
	"github.com/shadil-rayyan/Math-Mantra-sub000/hint"
	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
	"github.com/shadil-rayyan/Math-Mantra-sub000/question"
	"github.com/shadil-rayyan/Math-Mantra-sub000/table"
)

const chatID = 42

type fakeMessenger struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.texts = append(f.texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeMessenger) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

func (f *fakeMessenger) all() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.texts, "\n---\n")
}

type fakeStore struct {
	mu           sync.Mutex
	results      []models.RoundResult
	sessions     []models.Session
	settings     map[int64]models.UserSettings
	explanations map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{settings: make(map[int64]models.UserSettings), explanations: make(map[string]string)}
}

func (f *fakeStore) SaveRoundResult(r models.RoundResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, r)
	return nil
}

func (f *fakeStore) SaveSession(s models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, s)
	return nil
}

func (f *fakeStore) GetUserStats(userID int64) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var correct, incorrect int
	for _, r := range f.results {
		if r.UserID != userID {
			continue
		}
		if r.Correct {
			correct++
		} else {
			incorrect++
		}
	}
	return correct, incorrect, nil
}

func (f *fakeStore) GetBestScore(userID int64) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	best, n := 0, 0
	for _, s := range f.sessions {
		if s.UserID == userID {
			best = max(best, s.Score)
			n++
		}
	}
	return best, n, nil
}

func (f *fakeStore) GetMostMissedModes(userID int64, limit int) ([]database.ModeMisses, error) {
	return nil, nil
}

func (f *fakeStore) GetSettings(userID int64) (models.UserSettings, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[userID]
	return s, ok, nil
}

func (f *fakeStore) SaveSettings(s models.UserSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[s.UserID] = s
	return nil
}

func (f *fakeStore) CacheExplanation(e models.ExplanationCache) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.explanations[e.Expression] = e.Response
	return nil
}

func (f *fakeStore) GetCachedExplanation(expression string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.explanations[expression], nil
}

type fakeSource struct{}

func (fakeSource) Records(ctx context.Context, name, language string) ([][]string, error) {
	if language != "en" {
		return nil, errors.New("no table for " + language)
	}
	if name == table.Hints {
		return [][]string{{"mode", "hint"}, {"tap", "Tap once per unit."}}, nil
	}
	return [][]string{
		{"question", "mode", "operands", "difficulty", "answer", "time"},
		{"{a}+{b}", "tap", "a2*b3*", "1", "{a}+{b}", "20", "1"},
		{"{a}*{b}", "tap", "a4*b5*", "1", "{a}*{b}", "20"},
		{"Turn to {a}", "direction", "aeast*", "1", "0", "20"},
	}, nil
}

type fakeExplainer struct{ calls int }

func (f *fakeExplainer) Explain(ctx context.Context, q models.Question) (string, error) {
	f.calls++
	return "Multiply four by five.", nil
}

type testBot struct {
	*Bot
	msgs  *fakeMessenger
	store *fakeStore
	clock time.Time
}

func newTestBot(t *testing.T, explainer Explainer) *testBot {
	t.Helper()
	cfg := &config.Config{
		DefaultLanguage:   "en",
		DefaultDifficulty: "1",
		Difficulties:      []string{"1", "2"},
		MaxAttempts:       2,
		WrongCeilings:     map[string]int{"direction": 1},
	}
	svc := question.NewService(fakeSource{},
		question.NewCache(),
		question.NewLoader(question.NewResolver(rand.New(rand.NewSource(1))), question.NewModes(question.DefaultLabelModes...)),
		question.Options{Difficulties: cfg.Difficulties, PreloadWorkers: 2})

	tb := &testBot{msgs: &fakeMessenger{}, store: newFakeStore(), clock: time.Unix(1_700_000_000, 0)}
	tb.Bot = New(context.Background(), cfg, tb.msgs, tb.store, svc, hint.NewBook(fakeSource{}), explainer)
	tb.now = func() time.Time { return tb.clock }
	return tb
}

func (tb *testBot) send(t *testing.T, text string) string {
	t.Helper()
	msg := &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{ID: 7, UserName: "player"},
		Chat: &tgbotapi.Chat{ID: chatID},
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	tb.handleMessage(msg)
	tb.pending.Wait()
	return tb.msgs.last()
}

func TestPlaySession(t *testing.T) {
	tb := newTestBot(t, &fakeExplainer{})

	if got := tb.send(t, "/play tap"); !strings.Contains(got, "Question 1: 2+3") {
		t.Fatalf("expected first question, got %q", got)
	}

	tb.clock = tb.clock.Add(2 * time.Second)
	got := tb.send(t, "5")
	if !strings.Contains(got, "🎉 ✅ Excellent! +50") || !strings.Contains(got, "Question 2: 4*5") {
		t.Fatalf("unexpected reply %q", got)
	}

	if got := tb.send(t, "21"); !strings.Contains(got, "Try again (attempt 2 of 2)") {
		t.Fatalf("expected retry, got %q", got)
	}
	tb.send(t, "19")
	all := tb.msgs.all()
	if !strings.Contains(all, "The correct answer is 20.") || !strings.Contains(all, "/explain") {
		t.Fatalf("expected reveal, got %q", all)
	}
	if !strings.Contains(tb.msgs.last(), "Score: 40") {
		t.Fatalf("expected summary, got %q", tb.msgs.last())
	}

	if len(tb.store.results) != 2 || !tb.store.results[0].Correct || tb.store.results[1].Points != -10 {
		t.Errorf("unexpected results %+v", tb.store.results)
	}
	if len(tb.store.sessions) != 1 || tb.store.sessions[0].Score != 40 || tb.store.sessions[0].EndedEarly {
		t.Errorf("unexpected sessions %+v", tb.store.sessions)
	}

	if got := tb.send(t, "5"); !strings.Contains(got, "/play") {
		t.Errorf("expected no active session, got %q", got)
	}

	if got := tb.send(t, "/explain"); got != "Multiply four by five." && !strings.Contains(got, "Multiply four by five.") {
		t.Errorf("unexpected explanation %q", got)
	}
	if tb.store.explanations["4*5"] == "" {
		t.Error("expected explanation to be cached")
	}
}

func TestPlayLabelModeEndsAtCeiling(t *testing.T) {
	tb := newTestBot(t, nil)
	if got := tb.send(t, "/play direction"); !strings.Contains(got, "Turn to east") {
		t.Fatalf("unexpected question %q", got)
	}
	tb.send(t, "west")
	tb.send(t, "south")
	if got := tb.msgs.last(); !strings.Contains(got, "Session ended early") {
		t.Fatalf("expected early end, got %q", got)
	}
	if strings.Contains(tb.msgs.all(), "/explain") {
		t.Error("explain offered without an explainer")
	}
}

func TestPlayLabelModeHeading(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.send(t, "/play direction")
	if got := tb.msgs.all(); !strings.Contains(got, "Turn to east") {
		t.Fatalf("unexpected messages %q", got)
	}
	tb.send(t, "95")
	if !strings.Contains(tb.msgs.all(), "✅") {
		t.Errorf("expected heading answer to be accepted: %q", tb.msgs.all())
	}
}

func TestPlayNoQuestions(t *testing.T) {
	tb := newTestBot(t, nil)
	if got := tb.send(t, "/play compass"); !strings.Contains(got, "No questions available") {
		t.Fatalf("unexpected reply %q", got)
	}
	if tb.session(chatID) != nil {
		t.Error("session should be dropped")
	}
}

func TestPlayTwice(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.send(t, "/play tap")
	if got := tb.send(t, "/play tap"); !strings.Contains(got, "already running") {
		t.Fatalf("unexpected reply %q", got)
	}
	if got := tb.send(t, "/stop"); !strings.Contains(got, "Session ended early") {
		t.Fatalf("unexpected reply %q", got)
	}
	if got := tb.send(t, "/stop"); !strings.Contains(got, "no session") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestSettingsCommands(t *testing.T) {
	tb := newTestBot(t, nil)
	if got := tb.send(t, "/difficulty 9"); !strings.Contains(got, "Unknown difficulty") {
		t.Fatalf("unexpected reply %q", got)
	}
	if got := tb.send(t, "/difficulty 2.0"); got != "Difficulty set to 2." {
		t.Fatalf("unexpected reply %q", got)
	}
	if s := tb.store.settings[7]; s.Difficulty != "2" || s.Language != "en" {
		t.Errorf("unexpected settings %+v", s)
	}
	if got := tb.send(t, "/language fr"); !strings.Contains(got, "no questions") {
		t.Fatalf("unexpected reply %q", got)
	}
	if got := tb.send(t, "/language EN-us"); got != "Language set to en." {
		t.Fatalf("unexpected reply %q", got)
	}
	if got := tb.send(t, "/play tap"); !strings.Contains(got, "No questions available for tap at difficulty 2") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestModesAndHints(t *testing.T) {
	tb := newTestBot(t, nil)
	if got := tb.send(t, "/modes"); !strings.Contains(got, "tap\ndirection") {
		t.Fatalf("unexpected modes %q", got)
	}
	if got := tb.send(t, "/hint"); !strings.Contains(got, "/hint <mode>") {
		t.Fatalf("unexpected reply %q", got)
	}
	if got := tb.send(t, "/hint tap"); got != "Tap once per unit." {
		t.Fatalf("unexpected hint %q", got)
	}
	tb.send(t, "/play tap")
	if got := tb.send(t, "/hint"); got != "Tap once per unit." {
		t.Fatalf("unexpected hint in session %q", got)
	}
	if got := tb.send(t, "/hint direction"); !strings.Contains(got, "No hint") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestStatCommand(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.send(t, "/play tap")
	tb.send(t, "5")
	tb.send(t, "/stop")
	got := tb.send(t, "/stat")
	if !strings.Contains(got, "Sessions Played: 1") || !strings.Contains(got, "Correct Answers: 1") {
		t.Fatalf("unexpected stats %q", got)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got := escapeMarkdown("Score: 40. (5-1)!"); got != `Score: 40\. \(5\-1\)\!` {
		t.Errorf("escapeMarkdown() = %q", got)
	}
}
