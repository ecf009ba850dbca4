package bot

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shadil-rayyan/Math-Mantra-sub000/config"
	"github.com/shadil-rayyan/Math-Mantra-sub000/database"
	"github.com/shadil-rayyan/Math-Mantra-sub000/game"
	"github.com/shadil-rayyan/Math-Mantra-sub000/hint"
	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
	"github.com/shadil-rayyan/Math-Mantra-sub000/question"
)

const (
	cmdStart      = "start"
	cmdHelp       = "help"
	cmdModes      = "modes"
	cmdPlay       = "play"
	cmdDifficulty = "difficulty"
	cmdLanguage   = "language"
	cmdHint       = "hint"
	cmdExplain    = "explain"
	cmdStat       = "stat"
	cmdStop       = "stop"
)

// Messenger sends messages to Telegram. *tgbotapi.BotAPI implements it.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Store persists results, settings and explanations. *database.DB implements it.
type Store interface {
	SaveRoundResult(r models.RoundResult) error
	SaveSession(s models.Session) error
	GetUserStats(userID int64) (correct int, incorrect int, err error)
	GetBestScore(userID int64) (best int, sessions int, err error)
	GetMostMissedModes(userID int64, limit int) ([]database.ModeMisses, error)
	GetSettings(userID int64) (models.UserSettings, bool, error)
	SaveSettings(s models.UserSettings) error
	CacheExplanation(e models.ExplanationCache) error
	GetCachedExplanation(expression string) (string, error)
}

// Explainer explains a question step by step. *ai.Client implements it.
type Explainer interface {
	Explain(ctx context.Context, q models.Question) (string, error)
}

// Bot plays math sessions over Telegram
type Bot struct {
	api       Messenger
	db        Store
	questions *question.Service
	hints     *hint.Book
	explainer Explainer
	rules     game.RuleBook

	defaultLanguage   string
	defaultDifficulty string
	difficulties      []string

	ctx     context.Context
	now     func() time.Time
	pending sync.WaitGroup

	mu            sync.Mutex
	sessions      map[int64]*session
	lastMissed    map[int64]models.Question
	cancelPreload context.CancelFunc
}

// New creates a new bot instance. explainer may be nil.
func New(ctx context.Context, cfg *config.Config, api Messenger, db Store, questions *question.Service, hints *hint.Book, explainer Explainer) *Bot {
	difficulties := make([]string, 0, len(cfg.Difficulties))
	for _, d := range cfg.Difficulties {
		difficulties = append(difficulties, question.CanonicalDifficulty(d))
	}

	return &Bot{
		api:       api,
		db:        db,
		questions: questions,
		hints:     hints,
		explainer: explainer,
		rules: game.RuleBook{
			MaxAttempts:   cfg.MaxAttempts,
			ModeAttempts:  cfg.ModeMaxAttempts,
			WrongCeilings: cfg.WrongCeilings,
		},
		defaultLanguage:   question.NormalizeLanguage(cfg.DefaultLanguage),
		defaultDifficulty: question.CanonicalDifficulty(cfg.DefaultDifficulty),
		difficulties:      difficulties,
		ctx:               ctx,
		now:               time.Now,
		sessions:          make(map[int64]*session),
		lastMissed:        make(map[int64]models.Question),
	}
}

// Start handles updates until the channel closes or the context is cancelled
func (b *Bot) Start(updates tgbotapi.UpdatesChannel) {
	log.Println("Starting bot polling...")

	for {
		select {
		case <-b.ctx.Done():
			log.Println("Stopping bot polling")
			b.pending.Wait()
			return
		case update, ok := <-updates:
			if !ok {
				b.pending.Wait()
				return
			}
			if update.Message != nil {
				b.handleMessage(update.Message)
			}
		}
	}
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	log.Printf("Received message from %s (ID: %d): %s", message.From.UserName, message.From.ID, message.Text)

	if !message.IsCommand() {
		b.handleAnswer(message)
		return
	}

	args := strings.TrimSpace(message.CommandArguments())
	switch message.Command() {
	case cmdStart:
		b.handleStartCommand(message)
	case cmdHelp:
		b.sendMessage(message.Chat.ID, helpText)
	case cmdModes:
		b.handleModesCommand(message)
	case cmdPlay:
		b.handlePlayCommand(message, args)
	case cmdDifficulty:
		b.handleDifficultyCommand(message, args)
	case cmdLanguage:
		b.handleLanguageCommand(message, args)
	case cmdHint:
		b.handleHintCommand(message, args)
	case cmdExplain:
		b.handleExplainCommand(message)
	case cmdStat:
		b.handleStatCommand(message)
	case cmdStop:
		b.handleStopCommand(message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

const helpText = `Commands:
/modes - List the game modes
/play <mode> - Start a session
/difficulty <n> - Change the difficulty
/language <code> - Change the language
/hint [mode] - How to play a mode
/explain - Explain the last missed question
/stat - View your statistics
/stop - End the current session

During a session, type your answer as a message.`

// handleStartCommand handles the /start command
func (b *Bot) handleStartCommand(message *tgbotapi.Message) {
	settings := b.settings(message.From.ID)
	b.sendMessage(message.Chat.ID, fmt.Sprintf(`Welcome to Math Mantra!

Practice arithmetic by answering questions against the clock.
Language: %s, difficulty: %s.

%s`, settings.Language, settings.Difficulty, helpText))
	b.preload(settings.Language, settings.Difficulty)
}

// handleModesCommand lists the modes of the user's language
func (b *Bot) handleModesCommand(message *tgbotapi.Message) {
	settings := b.settings(message.From.ID)
	modes, err := b.questions.Modes(b.ctx, settings.Language)
	if err != nil {
		log.Printf("Error listing modes: %v", err)
		b.sendMessage(message.Chat.ID, "Sorry, I couldn't load the questions. Please try again later.")
		return
	}
	if len(modes) == 0 {
		b.sendMessage(message.Chat.ID, "No game modes are available for your language.")
		return
	}
	b.sendMessage(message.Chat.ID, "Game modes:\n"+strings.Join(modes, "\n")+"\n\nStart one with /play <mode>.")
}

// handleDifficultyCommand changes the user's difficulty
func (b *Bot) handleDifficultyCommand(message *tgbotapi.Message, args string) {
	settings := b.settings(message.From.ID)
	if args == "" {
		b.sendMessage(message.Chat.ID, fmt.Sprintf("Your difficulty is %s. Choose one of: %s", settings.Difficulty, strings.Join(b.difficulties, ", ")))
		return
	}

	difficulty := question.CanonicalDifficulty(args)
	if !slices.Contains(b.difficulties, difficulty) {
		b.sendMessage(message.Chat.ID, fmt.Sprintf("Unknown difficulty %q. Choose one of: %s", args, strings.Join(b.difficulties, ", ")))
		return
	}

	settings.Difficulty = difficulty
	if err := b.db.SaveSettings(settings); err != nil {
		log.Printf("Error saving settings: %v", err)
	}
	b.sendMessage(message.Chat.ID, "Difficulty set to "+difficulty+".")
	b.preload(settings.Language, settings.Difficulty)
}

// handleLanguageCommand changes the user's language
func (b *Bot) handleLanguageCommand(message *tgbotapi.Message, args string) {
	settings := b.settings(message.From.ID)
	if args == "" {
		b.sendMessage(message.Chat.ID, "Your language is "+settings.Language+". Change it with /language <code>, e.g. /language en")
		return
	}

	lang := question.NormalizeLanguage(args)
	if _, err := b.questions.Modes(b.ctx, lang); err != nil {
		log.Printf("Error loading questions for %s: %v", lang, err)
		b.sendMessage(message.Chat.ID, fmt.Sprintf("Sorry, there are no questions for %q.", args))
		return
	}

	settings.Language = lang
	if err := b.db.SaveSettings(settings); err != nil {
		log.Printf("Error saving settings: %v", err)
	}
	b.sendMessage(message.Chat.ID, "Language set to "+lang+".")
	b.preload(settings.Language, settings.Difficulty)
}

// handleHintCommand sends the help text of a mode
func (b *Bot) handleHintCommand(message *tgbotapi.Message, args string) {
	settings := b.settings(message.From.ID)
	mode := question.NormalizeMode(args)
	if mode == "" {
		if s := b.session(message.Chat.ID); s != nil {
			mode = s.mode
		}
	}
	if mode == "" {
		b.sendMessage(message.Chat.ID, "Use /hint <mode>, or ask during a session.")
		return
	}

	text, ok := b.hints.Lookup(b.ctx, settings.Language, mode)
	if !ok {
		b.sendMessage(message.Chat.ID, "No hint available for "+mode+".")
		return
	}
	b.sendMessage(message.Chat.ID, text)
}

// handleExplainCommand explains the last question revealed to the chat
func (b *Bot) handleExplainCommand(message *tgbotapi.Message) {
	b.mu.Lock()
	q, ok := b.lastMissed[message.Chat.ID]
	b.mu.Unlock()
	if !ok {
		b.sendMessage(message.Chat.ID, "There is nothing to explain yet.")
		return
	}

	cached, err := b.db.GetCachedExplanation(q.Expression)
	if err != nil {
		log.Printf("Error retrieving cached explanation: %v", err)
	}
	if cached != "" {
		b.sendMessage(message.Chat.ID, "Here's how to solve it:\n\n"+cached)
		return
	}

	if b.explainer == nil {
		b.sendMessage(message.Chat.ID, "Explanations are not available.")
		return
	}

	b.sendMessage(message.Chat.ID, "Thinking about this question, please wait a moment...")
	chatID := message.Chat.ID
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		response, err := b.explainer.Explain(b.ctx, q)
		if err != nil {
			log.Printf("Error requesting explanation: %v", err)
			b.sendMessage(chatID, "Sorry, I couldn't explain this question. Please try again later.")
			return
		}
		if err := b.db.CacheExplanation(models.ExplanationCache{Expression: q.Expression, Response: response}); err != nil {
			log.Printf("Error caching explanation: %v", err)
		}
		b.sendMessage(chatID, "Here's how to solve it:\n\n"+response)
	}()
}

// handleStatCommand handles the /stat command
func (b *Bot) handleStatCommand(message *tgbotapi.Message) {
	userID := message.From.ID
	correct, incorrect, err := b.db.GetUserStats(userID)
	if err != nil {
		log.Printf("Error getting user stats: %v", err)
		b.sendMessage(message.Chat.ID, "Sorry, I couldn't retrieve your statistics. Please try again later.")
		return
	}
	best, sessions, err := b.db.GetBestScore(userID)
	if err != nil {
		log.Printf("Error getting best score: %v", err)
	}

	total := correct + incorrect
	var accuracy float64
	if total > 0 {
		accuracy = float64(correct) / float64(total) * 100
	}

	statMessage := fmt.Sprintf(`📊 Your Statistics:

Sessions Played: %d
Best Score: %d
Questions Answered: %d
Correct Answers: %d ✅
Revealed Answers: %d ❌
Accuracy: %.1f%%`, sessions, best, total, correct, incorrect, accuracy)

	if incorrect > 0 {
		missed, err := b.db.GetMostMissedModes(userID, 3)
		if err != nil {
			log.Printf("Error getting missed modes: %v", err)
		}
		if len(missed) > 0 {
			statMessage += "\n\nModes to practice:\n"
			for i, m := range missed {
				statMessage += fmt.Sprintf("%d. %s (%d missed)\n", i+1, m.Mode, m.Misses)
			}
		}
	}

	b.sendMessage(message.Chat.ID, statMessage)
}

// settings returns the stored settings of a user, filled with defaults
func (b *Bot) settings(userID int64) models.UserSettings {
	s, ok, err := b.db.GetSettings(userID)
	if err != nil {
		log.Printf("Error loading settings for %d: %v", userID, err)
	}
	if !ok {
		s = models.UserSettings{UserID: userID}
	}
	if s.Language == "" {
		s.Language = b.defaultLanguage
	}
	if s.Difficulty == "" {
		s.Difficulty = b.defaultDifficulty
	}
	return s
}

// preload warms the cache for a language and difficulty in the background.
// A newer call cancels the one still running.
func (b *Bot) preload(lang, difficulty string) {
	ctx, cancel := context.WithCancel(b.ctx)

	b.mu.Lock()
	if b.cancelPreload != nil {
		b.cancelPreload()
	}
	b.cancelPreload = cancel
	b.mu.Unlock()

	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		err := b.questions.Preload(ctx, lang, difficulty, nil)
		if err != nil && ctx.Err() == nil {
			log.Printf("Error preloading questions for %s: %v", lang, err)
		}
	}()
}

// sendMessage sends a plain text message
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// sendMarkdownMessage sends a MarkdownV2 message and falls back to plain text
func (b *Bot) sendMarkdownMessage(chatID int64, markdown, plain string) {
	msg := tgbotapi.NewMessage(chatID, markdown)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Markdown rendering failed, falling back to plain text: %v", err)
		b.sendMessage(chatID, plain)
	}
}

// escapeMarkdown escapes special characters for Telegram's MarkdownV2 format
func escapeMarkdown(text string) string {
	// Characters that need escaping in MarkdownV2: _*[]()~`>#+-=|{}.!
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	for _, char := range specialChars {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}
