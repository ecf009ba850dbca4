package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shadil-rayyan/Math-Mantra-sub000/ai"
	"github.com/shadil-rayyan/Math-Mantra-sub000/bot"
	"github.com/shadil-rayyan/Math-Mantra-sub000/config"
	"github.com/shadil-rayyan/Math-Mantra-sub000/database"
	"github.com/shadil-rayyan/Math-Mantra-sub000/hint"
	"github.com/shadil-rayyan/Math-Mantra-sub000/question"
	"github.com/shadil-rayyan/Math-Mantra-sub000/table"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting Math Mantra bot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if cfg.ImportAssets {
		if err := importAssets(ctx, cfg, db); err != nil {
			log.Fatalf("Failed to import assets: %v", err)
		}
	}

	source, err := newSource(cfg, db)
	if err != nil {
		log.Fatalf("Failed to open question source: %v", err)
	}

	policy := question.Reuse
	if cfg.RerollOnReplay {
		policy = question.Reroll
	}
	questions := question.NewService(source,
		question.NewCache(),
		question.NewLoader(question.NewResolver(nil), question.NewModes(cfg.LabelModes...)),
		question.Options{
			Policy:         policy,
			Difficulties:   cfg.Difficulties,
			PreloadAll:     cfg.PreloadAllDifficulties,
			PreloadWorkers: cfg.PreloadWorkers,
		})

	go func() {
		err := questions.Preload(ctx, cfg.DefaultLanguage, cfg.DefaultDifficulty, func(percent int) {
			log.Printf("Preloading questions: %d%%", percent)
		})
		if err != nil && ctx.Err() == nil {
			log.Printf("Error preloading questions: %v", err)
		}
	}()

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to create bot API: %v", err)
	}
	botAPI.Debug = cfg.Debug

	var explainer bot.Explainer
	if cfg.DeepseekAPIKey != "" {
		explainer = ai.NewClient(cfg.DeepseekAPIKey, cfg.DeepseekURL, cfg.ExplainTimeout)
	}

	b := bot.New(ctx, cfg, botAPI, db, questions, hint.NewBook(source), explainer)
	log.Println("Bot initialized successfully")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botAPI.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		botAPI.StopReceivingUpdates()
	}()

	b.Start(updates)
	log.Println("Bot stopped")
}

// newSource returns the configured table source
func newSource(cfg *config.Config, db *database.DB) (question.Source, error) {
	if cfg.QuestionSource == config.SourceSQLite {
		return db, nil
	}
	dir, err := table.NewDir(cfg.AssetsDir, cfg.QuestionSource)
	if err != nil {
		return nil, err
	}
	return dir, nil
}

// importAssets copies the asset tables of the default language into sqlite
func importAssets(ctx context.Context, cfg *config.Config, db *database.DB) error {
	dir, err := table.NewDir(cfg.AssetsDir, cfg.AssetsFormat)
	if err != nil {
		return err
	}

	lang := question.NormalizeLanguage(cfg.DefaultLanguage)
	for _, name := range []string{table.Questions, table.Hints} {
		records, err := dir.Records(ctx, name, lang)
		if err != nil {
			return err
		}
		n, err := db.ImportRecords(ctx, name, lang, records)
		if err != nil {
			return err
		}
		log.Printf("Imported %d %s rows for %s from %s", n, name, lang, dir.Path(name, lang))
	}
	return nil
}
