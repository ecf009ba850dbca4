package question

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
	"golang.org/x/sync/errgroup"
)

// TableQuestions is the table name of question rows in a Source
const TableQuestions = "questions"

// ErrNoQuestions indicates that no row matched the requested mode and difficulty.
var ErrNoQuestions = errors.New("no questions available")

// Source provides raw table records, header first
type Source interface {
	Records(ctx context.Context, table, language string) ([][]string, error)
}

// Policy decides what a cache hit returns
type Policy int

const (
	// Reuse returns the list rolled when the key was first loaded.
	Reuse Policy = iota
	// Reroll resolves the cached table again so operands are fresh on every play.
	Reroll
)

// Options configures a Service
type Options struct {
	Policy         Policy
	Difficulties   []string
	PreloadAll     bool
	PreloadWorkers int
}

// Result is delivered by Fetch
type Result struct {
	Questions []models.Question
	Err       error
}

// Service loads questions from a Source through the cache
type Service struct {
	source Source
	cache  *Cache
	loader *Loader
	opts   Options

	mu     sync.Mutex
	tables map[string][][]string
}

// NewService creates a question service
func NewService(source Source, cache *Cache, loader *Loader, opts Options) *Service {
	if cache == nil {
		cache = NewCache()
	}
	if opts.PreloadWorkers <= 0 {
		opts.PreloadWorkers = 1
	}
	return &Service{
		source: source,
		cache:  cache,
		loader: loader,
		opts:   opts,
		tables: make(map[string][][]string),
	}
}

// Cache returns the cache used by the service
func (s *Service) Cache() *Cache {
	return s.cache
}

// Questions returns the questions for a key, loading them on a cache miss.
// ErrNoQuestions is returned when nothing matches.
func (s *Service) Questions(ctx context.Context, lang, mode, difficulty string) ([]models.Question, error) {
	if cached, ok := s.cache.Get(lang, mode, difficulty); ok && len(cached) > 0 {
		if s.opts.Policy == Reuse {
			return cached, nil
		}
	}

	start := time.Now()
	records, err := s.table(ctx, lang)
	if err != nil {
		return nil, err
	}

	questions := s.loader.Load(records, mode, difficulty)
	key := NewKey(lang, mode, difficulty)
	if len(questions) == 0 {
		log.Printf("No questions found for %s", key)
		return nil, fmt.Errorf("%s: %w", key, ErrNoQuestions)
	}

	s.cache.Put(lang, mode, difficulty, questions)
	log.Printf("Loaded %d questions for %s in %v", len(questions), key, time.Since(start))
	return questions, nil
}

// Fetch runs Questions in a goroutine and delivers the result on the returned channel
func (s *Service) Fetch(ctx context.Context, lang, mode, difficulty string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		questions, err := s.Questions(ctx, lang, mode, difficulty)
		out <- Result{Questions: questions, Err: err}
	}()
	return out
}

// Modes returns the distinct modes present in a language's table, in first-seen order
func (s *Service) Modes(ctx context.Context, lang string) ([]string, error) {
	records, err := s.table(ctx, lang)
	if err != nil {
		return nil, err
	}

	var (
		modes []string
		seen  = make(map[string]bool)
	)
	for i, cells := range records {
		if i == 0 || len(cells) <= colMode {
			continue
		}
		mode := NormalizeMode(cells[colMode])
		if mode != "" && !seen[mode] {
			seen[mode] = true
			modes = append(modes, mode)
		}
	}
	return modes, nil
}

// Preload loads every mode of the current difficulty, then, when enabled, the
// other configured difficulties. Progress is reported as a percentage.
// Cancelling ctx abandons the remaining work; entries already written stay valid.
func (s *Service) Preload(ctx context.Context, lang, current string, onProgress func(percent int)) error {
	start := time.Now()
	log.Printf("Starting to preload questions for %s", NormalizeLanguage(lang))

	modes, err := s.Modes(ctx, lang)
	if err != nil {
		return err
	}
	records, err := s.table(ctx, lang)
	if err != nil {
		return err
	}

	current = CanonicalDifficulty(current)
	difficulties := []string{current}
	if s.opts.PreloadAll {
		for _, d := range s.opts.Difficulties {
			if d = CanonicalDifficulty(d); d != current {
				difficulties = append(difficulties, d)
			}
		}
	}

	var keys []Key
	for _, d := range difficulties {
		for _, m := range modes {
			keys = append(keys, NewKey(lang, m, d))
		}
	}

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		if onProgress == nil {
			return
		}
		mu.Lock()
		done++
		percent := done * 100 / len(keys)
		mu.Unlock()
		onProgress(percent)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.PreloadWorkers)
	for _, key := range keys {
		key := key
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			questions := s.loader.Load(records, key.Mode, key.Difficulty)
			if len(questions) > 0 && gctx.Err() == nil {
				s.cache.Put(lang, key.Mode, key.Difficulty, questions)
				log.Printf("Cached %s questions (%d)", key, len(questions))
			}
			report()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Printf("Finished preloading %d keys in %v", len(keys), time.Since(start))
	return nil
}

// table returns the raw question records of a language, reading the source once
func (s *Service) table(ctx context.Context, lang string) ([][]string, error) {
	lang = NormalizeLanguage(lang)

	s.mu.Lock()
	records, ok := s.tables[lang]
	s.mu.Unlock()
	if ok {
		return records, nil
	}

	records, err := s.source.Records(ctx, TableQuestions, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to load question table for %s: %w", lang, err)
	}

	s.mu.Lock()
	s.tables[lang] = records
	s.mu.Unlock()
	return records, nil
}

// Forget drops the memoized table of a language, e.g. after a re-import
func (s *Service) Forget(lang string) {
	s.mu.Lock()
	delete(s.tables, NormalizeLanguage(lang))
	s.mu.Unlock()
}
