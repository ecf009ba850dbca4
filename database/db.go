package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
	"github.com/shadil-rayyan/Math-Mantra-sub000/table"
)

// DB handles all database operations
type DB struct {
	conn *sql.DB
}

// tableColumns lists the cell columns of each imported table, in sheet order
var tableColumns = map[string][]string{
	table.Questions: {"question", "mode", "operands", "difficulty", "answer", "time_limit", "celebration"},
	table.Hints:     {"mode", "hint"},
}

// New creates a new database connection and initializes tables
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err = createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			language TEXT NOT NULL,
			position INTEGER NOT NULL,
			question TEXT NOT NULL,
			mode TEXT NOT NULL,
			operands TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			answer TEXT NOT NULL,
			time_limit TEXT NOT NULL,
			celebration TEXT NOT NULL,
			PRIMARY KEY (language, position)
		)`,
		`CREATE TABLE IF NOT EXISTS hints (
			language TEXT NOT NULL,
			position INTEGER NOT NULL,
			mode TEXT NOT NULL,
			hint TEXT NOT NULL,
			PRIMARY KEY (language, position)
		)`,
		`CREATE TABLE IF NOT EXISTS round_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			mode TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			expression TEXT NOT NULL,
			grade TEXT NOT NULL,
			points INTEGER NOT NULL,
			correct BOOLEAN NOT NULL,
			attempts INTEGER NOT NULL,
			timestamp INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			language TEXT NOT NULL,
			mode TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			score INTEGER NOT NULL,
			answered INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			wrong_questions INTEGER NOT NULL,
			ended_early BOOLEAN NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id INTEGER PRIMARY KEY,
			language TEXT NOT NULL,
			difficulty TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS explanation_cache (
			expression TEXT PRIMARY KEY,
			response TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Records returns the rows of an imported table for a language, header first
func (db *DB) Records(ctx context.Context, name, language string) ([][]string, error) {
	columns, ok := tableColumns[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE language = ? ORDER BY position", strings.Join(columns, ", "), name),
		strings.ToLower(language))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	records := [][]string{columns}
	for rows.Next() {
		cells := make([]string, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", name, err)
		}
		records = append(records, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return records, nil
}

// ImportRecords replaces the rows of a table for a language.
// The first record is a header and is skipped.
func (db *DB) ImportRecords(ctx context.Context, name, language string, records [][]string) (int, error) {
	columns, ok := tableColumns[name]
	if !ok {
		return 0, fmt.Errorf("unknown table %q", name)
	}
	language = strings.ToLower(language)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE language = ?", name), language); err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)+2), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (language, position, %s) VALUES (%s)",
		name, strings.Join(columns, ", "), placeholders))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	imported := 0
	for i, record := range records {
		if i == 0 {
			continue
		}
		args := []any{language, i}
		for c := range columns {
			cell := ""
			if c < len(record) {
				cell = strings.TrimSpace(record[c])
			}
			args = append(args, cell)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("failed to import %s row %d: %w", name, i, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return imported, nil
}

// SaveRoundResult records the outcome of one question
func (db *DB) SaveRoundResult(r models.RoundResult) error {
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().Unix()
	}
	_, err := db.conn.Exec(
		`INSERT INTO round_results (session_id, user_id, mode, difficulty, expression, grade, points, correct, attempts, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.UserID, r.Mode, r.Difficulty, r.Expression, r.Grade, r.Points, r.Correct, r.Attempts, r.Timestamp,
	)
	return err
}

// SaveSession stores the summary of a session
func (db *DB) SaveSession(s models.Session) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO sessions (id, user_id, language, mode, difficulty, score, answered, correct, wrong_questions, ended_early, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Language, s.Mode, s.Difficulty, s.Score, s.Answered, s.Correct, s.WrongQuestions, s.EndedEarly, s.StartedAt, s.EndedAt,
	)
	return err
}

// GetUserStats retrieves statistics about the user's answers
func (db *DB) GetUserStats(userID int64) (correct int, incorrect int, err error) {
	err = db.conn.QueryRow(
		"SELECT COUNT(*) FROM round_results WHERE user_id = ? AND correct = 1",
		userID,
	).Scan(&correct)
	if err != nil {
		return 0, 0, err
	}

	err = db.conn.QueryRow(
		"SELECT COUNT(*) FROM round_results WHERE user_id = ? AND correct = 0",
		userID,
	).Scan(&incorrect)
	return correct, incorrect, err
}

// GetBestScore returns the user's highest session score and the number of sessions played
func (db *DB) GetBestScore(userID int64) (best int, sessions int, err error) {
	err = db.conn.QueryRow(
		"SELECT COALESCE(MAX(score), 0), COUNT(*) FROM sessions WHERE user_id = ?",
		userID,
	).Scan(&best, &sessions)
	return best, sessions, err
}

// ModeMisses counts wrong answers for one mode
type ModeMisses struct {
	Mode   string
	Misses int
}

// GetMostMissedModes gets the modes most frequently answered incorrectly
func (db *DB) GetMostMissedModes(userID int64, limit int) ([]ModeMisses, error) {
	rows, err := db.conn.Query(`
		SELECT mode, COUNT(*) as count
		FROM round_results
		WHERE user_id = ? AND correct = 0
		GROUP BY mode
		ORDER BY count DESC, mode
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ModeMisses
	for rows.Next() {
		var m ModeMisses
		if err := rows.Scan(&m.Mode, &m.Misses); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// GetSettings returns the stored settings of a user, or false if none were saved
func (db *DB) GetSettings(userID int64) (models.UserSettings, bool, error) {
	s := models.UserSettings{UserID: userID}
	err := db.conn.QueryRow(
		"SELECT language, difficulty FROM user_settings WHERE user_id = ?",
		userID,
	).Scan(&s.Language, &s.Difficulty)
	if err == sql.ErrNoRows {
		return s, false, nil
	}
	if err != nil {
		return s, false, err
	}
	return s, true, nil
}

// SaveSettings stores a user's language and difficulty
func (db *DB) SaveSettings(s models.UserSettings) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO user_settings (user_id, language, difficulty) VALUES (?, ?, ?)",
		s.UserID, s.Language, s.Difficulty,
	)
	return err
}

// CacheExplanation stores an explanation from the AI API
func (db *DB) CacheExplanation(e models.ExplanationCache) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO explanation_cache (expression, response) VALUES (?, ?)",
		e.Expression, e.Response,
	)
	return err
}

// GetCachedExplanation retrieves a cached explanation; empty when none is stored
func (db *DB) GetCachedExplanation(expression string) (string, error) {
	var response string
	err := db.conn.QueryRow(
		"SELECT response FROM explanation_cache WHERE expression = ?",
		expression,
	).Scan(&response)

	if err == sql.ErrNoRows {
		return "", nil
	}
	return response, err
}
