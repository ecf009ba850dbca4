// Package table reads question and hint tables from asset files.
package table

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Supported file formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Table names
const (
	Questions = "questions"
	Hints     = "hints"
)

// ErrUnknownFormat indicates an unsupported file format.
var ErrUnknownFormat = errors.New("unknown table format")

// Dir reads tables laid out as <dir>/questions/<lang>.<ext> and <dir>/hint/<lang>.<ext>
type Dir struct {
	root   string
	format string
}

// NewDir creates a directory source for the given format
func NewDir(root, format string) (*Dir, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatCSV && format != FormatXLSX {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &Dir{root: root, format: format}, nil
}

// Path returns the file holding a table for a language
func (d *Dir) Path(table, language string) string {
	dir := table
	if table == Hints {
		dir = "hint"
	}
	return filepath.Join(d.root, dir, strings.ToLower(language)+"."+d.format)
}

// Records returns every row of a table, header included
func (d *Dir) Records(ctx context.Context, table, language string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := d.Path(table, language)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var records [][]string
	switch d.format {
	case FormatCSV:
		records, err = ReadCSV(f)
	default:
		records, err = ReadXLSX(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}
