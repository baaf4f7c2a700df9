package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mercator-hq/tabula/pkg/table"
)

// Source provides decision tables from some backing store.
type Source interface {
	// Load returns all tables the source currently holds.
	Load(ctx context.Context) ([]*table.Table, error)
}

// FileSource loads tables from YAML files on disk. The path can be either a
// single file or a directory; for a directory, all .yaml and .yml files are
// loaded.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a file-based table source.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger,
	}
}

// Path returns the file or directory the source reads from.
func (s *FileSource) Path() string {
	return s.path
}

// Load loads all tables from the configured path. A file that fails to
// parse or validate fails the whole load; broken definitions must not be
// silently dropped.
func (s *FileSource) Load(ctx context.Context) ([]*table.Table, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var tables []*table.Table
	if info.IsDir() {
		tables, err = s.loadDirectory(ctx)
	} else {
		var tbl *table.Table
		tbl, err = s.loadFile(s.path)
		tables = []*table.Table{tbl}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded tables from source",
		"path", s.path,
		"table_count", len(tables),
	)

	return tables, nil
}

func (s *FileSource) loadDirectory(ctx context.Context) ([]*table.Table, error) {
	var tables []*table.Table

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		tbl, err := s.loadFile(path)
		if err != nil {
			return err
		}
		tables = append(tables, tbl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}

	return tables, nil
}

func (s *FileSource) loadFile(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	tbl, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load table file %q: %w", path, err)
	}

	s.logger.Debug("loaded table file",
		"path", path,
		"table", tbl.Name(),
		"rule_count", len(tbl.Rules()),
	)

	return tbl, nil
}

// MemorySource serves a fixed set of prebuilt tables.
type MemorySource struct {
	tables []*table.Table
}

// NewMemorySource creates an in-memory table source.
func NewMemorySource(tables ...*table.Table) *MemorySource {
	return &MemorySource{tables: tables}
}

// Load returns a copy of the table list.
func (s *MemorySource) Load(ctx context.Context) ([]*table.Table, error) {
	out := make([]*table.Table, len(s.tables))
	copy(out, s.tables)
	return out, nil
}
