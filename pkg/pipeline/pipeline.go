// Package pipeline regenerates the analyzer's compiled index from the
// persisted user dictionary and hot-swaps it into the running analyzer.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ttsforge/voxdict/pkg/export"
	"github.com/ttsforge/voxdict/pkg/store"
)

// Analyzer is the external morphological analyzer, reduced to the two
// operations this core needs. LoadActive replaces process-wide state shared
// by every consumer of the analyzer and is not reentrant; the Pipeline
// serializes all calls to it.
type Analyzer interface {
	// Compile turns CSV-format entries at sourcePath into an index
	// artifact at outputPath.
	Compile(ctx context.Context, sourcePath, outputPath string) error
	// LoadActive loads the artifact at outputPath as the process-wide
	// active dictionary.
	LoadActive(ctx context.Context, outputPath string) error
}

// CompileError reports a failed compiler invocation or a compiler run that
// produced no output artifact.
type CompileError struct {
	SourcePath string
	Err        error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile dictionary from %s: %v", e.SourcePath, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// CleanupError reports a temporary artifact that could not be scheduled for
// deletion and would otherwise be leaked silently.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

// Pipeline runs the export → compile → hot-swap → cleanup sequence as one
// unit. A Pipeline-wide mutex guards the whole run: two concurrent
// compile-and-swaps could load each other's output or leak temp files.
type Pipeline struct {
	mu        sync.Mutex
	store     *store.Store
	formatter *export.Formatter
	analyzer  Analyzer
	tmpDir    string
	logger    *zap.Logger
}

// New builds a Pipeline. Temporary artifacts are created in tmpDir; an empty
// tmpDir means the directory holding the persisted dictionary document.
func New(st *store.Store, f *export.Formatter, a Analyzer, tmpDir string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tmpDir == "" {
		tmpDir = filepath.Dir(st.Path())
	}
	return &Pipeline{store: st, formatter: f, analyzer: a, tmpDir: tmpDir, logger: logger}
}

// Run makes the analyzer's active index reflect the currently persisted
// dictionary. A failed run leaves the previously active index loaded; the
// temporary artifacts are cleaned up on every path.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dict, err := p.store.Read()
	if err != nil {
		return err
	}
	text, err := p.formatter.Format(dict)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.tmpDir, 0o755); err != nil {
		return fmt.Errorf("create temp directory: %w", err)
	}

	// The random suffix keeps a run from colliding with leftovers of a
	// crashed prior run.
	suffix := uuid.NewString()
	csvPath := filepath.Join(p.tmpDir, "userdict_csv-"+suffix+".tmp")
	compiledPath := filepath.Join(p.tmpDir, "userdict_compiled-"+suffix+".tmp")

	defer func() {
		if cleanupErr := p.cleanup(csvPath, compiledPath); cleanupErr != nil && err == nil {
			err = cleanupErr
		}
	}()

	if err := os.WriteFile(csvPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write export text: %w", err)
	}

	if err := p.analyzer.Compile(ctx, csvPath, compiledPath); err != nil {
		return &CompileError{SourcePath: csvPath, Err: err}
	}
	if _, err := os.Stat(compiledPath); err != nil {
		return &CompileError{SourcePath: csvPath, Err: fmt.Errorf("compiler produced no output artifact: %w", err)}
	}

	abs, err := filepath.Abs(compiledPath)
	if err != nil {
		return fmt.Errorf("resolve compiled artifact path: %w", err)
	}
	if err := p.analyzer.LoadActive(ctx, abs); err != nil {
		return fmt.Errorf("load compiled dictionary: %w", err)
	}

	p.logger.Debug("dictionary recompiled and loaded", zap.Int("entries", len(dict)))
	return nil
}

// cleanup removes both temporary artifacts. The export text file is deleted
// immediately on every platform. The compiled artifact may still be held
// open by the analyzer's loader, so its deletion is scheduled with the
// platform backend and completes when the last handle closes.
func (p *Pipeline) cleanup(csvPath, compiledPath string) error {
	if _, err := os.Stat(csvPath); err == nil {
		if err := os.Remove(csvPath); err != nil {
			p.logger.Warn("failed to remove export text", zap.String("path", csvPath), zap.Error(err))
		}
	}
	if _, err := os.Stat(compiledPath); err == nil {
		if err := scheduleDeletion(compiledPath); err != nil {
			p.logger.Warn("failed to schedule deletion of compiled artifact",
				zap.String("path", compiledPath), zap.Error(err))
			return &CleanupError{Path: compiledPath, Err: err}
		}
	}
	return nil
}
