// Package dict exposes the user dictionary's CRUD surface and enforces the
// concurrency contract around it: every mutation runs its whole
// read-modify-write-persist-recompile sequence under one exclusive lock, so
// concurrent callers can never interleave their read and write steps and
// silently drop an edit.
package dict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ttsforge/voxdict/pkg/export"
	"github.com/ttsforge/voxdict/pkg/history"
	"github.com/ttsforge/voxdict/pkg/pipeline"
	"github.com/ttsforge/voxdict/pkg/store"
	"github.com/ttsforge/voxdict/pkg/word"
)

// NotFoundError reports an id that matches no dictionary entry.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no word with id %s", e.ID)
}

// ErrLockTimeout is returned when the dictionary lock cannot be acquired
// within the configured wait.
var ErrLockTimeout = errors.New("timed out waiting for dictionary lock")

// DefaultLockTimeout bounds lock acquisition so a stuck pipeline run cannot
// block callers forever.
const DefaultLockTimeout = 30 * time.Second

// Service composes the store and the recompilation pipeline behind the six
// dictionary operations.
type Service struct {
	store       *store.Store
	pipeline    *pipeline.Pipeline
	history     *history.Log // optional
	logger      *zap.Logger
	sem         *semaphore.Weighted
	lockTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithHistory attaches a mutation log. Recording is best-effort and never
// fails an edit.
func WithHistory(l *history.Log) Option {
	return func(s *Service) { s.history = l }
}

// WithLockTimeout bounds how long an operation waits for the dictionary
// lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService builds a Service over the given store and pipeline.
func NewService(st *store.Store, pl *pipeline.Pipeline, opts ...Option) *Service {
	s := &Service{
		store:       st,
		pipeline:    pl,
		logger:      zap.NewNop(),
		sem:         semaphore.NewWeighted(1),
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// acquire takes the service-wide lock with a bounded wait.
func (s *Service) acquire(ctx context.Context) (release func(), err error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	if err := s.sem.Acquire(lockCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w after %s", ErrLockTimeout, s.lockTimeout)
	}
	return func() { s.sem.Release(1) }, nil
}

// Lookup returns the currently persisted dictionary.
func (s *Service) Lookup(ctx context.Context) (map[string]word.Entry, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.store.Read()
}

// Apply validates spec, adds it under a fresh id, persists and recompiles.
// The returned id is valid even when the error is non-nil: persistence
// precedes compilation, so a compile failure leaves the edit durable while
// the analyzer keeps its previous index.
func (s *Service) Apply(ctx context.Context, spec word.Spec) (string, error) {
	entry, err := word.NewEntry(spec)
	if err != nil {
		return "", fmt.Errorf("apply: %w", err)
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	dict, err := s.store.Read()
	if err != nil {
		return "", fmt.Errorf("apply: %w", err)
	}
	id := uuid.NewString()
	dict[id] = entry
	if err := s.store.Write(dict); err != nil {
		return "", fmt.Errorf("apply: %w", err)
	}
	s.record("apply", id, entry.Surface)
	if err := s.pipeline.Run(ctx); err != nil {
		s.logger.Warn("word persisted but dictionary reload failed",
			zap.String("op", "apply"), zap.String("id", id), zap.Error(err))
		return id, fmt.Errorf("apply %s: %w", id, err)
	}
	return id, nil
}

// Rewrite replaces the entry at id with one built from spec, persists and
// recompiles.
func (s *Service) Rewrite(ctx context.Context, id string, spec word.Spec) error {
	entry, err := word.NewEntry(spec)
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", id, err)
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	dict, err := s.store.Read()
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", id, err)
	}
	if _, ok := dict[id]; !ok {
		return &NotFoundError{ID: id}
	}
	dict[id] = entry
	if err := s.store.Write(dict); err != nil {
		return fmt.Errorf("rewrite %s: %w", id, err)
	}
	s.record("rewrite", id, entry.Surface)
	if err := s.pipeline.Run(ctx); err != nil {
		s.logger.Warn("word persisted but dictionary reload failed",
			zap.String("op", "rewrite"), zap.String("id", id), zap.Error(err))
		return fmt.Errorf("rewrite %s: %w", id, err)
	}
	return nil
}

// Delete removes the entry at id, persists and recompiles.
func (s *Service) Delete(ctx context.Context, id string) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	dict, err := s.store.Read()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	entry, ok := dict[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	delete(dict, id)
	if err := s.store.Write(dict); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	s.record("delete", id, entry.Surface)
	if err := s.pipeline.Run(ctx); err != nil {
		s.logger.Warn("word removed but dictionary reload failed",
			zap.String("op", "delete"), zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Import merges entries into the dictionary as one batch. Every entry is
// validated against the part-of-speech reference table before anything is
// merged; a single mismatch aborts the whole import. On id collision the
// incoming entry wins when override is true, the existing one otherwise.
func (s *Service) Import(ctx context.Context, entries map[string]word.Entry, override bool) error {
	for id, entry := range entries {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("import: id %q is not a UUID: %w", id, err)
		}
		if err := word.ValidateCategory(entry); err != nil {
			return fmt.Errorf("import %s: %w", id, err)
		}
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	dict, err := s.store.Read()
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	for id, entry := range entries {
		if _, exists := dict[id]; exists && !override {
			continue
		}
		dict[id] = entry
	}
	if err := s.store.Write(dict); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	s.record("import", "", fmt.Sprintf("%d entries", len(entries)))
	if err := s.pipeline.Run(ctx); err != nil {
		s.logger.Warn("import persisted but dictionary reload failed",
			zap.String("op", "import"), zap.Error(err))
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

// Refresh re-runs the pipeline against the persisted dictionary without
// modifying it. Used at startup to synchronize the analyzer. A missing base
// dictionary is tolerated here: with no edit to apply, the analyzer simply
// keeps whatever it has.
func (s *Service) Refresh(ctx context.Context) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := s.pipeline.Run(ctx); err != nil {
		var missing *export.MissingBaseDictError
		if errors.As(err, &missing) {
			s.logger.Warn("base dictionary not found, skipping reload", zap.String("path", missing.Path))
			return nil
		}
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

func (s *Service) record(op, id, surface string) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(op, id, surface); err != nil {
		s.logger.Warn("failed to record mutation history",
			zap.String("op", op), zap.String("id", id), zap.Error(err))
	}
}
