package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"storefront/internal/metrics"

	"go.uber.org/zap"
)

// AccessError reports that the document could not be created at all
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("file store %s is not accessible: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// CorruptStoreError reports that the document was unparseable. The broken
// file was moved to QuarantinePath and replaced with an empty document.
type CorruptStoreError struct {
	Path           string
	QuarantinePath string
	Err            error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("file store %s was corrupt (moved to %s): %v", e.Path, e.QuarantinePath, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// Store keeps the database document in a single JSON file. Every mutation of
// the file runs through one Serializer, so writers in this process never
// interleave. There is no cross-process locking.
type Store struct {
	path   string
	queue  *Serializer
	logger *zap.Logger
	now    func() time.Time
}

// New creates a file store at path and starts its write queue
func New(path string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		queue:  NewSerializer(),
		logger: logger,
		now:    time.Now,
	}
}

// Path returns the document location
func (s *Store) Path() string {
	return s.path
}

// Close drains pending writes
func (s *Store) Close() error {
	s.queue.Close()
	return nil
}

// Ensure creates the document with empty collections if it does not exist
func (s *Store) Ensure(ctx context.Context) error {
	return s.queue.Enqueue(ctx, s.ensureLocked)
}

func (s *Store) ensureLocked() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}

	mkdirErr := os.MkdirAll(filepath.Dir(s.path), 0o755)

	data, err := encode(EmptyDocument())
	if err != nil {
		return fmt.Errorf("failed to encode empty document: %w", err)
	}
	if err := s.writeFile(data); err != nil {
		return &AccessError{Path: s.path, Err: errors.Join(mkdirErr, err)}
	}

	s.logger.Info("Initialized file store", zap.String("path", s.path))
	return nil
}

// Read returns the parsed document. An unparseable file is quarantined and
// reset; the empty document is returned together with a *CorruptStoreError.
func (s *Store) Read(ctx context.Context) (Document, error) {
	if err := s.Ensure(ctx); err != nil {
		return EmptyDocument(), err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return EmptyDocument(), fmt.Errorf("failed to read file store: %w", err)
	}

	doc, err := ParseDocument(data)
	if err == nil {
		return doc, nil
	}

	// Repair inside the queue so a concurrent valid write is never clobbered
	var repaired Document
	var corrupt error
	qerr := s.queue.Enqueue(ctx, func() error {
		repaired, corrupt = s.loadLocked()
		return nil
	})
	if qerr != nil {
		return EmptyDocument(), qerr
	}
	return repaired, corrupt
}

// Write replaces the document
func (s *Store) Write(ctx context.Context, doc Document) error {
	return s.queue.Enqueue(ctx, func() error {
		return s.writeDocLocked(doc)
	})
}

// Update applies fn to the current document and writes the result as one
// queued job, so concurrent updates to different collections are not lost.
func (s *Store) Update(ctx context.Context, fn func(*Document)) (Document, error) {
	var result Document
	err := s.queue.Enqueue(ctx, func() error {
		if err := s.ensureLocked(); err != nil {
			return err
		}
		// A corrupt file was already reset and logged by loadLocked
		doc, _ := s.loadLocked()
		fn(&doc)
		if err := s.writeDocLocked(doc); err != nil {
			return err
		}
		result = doc
		return nil
	})
	if err != nil {
		return EmptyDocument(), err
	}
	return result, nil
}

// loadLocked reads and parses the file, resetting it when corrupt.
// Must run on the queue.
func (s *Store) loadLocked() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return EmptyDocument(), nil
		}
		return EmptyDocument(), fmt.Errorf("failed to read file store: %w", err)
	}

	doc, parseErr := ParseDocument(data)
	if parseErr == nil {
		return doc, nil
	}

	quarantine := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().UnixNano())
	if err := os.Rename(s.path, quarantine); err != nil {
		s.logger.Error("Failed to quarantine corrupt file store", zap.String("path", s.path), zap.Error(err))
		quarantine = ""
	}

	metrics.StoreCorruptionsTotal.Inc()
	s.logger.Error("File store was corrupt, resetting to empty document",
		zap.String("path", s.path),
		zap.String("quarantine", quarantine),
		zap.Error(parseErr),
	)

	if err := s.writeDocLocked(EmptyDocument()); err != nil {
		return EmptyDocument(), err
	}
	return EmptyDocument(), &CorruptStoreError{Path: s.path, QuarantinePath: quarantine, Err: parseErr}
}

func (s *Store) writeDocLocked(doc Document) error {
	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create file store directory: %w", err)
	}
	return s.writeFile(data)
}

// writeFile writes through a temp file in the same directory and renames it
// into place. When that fails (read-only temp, cross-device rename) it falls
// back to writing the target directly.
func (s *Store) writeFile(data []byte) error {
	err := writeAtomic(s.path, data)
	if err == nil {
		metrics.FileWritesTotal.WithLabelValues("atomic").Inc()
		return nil
	}

	s.logger.Warn("Atomic write failed, writing file store directly",
		zap.String("path", s.path),
		zap.Error(err),
	)
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		metrics.FileWritesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to write file store: %w", err)
	}
	metrics.FileWritesTotal.WithLabelValues("direct").Inc()
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".db-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
