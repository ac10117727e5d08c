// Package export manages the files the operator asks for explicitly: the
// binary backup, the printable report and the zip archive bundling them.
// Unlike the recovery pair these never overwrite an existing file
// without confirmation.
package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/arthur-debert/listings/listings/storage"
	"github.com/arthur-debert/listings/types"
)

// Manager reads and writes operator-facing files.
type Manager struct {
	capacity  int
	fs        storage.FileSystem
	confirmer types.Confirmer
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithFileSystem sets a custom filesystem implementation
func WithFileSystem(fsys storage.FileSystem) Option {
	return func(m *Manager) {
		m.fs = fsys
	}
}

// WithConfirmer sets who approves overwriting existing files.
func WithConfirmer(c types.Confirmer) Option {
	return func(m *Manager) {
		m.confirmer = c
	}
}

// WithLogger sets the logger for file events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTimeFunc sets a custom time function for archive timestamps
func WithTimeFunc(fn func() time.Time) Option {
	return func(m *Manager) {
		m.now = fn
	}
}

// NewManager returns a Manager that accepts backups of up to capacity
// records. Without a Confirmer every overwrite is declined.
func NewManager(capacity int, opts ...Option) *Manager {
	m := &Manager{
		capacity:  capacity,
		fs:        storage.OSFileSystem{},
		confirmer: types.NeverConfirm,
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SaveBackup writes ps to path as a binary snapshot.
func (m *Manager) SaveBackup(path string, ps []types.Property) error {
	data, err := storage.EncodeBinary(ps)
	if err != nil {
		return err
	}
	if err := m.write(path, data); err != nil {
		return err
	}
	m.logger.Info("backup saved", "path", path, "count", len(ps))
	return nil
}

// LoadBackup reads a binary snapshot. The file is fully validated; a
// corrupt file yields ErrCorruptData and no records.
func (m *Manager) LoadBackup(path string) ([]types.Property, error) {
	ps, err := storage.ReadBinaryFile(m.fs, path, m.capacity)
	if err != nil {
		m.logger.Warn("backup load failed", "path", path, "error", err)
		return nil, err
	}
	m.logger.Info("backup loaded", "path", path, "count", len(ps))
	return ps, nil
}

// WriteReport writes the printable report of ps to path.
func (m *Manager) WriteReport(path string, ps []types.Property) error {
	data, err := Report(ps)
	if err != nil {
		return err
	}
	if err := m.write(path, data); err != nil {
		return err
	}
	m.logger.Info("report written", "path", path, "count", len(ps))
	return nil
}

// write stores data at path after the overwrite check.
func (m *Manager) write(path string, data []byte) error {
	if err := m.confirmOverwrite(path); err != nil {
		return err
	}
	if err := storage.EnsureDir(m.fs, filepath.Dir(path)); err != nil {
		return err
	}
	return storage.WriteFileAtomic(m.fs, path, data)
}

func (m *Manager) confirmOverwrite(path string) error {
	if !storage.Exists(m.fs, path) {
		return nil
	}
	ok, err := m.confirmer.Confirm(fmt.Sprintf("File %q already exists. Overwrite?", path))
	if err != nil {
		return fmt.Errorf("confirm overwrite of %s: %w", path, err)
	}
	if !ok {
		m.logger.Info("overwrite declined", "path", path)
		return fmt.Errorf("%w: %s not overwritten", types.ErrCancelled, path)
	}
	return nil
}
