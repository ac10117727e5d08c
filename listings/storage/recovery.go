package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/arthur-debert/listings/types"
)

// Source identifies which recovery file a load came from.
type Source string

const (
	SourceNone   Source = "none"
	SourceText   Source = "text"
	SourceBinary Source = "binary"
)

// LoadResult is what Recovery.Load found on disk.
type LoadResult struct {
	Properties []types.Property
	Source     Source
	// Skipped lists text lines dropped under MalformedSkip.
	Skipped []*DataError
	// TextErr is set when the text file was unreadable or corrupt and
	// the binary snapshot was used instead.
	TextErr error
}

// Recovery keeps the automatic sync pair: a delimited text snapshot and
// a binary snapshot of the whole collection, rewritten after every
// mutation.
type Recovery struct {
	dir        string
	textPath   string
	binaryPath string
	capacity   int
	malformed  types.MalformedPolicy

	fs          FileSystem
	lockFactory FileLockFactory
	logger      *slog.Logger
}

// Option configures a Recovery.
type Option func(*Recovery)

// WithFileSystem sets a custom filesystem implementation
func WithFileSystem(fsys FileSystem) Option {
	return func(r *Recovery) {
		r.fs = fsys
	}
}

// WithFileLockFactory sets a custom file lock factory
func WithFileLockFactory(factory FileLockFactory) Option {
	return func(r *Recovery) {
		r.lockFactory = factory
	}
}

// WithLogger sets the logger used for load and sync events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recovery) {
		r.logger = logger
	}
}

// NewRecovery returns a Recovery for the files named by cfg.
func NewRecovery(cfg types.Config, opts ...Option) *Recovery {
	r := &Recovery{
		dir:         cfg.RecoveryPath(),
		textPath:    cfg.RecoveryTextPath(),
		binaryPath:  cfg.RecoveryBinaryPath(),
		capacity:    cfg.Capacity,
		malformed:   cfg.MalformedLines,
		fs:          OSFileSystem{},
		lockFactory: FlockFactory{},
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TextPath returns the delimited snapshot path.
func (r *Recovery) TextPath() string { return r.textPath }

// BinaryPath returns the binary snapshot path.
func (r *Recovery) BinaryPath() string { return r.binaryPath }

// FileSystem returns the filesystem the Recovery writes through.
func (r *Recovery) FileSystem() FileSystem { return r.fs }

func (r *Recovery) lockPath() string {
	return filepath.Join(r.dir, ".lock")
}

// Sync rewrites both snapshot files with ps, text first. Both encodings
// are produced before anything is written, so an unencodable collection
// never reaches the disk. When the binary write fails the previous text
// file is put back, so a failed Sync leaves the old snapshot loadable.
func (r *Recovery) Sync(ps []types.Property) error {
	text, err := EncodeText(ps)
	if err != nil {
		return err
	}
	bin, err := EncodeBinary(ps)
	if err != nil {
		return err
	}

	if err := EnsureDir(r.fs, r.dir); err != nil {
		return err
	}

	err = withLock(r.lockFactory.New(r.lockPath()), func() error {
		prev, readErr := r.fs.ReadFile(r.textPath)
		if err := WriteFileAtomic(r.fs, r.textPath, text); err != nil {
			return err
		}
		if err := WriteFileAtomic(r.fs, r.binaryPath, bin); err != nil {
			r.restoreText(prev, readErr == nil)
			return err
		}
		return nil
	})
	if err != nil {
		r.logger.Error("recovery sync failed", "count", len(ps), "error", err)
		return fmt.Errorf("recovery sync: %w", err)
	}

	r.logger.Debug("recovery synced", "count", len(ps), "text", r.textPath, "binary", r.binaryPath)
	return nil
}

// restoreText undoes the text half of a failed Sync: the previous
// contents are written back, or the new file is removed when there was
// none.
func (r *Recovery) restoreText(prev []byte, existed bool) {
	var err error
	if existed {
		err = WriteFileAtomic(r.fs, r.textPath, prev)
	} else {
		err = r.fs.Remove(r.textPath)
	}
	if err != nil {
		r.logger.Error("recovery text not restored", "path", r.textPath, "error", err)
	}
}

// Load reads the recovery snapshot. The text file is preferred; the
// binary one is used when the text file is missing or cannot be
// decoded. Finding neither file is not an error: the result is empty
// with SourceNone. When both files exist and both fail, the text error
// is returned.
func (r *Recovery) Load() (LoadResult, error) {
	if !Exists(r.fs, r.dir) {
		return LoadResult{Source: SourceNone}, nil
	}

	var res LoadResult
	err := withLock(r.lockFactory.New(r.lockPath()), func() error {
		var err error
		res, err = r.load()
		return err
	})
	if err != nil {
		return LoadResult{}, err
	}

	r.logger.Info("recovery loaded",
		"source", string(res.Source),
		"count", len(res.Properties),
		"skipped", len(res.Skipped))
	return res, nil
}

func (r *Recovery) load() (LoadResult, error) {
	textRes, textErr := r.loadText()
	if textErr == nil {
		return LoadResult{Properties: textRes.Properties, Source: SourceText, Skipped: textRes.Skipped}, nil
	}
	textMissing := errors.Is(textErr, fs.ErrNotExist)
	if !textMissing {
		r.logger.Warn("recovery text unusable, trying binary", "path", r.textPath, "error", textErr)
	}

	ps, binErr := r.loadBinary()
	switch {
	case binErr == nil:
		res := LoadResult{Properties: ps, Source: SourceBinary}
		if !textMissing {
			res.TextErr = textErr
		}
		return res, nil
	case errors.Is(binErr, fs.ErrNotExist) && textMissing:
		return LoadResult{Source: SourceNone}, nil
	case textMissing:
		return LoadResult{}, binErr
	default:
		return LoadResult{}, textErr
	}
}

func (r *Recovery) loadText() (TextResult, error) {
	data, err := ReadFile(r.fs, r.textPath)
	if err != nil {
		return TextResult{}, err
	}
	res, err := DecodeText(bytes.NewReader(data), r.capacity, r.malformed)
	if err != nil {
		return TextResult{}, inFile(err, r.textPath)
	}
	for _, de := range res.Skipped {
		de.File = r.textPath
		r.logger.Warn("skipped malformed recovery line", "path", r.textPath, "line", de.Line, "error", de.Err)
	}
	return res, nil
}

func (r *Recovery) loadBinary() ([]types.Property, error) {
	return ReadBinaryFile(r.fs, r.binaryPath, r.capacity)
}
