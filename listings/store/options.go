package store

import (
	"log/slog"
	"time"

	"github.com/arthur-debert/listings/listings/storage"
	"github.com/arthur-debert/listings/types"
)

// Option modifies Service configuration
type Option func(*options)

type options struct {
	fs          storage.FileSystem
	lockFactory storage.FileLockFactory
	logger      *slog.Logger
	confirmer   types.Confirmer
	timeFunc    func() time.Time
}

func defaultOptions() options {
	return options{
		fs:          storage.OSFileSystem{},
		lockFactory: storage.FlockFactory{},
		logger:      slog.New(slog.DiscardHandler),
		confirmer:   types.NeverConfirm,
		timeFunc:    time.Now,
	}
}

// WithFileSystem sets a custom FileSystem implementation
func WithFileSystem(fs storage.FileSystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithFileLockFactory sets a custom FileLockFactory implementation
func WithFileLockFactory(factory storage.FileLockFactory) Option {
	return func(o *options) {
		o.lockFactory = factory
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConfirmer sets who approves destructive actions. The default
// declines every prompt.
func WithConfirmer(c types.Confirmer) Option {
	return func(o *options) {
		o.confirmer = c
	}
}

// WithTimeFunc sets a custom time function for testing
func WithTimeFunc(fn func() time.Time) Option {
	return func(o *options) {
		o.timeFunc = fn
	}
}
