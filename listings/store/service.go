package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/arthur-debert/listings/listings/export"
	"github.com/arthur-debert/listings/listings/storage"
	"github.com/arthur-debert/listings/types"
)

// StartupReport describes how the collection was initialised by Open.
type StartupReport struct {
	Policy types.StartupPolicy
	Source storage.Source
	Loaded int
	// Skipped counts malformed recovery lines dropped on load.
	Skipped int
	// Declined is set when the operator refused the recovery snapshot.
	Declined bool
	// Err holds the decoding error of a corrupt snapshot. The service
	// then starts empty.
	Err error
	// TextErr is set when the binary snapshot replaced an unusable text file.
	TextErr error
}

// Service is the record store as the operator sees it: every mutation
// is followed by a recovery sync, and a failed sync undoes the mutation.
type Service struct {
	cfg       types.Config
	records   *Collection
	recovery  *storage.Recovery
	files     *export.Manager
	confirmer types.Confirmer
	logger    *slog.Logger
	startup   StartupReport
}

// Open creates the service and loads the recovery snapshot according
// to cfg.StartupPolicy.
func Open(cfg types.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{
		cfg:     cfg,
		records: NewCollection(cfg.Capacity),
		recovery: storage.NewRecovery(cfg,
			storage.WithFileSystem(o.fs),
			storage.WithFileLockFactory(o.lockFactory),
			storage.WithLogger(o.logger),
		),
		files: export.NewManager(cfg.Capacity,
			export.WithFileSystem(o.fs),
			export.WithConfirmer(o.confirmer),
			export.WithLogger(o.logger),
			export.WithTimeFunc(o.timeFunc),
		),
		confirmer: o.confirmer,
		logger:    o.logger,
	}

	if err := s.startupLoad(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) startupLoad() error {
	s.startup = StartupReport{Policy: s.cfg.StartupPolicy, Source: storage.SourceNone}
	if s.cfg.StartupPolicy == types.StartupIgnore {
		s.logger.Info("recovery snapshot ignored by policy")
		return nil
	}

	res, err := s.recovery.Load()
	if errors.Is(err, types.ErrCorruptData) {
		s.startup.Err = err
		s.logger.Warn("recovery snapshot corrupt, starting empty", "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load recovery snapshot: %w", err)
	}

	s.startup.Source = res.Source
	s.startup.Skipped = len(res.Skipped)
	s.startup.TextErr = res.TextErr
	if len(res.Properties) == 0 {
		return nil
	}

	if s.cfg.StartupPolicy == types.StartupConfirm {
		ok, err := s.confirmer.Confirm(fmt.Sprintf("Recovery data with %d properties found. Load it?", len(res.Properties)))
		if err != nil {
			return fmt.Errorf("confirm recovery load: %w", err)
		}
		if !ok {
			s.startup.Declined = true
			s.logger.Info("recovery snapshot declined", "count", len(res.Properties))
			return nil
		}
	}

	if err := s.records.Replace(res.Properties); err != nil {
		s.startup.Err = fmt.Errorf("%w: %w", types.ErrCorruptData, err)
		s.logger.Warn("recovery snapshot rejected, starting empty", "error", err)
		return nil
	}
	s.startup.Loaded = len(res.Properties)
	return nil
}

// Startup reports how Open initialised the collection.
func (s *Service) Startup() StartupReport { return s.startup }

// Config returns the configuration the service was opened with.
func (s *Service) Config() types.Config { return s.cfg }

// Len returns the number of records.
func (s *Service) Len() int { return s.records.Len() }

// Capacity returns the maximum number of records.
func (s *Service) Capacity() int { return s.records.Capacity() }

// All returns a copy of every record in collection order.
func (s *Service) All() []types.Property { return s.records.All() }

// Get returns the record with ref.
func (s *Service) Get(ref int) (types.Property, error) { return s.records.Get(ref) }

// mutate runs fn and syncs the result. When fn reports no change the
// sync is skipped; when the sync fails the collection is restored.
func (s *Service) mutate(op string, fn func() (bool, error)) error {
	before := s.records.snapshot()

	changed, err := fn()
	if err != nil || !changed {
		return err
	}

	if err := s.recovery.Sync(s.records.items); err != nil {
		s.records.restore(before)
		s.logger.Error("mutation rolled back", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) confirm(prompt string) error {
	ok, err := s.confirmer.Confirm(prompt)
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrCancelled, prompt)
	}
	return nil
}

// Add inserts p as a new Available record.
func (s *Service) Add(p types.Property) (types.Property, error) {
	var stored types.Property
	err := s.mutate("add", func() (bool, error) {
		var err error
		stored, err = s.records.Insert(p)
		return err == nil, err
	})
	if err != nil {
		return types.Property{}, err
	}
	s.logger.Info("property added", "ref", stored.Ref)
	return stored, nil
}

// AddMany inserts every record of ps or none of them.
func (s *Service) AddMany(ps []types.Property) ([]types.Property, error) {
	var stored []types.Property
	err := s.mutate("add batch", func() (bool, error) {
		var err error
		stored, err = s.records.InsertMany(ps)
		return err == nil && len(stored) > 0, err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("properties added", "count", len(stored))
	return stored, nil
}

// Delete removes the record with ref after confirmation.
func (s *Service) Delete(ref int) (types.Property, error) {
	p, err := s.records.Get(ref)
	if err != nil {
		return types.Property{}, err
	}
	if err := s.confirm(fmt.Sprintf("Delete property %d (%s, %s)?", p.Ref, p.Type, p.Area)); err != nil {
		return types.Property{}, err
	}

	err = s.mutate("delete", func() (bool, error) {
		_, err := s.records.DeleteByRef(ref)
		return err == nil, err
	})
	if err != nil {
		return types.Property{}, err
	}
	s.logger.Info("property deleted", "ref", ref)
	return p, nil
}

// DeleteAll removes every record after confirmation and returns how
// many were removed. An empty collection is left alone.
func (s *Service) DeleteAll() (int, error) {
	if s.records.Len() == 0 {
		return 0, nil
	}
	if err := s.confirm(fmt.Sprintf("Delete all %d properties?", s.records.Len())); err != nil {
		return 0, err
	}

	var n int
	err := s.mutate("delete all", func() (bool, error) {
		n = s.records.DeleteAll()
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("all properties deleted", "count", n)
	return n, nil
}

// Update applies ch to the record with ref. An Unchanged outcome
// writes nothing.
func (s *Service) Update(ref int, ch Change) (Outcome, error) {
	outcome := Invalid
	err := s.mutate("update", func() (bool, error) {
		var err error
		outcome, err = s.records.Update(ref, ch)
		return outcome == Changed, err
	})
	if err != nil {
		return Invalid, err
	}
	s.logger.Info("property updated", "ref", ref, "field", ch.Field().String(), "outcome", outcome.String())
	return outcome, nil
}

// SortAll reorders the stored records by price and syncs the new order.
func (s *Service) SortAll(ascending bool) error {
	err := s.mutate("sort", func() (bool, error) {
		s.records.SortByPrice(ascending)
		return s.records.Len() > 1, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("properties sorted", "ascending", ascending, "count", s.records.Len())
	return nil
}

// SaveBackup writes the collection to path, or to the configured
// backup file when path is empty.
func (s *Service) SaveBackup(path string) (string, error) {
	path = or(path, s.cfg.BackupPath())
	return path, s.files.SaveBackup(path, s.records.items)
}

// LoadBackup replaces the collection with the backup at path (or the
// configured backup file). Replacing a non-empty collection needs
// confirmation. A corrupt backup leaves the collection untouched.
func (s *Service) LoadBackup(path string) (int, error) {
	path = or(path, s.cfg.BackupPath())

	ps, err := s.files.LoadBackup(path)
	if err != nil {
		return 0, err
	}
	if n := s.records.Len(); n > 0 {
		if err := s.confirm(fmt.Sprintf("Replace the current %d properties with %d from %s?", n, len(ps), path)); err != nil {
			return 0, err
		}
	}

	err = s.mutate("load backup", func() (bool, error) {
		return true, s.records.Replace(ps)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("backup applied", "path", path, "count", len(ps))
	return len(ps), nil
}

// WriteReport writes the printable report to path (or the configured
// report file).
func (s *Service) WriteReport(path string) (string, error) {
	path = or(path, s.cfg.ReportPath())
	return path, s.files.WriteReport(path, s.records.items)
}

// WriteArchive bundles backup, report and recovery text into a zip.
func (s *Service) WriteArchive(path string) error {
	return s.files.WriteArchive(path, s.records.items, export.LayoutFor(s.cfg))
}

// ReadArchive returns the entries of a zip written by WriteArchive.
func (s *Service) ReadArchive(path string) (map[string][]byte, error) {
	return s.files.ReadArchive(path)
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
