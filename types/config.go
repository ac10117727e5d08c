package types

import (
	"fmt"
	"path/filepath"
)

// StartupPolicy decides what happens to the recovery snapshot found when
// a store is opened.
type StartupPolicy string

const (
	// StartupAuto adopts the recovery snapshot silently.
	StartupAuto StartupPolicy = "auto"
	// StartupConfirm asks the Confirmer before adopting a non-empty snapshot.
	StartupConfirm StartupPolicy = "confirm"
	// StartupIgnore starts with an empty collection.
	StartupIgnore StartupPolicy = "ignore"
)

// MalformedPolicy decides how the text loader treats lines it cannot parse.
type MalformedPolicy string

const (
	// MalformedSkip drops bad lines and reports how many were dropped.
	MalformedSkip MalformedPolicy = "skip"
	// MalformedAbort fails the whole load at the first bad line.
	MalformedAbort MalformedPolicy = "abort"
)

// Config locates the data files and sets the load policies.
// Relative file names are resolved against DataDir; RecoveryDir is
// resolved against DataDir as well.
type Config struct {
	DataDir            string          `mapstructure:"data_dir" yaml:"data_dir" json:"data_dir"`
	RecoveryDir        string          `mapstructure:"recovery_dir" yaml:"recovery_dir" json:"recovery_dir"`
	BackupFile         string          `mapstructure:"backup_file" yaml:"backup_file" json:"backup_file"`
	ReportFile         string          `mapstructure:"report_file" yaml:"report_file" json:"report_file"`
	RecoveryTextFile   string          `mapstructure:"recovery_text_file" yaml:"recovery_text_file" json:"recovery_text_file"`
	RecoveryBinaryFile string          `mapstructure:"recovery_binary_file" yaml:"recovery_binary_file" json:"recovery_binary_file"`
	Capacity           int             `mapstructure:"capacity" yaml:"capacity" json:"capacity"`
	StartupPolicy      StartupPolicy   `mapstructure:"startup_policy" yaml:"startup_policy" json:"startup_policy"`
	MalformedLines     MalformedPolicy `mapstructure:"malformed_lines" yaml:"malformed_lines" json:"malformed_lines"`
}

// DefaultConfig returns the layout used when nothing is configured:
// ./data for user files and ./data/recovery for the sync pair.
func DefaultConfig() Config {
	return Config{
		DataDir:            "data",
		RecoveryDir:        "recovery",
		BackupFile:         "properties.bin",
		ReportFile:         "properties_report.txt",
		RecoveryTextFile:   "recovery.txt",
		RecoveryBinaryFile: "recovery.bin",
		Capacity:           MaxProperties,
		StartupPolicy:      StartupAuto,
		MalformedLines:     MalformedSkip,
	}
}

// Validate rejects configurations the store cannot honour.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidValue)
	}
	if c.Capacity < 1 || c.Capacity > MaxProperties {
		return fmt.Errorf("%w: capacity %d outside 1..%d", ErrInvalidValue, c.Capacity, MaxProperties)
	}
	switch c.StartupPolicy {
	case StartupAuto, StartupConfirm, StartupIgnore:
	default:
		return fmt.Errorf("%w: startup_policy %q (want auto, confirm or ignore)", ErrInvalidValue, c.StartupPolicy)
	}
	switch c.MalformedLines {
	case MalformedSkip, MalformedAbort:
	default:
		return fmt.Errorf("%w: malformed_lines %q (want skip or abort)", ErrInvalidValue, c.MalformedLines)
	}
	for name, v := range map[string]string{
		"backup_file":          c.BackupFile,
		"report_file":          c.ReportFile,
		"recovery_text_file":   c.RecoveryTextFile,
		"recovery_binary_file": c.RecoveryBinaryFile,
	} {
		if v == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidValue, name)
		}
	}
	return nil
}

// RecoveryPath returns the directory holding the automatic sync files.
func (c Config) RecoveryPath() string {
	return c.resolve(c.RecoveryDir)
}

// BackupPath returns the default user backup file.
func (c Config) BackupPath() string {
	return c.resolve(c.BackupFile)
}

// ReportPath returns the default user report file.
func (c Config) ReportPath() string {
	return c.resolve(c.ReportFile)
}

// RecoveryTextPath returns the delimited recovery snapshot.
func (c Config) RecoveryTextPath() string {
	return resolveIn(c.RecoveryPath(), c.RecoveryTextFile)
}

// RecoveryBinaryPath returns the binary recovery snapshot.
func (c Config) RecoveryBinaryPath() string {
	return resolveIn(c.RecoveryPath(), c.RecoveryBinaryFile)
}

func (c Config) resolve(p string) string {
	return resolveIn(c.DataDir, p)
}

func resolveIn(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
