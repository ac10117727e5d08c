package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/arthur-debert/listings/listings/storage"
	"github.com/arthur-debert/listings/types"
)

// ArchiveLayout names the entries inside an archive.
type ArchiveLayout struct {
	Backup   string
	Report   string
	Recovery string
}

// LayoutFor uses the base names of the configured files.
func LayoutFor(cfg types.Config) ArchiveLayout {
	return ArchiveLayout{
		Backup:   filepath.Base(cfg.BackupFile),
		Report:   filepath.Base(cfg.ReportFile),
		Recovery: filepath.Base(cfg.RecoveryTextFile),
	}
}

// WriteArchive bundles ps as a zip holding the binary backup, the
// report and the delimited text snapshot. All three entries are
// rendered from the same records.
func (m *Manager) WriteArchive(path string, ps []types.Property, layout ArchiveLayout) error {
	backup, err := storage.EncodeBinary(ps)
	if err != nil {
		return err
	}
	report, err := Report(ps)
	if err != nil {
		return err
	}
	text, err := storage.EncodeText(ps)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	for _, entry := range []struct {
		name string
		data []byte
	}{
		{layout.Backup, backup},
		{layout.Report, report},
		{layout.Recovery, text},
	} {
		if err := m.addToZip(zipWriter, entry.name, entry.data); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", entry.name, err)
		}
	}
	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}

	if err := m.write(path, buf.Bytes()); err != nil {
		return err
	}
	m.logger.Info("archive written", "path", path, "count", len(ps))
	return nil
}

func (m *Manager) addToZip(zipWriter *zip.Writer, name string, data []byte) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: m.now(),
	}

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = writer.Write(data)
	return err
}

// ReadArchive returns the entries of an archive keyed by name.
func (m *Manager) ReadArchive(path string) (map[string][]byte, error) {
	data, err := storage.ReadFile(m.fs, path)
	if err != nil {
		return nil, err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrCorruptData, path, err)
	}

	entries := make(map[string][]byte, len(reader.File))
	for _, file := range reader.File {
		content, err := readZipEntry(file)
		if err != nil {
			return nil, fmt.Errorf("%w: %s entry %s: %w", types.ErrCorruptData, path, file.Name, err)
		}
		entries[file.Name] = content
	}
	return entries, nil
}

func readZipEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
