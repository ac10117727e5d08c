package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MockFileSystem provides an in-memory implementation of FileSystem for testing
type MockFileSystem struct {
	mu    sync.RWMutex
	files map[string]*mockFile
	dirs  map[string]bool

	// Optional errors for simulating failures
	StatError      error
	ReadFileError  error
	WriteFileError error
	RenameError    error
	RemoveError    error
	MkdirAllError  error

	// RenameHook, when set, is consulted before every rename and can fail
	// it selectively (e.g. only for one target file).
	RenameHook func(oldpath, newpath string) error
}

type mockFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi mockFileInfo) Name() string       { return fi.name }
func (fi mockFileInfo) Size() int64        { return fi.size }
func (fi mockFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi mockFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi mockFileInfo) Sys() interface{}   { return nil }

// NewMockFileSystem creates a new mock file system
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: make(map[string]*mockFile),
		dirs:  make(map[string]bool),
	}
}

// Stat implements FileSystem.Stat
func (m *MockFileSystem) Stat(name string) (fs.FileInfo, error) {
	if m.StatError != nil {
		return nil, m.StatError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dirs[name] {
		return mockFileInfo{name: filepath.Base(name), mode: fs.ModeDir | 0o755}, nil
	}

	file, exists := m.files[name]
	if !exists {
		return nil, os.ErrNotExist
	}

	return mockFileInfo{
		name:    filepath.Base(name),
		size:    int64(len(file.content)),
		mode:    file.mode,
		modTime: file.modTime,
	}, nil
}

// ReadFile implements FileSystem.ReadFile
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	if m.ReadFileError != nil {
		return nil, m.ReadFileError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	file, exists := m.files[name]
	if !exists {
		return nil, os.ErrNotExist
	}

	content := make([]byte, len(file.content))
	copy(content, file.content)
	return content, nil
}

// WriteFile implements FileSystem.WriteFile
func (m *MockFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if m.WriteFileError != nil {
		return m.WriteFileError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	content := make([]byte, len(data))
	copy(content, data)

	m.files[name] = &mockFile{
		content: content,
		mode:    perm,
		modTime: time.Now(),
	}
	return nil
}

// Rename implements FileSystem.Rename
func (m *MockFileSystem) Rename(oldpath, newpath string) error {
	if m.RenameError != nil {
		return m.RenameError
	}
	if m.RenameHook != nil {
		if err := m.RenameHook(oldpath, newpath); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	file, exists := m.files[oldpath]
	if !exists {
		return os.ErrNotExist
	}

	// overwrites the target, like os.Rename
	m.files[newpath] = file
	delete(m.files, oldpath)
	return nil
}

// Remove implements FileSystem.Remove
func (m *MockFileSystem) Remove(name string) error {
	if m.RemoveError != nil {
		return m.RemoveError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[name]; !exists {
		return os.ErrNotExist
	}
	delete(m.files, name)
	return nil
}

// MkdirAll implements FileSystem.MkdirAll
func (m *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	if m.MkdirAllError != nil {
		return m.MkdirAllError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for p := filepath.Clean(path); ; p = filepath.Dir(p) {
		m.dirs[p] = true
		if parent := filepath.Dir(p); parent == p {
			break
		}
	}
	return nil
}

// FileExists is a helper method for testing
func (m *MockFileSystem) FileExists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[name]
	return exists
}

// DirExists is a helper method for testing
func (m *MockFileSystem) DirExists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[filepath.Clean(name)]
}

// GetFileContent is a helper method for testing
func (m *MockFileSystem) GetFileContent(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, exists := m.files[name]
	if !exists {
		return nil, false
	}

	content := make([]byte, len(file.content))
	copy(content, file.content)
	return content, true
}

// SetFileContent places a file and its parent directories directly,
// bypassing error injection.
func (m *MockFileSystem) SetFileContent(name string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := make([]byte, len(content))
	copy(data, content)
	m.files[name] = &mockFile{content: data, mode: 0o644, modTime: time.Now()}
	for p := filepath.Dir(name); !m.dirs[p]; p = filepath.Dir(p) {
		m.dirs[p] = true
		if filepath.Dir(p) == p {
			break
		}
	}
}

// Files returns the sorted names of every file in the mock.
func (m *MockFileSystem) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
