package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/listings/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newTestRecovery(t *testing.T, mutate ...func(*types.Config)) (*Recovery, *MockFileSystem, *MockFileLockFactory) {
	t.Helper()
	cfg := types.DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	mockFS := NewMockFileSystem()
	locks := NewMockFileLockFactory()
	return NewRecovery(cfg, WithFileSystem(mockFS), WithFileLockFactory(locks)), mockFS, locks
}

func TestRecoverySyncAndLoad(t *testing.T) {
	r, mockFS, locks := newTestRecovery(t)
	ps := sample(5)

	if err := r.Sync(ps); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !mockFS.DirExists(filepath.Join("data", "recovery")) {
		t.Error("recovery directory not created")
	}
	for _, name := range []string{r.TextPath(), r.BinaryPath()} {
		if !mockFS.FileExists(name) {
			t.Errorf("%s not written", name)
		}
	}

	lock := locks.Lock(filepath.Join("data", "recovery", ".lock"))
	if lock.Attempts == 0 || lock.Held() {
		t.Errorf("lock attempts=%d held=%v, want acquired and released", lock.Attempts, lock.Held())
	}

	res, err := r.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Source != SourceText {
		t.Errorf("Source = %s, want text", res.Source)
	}
	if diff := cmp.Diff(ps, res.Properties); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRecoveryLoadNothing(t *testing.T) {
	r, _, _ := newTestRecovery(t)
	res, err := r.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Source != SourceNone || len(res.Properties) != 0 {
		t.Errorf("got %+v, want empty result from none", res)
	}
}

func TestRecoveryBinaryFallback(t *testing.T) {
	t.Run("text missing", func(t *testing.T) {
		r, mockFS, _ := newTestRecovery(t)
		ps := sample(3)
		bin, _ := EncodeBinary(ps)
		mockFS.SetFileContent(r.BinaryPath(), bin)

		res, err := r.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if res.Source != SourceBinary || res.TextErr != nil {
			t.Errorf("Source=%s TextErr=%v, want binary without text error", res.Source, res.TextErr)
		}
		if diff := cmp.Diff(ps, res.Properties); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("text corrupt", func(t *testing.T) {
		r, mockFS, _ := newTestRecovery(t, func(c *types.Config) { c.MalformedLines = types.MalformedAbort })
		ps := sample(2)
		bin, _ := EncodeBinary(ps)
		mockFS.SetFileContent(r.BinaryPath(), bin)
		mockFS.SetFileContent(r.TextPath(), []byte("garbage\n"))

		res, err := r.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if res.Source != SourceBinary {
			t.Errorf("Source = %s, want binary", res.Source)
		}
		var de *DataError
		if !errors.As(res.TextErr, &de) || de.File != r.TextPath() {
			t.Errorf("TextErr = %v, want DataError in %s", res.TextErr, r.TextPath())
		}
	})

	t.Run("both corrupt", func(t *testing.T) {
		r, mockFS, _ := newTestRecovery(t, func(c *types.Config) { c.MalformedLines = types.MalformedAbort })
		mockFS.SetFileContent(r.BinaryPath(), []byte{1})
		mockFS.SetFileContent(r.TextPath(), []byte("garbage\n"))

		_, err := r.Load()
		var de *DataError
		if !errors.As(err, &de) || de.File != r.TextPath() {
			t.Errorf("err = %v, want text DataError", err)
		}
	})

	t.Run("only corrupt binary", func(t *testing.T) {
		r, mockFS, _ := newTestRecovery(t)
		mockFS.SetFileContent(r.BinaryPath(), []byte{1})

		_, err := r.Load()
		if !errors.Is(err, types.ErrCorruptData) {
			t.Errorf("err = %v, want ErrCorruptData", err)
		}
	})
}

func TestRecoveryLoadSkipsMalformed(t *testing.T) {
	r, mockFS, _ := newTestRecovery(t)
	mockFS.SetFileContent(r.TextPath(), []byte("1|A|Flat|Center|South|1.00|2.00|1|1|2\nbad\n"))

	res, err := r.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Properties) != 1 || len(res.Skipped) != 1 {
		t.Fatalf("got %d records, %d skipped; want 1 and 1", len(res.Properties), len(res.Skipped))
	}
	if res.Skipped[0].File != r.TextPath() || res.Skipped[0].Line != 2 {
		t.Errorf("skipped = %v, want %s line 2", res.Skipped[0], r.TextPath())
	}
}

func TestRecoverySyncFailures(t *testing.T) {
	t.Run("lock contended", func(t *testing.T) {
		r, mockFS, locks := newTestRecovery(t)
		locks.Contended = true

		err := r.Sync(sample(1))
		if !errors.Is(err, types.ErrFileUnavailable) {
			t.Fatalf("err = %v, want ErrFileUnavailable", err)
		}
		if mockFS.FileExists(r.TextPath()) {
			t.Error("text written without the lock")
		}
	})

	t.Run("binary rename fails after text", func(t *testing.T) {
		r, mockFS, _ := newTestRecovery(t)
		mockFS.RenameHook = func(_, newpath string) error {
			if newpath == r.BinaryPath() {
				return errors.New("io error")
			}
			return nil
		}

		if err := r.Sync(sample(1)); !errors.Is(err, types.ErrFileUnavailable) {
			t.Fatalf("err = %v, want ErrFileUnavailable", err)
		}
		if mockFS.FileExists(r.BinaryPath()) {
			t.Error("binary file should not exist")
		}
		if mockFS.FileExists(r.TextPath()) {
			t.Error("text file of the failed sync should be removed")
		}
	})

	t.Run("binary rename failure restores previous text", func(t *testing.T) {
		r, mockFS, _ := newTestRecovery(t)
		old := sample(2)
		if err := r.Sync(old); err != nil {
			t.Fatalf("initial Sync: %v", err)
		}
		mockFS.RenameHook = func(_, newpath string) error {
			if newpath == r.BinaryPath() {
				return errors.New("io error")
			}
			return nil
		}

		if err := r.Sync(sample(3)); !errors.Is(err, types.ErrFileUnavailable) {
			t.Fatalf("err = %v, want ErrFileUnavailable", err)
		}

		res, err := r.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if res.Source != SourceText {
			t.Errorf("source = %s, want text", res.Source)
		}
		if diff := cmp.Diff(old, res.Properties); diff != "" {
			t.Errorf("snapshot after failed sync (-want +got):\n%s", diff)
		}
		for _, name := range mockFS.Files() {
			if strings.Contains(name, ".tmp-") {
				t.Errorf("temp file left behind: %s", name)
			}
		}
	})

	t.Run("invalid record writes nothing", func(t *testing.T) {
		r, mockFS, _ := newTestRecovery(t)
		ps := sample(1)
		ps[0].Status = 9

		if err := r.Sync(ps); !errors.Is(err, types.ErrInvalidValue) {
			t.Fatalf("err = %v, want ErrInvalidValue", err)
		}
		if len(mockFS.Files()) != 0 {
			t.Errorf("files = %v, want none", mockFS.Files())
		}
	})
}

func TestRecoveryOnDisk(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.DataDir = t.TempDir()
	r := NewRecovery(cfg)

	ps := sample(10)
	if err := r.Sync(ps); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := r.Sync(ps[:4]); err != nil {
		t.Fatalf("second Sync: %v", err)
	}

	res, err := r.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(ps[:4], res.Properties, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
