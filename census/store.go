package census

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const storeTempPrefix = "tmp_"

// FileStore keeps the snapshot as a single JSON file at a well-known
// path. Publish writes into a temporary file in the same directory and
// renames it over the target, so a concurrent Current never observes a
// partially written snapshot.
type FileStore struct {
	fs   afero.Fs
	path string
}

func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{
		fs:   fs,
		path: path,
	}
}

func (f *FileStore) Publish(snapshot Snapshot) error {
	// indented output: the file is meant to be inspectable by humans
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)

	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create snapshot directory: %w", err)
	}

	tmpFile, err := afero.TempFile(f.fs, dir, storeTempPrefix)
	if err != nil {
		return fmt.Errorf("cannot create a temporary file: %w", err)
	}

	tmpName := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		f.fs.Remove(tmpName) // nolint: errcheck

		return fmt.Errorf("cannot write a temporary file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		f.fs.Remove(tmpName) // nolint: errcheck

		return fmt.Errorf("cannot close a temporary file: %w", err)
	}

	if err := f.fs.Rename(tmpName, f.path); err != nil {
		// afero's MemMapFs refuses to rename over an existing file.
		// os.Rename replaces atomically, so this path is never taken
		// on a real filesystem.
		f.fs.Remove(f.path) // nolint: errcheck

		if err := f.fs.Rename(tmpName, f.path); err != nil {
			f.fs.Remove(tmpName) // nolint: errcheck

			return fmt.Errorf("cannot replace the snapshot: %w", err)
		}
	}

	return nil
}

func (f *FileStore) Current() (Snapshot, error) {
	data, err := afero.ReadFile(f.fs, f.path)

	switch {
	case os.IsNotExist(err):
		return nil, ErrSnapshotNotReady
	case err != nil:
		return nil, fmt.Errorf("cannot read the snapshot: %w", err)
	}

	snapshot := Snapshot{}

	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}

	return snapshot, nil
}
