package census

import (
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/spf13/afero"
)

// cachingStore avoids re-reading and re-parsing the snapshot file on
// every lookup. The parsed snapshot is cached and invalidated when the
// file modification time changes, which is how the exporter process
// signals a new publication.
type cachingStore struct {
	Store

	fs    afero.Fs
	path  string
	cache *ristretto.Cache
}

type cachedSnapshot struct {
	modTime  time.Time
	snapshot Snapshot
}

func (c *cachingStore) Current() (Snapshot, error) {
	info, err := c.fs.Stat(c.path)

	switch {
	case os.IsNotExist(err):
		return nil, ErrSnapshotNotReady
	case err != nil:
		return nil, fmt.Errorf("cannot stat the snapshot: %w", err)
	}

	if value, ok := c.cache.Get(c.path); ok {
		entry := value.(cachedSnapshot)

		if entry.modTime.Equal(info.ModTime()) {
			return entry.snapshot, nil
		}
	}

	snapshot, err := c.Store.Current()
	if err != nil {
		return nil, err
	}

	c.cache.Set(c.path, cachedSnapshot{modTime: info.ModTime(), snapshot: snapshot}, 1)
	c.cache.Wait()

	return snapshot, nil
}

func (c *cachingStore) Publish(snapshot Snapshot) error {
	if err := c.Store.Publish(snapshot); err != nil {
		return err
	}

	c.cache.Del(c.path)

	return nil
}

func NewCachingStore(store Store, fs afero.Fs, path string) (Store, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 64,
		MaxCost:     8,
		BufferItems: 64,
		Metrics:     false,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create a cache: %w", err)
	}

	return &cachingStore{
		Store: store,
		fs:    fs,
		path:  path,
		cache: cache,
	}, nil
}
