// Package library maintains the fingerprint caches of reference media
// directories. Each directory gets a .pck sidecar file holding one
// fingerprint per media file, reused across runs.
package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-adcut/internal/pack"
	"github.com/alnah/go-adcut/internal/progress"
)

// CacheExt is the sidecar file extension for fingerprint caches.
const CacheExt = ".pck"

// Fingerprinter computes the fingerprint of a media file.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) ([]uint32, error)
}

// Updater brings the sidecar caches of reference directories up to date.
type Updater struct {
	calc     Fingerprinter
	reporter progress.Reporter
}

// NewUpdater creates an Updater computing missing fingerprints with calc.
func NewUpdater(calc Fingerprinter, reporter progress.Reporter) *Updater {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Updater{calc: calc, reporter: reporter}
}

// SidecarPath derives the cache path of a reference directory by swapping
// the directory's extension, if any, for the cache extension.
func SidecarPath(dir string) string {
	clean := filepath.Clean(dir)
	return strings.TrimSuffix(clean, filepath.Ext(clean)) + CacheExt
}

// Update refreshes the sidecar cache of every directory. Fingerprints are
// computed only for files not yet present in the cache; entries for files
// that no longer exist are kept as-is. Per-directory and per-file failures
// are reported as warnings and skipped, never aborting the run.
func (u *Updater) Update(ctx context.Context, dirs []string) error {
	work := make(map[string][]string, len(dirs))
	var total int64
	for _, dir := range dirs {
		files, err := listMediaFiles(dir)
		if err != nil {
			u.reporter.Warnf("cannot list %s: %v", dir, err)
			continue
		}
		work[dir] = files
		total += int64(len(files))
	}

	u.reporter.Start(total, "fingerprinting")
	defer u.reporter.Finish()

	for _, dir := range dirs {
		files, ok := work[dir]
		if !ok {
			continue
		}
		if err := u.updateDir(ctx, dir, files); err != nil {
			return err
		}
	}
	return nil
}

// updateDir refreshes one directory's cache. The only hard failure is
// context cancellation.
func (u *Updater) updateDir(ctx context.Context, dir string, files []string) error {
	sidecar := SidecarPath(dir)
	cache, err := pack.Load(sidecar)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		u.reporter.Warnf("cannot load cache %s, rebuilding: %v", sidecar, err)
	}
	if cache == nil {
		cache = &pack.File{}
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		i, found := cache.Search(name)
		if found {
			u.reporter.AddTotal(-1)
			continue
		}
		u.reporter.Describe(name)
		words, err := u.calc.Fingerprint(ctx, filepath.Join(dir, name))
		if err != nil {
			u.reporter.Warnf("cannot fingerprint %s: %v", name, err)
			u.reporter.Add(1)
			continue
		}
		cache.Insert(i, pack.Entry{Name: name, Fingerprint: words})
		u.reporter.Add(1)
	}

	// The cache is rewritten in full even when nothing changed, so a
	// partially written or unterminated file always comes out normalized.
	if err := cache.WriteFile(sidecar); err != nil {
		u.reporter.Warnf("cannot write cache %s: %v", sidecar, err)
	}
	return nil
}

// listMediaFiles returns the names of the regular files directly inside
// dir, excluding caches.
func listMediaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), CacheExt) {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}
