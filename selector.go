package tana

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shelfworks/tana/storage"
	"github.com/shelfworks/tana/storage/flat"
	"github.com/shelfworks/tana/storage/native"
	"github.com/shelfworks/tana/storage/sqlite"
)

// kvDirName is where the native tier keeps its structured store, under the
// catalog data directory.
const kvDirName = "kv"

// defaultProbe reports whether dir is usable for the native tier: it must
// be a statable directory, or not exist yet under a statable parent.
func defaultProbe(dir string) func() bool {
	return func() bool {
		info, err := os.Stat(dir)
		if err == nil {
			return info.IsDir()
		}
		if !os.IsNotExist(err) {
			return false
		}
		parent, err := os.Stat(filepath.Dir(dir))
		return err == nil && parent.IsDir()
	}
}

// selectTier runs the capability probe once and opens the winning tier.
// Selection never fails: an unavailable tier falls through to the next,
// and the flat tier always opens, with or without a backing file.
func selectTier(ctx context.Context, dir string, probe func() bool, logger *slog.Logger) storage.Tier {
	if probe() {
		return openNative(ctx, dir, logger)
	}

	logger.Info("native storage not viable, trying transactional store", "dir", dir)
	tier, err := sqlite.Open(dir, logger)
	if err == nil {
		return tier
	}
	logger.Warn("transactional store unavailable, falling back to flat store", "error", err)

	return openFlat(dir, logger)
}

// openNative assembles the native tier from whichever of its capabilities
// open. A capability that fails to open is left out and the tier degrades
// the operations that need it, instead of the whole tier falling through.
func openNative(ctx context.Context, dir string, logger *slog.Logger) storage.Tier {
	kv, err := native.OpenKeyValue(filepath.Join(dir, kvDirName), logger)
	if err != nil {
		logger.Warn("structured store unavailable, record persistence degraded", "error", err)
		kv = nil
	}

	files, err := native.OpenFileArea(dir)
	if err != nil {
		logger.Warn("file area unavailable, payload persistence degraded", "error", err)
		files = nil
	} else if err := files.EnsureDir(ctx, native.PayloadsDir); err != nil {
		logger.Warn("payload directory unavailable, payload persistence degraded", "error", err)
		files = nil
	}

	return native.New(kv, files, logger)
}

// openFlat opens the flat tier, dropping to a purely in-memory store when
// even its backing file cannot be created.
func openFlat(dir string, logger *slog.Logger) storage.Tier {
	tier, err := flat.Open(dir, logger)
	if err == nil {
		return tier
	}
	logger.Warn("flat store file unavailable, catalog will not persist", "error", err)

	return flat.New(flat.NewMemoryKV(), logger)
}
