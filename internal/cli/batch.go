package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"rbformat/internal/cache"
	"rbformat/internal/config"
	"rbformat/internal/filewalker"
	"rbformat/internal/record"
	"rbformat/internal/tab"
	"rbformat/internal/worker"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Format every supported file under a directory",
		Long: `Formats every .txt and .rb file under the input directory and writes the
result to the same relative path under the output directory. Without --tab the
tab of each file is guessed from its name.

When DATABASE_URL is set, outputs are cached in PostgreSQL and unchanged
inputs are not formatted again.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind record.Kind
			if name, _ := cmd.Flags().GetString("tab"); name != "" {
				k, err := record.ParseKind(name)
				if err != nil {
					return err
				}
				kind = k
			}
			workers, _ := cmd.Flags().GetInt("workers")

			ctx, cancel := setupContext()
			defer cancel()

			cfg := config.Load()
			if workers > 0 {
				cfg.WorkerCount = workers
			}
			return runBatch(ctx, cmd, cfg, kind, args[0], args[1])
		},
	}
	cmd.Flags().String("tab", "", "Tab for every file (default: guess from file name)")
	cmd.Flags().String("lang", "", "Display language: RUS or JAP (default from RBF_LANGUAGE)")
	cmd.Flags().Int("max", 0, "Maximum line length (default from configuration)")
	cmd.Flags().Int("workers", 0, "Number of files formatted at once (default from WORKER_COUNT)")
	return cmd
}

type batchResult struct {
	out    string
	cached bool
}

func runBatch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, kind record.Kind, inDir, outDir string) error {
	start := time.Now()

	entries, err := filewalker.NewWalker(kind).Walk(inDir)
	if err != nil {
		return fmt.Errorf("walk %s: %w", inDir, err)
	}
	if len(entries) == 0 {
		log.Warn().Str("dir", inDir).Msg("No supported files found")
		return nil
	}
	log.Info().Int("files", len(entries)).Str("dir", inDir).Msg("Discovered input files")

	store, closeStore, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	pool := worker.NewPool(cfg.WorkerCount, func(ctx context.Context, e filewalker.FileEntry) (batchResult, error) {
		opts, err := resolveOptions(cmd, cfg, e.Kind)
		if err != nil {
			return batchResult{}, err
		}
		return formatFile(ctx, store, e, opts, filepath.Join(outDir, e.Rel))
	})
	tasks := pool.Execute(ctx, entries)

	cached := 0
	for _, t := range tasks {
		if t.Err == nil && t.Result.cached {
			cached++
		}
	}
	failed := worker.Failed(tasks)
	for _, t := range failed {
		log.Error().Err(t.Err).Str("file", t.Input.Rel).Msg("File failed")
	}

	log.Info().
		Int("files", len(tasks)).
		Int("failed", len(failed)).
		Int("cached", cached).
		Dur("duration", time.Since(start)).
		Msg("Batch complete")

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(tasks))
	}
	return nil
}

// openCache connects the output cache. Without DATABASE_URL the cache lives
// in memory for the duration of the run.
func openCache(ctx context.Context, cfg *config.Config) (*cache.OutputCache, func(), error) {
	if cfg.DatabaseURL == "" {
		return cache.NewOutputCache(nil), func() {}, nil
	}
	pool, err := cache.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store := cache.NewOutputCache(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := store.Preload(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func formatFile(ctx context.Context, store *cache.OutputCache, e filewalker.FileEntry, opts record.Options, dest string) (batchResult, error) {
	input, err := filewalker.ReadText(e.Path)
	if err != nil {
		return batchResult{}, err
	}

	key := cache.Key(e.Kind, opts, input)
	res := batchResult{}
	if out, ok := store.Get(ctx, key); ok {
		res = batchResult{out: out, cached: true}
	} else {
		formatted, err := tab.Format(e.Kind, input, opts)
		switch {
		case errors.Is(err, record.ErrEmptyInput):
			log.Warn().Str("file", e.Rel).Msg("Input is empty")
		case err != nil:
			return batchResult{}, fmt.Errorf("%s: %w", e.Rel, err)
		}
		res.out = formatted.Output
		if err := store.Set(ctx, key, e.Kind, res.out); err != nil {
			log.Warn().Err(err).Str("file", e.Rel).Msg("Failed to cache output")
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return batchResult{}, fmt.Errorf("create output dir: %w", err)
	}
	out := res.out
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if err := os.WriteFile(dest, []byte(out), 0o644); err != nil {
		return batchResult{}, fmt.Errorf("write %s: %w", dest, err)
	}
	log.Debug().Str("file", e.Rel).Str("tab", string(e.Kind)).Bool("cached", res.cached).Msg("Formatted file")
	return res, nil
}
