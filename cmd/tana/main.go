// Copyright 2026 Shelfworks
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/panjf2000/ants/v2"
	"github.com/shelfworks/tana"
	"github.com/shelfworks/tana/core"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tana",
		Usage: "Personal catalog of documents and bookmarks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Catalog data directory",
				EnvVars: []string{"TANA_DIR"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"TANA_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to TOML config file (default ~/.tana.toml)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all records, newest first",
				Action: listCommand,
			},
			{
				Name:      "add",
				Usage:     "Add a document from a file, or a bookmark with --url",
				ArgsUsage: "[PATH]",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Add a bookmark for this URL instead of a file",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Record title (defaults to the file name or URL)",
					},
					&cli.StringFlag{
						Name:  "level",
						Usage: "Difficulty level",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Category label",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Content language",
					},
					&cli.StringFlag{
						Name:  "emoji",
						Usage: "Cover emoji",
					},
					&cli.StringFlag{
						Name:  "color",
						Usage: "Cover color",
					},
					&cli.StringFlag{
						Name:  "desc",
						Usage: "Description",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Show one record in full",
				ArgsUsage: "ID",
				Action:    showCommand,
			},
			{
				Name:      "rm",
				Usage:     "Delete a record and its stored payload",
				ArgsUsage: "ID",
				Action:    rmCommand,
			},
			{
				Name:      "uri",
				Usage:     "Print a URI for a record's stored payload",
				ArgsUsage: "ID",
				Action:    uriCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "embed",
						Usage: "Force the self-contained data-URI form",
					},
				},
			},
			{
				Name:      "import",
				Usage:     "Add every file in a directory",
				ArgsUsage: "DIR",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent file readers (default: half the CPUs)",
					},
				},
			},
		},
	}
}

// openCatalog resolves the data directory for this invocation and opens the
// catalog there.
func openCatalog(c *cli.Context) (*tana.Catalog, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	dir, err := resolveDir(c, cfg)
	if err != nil {
		return nil, err
	}

	cat, err := tana.Open(c.Context, dir, tana.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return cat, nil
}

func listCommand(c *cli.Context) error {
	cat, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer cat.Close()

	records := cat.Records()
	if len(records) == 0 {
		fmt.Println("catalog is empty")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %s  %-4s  %s\n", rec.Id, rec.AddedDate, rec.FileType, rec.Title)
	}
	return nil
}

func addCommand(c *cli.Context) error {
	sourceURL := c.String("url")
	path := c.Args().First()
	if sourceURL == "" && path == "" {
		return fmt.Errorf("either a file path or --url is required")
	}
	if sourceURL != "" && path != "" {
		return fmt.Errorf("a file path and --url are mutually exclusive")
	}

	draft := core.Draft{
		Title:       c.String("title"),
		Level:       c.String("level"),
		Category:    c.String("category"),
		Language:    c.String("language"),
		CoverEmoji:  c.String("emoji"),
		CoverColor:  c.String("color"),
		Description: c.String("desc"),
	}

	var payload []byte
	if sourceURL != "" {
		draft.FileType = core.FileTypeLink
		draft.SourceUrl = sourceURL
		if draft.Title == "" {
			draft.Title = sourceURL
		}
	} else {
		var err error
		payload, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		draft.FileType = fileTypeOf(path)
		if draft.Title == "" {
			draft.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
	}

	cat, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer cat.Close()

	rec, outcome, err := cat.AddRecord(c.Context, draft, payload)
	if err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}

	fmt.Printf("added %s (%s)\n", rec.Id, rec.Title)
	if outcome == core.PayloadDegraded {
		fmt.Println("warning: the payload could not be persisted on this storage tier")
	}
	return nil
}

func showCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("record id is required")
	}

	cat, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer cat.Close()

	rec, ok := cat.Record(id)
	if !ok {
		return fmt.Errorf("no record with id %s", id)
	}

	fmt.Printf("Id:          %s\n", rec.Id)
	fmt.Printf("Title:       %s\n", rec.Title)
	fmt.Printf("Added:       %s\n", rec.AddedDate)
	fmt.Printf("File type:   %s\n", rec.FileType)
	if rec.Level != "" {
		fmt.Printf("Level:       %s\n", rec.Level)
	}
	if rec.Category != "" {
		fmt.Printf("Category:    %s\n", rec.Category)
	}
	if rec.Language != "" {
		fmt.Printf("Language:    %s\n", rec.Language)
	}
	if rec.CoverEmoji != "" {
		fmt.Printf("Emoji:       %s\n", rec.CoverEmoji)
	}
	if rec.CoverColor != "" {
		fmt.Printf("Color:       %s\n", rec.CoverColor)
	}
	if rec.SourceUrl != "" {
		fmt.Printf("Source URL:  %s\n", rec.SourceUrl)
	}
	if rec.Description != "" {
		fmt.Printf("Description: %s\n", rec.Description)
	}
	return nil
}

func rmCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("record id is required")
	}

	cat, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer cat.Close()

	if _, ok := cat.Record(id); !ok {
		return fmt.Errorf("no record with id %s", id)
	}

	outcome, err := cat.DeleteRecord(c.Context, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	fmt.Printf("deleted %s\n", id)
	if outcome == core.PayloadDegraded {
		fmt.Println("warning: the stored payload could not be removed")
	}
	return nil
}

func uriCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("record id is required")
	}

	cat, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer cat.Close()

	var uri string
	var ok bool
	if c.Bool("embed") {
		uri, ok = cat.EmbeddedPayloadURI(c.Context, id)
	} else {
		uri, ok = cat.PayloadURI(c.Context, id)
	}
	if !ok {
		return fmt.Errorf("no payload stored for %s", id)
	}

	fmt.Println(uri)
	return nil
}

func importCommand(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		return fmt.Errorf("directory is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	workers := c.Int("workers")
	if workers < 1 {
		workers = runtime.NumCPU() / 2
		if workers < 1 {
			workers = 1
		}
	}

	cat, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer cat.Close()

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	added, failed := 0, 0

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			payload, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("skipping unreadable file", "path", path, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			draft := core.Draft{
				Title:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				FileType: fileTypeOf(path),
			}
			if _, _, err := cat.AddRecord(c.Context, draft, payload); err != nil {
				slog.Warn("skipping file", "path", path, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			mu.Lock()
			added++
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			slog.Warn("skipping file", "path", path, "error", submitErr)
			failed++
		}
	}
	wg.Wait()

	fmt.Printf("imported %d records, %d failures\n", added, failed)
	return nil
}

// fileTypeOf derives the record file type from the file extension.
func fileTypeOf(path string) string {
	ext := strings.TrimPrefix(strings.ToUpper(filepath.Ext(path)), ".")
	if ext == "" {
		return "BIN"
	}
	return ext
}

func setupLogger(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}

	// Get log level from flag or env, then config file, and normalize to
	// lowercase
	levelStr := strings.ToLower(c.String("log-level"))
	if !c.IsSet("log-level") && cfg.LogLevel != "" {
		levelStr = strings.ToLower(cfg.LogLevel)
	}

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	return nil
}
