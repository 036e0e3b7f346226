package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
	logpkg "github.com/kailas-cloud/takenote/internal/logger"
	analysisuc "github.com/kailas-cloud/takenote/internal/usecase/analysis"
)

// noteExtensions are the files the search command treats as notes.
var noteExtensions = map[string]struct{}{
	".md":  {},
	".txt": {},
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		file    string
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize, classify and tag a note read from a file or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			engine, flush, err := opts.cliEngine(offline)
			if err != nil {
				return err
			}
			defer flush()

			return printJSON(cmd.OutOrStdout(), engine.ProcessNote(cmd.Context(), content))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "note file (default: stdin)")
	cmd.Flags().BoolVar(&offline, "offline", false, "use local heuristics only")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		query   string
		dir     string
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Rank the .md and .txt files of a directory against a query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			notes, err := loadNotes(dir)
			if err != nil {
				return err
			}
			engine, flush, err := opts.cliEngine(offline)
			if err != nil {
				return err
			}
			defer flush()

			return printJSON(cmd.OutOrStdout(), engine.Search(cmd.Context(), query, notes))
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "search query")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory of notes")
	cmd.Flags().BoolVar(&offline, "offline", false, "use local heuristics only")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

// cliEngine builds an engine for one-shot commands. Logs go to stderr at
// warn level unless the config sets a level.
func (o *rootOptions) cliEngine(offline bool) (*analysisuc.Engine, func(), error) {
	cfg, err := o.loadConfig(true)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(logpkg.EnvCLI, cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	flush := func() { _ = logger.Sync() }

	if offline {
		return buildEngine(cfg, nil, true, logger), flush, nil
	}
	providers, _ := buildProviders(cfg, nil, logger)
	logger.Debug("remote inference enabled", zap.Int("providers", len(providers)))
	return buildEngine(cfg, providers, false, logger), flush, nil
}

func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return "", fmt.Errorf("read note: %w", err)
	}
	return string(data), nil
}

// loadNotes reads every note file directly under dir, ordered by name.
// The file name is the note id; the name without extension is its title.
func loadNotes(dir string) ([]domana.NoteRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read notes dir: %w", err)
	}
	notes := make([]domana.NoteRef, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if _, ok := noteExtensions[strings.ToLower(ext)]; !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read note %s: %w", name, err)
		}
		notes = append(notes, domana.NoteRef{
			ID:      name,
			Title:   strings.TrimSuffix(name, ext),
			Content: string(data),
		})
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}
