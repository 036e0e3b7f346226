package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/takenote/internal/config"
	"github.com/kailas-cloud/takenote/internal/version"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "takenote",
		Short: "Note-taking backend with text analysis",
		Long: `takenote stores notes and analyzes them: summaries, categories,
tags and search, served by remote inference models when reachable and by
local heuristics otherwise.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: config/$ENV.yaml)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newAnalyzeCmd(opts),
		newSearchCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// loadConfig reads the config file. When optional is set a missing file
// yields the defaults, so the offline tools work without any setup.
func (o *rootOptions) loadConfig(optional bool) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(config.GetEnv())
	}
	if err != nil && optional && errors.Is(err, fs.ErrNotExist) {
		cfg = config.Config{}
		cfg.ApplyDefaults()
		return cfg, nil
	}
	return cfg, err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
