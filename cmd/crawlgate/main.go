package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/crawlgate/internal/config"
	"github.com/amosWeiskopf/crawlgate/internal/logging"
	"github.com/amosWeiskopf/crawlgate/pkg/pipeline"
	"github.com/amosWeiskopf/crawlgate/pkg/reporter"
	"github.com/amosWeiskopf/crawlgate/pkg/urlpolicy"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crawlgate",
		Short: "crawlgate - crawl admission and near-duplicate filtering",
		Long: `crawlgate decides which fetched pages enter a crawl corpus. It rejects
traps, thin pages and near duplicates, extracts new candidate URLs and keeps
word, longest page and subdomain statistics.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [FILE]",
		Short: "Run recorded fetch results through the admission pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, _ := cmd.Flags().GetStringSlice("seed")

			env, err := setup(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			result, err := replayFile(env.pipeline, args[0], seeds, env.logger)
			if err != nil {
				return err
			}
			env.pipeline.Flush()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d pages: %d accepted, %d rejected, %d not in file\n",
				result.Processed, result.Accepted, result.Rejected, result.Missing)
			for _, pattern := range env.pipeline.Summary().TrapPatterns {
				fmt.Fprintf(out, "Trap pattern: %s\n", pattern)
			}
			if env.runID != "" {
				fmt.Fprintf(out, "Run ID: %s\n", env.runID)
			}
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check [URL...]",
		Short: "Show the canonical form, trap pattern and admissibility of URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			policy, err := urlpolicy.New(urlpolicy.Rules{
				AllowedHosts:       cfg.Admission.AllowedHosts,
				PortalHost:         cfg.Admission.PortalHost,
				PortalPathPrefix:   cfg.Admission.PortalPathPrefix,
				RejectedExtensions: cfg.Admission.RejectedExtensions,
			})
			if err != nil {
				return err
			}
			return checkURLs(cmd.OutOrStdout(), policy, args)
		},
	}

	reportCmd := &cobra.Command{
		Use:   "report [FILE]",
		Short: "Replay recorded fetch results and render the crawl statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			seeds, _ := cmd.Flags().GetStringSlice("seed")

			env, err := setup(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			if _, err := replayFile(env.pipeline, args[0], seeds, env.logger); err != nil {
				return err
			}
			env.pipeline.Flush()

			r := reporter.New()
			report, err := r.GenerateReport(env.pipeline.Summary(), format)
			if err != nil {
				return fmt.Errorf("report generation failed: %w", err)
			}

			if output != "" {
				err = os.WriteFile(output, []byte(report), 0644)
				if err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", output)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), report)
			}
			// stderr keeps a report written to stdout parseable
			if env.runID != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Run ID: %s\n", env.runID)
			}

			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "crawlgate "+versionString())
		},
	}

	// Replay command flags
	replayCmd.Flags().StringSlice("seed", nil, "URLs to start from (default: the first record of the file)")

	// Report command flags
	reportCmd.Flags().String("format", "text", "Report format ("+strings.Join(reporter.Formats, ", ")+")")
	reportCmd.Flags().String("output", "", "Output file for report")
	reportCmd.Flags().StringSlice("seed", nil, "URLs to start from (default: the first record of the file)")

	// Add commands to root
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")

	return rootCmd
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// loadConfig reads the configuration named by --config and applies --verbose
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// environment holds what a pipeline-driving command needs. runID is set when
// snapshots go to SQLite.
type environment struct {
	pipeline *pipeline.Pipeline
	logger   zerolog.Logger
	runID    string
	closers  []io.Closer
}

func (e *environment) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			e.logger.Warn().Err(err).Msg("close failed")
		}
	}
}

func setup(cmd *cobra.Command) (*environment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	env := &environment{logger: logger, closers: []io.Closer{logCloser}}

	sink, err := reporter.Open(cfg.Storage)
	if err != nil {
		env.close()
		return nil, fmt.Errorf("failed to open snapshot storage: %w", err)
	}
	env.closers = append(env.closers, sink)
	if db, ok := sink.(*reporter.SQLiteSink); ok {
		env.runID = db.RunID()
	}

	p, err := pipeline.FromConfig(cfg, sink, logger)
	if err != nil {
		env.close()
		return nil, err
	}
	env.pipeline = p

	logger.Debug().Str("storage", cfg.Storage.Type).Str("path", cfg.Storage.Path).Str("run_id", env.runID).Msg("pipeline ready")
	return env, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
