package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rbformat/internal/config"
	"rbformat/internal/filewalker"
	"rbformat/internal/maprepair"
	"rbformat/internal/merge"
	"rbformat/internal/rank"
	"rbformat/internal/record"
	"rbformat/internal/skills"
	"rbformat/internal/tab"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rbformat",
		Short:        "Reformat translated game script text into Ruby data layout",
		Long:         "Formats library, job change, medal, follower and item translations into the layout of the game's Ruby data files, repairs map event scripts and merges the result back into the original files.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogLevel(config.Load().LogLevel, verbose)
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(formatCmd())
	rootCmd.AddCommand(repairMapCmd())
	rootCmd.AddCommand(mergeCmd())
	rootCmd.AddCommand(rankCmd())
	rootCmd.AddCommand(skillsCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(batchCmd())
	return rootCmd
}

func setupLogLevel(name string, verbose bool) {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func formatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format <input|->",
		Short: "Format the records of one tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, opts, err := requestOptions(cmd)
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := tab.Format(kind, input, opts)
			switch {
			case errors.Is(err, record.ErrEmptyInput):
				log.Warn().Str("tab", string(kind)).Msg("Input is empty")
			case err != nil:
				_ = writeOutput(cmd, tab.FailurePlaceholder)
				return err
			}
			return writeOutput(cmd, res.Output)
		},
	}
	addTabFlags(cmd)
	addOutputFlag(cmd)
	return cmd
}

func repairMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair-map <input|->",
		Short: "Repair and re-indent a map event script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, maprepair.RepairMapText(input))
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <original.rb> <formatted.txt>",
		Short: "Replace records of an original data file with formatted ones",
		Long: `Replaces every record of the original data file whose ID appears in the
formatted text. Records that are not in the formatted text are kept unchanged.
With --raw the second file is unformatted input and is formatted first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, opts, err := requestOptions(cmd)
			if err != nil {
				return err
			}
			original, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			formatted, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}

			if raw, _ := cmd.Flags().GetBool("raw"); raw {
				res, err := tab.Format(kind, formatted, opts)
				if err != nil {
					return fmt.Errorf("format %s: %w", args[1], err)
				}
				formatted = res.Output
			}

			merged, err := merge.Merge(kind, original, formatted)
			if err != nil {
				return err
			}
			log.Info().Str("tab", string(kind)).Str("original", args[0]).Msg("Merged records")
			return writeOutput(cmd, merged)
		},
	}
	addTabFlags(cmd)
	addOutputFlag(cmd)
	cmd.Flags().Bool("raw", false, "Format the second file before merging")
	return cmd
}

func rankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank <items-input> <japanese-items>",
		Short: "Apply gem ranks from the Japanese items file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			japanese, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			ranks := rank.BuildRankMap(japanese)
			log.Info().Int("ranks", len(ranks)).Msg("Matched item ranks")
			return writeOutput(cmd, rank.ApplyRankMap(input, ranks))
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func skillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills <text> <skills-file>",
		Short: `Replace "Skill <n>" references with skill names`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			file, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			names := skills.Parse(file)
			if len(names) == 0 {
				return fmt.Errorf("no skills found in %s", args[1])
			}
			return writeOutput(cmd, skills.Replace(text, names))
		},
	}
	addOutputFlag(cmd)
	return cmd
}

type inspectReport struct {
	Tab     record.Kind `yaml:"tab"`
	Records any         `yaml:"records"`
	Errors  []string    `yaml:"errors,omitempty"`
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <input|->",
		Short: "Print the parsed records of one tab as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _, err := requestOptions(cmd)
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			h, err := tab.Lookup(kind)
			if err != nil {
				return err
			}
			recs, errs, err := h.Inspect(input)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", kind, err)
			}

			report := inspectReport{Tab: kind, Records: recs}
			for _, e := range errs {
				report.Errors = append(report.Errors, e.Error())
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("encode records: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().String("tab", "", "Tab: library, jobchange, medal, follower, items")
	_ = cmd.MarkFlagRequired("tab")
	return cmd
}

func addTabFlags(cmd *cobra.Command) {
	cmd.Flags().String("tab", "", "Tab: library, jobchange, medal, follower, items, map")
	cmd.Flags().String("lang", "", "Display language: RUS or JAP (default from RBF_LANGUAGE)")
	cmd.Flags().Int("max", 0, "Maximum line length (default from configuration)")
	_ = cmd.MarkFlagRequired("tab")
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
}

// requestOptions resolves the tab and formatting options of a command from
// its flags and the environment.
func requestOptions(cmd *cobra.Command) (record.Kind, record.Options, error) {
	name, _ := cmd.Flags().GetString("tab")
	kind, err := record.ParseKind(name)
	if err != nil {
		return "", record.Options{}, err
	}
	opts, err := resolveOptions(cmd, config.Load(), kind)
	return kind, opts, err
}

// resolveOptions applies the --lang and --max flags over cfg. cfg itself is
// not modified.
func resolveOptions(cmd *cobra.Command, cfg *config.Config, kind record.Kind) (record.Options, error) {
	c := *cfg
	if cmd.Flags().Lookup("lang") != nil {
		if code, _ := cmd.Flags().GetString("lang"); code != "" {
			lang, err := record.ParseLanguage(code)
			if err != nil {
				return record.Options{}, err
			}
			c.Language = lang
		}
	}
	opts := c.Options(kind)
	if cmd.Flags().Lookup("max") != nil {
		if n, _ := cmd.Flags().GetInt("max"); n > 0 {
			opts.MaxLineLength = config.ClampLineLength(n)
		}
	}
	return opts, nil
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path != "-" {
		return filewalker.ReadText(path)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text, _, err := filewalker.Decode(data)
	if err != nil {
		return "", fmt.Errorf("decode stdin: %w", err)
	}
	return text, nil
}

func writeOutput(cmd *cobra.Command, text string) error {
	path, _ := cmd.Flags().GetString("output")
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("Wrote output")
	return nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
