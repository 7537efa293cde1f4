package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"whyclone/internal/driver"
)

var translateCmd = &cobra.Command{
	Use:   "translate [flags] [program.toml|program.yaml]",
	Short: "Emit the clone declarations of every output module",
	Long: `Translate a program description into output modules. Without an argument the
input is taken from [translate].input of the nearest whyclone.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringP("output", "o", "", "write modules to file instead of stdout")
	translateCmd.Flags().Int("jobs", 0, "max parallel units (0=auto)")
	translateCmd.Flags().Bool("no-cache", false, "disable the on-disk module cache")
	translateCmd.Flags().Bool("clear-cache", false, "drop every cached module before translating")
	translateCmd.Flags().StringSlice("unit", nil, "only emit the named modules")
	translateCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	translateCmd.Flags().String("format", "pretty", "diagnostic format (pretty|json|short)")
}

// translateSettings are the flag and manifest values merged.
type translateSettings struct {
	input          string
	output         string
	jobs           int
	cache          bool
	clearCache     bool
	units          []string
	withNotes      bool
	format         string
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func readTranslateSettings(cmd *cobra.Command, args []string) (translateSettings, error) {
	var s translateSettings
	var err error
	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if s.output, err = flags.GetString("output"); err != nil {
		return s, fmt.Errorf("failed to get output flag: %w", err)
	}
	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return s, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if s.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return s, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if s.units, err = flags.GetStringSlice("unit"); err != nil {
		return s, fmt.Errorf("failed to get unit flag: %w", err)
	}
	if s.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return s, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if s.format, err = flags.GetString("format"); err != nil {
		return s, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch s.format {
	case "pretty", "json", "short":
	default:
		return s, errInvalidFlag("format", s.format, "pretty|json|short")
	}
	if s.quiet, err = root.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = root.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.maxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	s.cache = !noCache

	manifest, found, err := loadProjectManifest(".")
	if err != nil {
		return s, err
	}
	if len(args) == 1 {
		s.input = args[0]
	} else {
		if !found {
			return s, fmt.Errorf("no %s found\nplease specify the program explicitly, e.g.:\n  whyclone translate path/to/program.toml", manifestName)
		}
		if s.input, err = manifest.inputPath(); err != nil {
			return s, err
		}
	}
	if found {
		// флаги важнее манифеста
		if !flags.Changed("output") {
			s.output = manifest.outputPath()
		}
		if !flags.Changed("jobs") && manifest.Config.Translate.Jobs > 0 {
			s.jobs = manifest.Config.Translate.Jobs
		}
		if !flags.Changed("no-cache") {
			s.cache = manifest.cacheEnabled()
		}
	}
	return s, nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	s, err := readTranslateSettings(cmd, args)
	if err != nil {
		return err
	}

	opts := driver.Options{Jobs: s.jobs, MaxDiagnostics: s.maxDiagnostics, Units: s.units}
	if s.cache || s.clearCache {
		cache, err := driver.OpenDiskCache("whyclone")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache disabled: %v\n", err)
		} else {
			if s.clearCache {
				if err := cache.DropAll(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
			}
			if s.cache {
				opts.Cache = cache
			}
		}
	}

	res, err := driver.TranslateFile(cmd.Context(), s.input, opts)
	if err != nil {
		return err
	}
	if s.timings {
		res.AddTimings(s.input)
	}

	if err := writeOutput(cmd.OutOrStdout(), s.output, res); err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	if err := printDiagnostics(errOut, res.Bag, s.format, s.withNotes); err != nil {
		return err
	}
	if s.timings && !s.quiet {
		fmt.Fprint(errOut, res.Timer.Summary())
	}
	if !s.quiet {
		printSummary(errOut, res)
	}
	if res.Failed() {
		return errors.New("translation failed")
	}
	return nil
}

func writeOutput(stdout io.Writer, path string, res *driver.Result) error {
	if path == "" || path == "-" {
		return driver.WriteModules(stdout, res)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := driver.WriteModules(f, res); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func printSummary(w io.Writer, res *driver.Result) {
	var ok, cached, failed int
	for _, u := range res.Units {
		switch {
		case u.Err != nil:
			failed++
		case u.Cached:
			cached++
			ok++
		default:
			ok++
		}
	}
	status := color.New(color.FgGreen, color.Bold).Sprint("translated")
	if failed > 0 || res.Failed() {
		status = color.New(color.FgRed, color.Bold).Sprint("failed")
	}
	fmt.Fprintf(w, "%s %d modules (%d cached, %d failed)\n", status, ok, cached, failed)
}
