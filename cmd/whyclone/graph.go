package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"whyclone/internal/driver"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flags] [program.toml|program.yaml]",
	Short: "Print the clone graph of every output module",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().StringSlice("unit", nil, "only show the named modules")
}

func runGraph(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	input := ""
	if len(args) == 1 {
		input = args[0]
	} else {
		manifest, found, err := loadProjectManifest(".")
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no %s found and no program given", manifestName)
		}
		if input, err = manifest.inputPath(); err != nil {
			return err
		}
	}
	units, err := cmd.Flags().GetStringSlice("unit")
	if err != nil {
		return fmt.Errorf("failed to get unit flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	res, err := driver.TranslateFile(cmd.Context(), input, driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Units:          units,
		Graph:          true,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, u := range res.Units {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "module %s (%s)\n", u.Name, u.Def)
		if u.Graph != nil {
			if err := u.Graph.Write(out); err != nil {
				return err
			}
		}
		if u.Err != nil {
			fmt.Fprintf(out, "error %v\n", u.Err)
		}
	}
	if err := printDiagnostics(cmd.ErrOrStderr(), res.Bag, "pretty", true); err != nil {
		return err
	}
	if res.Failed() {
		return errors.New("translation failed")
	}
	return nil
}
