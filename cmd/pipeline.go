package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/haihuyentran/melbourne-properties/internal/model"
	"github.com/haihuyentran/melbourne-properties/internal/pipeline"
)

var (
	rowsOut           string
	pricesInteractive bool
	statusLimit       int
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Batch enrichment stages over the suburb dataset",
}

var extractCmd = &cobra.Command{
	Use:   "extract <report.txt>",
	Short: "Extract locality rows from a quarterly report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := env.Pipeline.ExtractReport(args[0])
		if err != nil {
			return err
		}

		raw, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal rows")
		}
		if rowsOut == "" {
			fmt.Println(string(raw))
			return nil
		}
		return eris.Wrapf(os.WriteFile(rowsOut, raw, 0o644), "write %s", rowsOut)
	},
}

// reportRows loads rows either from a previously extracted JSON file or by
// parsing the report text directly, keyed off the file extension.
func reportRows(path string) (map[string]model.ReportRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	var rows map[string]model.ReportRow
	if json.Unmarshal(raw, &rows) == nil && len(rows) > 0 {
		return rows, nil
	}
	return pipeline.ParseReport(string(raw)), nil
}

var stubsCmd = &cobra.Command{
	Use:   "stubs <report>",
	Short: "Create dataset stubs for new report localities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := reportRows(args[0])
		if err != nil {
			return err
		}
		return env.Pipeline.Stubs(cmd.Context(), rows)
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <report>",
	Short: "Merge report prices into the dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := reportRows(args[0])
		if err != nil {
			return err
		}
		return env.Pipeline.Merge(cmd.Context(), rows)
	},
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve coordinates for suburbs that lack them",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Pipeline.Geocode(cmd.Context())
	},
}

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Resolve median prices for suburbs that lack them",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if pricesInteractive {
			resolved, err := pipeline.PriceFillInteractive(env.Dataset, os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Printf("entered %d prices\n", resolved)
			return nil
		}
		return env.Pipeline.Prices(cmd.Context())
	},
}

var runCmd = &cobra.Command{
	Use:   "run <report.txt>",
	Short: "Run all enrichment stages in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Pipeline.Run(cmd.Context(), args[0])
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		runs, err := env.Store.ListRuns(cmd.Context(), statusLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}
		for _, r := range runs {
			finished := "-"
			if r.FinishedAt != nil {
				finished = r.FinishedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-10s %-9s processed=%-4d failed=%-4d started=%s finished=%s id=%s\n",
				r.Stage, r.Status, r.Processed, r.Failed,
				r.StartedAt.Format("2006-01-02 15:04:05"), finished, r.ID)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&rowsOut, "out", "o", "", "write extracted rows to file instead of stdout")
	pricesCmd.Flags().BoolVar(&pricesInteractive, "interactive", false, "enter prices by hand instead of scraping")
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "number of runs to show")

	pipelineCmd.AddCommand(extractCmd, stubsCmd, mergeCmd, geocodeCmd, pricesCmd, runCmd, statusCmd)
	rootCmd.AddCommand(pipelineCmd)
}
