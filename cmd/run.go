package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tourism-cli/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Take one flight snapshot, enrich it and append it to the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if feedFile, _ := cmd.Flags().GetString("feed-file"); feedFile != "" {
			cfg.Sources.FeedFile = feedFile
		}
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "run: init store")
		}
		defer st.Close() //nolint:errcheck

		res, err := initPipeline(st).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "run: pipeline")
		}

		out := cmd.OutOrStdout()
		printRunSummary(out, res)

		if noReport, _ := cmd.Flags().GetBool("no-report"); noReport {
			return nil
		}

		rankings, err := loadRankings(ctx, st, "all", cfg.Report.Limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		return writeRankings(out, rankings, "table")
	},
}

func printRunSummary(out io.Writer, res *pipeline.Result) {
	r := res.Run
	zap.L().Info("run finished",
		zap.String("run_id", r.ID),
		zap.String("status", string(r.Status)),
		zap.Int64("rows", r.RowsAppended),
	)

	fmt.Fprintf(out, "Run %s: %s\n", r.ID, r.Status)
	fmt.Fprintf(out, "  flights observed:   %d\n", r.FlightsObserved)
	fmt.Fprintf(out, "  matched airports:   %d\n", r.GeoMatched)
	fmt.Fprintf(out, "  unmatched dropped:  %d\n", res.Unmatched)
	fmt.Fprintf(out, "  rows appended:      %d\n", r.RowsAppended)
	fmt.Fprintf(out, "  reference rows:     %d airports, %d cities\n", r.AirportRefRows, r.PopulationRefRows)
}

func init() {
	runCmd.Flags().Bool("no-report", false, "skip printing the destination rankings")
	runCmd.Flags().String("feed-file", "", "read flights from a saved feed JSON file instead of the live feed")
	rootCmd.AddCommand(runCmd)
}
