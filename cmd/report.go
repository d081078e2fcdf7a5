package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/tourism-cli/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Rank destinations over all recorded snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("report"); err != nil {
			return err
		}

		by, _ := cmd.Flags().GetString("by")
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		if limit <= 0 {
			limit = cfg.Report.Limit
		}

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "report: init store")
		}
		defer st.Close() //nolint:errcheck

		rankings, err := loadRankings(ctx, st, by, limit)
		if err != nil {
			return err
		}
		return writeRankings(cmd.OutOrStdout(), rankings, format)
	},
}

// loadRankings runs the aggregate queries selected by by: volume, per-capita
// or all.
func loadRankings(ctx context.Context, st store.Store, by string, limit int) ([]ranking, error) {
	var names []string
	switch by {
	case rankingVolume, rankingPerCapita:
		names = []string{by}
	case "all", "":
		names = []string{rankingVolume, rankingPerCapita}
	default:
		return nil, eris.Errorf("report: unknown ranking %q (want volume, per-capita or all)", by)
	}

	rankings := make([]ranking, 0, len(names))
	for _, name := range names {
		query := st.TopByFlightVolume
		if name == rankingPerCapita {
			query = st.TopByPassengersPerCapita
		}
		dests, err := query(ctx, limit)
		if err != nil {
			return nil, eris.Wrapf(err, "report: %s ranking", name)
		}
		rankings = append(rankings, ranking{Name: name, Destinations: dests})
	}
	return rankings, nil
}

func init() {
	reportCmd.Flags().String("by", "all", "ranking to print: volume, per-capita or all")
	reportCmd.Flags().Int("limit", 0, "number of destinations per ranking (default report.limit)")
	reportCmd.Flags().String("format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(reportCmd)
}
