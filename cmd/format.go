package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/tourism-cli/internal/model"
)

const (
	rankingVolume    = "volume"
	rankingPerCapita = "per-capita"
)

// ranking is one titled destination aggregate as rendered by the CLI.
type ranking struct {
	Name         string                  `json:"ranking" yaml:"ranking"`
	Destinations []model.DestinationRank `json:"destinations" yaml:"destinations"`
}

func (r ranking) title() string {
	if r.Name == rankingPerCapita {
		return "Top destinations by passengers per capita"
	}
	return "Top destinations by flight volume"
}

func writeRankings(out io.Writer, rankings []ranking, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(rankings), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(rankings); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	case "table", "":
		for i, r := range rankings {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, r.title())
			formatRankTable(out, r)
		}
		return nil
	default:
		return eris.Errorf("unsupported format %q (want table, json or yaml)", format)
	}
}

func formatRankTable(out io.Writer, r ranking) {
	if len(r.Destinations) == 0 {
		fmt.Fprintln(out, "  (no destinations)")
		return
	}

	perCapita := r.Name == rankingPerCapita
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := "#\tCITY\tCOUNTRY\tFLIGHTS\tPASSENGERS"
	if perCapita {
		header += "\tPOPULATION\tPER CAPITA"
	}
	fmt.Fprintln(w, header)

	for i, d := range r.Destinations {
		line := fmt.Sprintf("%d\t%s\t%s\t%d\t%d", i+1, d.City, d.Country, d.FlightCount, d.TotalPassengers)
		if perCapita {
			line += fmt.Sprintf("\t%s\t%s", optInt(d.Population), optRatio(d.PassengersPerCapita))
		}
		fmt.Fprintln(w, line)
	}
	w.Flush() //nolint:errcheck
}

func formatRunsList(out io.Writer, runs []model.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSTARTED\tFLIGHTS\tMATCHED\tROWS")
	fmt.Fprintln(w, strings.Repeat("-", 36)+"\t--------\t-------------------\t-------\t-------\t----")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.Status, r.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			r.FlightsObserved, r.GeoMatched, r.RowsAppended)
	}
	w.Flush() //nolint:errcheck
}

func optInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func optRatio(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.6f", *v)
}
