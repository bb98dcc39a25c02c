package main

import (
	"fmt"
	"strings"

	"fedash/internal/engine"
	"fedash/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	queryMetric    string
	queryRegions   []string
	queryScenario  []string
	queryCountries []string
	valuesField    string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the records matching a filter selection",
	Long: `Applies region, scenario and country filters to the dataset and prints the
result with the selected metric column. An omitted flag does not filter; a flag
given with an empty value (--region "") selects nothing.

Example:
  fedash query --region "South Asia" --region LAC --scenario high --metric dalys_saved`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

var valuesCmd = &cobra.Command{
	Use:   "values",
	Short: "List the distinct values of a selector column",
	Args:  cobra.NoArgs,
	RunE:  runValues,
}

func init() {
	queryCmd.Flags().StringVarP(&queryMetric, "metric", "m", "", "relative_reduction or dalys_saved (default dashboard.default_metric)")
	queryCmd.Flags().StringArrayVarP(&queryRegions, "region", "r", nil, "region to include (repeatable)")
	queryCmd.Flags().StringArrayVarP(&queryScenario, "scenario", "s", nil, "scenario (assumptions) to include (repeatable)")
	queryCmd.Flags().StringArrayVar(&queryCountries, "country", nil, "country to include (repeatable)")

	valuesCmd.Flags().StringVarP(&valuesField, "field", "f", "region", "region, scenario or country")
}

// flagSet turns a repeatable flag into a ValueSet: unset flags do not filter.
func flagSet(cmd *cobra.Command, name string, vals []string) engine.ValueSet {
	if !cmd.Flags().Changed(name) {
		return engine.Any()
	}
	kept := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return engine.Only(kept...)
}

func runQuery(cmd *cobra.Command, args []string) error {
	metric, err := cfg.Dashboard.Metric()
	if cmd.Flags().Changed("metric") {
		metric, err = engine.ParseMetric(queryMetric)
	}
	if err != nil {
		return err
	}
	d, err := engine.LoadCSV(cfg.Data.Path, logger)
	if err != nil {
		return err
	}

	res, err := engine.ComposeFilters(d, engine.Selection{
		Metric:    metric,
		Regions:   flagSet(cmd, "region", queryRegions),
		Scenario:  flagSet(cmd, "scenario", queryScenario),
		Countries: flagSet(cmd, "country", queryCountries),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(res.Records) == 0 {
		fmt.Fprintln(out, "no data")
		return nil
	}
	fmt.Fprintln(out, renderResult(res))
	fmt.Fprintf(out, "%d rows\n", len(res.Records))
	return nil
}

var printer = message.NewPrinter(language.English)

func formatMeasure(m models.Measure) string {
	if !m.Valid {
		return "-"
	}
	return printer.Sprintf("%.2f", m.Value)
}

func renderResult(res models.QueryResult) string {
	metric, _ := engine.ParseMetric(res.Column)
	rows := make([][]string, 0, len(res.Records))
	for _, r := range res.Records {
		rows = append(rows, []string{r.Country, r.Region, r.Assumptions, formatMeasure(metric.Value(r))})
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	number := cell.Align(lipgloss.Right)

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Country", "Region", "Scenario", res.Label).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 3:
				return number
			}
			return cell
		}).
		String()
}

func runValues(cmd *cobra.Command, args []string) error {
	field, err := engine.ParseField(valuesField)
	if err != nil {
		return err
	}
	d, err := engine.LoadCSV(cfg.Data.Path, logger)
	if err != nil {
		return err
	}
	vals, err := engine.DistinctValues(d, field)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(vals, "\n"))
	return nil
}
