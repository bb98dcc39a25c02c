// Package dashboard expresses each chart of the dashboard page as a
// composition of query-layer calls plus the metadata a renderer needs.
package dashboard

import (
	"errors"
	"fmt"
	"slices"

	"fedash/internal/engine"
	"fedash/internal/models"
)

var ErrUnknownPanel = errors.New("unknown panel")

const tickFormat = ","

// Params carries the selector state for one page render.
// Regions applies to the multi-region panels; Region, Scenario and
// Countries to the single-region ones.
type Params struct {
	Metric    models.Metric
	Regions   []string
	Scenario  string
	Region    string
	Countries engine.ValueSet
}

// Settings are the configured first-load selections.
type Settings struct {
	Regions []string
	Metric  models.Metric
}

type builder func(*engine.Dataset, Params) (models.Panel, error)

var panels = map[string]builder{
	"grouped":     Grouped,
	"dot":         Dot,
	"heatmap":     Heatmap,
	"correlation": Correlation,
	"country":     Country,
	"box":         Box,
}

// IDs lists panel ids in page order.
func IDs() []string {
	return []string{"grouped", "dot", "heatmap", "correlation", "country", "box"}
}

// Build renders panel id.
func Build(d *engine.Dataset, id string, p Params) (models.Panel, error) {
	b, ok := panels[id]
	if !ok {
		return models.Panel{}, fmt.Errorf("%w: %q", ErrUnknownPanel, id)
	}
	return b(d, p)
}

func finish(p models.Panel) models.Panel {
	p.TickFormat = tickFormat
	p.NoData = true
	for _, r := range p.Results {
		if len(r.Records) > 0 {
			p.NoData = false
		}
	}
	if len(p.Cells) > 0 || len(p.Boxes) > 0 {
		p.NoData = false
	}
	return p
}

// Grouped is the per-country bar chart, colored by scenario, faceted by region.
func Grouped(d *engine.Dataset, p Params) (models.Panel, error) {
	res, err := engine.ComposeFilters(d, engine.Selection{Metric: p.Metric, Regions: engine.Only(p.Regions...)})
	if err != nil {
		return models.Panel{}, err
	}
	return finish(models.Panel{
		ID:      "grouped",
		Title:   fmt.Sprintf("%s per country and scenario", res.Label),
		Kind:    "bar",
		X:       models.ColumnCountry,
		Y:       res.Column,
		Color:   models.ColumnAssumptions,
		Facet:   models.ColumnRegion,
		YLabel:  res.Label,
		Results: []models.QueryResult{res},
	}), nil
}

// Dot sizes each country's marker by the metric under one scenario.
func Dot(d *engine.Dataset, p Params) (models.Panel, error) {
	res, err := engine.ComposeFilters(d, engine.Selection{
		Metric:   p.Metric,
		Regions:  engine.Only(p.Regions...),
		Scenario: engine.Only(p.Scenario),
	})
	if err != nil {
		return models.Panel{}, err
	}
	return finish(models.Panel{
		ID:      "dot",
		Title:   fmt.Sprintf("%s by country under: %s", res.Label, p.Scenario),
		Kind:    "scatter",
		X:       models.ColumnCountry,
		Y:       res.Column,
		Color:   models.ColumnRegion,
		Size:    res.Column,
		YLabel:  res.Label,
		Results: []models.QueryResult{res},
	}), nil
}

// Heatmap aggregates the metric per country and scenario.
func Heatmap(d *engine.Dataset, p Params) (models.Panel, error) {
	column, label, err := engine.ResolveMetricColumn(p.Metric)
	if err != nil {
		return models.Panel{}, err
	}
	cells, err := engine.HeatmapCells(engine.FilterByRegions(d, p.Regions), p.Metric)
	if err != nil {
		return models.Panel{}, err
	}
	return finish(models.Panel{
		ID:     "heatmap",
		Title:  fmt.Sprintf("%s heatmap per country and scenario", label),
		Kind:   "heatmap",
		X:      models.ColumnAssumptions,
		Y:      models.ColumnCountry,
		Facet:  models.ColumnRegion,
		Z:      column,
		YLabel: label,
		Cells:  cells,
	}), nil
}

// Correlation plots DALYs saved against relative reduction for one scenario.
// It ignores the selected metric.
func Correlation(d *engine.Dataset, p Params) (models.Panel, error) {
	res, err := engine.ComposeFilters(d, engine.Selection{
		Metric:   models.MetricDalysSaved,
		Regions:  engine.Only(p.Regions...),
		Scenario: engine.Only(p.Scenario),
	})
	if err != nil {
		return models.Panel{}, err
	}
	xcol, xlabel, _ := engine.ResolveMetricColumn(models.MetricRelativeReduction)
	return finish(models.Panel{
		ID:      "correlation",
		Title:   fmt.Sprintf("%s: DALYs vs Relative Reduction in selected regions", p.Scenario),
		Kind:    "scatter",
		X:       xcol,
		Y:       res.Column,
		Color:   models.ColumnRegion,
		XLabel:  xlabel,
		YLabel:  res.Label,
		Results: []models.QueryResult{res},
	}), nil
}

// Country returns one bar chart per metric for a single region and scenario.
func Country(d *engine.Dataset, p Params) (models.Panel, error) {
	sel := engine.Selection{Regions: engine.Only(p.Region), Scenario: engine.Only(p.Scenario)}
	panel := models.Panel{
		ID:    "country",
		Title: fmt.Sprintf("%s under %s", p.Region, p.Scenario),
		Kind:  "bar",
		X:     models.ColumnCountry,
		Color: models.ColumnCountry,
	}
	for _, m := range []models.Metric{models.MetricRelativeReduction, models.MetricDalysSaved} {
		sel.Metric = m
		res, err := engine.ComposeFilters(d, sel)
		if err != nil {
			return models.Panel{}, err
		}
		panel.Results = append(panel.Results, res)
	}
	return finish(panel), nil
}

// Box summarises relative reduction across scenarios for countries of one
// region. Unset Countries means every country of the region.
func Box(d *engine.Dataset, p Params) (models.Panel, error) {
	inRegion := engine.FilterByRegions(d, []string{p.Region})
	countries := p.Countries
	if !countries.Active() {
		all, err := engine.DistinctValues(inRegion, models.FieldCountry)
		if err != nil {
			return models.Panel{}, err
		}
		countries = engine.Only(all...)
	}
	boxes, err := engine.BoxStats(engine.FilterByCountries(inRegion, countries.Values()), models.MetricRelativeReduction)
	if err != nil {
		return models.Panel{}, err
	}
	column, label, _ := engine.ResolveMetricColumn(models.MetricRelativeReduction)
	return finish(models.Panel{
		ID:     "box",
		Title:  "Boxplot: Relative reduction across scenarios",
		Kind:   "box",
		X:      models.ColumnAssumptions,
		Y:      column,
		Color:  models.ColumnCountry,
		XLabel: "Scenario",
		YLabel: label,
		Boxes:  boxes,
	}), nil
}

// Defaults fills unset params from the dataset and configured defaults, the
// way the page pre-selects widgets on first load. Configured default regions
// missing from d are dropped.
func Defaults(d *engine.Dataset, p Params, s Settings) Params {
	regions, _ := engine.DistinctValues(d, models.FieldRegion)
	scenarios, _ := engine.DistinctValues(d, models.FieldAssumptions)

	if p.Metric == 0 {
		p.Metric = s.Metric
	}
	if p.Metric == 0 {
		p.Metric = models.MetricRelativeReduction
	}
	if p.Regions == nil {
		p.Regions = []string{}
		for _, r := range s.Regions {
			if slices.Contains(regions, r) {
				p.Regions = append(p.Regions, r)
			}
		}
	}
	if p.Scenario == "" && len(scenarios) > 0 {
		p.Scenario = scenarios[0]
	}
	if p.Region == "" && len(regions) > 0 {
		p.Region = regions[0]
	}
	return p
}
