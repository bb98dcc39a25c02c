package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"fedash/internal/models"

	"golang.org/x/exp/maps"
)

var (
	ErrUnknownMetric = errors.New("unknown metric")
	ErrUnknownField  = errors.New("unknown field")
)

// ============================================================================
// METRICS
// ============================================================================

// metricOrder is the display and lookup order of metricColumns.
var metricOrder = []models.Metric{models.MetricRelativeReduction, models.MetricDalysSaved}

var metricColumns = map[models.Metric][2]string{
	models.MetricRelativeReduction: {models.ColumnRelativeReduction, "Relative reduction (%)"},
	models.MetricDalysSaved:        {models.ColumnDalysSaved, "DALYs saved"},
}

// ResolveMetricColumn maps a metric to its value column id and display label.
func ResolveMetricColumn(m models.Metric) (column, label string, err error) {
	c, ok := metricColumns[m]
	if !ok {
		return "", "", fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
	}
	return c[0], c[1], nil
}

// Metrics lists every metric in display order.
func Metrics() []models.MetricInfo {
	out := make([]models.MetricInfo, 0, len(metricColumns))
	for _, m := range metricOrder {
		c := metricColumns[m]
		out = append(out, models.MetricInfo{ID: m.String(), Column: c[0], Label: c[1]})
	}
	return out
}

// ParseMetric accepts a metric id, its column id or its display label.
func ParseMetric(s string) (models.Metric, error) {
	s = strings.TrimSpace(s)
	for _, m := range metricOrder {
		c := metricColumns[m]
		if strings.EqualFold(s, m.String()) || s == c[0] || s == c[1] {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// ParseField accepts a selector column name.
func ParseField(s string) (models.Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "region", "regions":
		return models.FieldRegion, nil
	case "assumptions", "scenario", "scenarios":
		return models.FieldAssumptions, nil
	case "country", "countries":
		return models.FieldCountry, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// ============================================================================
// VALUE SETS
// ============================================================================

// ValueSet is a filter over one categorical column.
// The zero ValueSet (or Any()) applies no restriction. Only() with no
// values is an active filter that matches nothing.
type ValueSet struct {
	active bool
	values []string
}

// Any returns a ValueSet that does not filter.
func Any() ValueSet { return ValueSet{} }

// Only returns a ValueSet restricted to values.
func Only(values ...string) ValueSet {
	return ValueSet{active: true, values: slices.Clone(values)}
}

func (v ValueSet) Active() bool { return v.active }

// Values returns the members; it is non-nil for an active set.
func (v ValueSet) Values() []string {
	if v.active && v.values == nil {
		return []string{}
	}
	return slices.Clone(v.values)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// ============================================================================
// FILTERS
// ============================================================================
// Matching is exact: selector values come from DistinctValues, so no case
// folding is applied. An empty set always yields an empty Dataset.
// ============================================================================

func filterByField(d *Dataset, f models.Field, values []string) *Dataset {
	set := toSet(values)
	return d.subset(func(r models.Record) bool {
		_, ok := set[f.Of(r)]
		return ok
	})
}

// FilterByRegions keeps records whose region is in regions.
func FilterByRegions(d *Dataset, regions []string) *Dataset {
	return filterByField(d, models.FieldRegion, regions)
}

// FilterByScenario keeps records whose assumptions equal scenario.
// A scenario absent from d yields an empty Dataset, not an error.
func FilterByScenario(d *Dataset, scenario string) *Dataset {
	return d.subset(func(r models.Record) bool { return r.Assumptions == scenario })
}

// FilterByCountries keeps records whose country is in countries.
func FilterByCountries(d *Dataset, countries []string) *Dataset {
	return filterByField(d, models.FieldCountry, countries)
}

// Selection is one user interaction's filter state.
type Selection struct {
	Metric    models.Metric
	Regions   ValueSet
	Scenario  ValueSet
	Countries ValueSet
}

// ComposeFilters applies every active filter of sel to d and resolves the
// metric column. Filters are independent predicates, so their order does not
// change the result; record order and values are preserved.
func ComposeFilters(d *Dataset, sel Selection) (models.QueryResult, error) {
	column, label, err := ResolveMetricColumn(sel.Metric)
	if err != nil {
		return models.QueryResult{}, err
	}

	out := d
	if out == nil {
		out = &Dataset{}
	}
	if sel.Regions.Active() {
		out = FilterByRegions(out, sel.Regions.values)
	}
	if sel.Scenario.Active() {
		// several scenarios act as a membership set
		out = filterByField(out, models.FieldAssumptions, sel.Scenario.values)
	}
	if sel.Countries.Active() {
		out = FilterByCountries(out, sel.Countries.values)
	}

	return models.QueryResult{
		Metric:  sel.Metric.String(),
		Column:  column,
		Label:   label,
		Records: out.Records(),
	}, nil
}

// DistinctValues returns the sorted, deduplicated non-empty values of field.
func DistinctValues(d *Dataset, field models.Field) ([]string, error) {
	switch field {
	case models.FieldRegion, models.FieldAssumptions, models.FieldCountry:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownField, int(field))
	}

	seen := make(map[string]struct{})
	for i := 0; i < d.Len(); i++ {
		if v := field.Of(d.records[i]); strings.TrimSpace(v) != "" {
			seen[v] = struct{}{}
		}
	}
	out := maps.Keys(seen)
	slices.Sort(out)
	return out, nil
}
