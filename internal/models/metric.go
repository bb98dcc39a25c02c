package models

// Metric selects which value column a chart plots.
type Metric int

const (
	MetricRelativeReduction Metric = iota + 1
	MetricDalysSaved
)

// Column ids as they appear in the source CSV.
const (
	ColumnCountry           = "Country"
	ColumnRegion            = "region"
	ColumnAssumptions       = "assumptions"
	ColumnRelativeReduction = "r_iron_r_2030"
	ColumnDalysSaved        = "d_iron_r_2030"
)

func (m Metric) String() string {
	switch m {
	case MetricRelativeReduction:
		return "relative_reduction"
	case MetricDalysSaved:
		return "dalys_saved"
	}
	return "unknown"
}

// Value returns the measure of r that m plots.
func (m Metric) Value(r Record) Measure {
	switch m {
	case MetricRelativeReduction:
		return r.RelativeReduction
	case MetricDalysSaved:
		return r.DalysSaved
	}
	return Measure{}
}

// Field names a categorical column usable in selectors.
type Field int

const (
	FieldRegion Field = iota + 1
	FieldAssumptions
	FieldCountry
)

func (f Field) String() string {
	switch f {
	case FieldRegion:
		return ColumnRegion
	case FieldAssumptions:
		return ColumnAssumptions
	case FieldCountry:
		return ColumnCountry
	}
	return "unknown"
}

// Of returns the value of field f in r, or "" for an unknown field.
func (f Field) Of(r Record) string {
	switch f {
	case FieldRegion:
		return r.Region
	case FieldAssumptions:
		return r.Assumptions
	case FieldCountry:
		return r.Country
	}
	return ""
}
