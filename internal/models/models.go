package models

import (
	"fmt"
	"strconv"
)

// Measure is a numeric cell that may be missing in the source file.
// A missing value is absent, not zero.
type Measure struct {
	Value float64
	Valid bool
}

// Some returns a present Measure.
func Some(v float64) Measure { return Measure{Value: v, Valid: true} }

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, m.Value, 'g', -1, 64), nil
}

func (m *Measure) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Measure{}
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("measure: %w", err)
	}
	*m = Some(v)
	return nil
}

// Record is one country/scenario observation.
type Record struct {
	Country           string  `json:"country"`
	Region            string  `json:"region"`
	Assumptions       string  `json:"assumptions"`
	RelativeReduction Measure `json:"r_iron_r_2030"`
	DalysSaved        Measure `json:"d_iron_r_2030"`
}

// QueryResult is the filtered subset plus the value column the renderer should plot.
type QueryResult struct {
	Metric  string   `json:"metric"`
	Column  string   `json:"column"`
	Label   string   `json:"label"`
	Records []Record `json:"records"`
}

// Page is one limit/offset window of a QueryResult.
type Page struct {
	QueryResult
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type MetricInfo struct {
	ID     string `json:"id"`
	Column string `json:"column"`
	Label  string `json:"label"`
}

type FilterOptions struct {
	Regions   []string     `json:"regions"`
	Scenarios []string     `json:"scenarios"`
	Countries []string     `json:"countries"`
	Metrics   []MetricInfo `json:"metrics"`
}

// HeatCell is one aggregated cell of the country x scenario heatmap.
type HeatCell struct {
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	Assumptions string  `json:"assumptions"`
	Value       float64 `json:"value"`
	Count       int     `json:"count"`
}

// BoxStat is the five-number summary of one (scenario, country) group.
type BoxStat struct {
	Assumptions string  `json:"assumptions"`
	Country     string  `json:"country"`
	Min         float64 `json:"min"`
	Q1          float64 `json:"q1"`
	Median      float64 `json:"median"`
	Q3          float64 `json:"q3"`
	Max         float64 `json:"max"`
	Count       int     `json:"count"`
}

// Panel is one chart of the dashboard page, ready for a renderer.
type Panel struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Kind       string        `json:"kind"` // "bar", "scatter", "heatmap", "box"
	X          string        `json:"x"`
	Y          string        `json:"y,omitempty"`
	Z          string        `json:"z,omitempty"`
	Color      string        `json:"color,omitempty"`
	Facet      string        `json:"facet,omitempty"`
	Size       string        `json:"size,omitempty"`
	XLabel     string        `json:"xLabel,omitempty"`
	YLabel     string        `json:"yLabel,omitempty"`
	TickFormat string        `json:"tickFormat,omitempty"`
	Results    []QueryResult `json:"results,omitempty"`
	Cells      []HeatCell    `json:"cells,omitempty"`
	Boxes      []BoxStat     `json:"boxes,omitempty"`
	NoData     bool          `json:"noData"`
}
