package api

import (
	"net/url"

	"fedash/internal/dashboard"
	"fedash/internal/engine"
	"fedash/internal/models"

	"github.com/labstack/echo/v4"
)

// valueSet reads a repeatable parameter. An absent key does not filter; a
// key present only with empty values (?region=) is an explicit empty set.
func valueSet(q url.Values, key string) engine.ValueSet {
	vals, ok := q[key]
	if !ok {
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

// parseMetric falls back to def when ?metric is absent or empty.
func parseMetric(q url.Values, def models.Metric) (models.Metric, error) {
	m := q.Get("metric")
	if m == "" {
		return def, nil
	}
	return engine.ParseMetric(m)
}

func parseSelection(c echo.Context, def models.Metric) (engine.Selection, error) {
	q := c.QueryParams()
	m, err := parseMetric(q, def)
	if err != nil {
		return engine.Selection{}, err
	}
	return engine.Selection{
		Metric:    m,
		Regions:   valueSet(q, "region"),
		Scenario:  valueSet(q, "scenario"),
		Countries: valueSet(q, "country"),
	}, nil
}

// parsePanelParams leaves unset values zero so dashboard.Defaults can fill them.
func parsePanelParams(c echo.Context) (dashboard.Params, error) {
	q := c.QueryParams()
	var p dashboard.Params
	if q.Has("metric") {
		m, err := engine.ParseMetric(q.Get("metric"))
		if err != nil {
			return p, err
		}
		p.Metric = m
	}
	if regions := valueSet(q, "region"); regions.Active() {
		p.Regions = regions.Values()
	}
	p.Scenario = q.Get("scenario")
	p.Region = q.Get("focus_region")
	p.Countries = valueSet(q, "country")
	return p, nil
}
