package engine

import (
	"cmp"
	"fmt"
	"slices"

	"fedash/internal/models"
)

type aggStats struct {
	Sum   float64
	Count int
}

// dict assigns dense ids to strings in first-seen order.
type dict struct {
	ids  map[string]int
	list []string
}

func newDict() *dict { return &dict{ids: make(map[string]int)} }

func (d *dict) id(s string) int {
	if id, ok := d.ids[s]; ok {
		return id
	}
	id := len(d.list)
	d.ids[s] = id
	d.list = append(d.list, s)
	return id
}

// HeatmapCells sums the metric per (region, country, scenario). Cells without
// a single present value are left out rather than reported as zero.
func HeatmapCells(d *Dataset, m models.Metric) ([]models.HeatCell, error) {
	if _, _, err := ResolveMetricColumn(m); err != nil {
		return nil, err
	}

	// 1. Dimensions
	regs, ctrs, scns := newDict(), newDict(), newDict()
	type coord struct{ r, c, s int }
	coords := make([]coord, d.Len())
	for i := 0; i < d.Len(); i++ {
		rec := d.records[i]
		coords[i] = coord{regs.id(rec.Region), ctrs.id(rec.Country), scns.id(rec.Assumptions)}
	}
	numC, numS := len(ctrs.list), len(scns.list)

	// 2. Flattened [Region][Country][Scenario] matrix
	matrix := make([]aggStats, len(regs.list)*numC*numS)
	for i, co := range coords {
		v := m.Value(d.records[i])
		if !v.Valid {
			continue
		}
		idx := (co.r*numC+co.c)*numS + co.s
		matrix[idx].Sum += v.Value
		matrix[idx].Count++
	}

	// 3. Unpack
	cells := make([]models.HeatCell, 0)
	for i, st := range matrix {
		if st.Count == 0 {
			continue
		}
		s := i % numS
		c := (i / numS) % numC
		r := i / (numS * numC)
		cells = append(cells, models.HeatCell{
			Region:      regs.list[r],
			Country:     ctrs.list[c],
			Assumptions: scns.list[s],
			Value:       st.Sum,
			Count:       st.Count,
		})
	}
	slices.SortFunc(cells, func(a, b models.HeatCell) int {
		return cmp.Or(
			cmp.Compare(a.Region, b.Region),
			cmp.Compare(a.Country, b.Country),
			cmp.Compare(a.Assumptions, b.Assumptions),
		)
	})
	return cells, nil
}

// BoxStats summarises the metric per (scenario, country) group, ordered by
// scenario then country. Missing values are skipped; empty groups are omitted.
func BoxStats(d *Dataset, m models.Metric) ([]models.BoxStat, error) {
	if _, _, err := ResolveMetricColumn(m); err != nil {
		return nil, err
	}

	type key struct{ scenario, country string }
	groups := make(map[key][]float64)
	for i := 0; i < d.Len(); i++ {
		rec := d.records[i]
		if v := m.Value(rec); v.Valid {
			k := key{rec.Assumptions, rec.Country}
			groups[k] = append(groups[k], v.Value)
		}
	}

	out := make([]models.BoxStat, 0, len(groups))
	for k, vals := range groups {
		slices.Sort(vals)
		out = append(out, models.BoxStat{
			Assumptions: k.scenario,
			Country:     k.country,
			Min:         vals[0],
			Q1:          quantile(vals, 0.25),
			Median:      quantile(vals, 0.5),
			Q3:          quantile(vals, 0.75),
			Max:         vals[len(vals)-1],
			Count:       len(vals),
		})
	}
	slices.SortFunc(out, func(a, b models.BoxStat) int {
		return cmp.Or(cmp.Compare(a.Assumptions, b.Assumptions), cmp.Compare(a.Country, b.Country))
	})
	return out, nil
}

// quantile interpolates linearly at position q*(n-1) of sorted (the R-7
// definition, numpy's default).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		panic(fmt.Sprintf("quantile of empty slice (q=%v)", q))
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
