package engine

import "fedash/internal/models"

// Dataset is an ordered, read-only collection of records.
// It is built once by the loader and never mutated afterwards; filters
// return new Datasets that share no mutable state with their parent.
type Dataset struct {
	records []models.Record

	// Fingerprint identifies the source content (xxh3 of the file bytes).
	Fingerprint uint64
}

// NewDataset copies records into a new Dataset.
func NewDataset(records []models.Record) *Dataset {
	cp := make([]models.Record, len(records))
	copy(cp, records)
	return &Dataset{records: cp}
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record by value.
func (d *Dataset) At(i int) models.Record { return d.records[i] }

// Records returns a copy of the records in order.
func (d *Dataset) Records() []models.Record {
	out := make([]models.Record, d.Len())
	if d != nil {
		copy(out, d.records)
	}
	return out
}

// subset returns the records accepted by keep, in their original order.
func (d *Dataset) subset(keep func(models.Record) bool) *Dataset {
	out := &Dataset{Fingerprint: d.fingerprint()}
	if d == nil {
		return out
	}
	for _, r := range d.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}

func (d *Dataset) fingerprint() uint64 {
	if d == nil {
		return 0
	}
	return d.Fingerprint
}
