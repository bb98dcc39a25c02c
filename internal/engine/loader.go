package engine

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"fedash/internal/models"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrMalformedRow  = errors.New("malformed row")
)

// Cells treated as a missing measure.
var nullTokens = map[string]bool{"": true, "NA": true, "N/A": true, "NaN": true, "nan": true, "null": true}

// --- 1. CELL PARSERS ---

// parseMeasure parses "12.5" -> Some(12.5); null tokens -> missing.
func parseMeasure(s string) (models.Measure, error) {
	s = strings.TrimSpace(s)
	if nullTokens[s] {
		return models.Measure{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.Measure{}, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return models.Measure{}, nil
	}
	return models.Some(f), nil
}

// interner dictionary-encodes repeated categorical strings so every row
// shares one backing string per distinct value.
type interner map[string]string

func (in interner) get(s string) string {
	if v, ok := in[s]; ok {
		return v
	}
	in[s] = s
	return s
}

// --- 2. HEADER ---

type columnIndex struct {
	country, region, assumptions, relative, dalys int
}

func locateColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	var missing []string
	find := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}
	idx := columnIndex{
		country:     find(models.ColumnCountry),
		region:      find(models.ColumnRegion),
		assumptions: find(models.ColumnAssumptions),
		relative:    find(models.ColumnRelativeReduction),
		dalys:       find(models.ColumnDalysSaved),
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

// --- 3. MAIN LOADER ---

// LoadCSV reads the dataset file at path. Any error is fatal for the caller:
// a partially loaded Dataset is never returned.
func LoadCSV(path string, log *zap.Logger) (*Dataset, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	log.Info("Loading dataset", zap.String("path", path))

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	d, err := ReadCSV(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.Fingerprint = xxh3.Hash(content)

	log.Info("Load complete",
		zap.Int("rows", d.Len()),
		zap.Duration("took", time.Since(start)),
		zap.String("fingerprint", strconv.FormatUint(d.Fingerprint, 16)))
	return d, nil
}

// ReadCSV parses a dataset from r. The header row names the columns; extra
// columns are ignored.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	dict := make(interner)
	var records []models.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := reader.FieldPos(0)

		rec := models.Record{
			Country:     dict.get(strings.TrimSpace(row[idx.country])),
			Region:      dict.get(strings.TrimSpace(row[idx.region])),
			Assumptions: dict.get(strings.TrimSpace(row[idx.assumptions])),
		}
		if rec.Region == "" || rec.Assumptions == "" {
			return nil, fmt.Errorf("%w: line %d: empty region or assumptions", ErrMalformedRow, line)
		}
		if rec.RelativeReduction, err = parseMeasure(row[idx.relative]); err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrMalformedRow, line, models.ColumnRelativeReduction, err)
		}
		if rec.DalysSaved, err = parseMeasure(row[idx.dalys]); err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrMalformedRow, line, models.ColumnDalysSaved, err)
		}
		records = append(records, rec)
	}

	return &Dataset{records: records}, nil
}
