package engine

import (
	"fmt"
	"io"

	"fedash/internal/models"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// ArrowSchema is the columnar layout of a QueryResult export.
var ArrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "country", Type: arrow.BinaryTypes.String},
	{Name: models.ColumnRegion, Type: arrow.BinaryTypes.String},
	{Name: models.ColumnAssumptions, Type: arrow.BinaryTypes.String},
	{Name: models.ColumnRelativeReduction, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: models.ColumnDalysSaved, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
}, nil)

func appendMeasure(b *array.Float64Builder, m models.Measure) {
	if !m.Valid {
		b.AppendNull()
		return
	}
	b.Append(m.Value)
}

// ToArrow builds one record batch from the result's records. The caller
// owns the returned record and must Release it.
func ToArrow(res models.QueryResult, mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	b := array.NewRecordBuilder(mem, ArrowSchema)
	defer b.Release()

	countries := b.Field(0).(*array.StringBuilder)
	regions := b.Field(1).(*array.StringBuilder)
	scenarios := b.Field(2).(*array.StringBuilder)
	relative := b.Field(3).(*array.Float64Builder)
	dalys := b.Field(4).(*array.Float64Builder)

	for _, r := range res.Records {
		countries.Append(r.Country)
		regions.Append(r.Region)
		scenarios.Append(r.Assumptions)
		appendMeasure(relative, r.RelativeReduction)
		appendMeasure(dalys, r.DalysSaved)
	}
	return b.NewRecord()
}

// WriteIPC streams res to w in the Arrow IPC stream format.
func WriteIPC(w io.Writer, res models.QueryResult) error {
	mem := memory.NewGoAllocator()
	rec := ToArrow(res, mem)
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(ArrowSchema), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		wr.Close()
		return fmt.Errorf("write arrow batch: %w", err)
	}
	if err := wr.Close(); err != nil {
		return fmt.Errorf("close arrow stream: %w", err)
	}
	return nil
}
