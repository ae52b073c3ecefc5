package payslip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const DefaultRenderTimeout = 30 * time.Second

// Recorder receives batch and delivery counts. A nil Recorder is allowed.
type Recorder interface {
	RecordBatch(generated, skipped, errors int)
	RecordDeliveries(sent, failed int)
}

// Processor runs the resolve, validate, normalize, generate and store steps
// over one table. It holds no per-batch state and may be shared.
type Processor struct {
	Generator     DocumentGenerator
	Storage       ObjectStorage
	Company       Company
	RenderTimeout time.Duration
	Recorder      Recorder
	Now           func() time.Time
}

// Process turns a loaded table into a GenerationBatch. Schema failures
// abort before any row is read. Row failures are counted and skipped. When
// nothing was generated the partial batch is returned together with an
// *EmptyBatchError.
func (p *Processor) Process(ctx context.Context, table *RawTable, period string) (*GenerationBatch, error) {
	mapping := ResolveColumns(table.Labels)
	slog.Info("payslip columns resolved",
		"headerRow", table.HeaderRow+1,
		"mergedHeader", table.MergedHeader,
		"resolved", len(mapping),
		"rows", len(table.Rows),
	)
	missingOptional, err := ValidateSchema(mapping, table.Labels)
	if err != nil {
		return nil, err
	}

	batch := &GenerationBatch{
		ID:              uuid.NewString(),
		Period:          period,
		CreatedAt:       p.now(),
		MissingOptional: missingOptional,
	}
	normalizer := NewNormalizer(mapping)
	seen := make(map[string]int, len(table.Rows))
	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, ok, err := normalizer.Normalize(row)
		if err != nil {
			p.fail(batch, err)
			continue
		}
		if !ok {
			batch.Skipped++
			continue
		}
		slot := sanitizePathSegment(rec.Employee.ID)
		if first, dup := seen[slot]; dup {
			p.fail(batch, &RowError{
				Row:    rec.Row,
				EmpID:  rec.Employee.ID,
				Reason: "duplicate",
				Err:    fmt.Errorf("%w (first seen in row %d)", ErrDuplicateEmployee, first),
			})
			continue
		}
		seen[slot] = rec.Row
		key, err := p.produce(ctx, batch.ID, rec, period, batch.CreatedAt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.fail(batch, err)
			continue
		}
		batch.Items = append(batch.Items, BatchItem{Record: rec, DocumentKey: key})
	}

	if p.Recorder != nil {
		p.Recorder.RecordBatch(len(batch.Items), batch.Skipped, batch.Errors)
	}
	if len(batch.Items) == 0 {
		return batch, &EmptyBatchError{MissingOptional: missingOptional, Errors: batch.Errors, Skipped: batch.Skipped}
	}
	return batch, nil
}

// produce renders one record and stores it, returning the storage key.
func (p *Processor) produce(ctx context.Context, batchID string, rec PayslipRecord, period string, now time.Time) (string, error) {
	doc := Document{Company: p.Company, Record: rec, Period: period, GeneratedOn: now}
	data, err := p.generate(ctx, doc)
	if err != nil {
		return "", &RowError{Row: rec.Row, EmpID: rec.Employee.ID, Reason: "generate", Err: err}
	}
	key := DocumentKey(period, batchID, rec.Employee.ID)
	if err := p.Storage.Put(ctx, key, data, DocumentContentType); err != nil {
		return "", &RowError{
			Row:    rec.Row,
			EmpID:  rec.Employee.ID,
			Reason: "store",
			Err:    &DistributionError{EmpID: rec.Employee.ID, Op: "upload", Err: err},
		}
	}
	return key, nil
}

// generate bounds a single render by RenderTimeout. A generator that ignores
// its context is abandoned when the deadline passes.
func (p *Processor) generate(ctx context.Context, doc Document) ([]byte, error) {
	timeout := p.RenderTimeout
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrConversionFailed, r)}
			}
		}()
		data, err := p.Generator.Generate(ctx, doc)
		done <- result{data: data, err: err}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, ctx.Err())
	}
}

func (p *Processor) fail(batch *GenerationBatch, err error) {
	batch.Errors++
	failure := Failure{Reason: err.Error()}
	var rowErr *RowError
	if errors.As(err, &rowErr) {
		failure.Row = rowErr.Row
		failure.EmpID = rowErr.EmpID
	}
	batch.Failures = append(batch.Failures, failure)
	slog.Warn("payslip row failed", "batchId", batch.ID, "row", failure.Row, "empId", failure.EmpID, "err", err)
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
