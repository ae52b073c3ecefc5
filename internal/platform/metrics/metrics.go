package metrics

import (
	"sync/atomic"
	"time"
)

// Collector counts HTTP traffic and payslip work. It satisfies
// payslip.Recorder.
type Collector struct {
	totalRequests   atomic.Uint64
	errorRequests   atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64

	batches      atomic.Uint64
	emptyBatches atomic.Uint64
	documents    atomic.Uint64
	rowsSkipped  atomic.Uint64
	rowErrors    atomic.Uint64
	emailsSent   atomic.Uint64
	emailsFailed atomic.Uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.totalRequests.Add(1)
	if status >= 500 {
		c.errorRequests.Add(1)
	}
	if status == 429 {
		c.rateLimited.Add(1)
	}
	c.totalDurationMs.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) RecordBatch(generated, skipped, errors int) {
	c.batches.Add(1)
	if generated == 0 {
		c.emptyBatches.Add(1)
	}
	c.documents.Add(uint64(generated))
	c.rowsSkipped.Add(uint64(skipped))
	c.rowErrors.Add(uint64(errors))
}

func (c *Collector) RecordDeliveries(sent, failed int) {
	c.emailsSent.Add(uint64(sent))
	c.emailsFailed.Add(uint64(failed))
}

func (c *Collector) Snapshot() map[string]any {
	total := c.totalRequests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"errorsTotal":       c.errorRequests.Load(),
		"rateLimitedTotal":  c.rateLimited.Load(),
		"avgDurationMs":     avg,
		"totalDurationMs":   totalMs,
		"batchesTotal":      c.batches.Load(),
		"emptyBatchesTotal": c.emptyBatches.Load(),
		"payslipsGenerated": c.documents.Load(),
		"rowsSkippedTotal":  c.rowsSkipped.Load(),
		"rowErrorsTotal":    c.rowErrors.Load(),
		"emailsSentTotal":   c.emailsSent.Load(),
		"emailsFailedTotal": c.emailsFailed.Load(),
	}
}
