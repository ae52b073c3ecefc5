package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 2*time.Millisecond)
	c.RecordBatch(2, 1, 0)
	c.RecordBatch(0, 0, 3)
	c.RecordDeliveries(2, 1)

	snap := c.Snapshot()
	assert.Equal(t, uint64(3), snap["requestsTotal"])
	assert.Equal(t, uint64(1), snap["errorsTotal"])
	assert.Equal(t, uint64(1), snap["rateLimitedTotal"])
	assert.Equal(t, float64(14), snap["avgDurationMs"])
	assert.Equal(t, uint64(2), snap["batchesTotal"])
	assert.Equal(t, uint64(1), snap["emptyBatchesTotal"])
	assert.Equal(t, uint64(2), snap["payslipsGenerated"])
	assert.Equal(t, uint64(3), snap["rowErrorsTotal"])
	assert.Equal(t, uint64(2), snap["emailsSentTotal"])
	assert.Equal(t, uint64(1), snap["emailsFailedTotal"])
}
