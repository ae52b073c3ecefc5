package payslip

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payslip/internal/platform/config"
	"payslip/internal/platform/db"
)

func TestStorePostgres(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, config.Config{DatabaseURL: dbURL})
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, db.Migrate(ctx, pool, "../../../migrations"))

	store := NewStore(pool)
	batch := &GenerationBatch{
		ID:        uuid.NewString(),
		Period:    "Jan-2026",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Items:     []BatchItem{{Record: PayslipRecord{Employee: Employee{ID: "101", Name: "Asha"}}, DocumentKey: "payslips/Jan-2026/b1/101.pdf"}},
		Skipped:   1,
	}
	require.NoError(t, store.SaveBatch(ctx, batch))

	got, err := store.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.Period, got.Period)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "101", got.Items[0].Record.Employee.ID)

	_, err = store.GetBatch(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, ErrBatchNotFound))

	require.NoError(t, store.RecordDeliveries(ctx, batch.ID, []DeliveryResult{
		{EmpID: "101", Email: "asha@example.com", Status: DeliveryStatusSent},
		{EmpID: "999", Status: DeliveryStatusFailed, Reason: ReasonUnknownEmployee},
	}))
	deliveries, err := store.ListDeliveries(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	assert.Equal(t, ReasonUnknownEmployee, deliveries[1].Reason)
}
