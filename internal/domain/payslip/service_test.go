package payslip

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type serviceFixture struct {
	service  *Service
	objects  *memObjects
	mailer   *recordingMailer
	recorder *countingRecorder
}

func newServiceFixture() serviceFixture {
	objects := newMemObjects()
	mailer := &recordingMailer{}
	recorder := &countingRecorder{}
	processor := &Processor{Generator: stubGenerator{}, Storage: objects, Recorder: recorder}
	distributor := &Distributor{Mailer: mailer, Storage: objects, From: "hr@example.com", Limiter: rate.NewLimiter(rate.Inf, 1)}
	return serviceFixture{
		service:  NewService(NewMemoryStore(), objects, processor, distributor),
		objects:  objects,
		mailer:   mailer,
		recorder: recorder,
	}
}

func TestServiceGenerateAndLookup(t *testing.T) {
	fx := newServiceFixture()
	ctx := context.Background()

	batch, err := fx.service.Generate(ctx, "pay.csv", []byte(sampleCSV), " Jan-2026 ")
	require.NoError(t, err)
	assert.Equal(t, "Jan-2026", batch.Period)
	assert.Equal(t, "pay.csv", batch.SourceName)

	stored, err := fx.service.Batch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, 1, stored.Skipped)

	_, err = fx.service.Batch(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, ErrBatchNotFound))
}

func TestServiceGenerateRequiresPeriod(t *testing.T) {
	fx := newServiceFixture()
	_, err := fx.service.Generate(context.Background(), "pay.csv", []byte(sampleCSV), "  ")
	assert.True(t, errors.Is(err, ErrPeriodRequired))
}

func TestServiceGenerateRejectsUnknownFormat(t *testing.T) {
	fx := newServiceFixture()
	_, err := fx.service.Generate(context.Background(), "pay.pdf", []byte(sampleCSV), "Jan-2026")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestServiceSendEmailsRecordsDeliveries(t *testing.T) {
	fx := newServiceFixture()
	ctx := context.Background()
	batch, err := fx.service.Generate(ctx, "pay.csv", []byte(sampleCSV), "Jan-2026")
	require.NoError(t, err)

	report, err := fx.service.SendEmails(ctx, batch.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)
	assert.Len(t, fx.mailer.sent, 2)
	assert.Equal(t, 2, fx.recorder.sent)

	deliveries, err := fx.service.Deliveries(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, deliveries, 2)
}

func TestServiceArchives(t *testing.T) {
	fx := newServiceFixture()
	ctx := context.Background()
	batch, err := fx.service.Generate(ctx, "pay.csv", []byte(sampleCSV), "Jan-2026")
	require.NoError(t, err)

	_, keys, err := fx.service.BatchArchiveKeys(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	periodKeys, err := fx.service.PeriodArchiveKeys(ctx, "Jan-2026")
	require.NoError(t, err)
	assert.Equal(t, keys, periodKeys)

	var buf bytes.Buffer
	require.NoError(t, fx.service.WriteArchive(ctx, periodKeys, &buf))
	assert.NotZero(t, buf.Len())

	_, err = fx.service.PeriodArchiveKeys(ctx, "Feb-2026")
	assert.True(t, errors.Is(err, ErrNoDocuments))
}

func TestServiceInspect(t *testing.T) {
	fx := newServiceFixture()
	report, err := fx.service.Inspect("pay.csv", []byte("EMP_ID,NAME,NET_PAY\n1,Asha,100\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, report.HeaderRow)
	assert.Equal(t, 1, report.DataRows)
	assert.Contains(t, report.MissingRequired, FieldFixedBasic)
	assert.NotContains(t, report.MissingRequired, FieldNetPay)
	assert.Len(t, report.Matches, len(RequiredFields)+len(OptionalFields))
	assert.Equal(t, FieldName, report.Matches[0].Field)
	assert.Equal(t, "NAME", report.Matches[0].Label)
	assert.True(t, report.Matches[0].Required)
}

func TestMemoryStoreKeepsSnapshots(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	batch := &GenerationBatch{ID: "b1", Period: "Jan-2026", Skipped: 1}
	require.NoError(t, store.SaveBatch(ctx, batch))

	batch.Skipped = 9
	got, err := store.GetBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Skipped)

	_, err = store.GetBatch(ctx, "missing")
	assert.True(t, errors.Is(err, ErrBatchNotFound))

	require.NoError(t, store.RecordDeliveries(ctx, "b1", []DeliveryResult{{EmpID: "1", Status: DeliveryStatusSent}}))
	deliveries, err := store.ListDeliveries(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, deliveries, 1)
}
