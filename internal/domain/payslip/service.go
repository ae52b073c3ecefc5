package payslip

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	store       StoreAPI
	storage     ObjectStorage
	processor   *Processor
	distributor *Distributor
}

func NewService(store StoreAPI, storage ObjectStorage, processor *Processor, distributor *Distributor) *Service {
	return &Service{store: store, storage: storage, processor: processor, distributor: distributor}
}

// Generate loads an uploaded file, produces a document per valid row and
// saves the batch. On *EmptyBatchError the unsaved batch is still returned
// for diagnostics.
func (s *Service) Generate(ctx context.Context, sourceName string, data []byte, period string) (*GenerationBatch, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return nil, ErrPeriodRequired
	}
	table, err := s.load(sourceName, data)
	if err != nil {
		return nil, err
	}
	batch, err := s.processor.Process(ctx, table, period)
	if err != nil {
		return batch, err
	}
	batch.SourceName = sourceName
	if err := s.store.SaveBatch(ctx, batch); err != nil {
		return nil, err
	}
	slog.Info("payslip batch generated",
		"batchId", batch.ID,
		"period", batch.Period,
		"generated", len(batch.Items),
		"skipped", batch.Skipped,
		"errors", batch.Errors,
	)
	return batch, nil
}

// Inspect reports how the columns of an uploaded file resolve without
// generating anything.
func (s *Service) Inspect(sourceName string, data []byte) (*ColumnReport, error) {
	table, err := s.load(sourceName, data)
	if err != nil {
		return nil, err
	}
	return InspectTable(table), nil
}

func (s *Service) load(sourceName string, data []byte) (*RawTable, error) {
	format, err := FormatFromFilename(sourceName)
	if err != nil {
		return nil, err
	}
	return LoadTable(data, format)
}

func (s *Service) Batch(ctx context.Context, batchID string) (*GenerationBatch, error) {
	if _, err := uuid.Parse(batchID); err != nil {
		return nil, ErrBatchNotFound
	}
	return s.store.GetBatch(ctx, batchID)
}

func (s *Service) Deliveries(ctx context.Context, batchID string) ([]DeliveryResult, error) {
	if _, err := s.Batch(ctx, batchID); err != nil {
		return nil, err
	}
	return s.store.ListDeliveries(ctx, batchID)
}

// SendEmails mails the batch's documents and records each outcome.
func (s *Service) SendEmails(ctx context.Context, batchID string, empIDs []string) (*DeliveryReport, error) {
	batch, err := s.Batch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	report := s.distributor.Deliver(ctx, batch, empIDs)
	if err := s.store.RecordDeliveries(ctx, batchID, report.Results); err != nil {
		slog.Warn("payslip delivery record failed", "batchId", batchID, "err", err)
	}
	if s.processor.Recorder != nil {
		s.processor.Recorder.RecordDeliveries(report.Sent, report.Failed)
	}
	slog.Info("payslip emails sent", "batchId", batchID, "sent", report.Sent, "failed", report.Failed)
	return &report, nil
}

// BatchArchiveKeys resolves the documents of a batch for download.
func (s *Service) BatchArchiveKeys(ctx context.Context, batchID string) (*GenerationBatch, []string, error) {
	batch, err := s.Batch(ctx, batchID)
	if err != nil {
		return nil, nil, err
	}
	keys := BatchKeys(batch)
	if len(keys) == 0 {
		return nil, nil, ErrNoDocuments
	}
	return batch, keys, nil
}

// PeriodArchiveKeys resolves every stored document of a period.
func (s *Service) PeriodArchiveKeys(ctx context.Context, period string) ([]string, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return nil, ErrPeriodRequired
	}
	keys, err := PeriodKeys(ctx, s.storage, period)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNoDocuments
	}
	return keys, nil
}

// WriteArchive streams the documents at keys into w as a zip.
func (s *Service) WriteArchive(ctx context.Context, keys []string, w io.Writer) error {
	return WriteArchive(ctx, s.storage, keys, w, s.processor.now())
}
