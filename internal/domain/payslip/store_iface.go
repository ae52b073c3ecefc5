package payslip

import "context"

type StoreAPI interface {
	SaveBatch(ctx context.Context, batch *GenerationBatch) error
	GetBatch(ctx context.Context, id string) (*GenerationBatch, error)
	RecordDeliveries(ctx context.Context, batchID string, results []DeliveryResult) error
	ListDeliveries(ctx context.Context, batchID string) ([]DeliveryResult, error)
}
