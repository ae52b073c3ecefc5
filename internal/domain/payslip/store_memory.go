package payslip

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps batches in process. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu         sync.RWMutex
	batches    map[string][]byte
	deliveries map[string][]DeliveryResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		batches:    make(map[string][]byte),
		deliveries: make(map[string][]DeliveryResult),
	}
}

// SaveBatch stores a snapshot so later changes by the caller are not visible.
func (m *MemoryStore) SaveBatch(_ context.Context, batch *GenerationBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[batch.ID] = payload
	return nil
}

func (m *MemoryStore) GetBatch(_ context.Context, id string) (*GenerationBatch, error) {
	m.mu.RLock()
	payload, ok := m.batches[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrBatchNotFound
	}
	var batch GenerationBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (m *MemoryStore) RecordDeliveries(_ context.Context, batchID string, results []DeliveryResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[batchID] = append(m.deliveries[batchID], results...)
	return nil
}

func (m *MemoryStore) ListDeliveries(_ context.Context, batchID string) ([]DeliveryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]DeliveryResult(nil), m.deliveries[batchID]...), nil
}
