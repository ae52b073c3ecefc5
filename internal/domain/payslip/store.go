package payslip

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) SaveBatch(ctx context.Context, batch *GenerationBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO payslip_batches (id, period, source_name, generated, skipped, errors, payload, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload
  `, batch.ID, batch.Period, batch.SourceName, len(batch.Items), batch.Skipped, batch.Errors, payload, batch.CreatedAt)
	return err
}

func (s *Store) GetBatch(ctx context.Context, id string) (*GenerationBatch, error) {
	var payload []byte
	err := s.DB.QueryRow(ctx, `
    SELECT payload FROM payslip_batches WHERE id = $1
  `, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	var batch GenerationBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *Store) RecordDeliveries(ctx context.Context, batchID string, results []DeliveryResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, r := range results {
		batch.Queue(`
      INSERT INTO payslip_deliveries (batch_id, emp_id, email, status, reason)
      VALUES ($1,$2,$3,$4,$5)
    `, batchID, r.EmpID, r.Email, r.Status, r.Reason)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListDeliveries(ctx context.Context, batchID string) ([]DeliveryResult, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT emp_id, email, status, reason
    FROM payslip_deliveries
    WHERE batch_id = $1
    ORDER BY id
  `, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DeliveryResult
	for rows.Next() {
		var r DeliveryResult
		if err := rows.Scan(&r.EmpID, &r.Email, &r.Status, &r.Reason); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
