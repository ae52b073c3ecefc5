package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// IdempotencyStore remembers responses by (endpoint, key). Without a pool it
// keeps them in memory for the life of the process.
type IdempotencyStore struct {
	db *pgxpool.Pool

	mu     sync.Mutex
	memory map[string]idempotentResponse
}

type idempotentResponse struct {
	hash     string
	response json.RawMessage
}

func NewIdempotencyStore(db *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{db: db, memory: make(map[string]idempotentResponse)}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) Check(ctx context.Context, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	if s == nil || key == "" {
		return nil, false, nil
	}
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		stored, ok := s.memory[endpoint+"\x00"+key]
		if !ok {
			return nil, false, nil
		}
		if stored.hash != requestHash {
			return nil, false, ErrIdempotencyConflict
		}
		return stored.response, true, nil
	}

	var storedHash string
	var stored json.RawMessage
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE key = $1 AND endpoint = $2
  `, key, endpoint).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, endpoint, key, requestHash string, response json.RawMessage) error {
	if s == nil || key == "" {
		return nil
	}
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		id := endpoint + "\x00" + key
		if stored, ok := s.memory[id]; ok && stored.hash != requestHash {
			return ErrIdempotencyConflict
		}
		s.memory[id] = idempotentResponse{hash: requestHash, response: response}
		return nil
	}

	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (key, endpoint)
    DO UPDATE SET response_json = EXCLUDED.response_json
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, key, endpoint, requestHash, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}
