package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"payslip/internal/domain/payslip"
	"payslip/internal/platform/config"
	cryptoutil "payslip/internal/platform/crypto"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// cleanKey rejects keys that would escape the storage root.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

var (
	_ payslip.ObjectStorage = (*Local)(nil)
	_ payslip.ObjectStorage = (*S3)(nil)
)

// Open builds the store selected by STORAGE_DRIVER. Local files are sealed
// when DATA_ENCRYPTION_KEY is set.
func Open(ctx context.Context, cfg config.Config) (payslip.ObjectStorage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverS3:
		return NewS3(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.S3Prefix,
		})
	case config.StorageDriverLocal, "":
		crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
		if err != nil {
			return nil, err
		}
		return NewLocal(cfg.StorageDir, crypto)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
