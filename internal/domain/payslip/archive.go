package payslip

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// BatchArchiveName and PeriodArchiveName are download file names.
func BatchArchiveName(batch *GenerationBatch) string {
	return fmt.Sprintf("payslips_%s_%s.zip", sanitizePathSegment(batch.Period), shortID(batch.ID))
}

func PeriodArchiveName(period string) string {
	return fmt.Sprintf("payslips_%s.zip", sanitizePathSegment(period))
}

// BatchKeys returns the document keys of a batch in row order.
func BatchKeys(batch *GenerationBatch) []string {
	keys := make([]string, 0, len(batch.Items))
	seen := make(map[string]struct{}, len(batch.Items))
	for _, item := range batch.Items {
		if _, ok := seen[item.DocumentKey]; ok || item.DocumentKey == "" {
			continue
		}
		seen[item.DocumentKey] = struct{}{}
		keys = append(keys, item.DocumentKey)
	}
	return keys
}

// PeriodKeys lists every stored payslip of a period, across batches.
func PeriodKeys(ctx context.Context, storage ObjectStorage, period string) ([]string, error) {
	keys, err := storage.List(ctx, PeriodPrefix(period))
	if err != nil {
		return nil, err
	}
	out := keys[:0]
	for _, key := range keys {
		if strings.HasSuffix(key, ".pdf") {
			out = append(out, key)
		}
	}
	return out, nil
}

// WriteArchive zips the documents at keys into w. Entries are named by the
// key path below the directory all keys share, so a single batch zips flat
// and a period spanning batches keeps one folder per batch. It fails with ErrNoDocuments when keys is empty; callers should
// check that before committing response headers.
func WriteArchive(ctx context.Context, storage ObjectStorage, keys []string, w io.Writer, modified time.Time) error {
	if len(keys) == 0 {
		return ErrNoDocuments
	}
	base := commonDir(keys)
	zw := zip.NewWriter(w)
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := storage.Get(ctx, key)
		if err != nil {
			return &DistributionError{EmpID: strings.TrimSuffix(path.Base(key), ".pdf"), Op: "archive", Err: err}
		}
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     strings.TrimPrefix(key, base),
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return err
		}
		if _, err := entry.Write(data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// commonDir returns the longest "/"-terminated directory prefix of keys.
func commonDir(keys []string) string {
	dir := path.Dir(keys[0]) + "/"
	for _, key := range keys[1:] {
		for !strings.HasPrefix(key, dir) {
			parent := path.Dir(strings.TrimSuffix(dir, "/"))
			if parent == "." || parent == "/" {
				return ""
			}
			dir = parent + "/"
		}
	}
	return dir
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
