package payslip

import (
	"context"
	"path"
	"strings"
	"time"
)

const (
	documentRoot        = "payslips"
	DocumentContentType = "application/pdf"
)

// Document is everything a generator needs to produce one payslip.
type Document struct {
	Company     Company
	Record      PayslipRecord
	Period      string
	GeneratedOn time.Time
}

// DocumentGenerator produces the printable bytes for one payslip. It must
// stop when ctx is done.
type DocumentGenerator interface {
	Generate(ctx context.Context, doc Document) ([]byte, error)
}

// ObjectStorage holds generated documents by key. Keys use "/" separators.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	From        string
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// DocumentKey is the storage key of one employee's payslip in a batch. Keys
// are grouped by period first so a period can be listed across batches.
func DocumentKey(period, batchID, empID string) string {
	return path.Join(documentRoot, sanitizePathSegment(period), sanitizePathSegment(batchID), sanitizePathSegment(empID)+".pdf")
}

// PeriodPrefix is the key prefix shared by every payslip of a period.
func PeriodPrefix(period string) string {
	return path.Join(documentRoot, sanitizePathSegment(period)) + "/"
}

func sanitizePathSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." {
		return "unknown"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "\x00", "")
	return replacer.Replace(s)
}
