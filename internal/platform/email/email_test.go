package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payslip/internal/domain/payslip"
	"payslip/internal/platform/config"
)

func TestBuildMessageWithAttachment(t *testing.T) {
	pdf := bytes.Repeat([]byte("%PDF-1.4 payslip "), 20)
	raw, err := buildMessage(payslip.Message{
		From:    "hr@example.com",
		To:      "asha@example.com",
		Subject: "Payslip for Jan-2026 - RS MAN-TECH",
		Body:    "Dear Asha,\nPlease find attached.",
		Attachments: []payslip.Attachment{{
			Filename:    "Payslip_Jan-2026_Asha.pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	})
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", msg.Header.Get("To"))

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Payslip for Jan-2026 - RS MAN-TECH", subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(msg.Body, params["boundary"])
	text, err := reader.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(text)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Dear Asha,\r\nPlease find attached.")

	attachment, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "Payslip_Jan-2026_Asha.pdf", attachment.FileName())
	encoded, err := io.ReadAll(attachment)
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(string(encoded)), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, pdf, decoded)
}

func TestNewFailsMessagesWhenDisabled(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false, SMTPHost: "smtp.example.com"})
	assert.IsType(t, disabledMailer{}, mailer)
	assert.ErrorIs(t, mailer.Send(context.Background(), payslip.Message{To: "a@example.com"}), ErrDisabled)

	assert.IsType(t, &smtpMailer{}, New(config.Config{EmailEnabled: true, SMTPHost: "smtp.example.com"}))
}

func TestSMTPMailerRejectsMissingRecipient(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: true, SMTPHost: "smtp.invalid", SMTPPort: 25})
	assert.ErrorIs(t, mailer.Send(context.Background(), payslip.Message{To: "  "}), ErrNoRecipient)
}

func TestDisabledMailerReportsFailedDeliveries(t *testing.T) {
	objects := &docStore{data: map[string][]byte{"payslips/Jan-2026/b1/101.pdf": []byte("%PDF")}}
	distributor := &payslip.Distributor{
		Mailer:  New(config.Config{}),
		Storage: objects,
		From:    "hr@example.com",
	}
	batch := &payslip.GenerationBatch{
		ID:     "b1",
		Period: "Jan-2026",
		Items: []payslip.BatchItem{{
			Record:      payslip.PayslipRecord{Employee: payslip.Employee{ID: "101", Name: "Asha", Email: "asha@example.com"}},
			DocumentKey: "payslips/Jan-2026/b1/101.pdf",
		}},
	}

	report := distributor.Deliver(context.Background(), batch, nil)
	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 1)
	assert.Equal(t, payslip.DeliveryStatusFailed, report.Results[0].Status)
	assert.Equal(t, "email disabled", report.Results[0].Reason)
}

type docStore struct {
	data map[string][]byte
}

func (s *docStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.data[key] = data
	return nil
}

func (s *docStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := s.data[key]
	if !ok {
		return nil, payslip.ErrNoDocuments
	}
	return data, nil
}

func (s *docStore) List(context.Context, string) ([]string, error) {
	return nil, nil
}
