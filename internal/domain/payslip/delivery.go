package payslip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"

	ReasonMissingData     = "missing data"
	ReasonInvalidEmail    = "invalid email"
	ReasonUnknownEmployee = "employee not in batch"
	ReasonNoDocument      = "document not found"
)

// DeliveryResult is the outcome of emailing one payslip.
type DeliveryResult struct {
	EmpID  string `json:"empId"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// DeliveryReport lists results in request order.
type DeliveryReport struct {
	BatchID string           `json:"batchId"`
	Sent    int              `json:"sent"`
	Failed  int              `json:"failed"`
	Results []DeliveryResult `json:"results"`
}

// Distributor emails stored payslips. Sends run concurrently up to
// Concurrency and are paced by Limiter; one failure never stops the others.
type Distributor struct {
	Mailer      Mailer
	Storage     ObjectStorage
	From        string
	Company     Company
	Limiter     *rate.Limiter
	Concurrency int
}

// Deliver sends the documents of the listed employees, or of every item in
// the batch when empIDs is empty.
func (d *Distributor) Deliver(ctx context.Context, batch *GenerationBatch, empIDs []string) DeliveryReport {
	targets := d.targets(batch, empIDs)
	results := make([]DeliveryResult, len(targets))

	var g errgroup.Group
	g.SetLimit(max(d.Concurrency, 1))
	for i, t := range targets {
		g.Go(func() error {
			results[i] = d.deliverOne(ctx, batch.Period, t)
			return nil
		})
	}
	_ = g.Wait()

	report := DeliveryReport{BatchID: batch.ID, Results: results}
	for _, r := range results {
		if r.Status == DeliveryStatusSent {
			report.Sent++
		} else {
			report.Failed++
		}
	}
	return report
}

type deliveryTarget struct {
	empID string
	item  *BatchItem
}

func (d *Distributor) targets(batch *GenerationBatch, empIDs []string) []deliveryTarget {
	if len(empIDs) == 0 {
		out := make([]deliveryTarget, len(batch.Items))
		for i := range batch.Items {
			out[i] = deliveryTarget{empID: batch.Items[i].Record.Employee.ID, item: &batch.Items[i]}
		}
		return out
	}
	byID := make(map[string]*BatchItem, len(batch.Items))
	for i := range batch.Items {
		id := batch.Items[i].Record.Employee.ID
		if _, ok := byID[id]; !ok {
			byID[id] = &batch.Items[i]
		}
	}
	out := make([]deliveryTarget, len(empIDs))
	for i, id := range empIDs {
		id = strings.TrimSpace(id)
		out[i] = deliveryTarget{empID: id, item: byID[id]}
	}
	return out
}

func (d *Distributor) deliverOne(ctx context.Context, period string, t deliveryTarget) DeliveryResult {
	result := DeliveryResult{EmpID: t.empID, Status: DeliveryStatusFailed}
	if t.item == nil {
		result.Reason = ReasonUnknownEmployee
		return result
	}
	emp := t.item.Record.Employee
	result.Name = emp.Name
	result.Email = emp.Email
	if emp.Email == "" || emp.Name == "" || t.item.DocumentKey == "" {
		result.Reason = ReasonMissingData
		return result
	}
	if _, err := mail.ParseAddress(emp.Email); err != nil {
		result.Reason = ReasonInvalidEmail
		return result
	}

	data, err := d.Storage.Get(ctx, t.item.DocumentKey)
	if err != nil {
		result.Reason = ReasonNoDocument
		d.logFailure(emp.ID, "fetch", err)
		return result
	}
	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			result.Reason = err.Error()
			return result
		}
	}
	if err := d.Mailer.Send(ctx, d.message(period, emp, data)); err != nil {
		result.Reason = err.Error()
		d.logFailure(emp.ID, "send", err)
		return result
	}
	result.Status = DeliveryStatusSent
	return result
}

func (d *Distributor) message(period string, emp Employee, document []byte) Message {
	return Message{
		From:    d.From,
		To:      emp.Email,
		Subject: fmt.Sprintf("Payslip for %s - %s", period, d.Company.Name),
		Body: fmt.Sprintf("Dear %s,\n\nPlease find attached your payslip for the month of %s.\n\nBest regards,\n%s\nHR Department",
			emp.Name, period, d.Company.Name),
		Attachments: []Attachment{{
			Filename:    AttachmentName(period, emp.Name),
			ContentType: DocumentContentType,
			Data:        document,
		}},
	}
}

// AttachmentName is the file name an employee sees, e.g.
// "Payslip_March-2024_Asha_Rao.pdf".
func AttachmentName(period, name string) string {
	return fmt.Sprintf("Payslip_%s_%s.pdf", sanitizePathSegment(period), sanitizePathSegment(name))
}

func (d *Distributor) logFailure(empID, op string, err error) {
	var distErr *DistributionError
	if !errors.As(err, &distErr) {
		err = &DistributionError{EmpID: empID, Op: op, Err: err}
	}
	slog.Warn("payslip delivery failed", "empId", empID, "op", op, "err", err)
}
