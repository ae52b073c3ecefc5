package payslip

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func deliveryBatch(objects *memObjects) *GenerationBatch {
	item := func(id, name, email string) BatchItem {
		key := DocumentKey("Mar-2026", "3f1c2a9e-0000-4000-8000-000000000001", id)
		objects.objects[key] = []byte("%PDF " + id)
		return BatchItem{Record: PayslipRecord{Employee: Employee{ID: id, Name: name, Email: email}}, DocumentKey: key}
	}
	return &GenerationBatch{
		ID:     "3f1c2a9e-0000-4000-8000-000000000001",
		Period: "Mar-2026",
		Items: []BatchItem{
			item("101", "Asha Rao", "asha@example.com"),
			item("102", "Ravi Kumar", ""),
			item("103", "Meena", "not-an-email"),
		},
	}
}

func newTestDistributor(objects *memObjects, mailer Mailer) *Distributor {
	return &Distributor{
		Mailer:      mailer,
		Storage:     objects,
		From:        "hr@example.com",
		Company:     Company{Name: "RS MAN-TECH"},
		Limiter:     rate.NewLimiter(rate.Inf, 1),
		Concurrency: 2,
	}
}

func TestDeliverReportsEachRecipientInOrder(t *testing.T) {
	objects := newMemObjects()
	batch := deliveryBatch(objects)
	mailer := &recordingMailer{}
	d := newTestDistributor(objects, mailer)

	report := d.Deliver(context.Background(), batch, []string{"103", "101", "999", "102"})

	require.Len(t, report.Results, 4)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 3, report.Failed)

	assert.Equal(t, "103", report.Results[0].EmpID)
	assert.Equal(t, ReasonInvalidEmail, report.Results[0].Reason)
	assert.Equal(t, DeliveryStatusSent, report.Results[1].Status)
	assert.Equal(t, ReasonUnknownEmployee, report.Results[2].Reason)
	assert.Equal(t, ReasonMissingData, report.Results[3].Reason)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "asha@example.com", msg.To)
	assert.Equal(t, "Payslip for Mar-2026 - RS MAN-TECH", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Asha Rao,")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "Payslip_Mar-2026_Asha_Rao.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, []byte("%PDF 101"), msg.Attachments[0].Data)
}

func TestDeliverAllWhenNoIDsGiven(t *testing.T) {
	objects := newMemObjects()
	batch := deliveryBatch(objects)
	d := newTestDistributor(objects, &recordingMailer{})

	report := d.Deliver(context.Background(), batch, nil)

	require.Len(t, report.Results, 3)
	assert.Equal(t, []string{"101", "102", "103"}, []string{
		report.Results[0].EmpID, report.Results[1].EmpID, report.Results[2].EmpID,
	})
}

func TestDeliverSendFailureDoesNotStopOthers(t *testing.T) {
	objects := newMemObjects()
	batch := deliveryBatch(objects)
	batch.Items[1].Record.Employee.Email = "ravi@example.com"
	d := newTestDistributor(objects, &recordingMailer{err: errors.New("smtp down")})

	report := d.Deliver(context.Background(), batch, []string{"101", "102"})

	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 2, report.Failed)
	for _, r := range report.Results {
		assert.Equal(t, "smtp down", r.Reason)
	}
}

func TestDeliverMissingDocument(t *testing.T) {
	objects := newMemObjects()
	batch := deliveryBatch(objects)
	delete(objects.objects, batch.Items[0].DocumentKey)
	d := newTestDistributor(objects, &recordingMailer{})

	report := d.Deliver(context.Background(), batch, []string{"101"})
	assert.Equal(t, ReasonNoDocument, report.Results[0].Reason)
}
