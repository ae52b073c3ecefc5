package payslip

import (
	"context"
	"sort"
	"strings"
	"sync"
)

var flatLabels = []string{
	"EMP_ID", "NAME", "DESIGNATION", "EMAIL",
	"FIXED_BASIC", "FIXED_DA", "FIXED_HRA", "FIXED_TOTAL",
	"EARNED_BASIC", "EARNED_DA", "EARNED_HRA", "EARNED_TOTAL",
	"PF", "ESI", "PT", "TOTAL_DEDUCTION", "NET_PAY",
}

const sampleCSV = "EMP_ID,NAME,DESIGNATION,EMAIL,FIXED_BASIC,FIXED_DA,FIXED_HRA,FIXED_TOTAL,EARNED_BASIC,EARNED_DA,EARNED_HRA,EARNED_TOTAL,PF,ESI,PT,TOTAL_DEDUCTION,NET_PAY\n" +
	"101,Asha Rao,Supervisor,asha@example.com,10000,5000,2000,17000,9000,4500,1800,15300,1080,115,200,1395,13905\n" +
	",,,,,,,,,,,,,,,,\n" +
	"102,Ravi Kumar,Guard,ravi@example.com,8000,4000,1600,13600,8000,4000,1600,13600,960,102,200,1262,12338\n"

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string][]byte)}
}

func (m *memObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memObjects) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNoDocuments
	}
	return data, nil
}

func (m *memObjects) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, doc Document) ([]byte, error) {
	return []byte("%PDF-stub " + doc.Record.Employee.ID), nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type countingRecorder struct {
	generated, skipped, errors int
	sent, failed               int
}

func (r *countingRecorder) RecordBatch(generated, skipped, errors int) {
	r.generated += generated
	r.skipped += skipped
	r.errors += errors
}

func (r *countingRecorder) RecordDeliveries(sent, failed int) {
	r.sent += sent
	r.failed += failed
}

func rowOf(number int, values map[string]string) RawRow {
	return RawRow{Number: number, Values: values}
}
