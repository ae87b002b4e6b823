package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"

	adapter "github.com/neomorfeo/assessiq/internal/adapter/otel"
	"github.com/neomorfeo/assessiq/internal/domain"
)

type mockPublisher struct {
	topics []string
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, topic string, _ domain.AssessmentRequest) error {
	if m.err != nil {
		return m.err
	}
	m.topics = append(m.topics, topic)
	return nil
}

func TestTracingPublisher_Publish_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &mockPublisher{}
	pub := adapter.NewTracingPublisher(inner)

	request := domain.AssessmentRequest{Assessment: sampleAssessment()}
	if err := pub.Publish(context.Background(), "assessment.create", request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(inner.topics) != 1 || inner.topics[0] != "assessment.create" {
		t.Errorf("forwarded topics = %v, want [assessment.create]", inner.topics)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "EventPublisher.Publish" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "EventPublisher.Publish")
	}

	assertAttribute(t, spans[0], "event.topic", "assessment.create")
	assertAttribute(t, spans[0], "assessment.number", "ASMT-2023-24-abcd1234")
	assertAttribute(t, spans[0], "tenant.id", "pb.amritsar")
}

func TestTracingPublisher_Publish_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &mockPublisher{err: errors.New("queue full")}
	pub := adapter.NewTracingPublisher(inner)

	request := domain.AssessmentRequest{Assessment: sampleAssessment()}
	if err := pub.Publish(context.Background(), "assessment.update", request); err == nil {
		t.Fatal("expected error to surface")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
}
