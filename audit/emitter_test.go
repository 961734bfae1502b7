package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ifsports/match-comments-service/models"
)

type recordingSink struct {
	mu      sync.Mutex
	err     error
	records []models.AuditRecord
}

func (s *recordingSink) Publish(ctx context.Context, record models.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *recordingSink) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.EventType)
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func record(eventType string) models.AuditRecord {
	return models.AuditRecord{
		EventType:     eventType,
		ServiceOrigin: "match-comments-service",
		EntityType:    "match",
		OperationType: models.AuditOperationUpdate,
		Timestamp:     time.Now().UTC(),
	}
}

func TestEmitter_EmitNeverBlocks(t *testing.T) {
	// Воркер не запущен: очередь из двух мест заполняется и насыщается.
	emitter := NewEmitter(&recordingSink{}, 2, time.Second, testLogger())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			emitter.Emit(record(fmt.Sprintf("event.%d", i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a saturated queue")
	}

	if dropped := emitter.Dropped(); dropped == 0 {
		t.Error("Dropped() = 0, want > 0 after saturating a 2-slot queue")
	}
}

func TestEmitter_DropsOldestOnSaturation(t *testing.T) {
	sink := &recordingSink{}
	emitter := NewEmitter(sink, 1, time.Second, testLogger())

	emitter.Emit(record("event.first"))
	emitter.Emit(record("event.second"))

	ctx, cancel := context.WithCancel(context.Background())
	go emitter.Run(ctx)
	waitFor(t, func() bool { return sink.count() == 1 })
	cancel()

	got := sink.eventTypes()
	if len(got) != 1 || got[0] != "event.second" {
		t.Errorf("delivered records = %v, want only event.second (oldest dropped)", got)
	}
	if dropped := emitter.Dropped(); dropped != 1 {
		t.Errorf("Dropped() = %d, want 1", dropped)
	}
}

func TestEmitter_DeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	emitter := NewEmitter(sink, 16, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emitter.Run(ctx)

	for _, name := range []string{"match.started", "match.score_updated", "match.finished"} {
		emitter.Emit(record(name))
	}
	waitFor(t, func() bool { return sink.count() == 3 })

	got := sink.eventTypes()
	want := []string{"match.started", "match.score_updated", "match.finished"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery order = %v, want %v", got, want)
		}
	}
}

func TestEmitter_SinkFailureIsSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker gone")}
	emitter := NewEmitter(sink, 4, 50*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emitter.Run(ctx)

	// Отправка падает, но Emit и воркер продолжают жить.
	emitter.Emit(record("event.doomed"))
	time.Sleep(100 * time.Millisecond)

	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()

	emitter.Emit(record("event.survivor"))
	waitFor(t, func() bool { return sink.count() == 1 })

	if got := sink.eventTypes(); got[0] != "event.survivor" {
		t.Errorf("delivered record = %q, want event.survivor", got[0])
	}
}

func TestEmitter_DrainsQueueOnShutdown(t *testing.T) {
	sink := &recordingSink{}
	emitter := NewEmitter(sink, 16, time.Second, testLogger())

	for i := 0; i < 5; i++ {
		emitter.Emit(record(fmt.Sprintf("event.%d", i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		emitter.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	if got := sink.count(); got != 5 {
		t.Errorf("records delivered during drain = %d, want 5", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
