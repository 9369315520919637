package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishBatchEncodesJSON(t *testing.T) {
	fw := &fakeWriter{}
	p := newProducer(fw, "gzip")

	err := p.PublishBatch(context.Background(), "ipo.monthly", []Message{
		{Key: []byte("2024-01"), Value: map[string]int{"ipo_count": 2}},
		{Key: []byte("raw"), Value: "plain"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(fw.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(fw.msgs))
	}
	if string(fw.msgs[0].Value) != `{"ipo_count":2}` || fw.msgs[0].Topic != "ipo.monthly" {
		t.Fatalf("unexpected message %+v", fw.msgs[0])
	}
	if string(fw.msgs[1].Value) != "plain" {
		t.Fatalf("string payload should pass through")
	}

	if err := p.Close(); err != nil || !fw.closed {
		t.Fatalf("close not forwarded")
	}
}

func TestPublishBatchWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducer(&fakeWriter{err: boom}, "gzip")
	err := p.PublishBatch(context.Background(), "t", []Message{{Value: "x"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
