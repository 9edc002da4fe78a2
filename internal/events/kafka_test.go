package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	msgs   []skafka.Message
	err    error
	ctxErr error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaProducer_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw, nil)

	err := p.Publish(context.Background(), "entity-1", map[string]string{"action": "LOGIN"})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, "entity-1", string(fw.msgs[0].Key))

	var body map[string]string
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &body))
	assert.Equal(t, "LOGIN", body["action"])
}

func TestKafkaProducer_PublishWriteError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaProducerWithWriter(fw, nil)

	err := p.Publish(context.Background(), "k", "v")
	assert.EqualError(t, err, "broker down")
}

func TestKafkaProducer_PublishMarshalError(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw, nil)

	err := p.Publish(context.Background(), "k", make(chan int))
	assert.Error(t, err)
	assert.Empty(t, fw.msgs)
}

func TestKafkaProducer_PublishOutlivesCanceledRequest(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Publish(ctx, "k", "v"))
	require.Len(t, fw.msgs, 1)
	assert.NoError(t, fw.ctxErr)
}

func TestKafkaWriter_IsAsyncAndLogsFailedDeliveries(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	w := newKafkaWriter([]string{"localhost:9092"}, "audit", zap.New(core))
	defer w.Close()

	assert.True(t, w.Async)
	require.NotNil(t, w.Completion)

	w.Completion([]skafka.Message{{Key: []byte("a")}}, nil)
	assert.Zero(t, logs.Len())

	w.Completion([]skafka.Message{{Key: []byte("a")}, {Key: []byte("b")}}, errors.New("broker down"))
	entries := logs.FilterMessage("kafka delivery failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "audit", fields["topic"])
	assert.EqualValues(t, 2, fields["messages"])
}

func TestDispatcher_ContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls int
	d.Subscribe(EventAuditRecorded, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	d.Subscribe(EventAuditRecorded, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventAuditRecorded}))
	assert.Equal(t, 2, calls)
}
