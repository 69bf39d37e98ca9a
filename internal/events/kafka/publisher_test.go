package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w}

	event := map[string]any{"tx": 1, "status": "applied"}
	require.NoError(t, p.Publish(context.Background(), "7", event))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "7", string(w.messages[0].Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, "applied", decoded["status"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_PublishErrors(t *testing.T) {
	t.Run("writer failure", func(t *testing.T) {
		p := &Publisher{writer: &fakeWriter{err: errors.New("broker down")}}
		err := p.Publish(context.Background(), "1", struct{}{})
		assert.ErrorContains(t, err, "broker down")
	})

	t.Run("unencodable event", func(t *testing.T) {
		w := &fakeWriter{}
		p := &Publisher{writer: w}
		err := p.Publish(context.Background(), "1", make(chan int))
		assert.ErrorContains(t, err, "encode event")
		assert.Empty(t, w.messages)
	})
}

func TestParseCompression(t *testing.T) {
	tests := map[string]kafka.Compression{
		"":       0,
		"none":   0,
		"gzip":   kafka.Gzip,
		"Snappy": kafka.Snappy,
		"lz4":    kafka.Lz4,
		"zstd":   kafka.Zstd,
	}
	for in, want := range tests {
		got, err := ParseCompression(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCompression("brotli")
	assert.Error(t, err)
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher([]string{"localhost:9092"}, "ledger.transactions", "lz4")
	require.NoError(t, err)

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "ledger.transactions", w.Topic)
	assert.Equal(t, kafka.Lz4, w.Compression)

	_, err = NewPublisher([]string{"localhost:9092"}, "t", "bogus")
	assert.Error(t, err)
}
