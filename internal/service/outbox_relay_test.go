package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
)

type recordingWriter struct {
	mu   sync.Mutex
	err  error
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	for _, m := range msgs {
		m.Topic = topic
		w.msgs = append(w.msgs, m)
	}
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.msgs)
}

func TestOutboxRelayDelivers(t *testing.T) {
	f := newFixture(t)
	a, b := f.user("ann"), f.user("bob")
	f.follow(a.ID, b.ID)
	w := f.workout(b.ID, "legs")

	writer := &recordingWriter{}
	relay := NewOutboxRelay(f.stores.Outbox, writer, "gymfeed.events", 1, 10, time.Millisecond)

	n, err := relay.processOnce(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, writer.msgs, 2)
	assert.Equal(t, "gymfeed.events", writer.msgs[1].Topic)
	assert.Equal(t, w.ID, string(writer.msgs[1].Key))

	var env events.Envelope
	require.NoError(t, json.Unmarshal(writer.msgs[1].Value, &env))
	assert.Equal(t, events.WorkoutCreated, env.Type)

	done, err := f.stores.Outbox.CountByStatus(f.ctx, model.OutboxDone)
	require.NoError(t, err)
	assert.EqualValues(t, 2, done)

	n, err = relay.processOnce(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOutboxRelayRetriesOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.user("ann")
	a := f.user("bob")
	f.workout(a.ID, "legs")

	boom := errors.New("broker down")
	writer := &recordingWriter{err: boom}
	relay := NewOutboxRelay(f.stores.Outbox, writer, "t", 1, 10, time.Millisecond)

	_, err := relay.processOnce(f.ctx)
	require.ErrorIs(t, err, boom)

	var row model.Outbox
	require.NoError(t, f.stores.DB.First(&row).Error)
	assert.Equal(t, model.OutboxPending, row.Status)
	assert.Equal(t, 1, row.Attempts)
	assert.Contains(t, row.LastError, "broker down")

	writer.mu.Lock()
	writer.err = nil
	writer.mu.Unlock()
	n, err := relay.processOnce(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOutboxRelayStartStop(t *testing.T) {
	f := newFixture(t)
	a := f.user("ann")
	f.workout(a.ID, "legs")

	writer := &recordingWriter{}
	stop := NewOutboxRelay(f.stores.Outbox, writer, "t", 2, 10, 5*time.Millisecond).Start()
	require.Eventually(t, func() bool { return writer.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, stop(ctx))
}
