//go:build integration

package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type lockedSender struct {
	mu sync.Mutex
	stubSender
}

func (s *lockedSender) Send(to, subject, body string, pdf []byte, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stubSender.Send(to, subject, body, pdf, name)
}

func (s *lockedSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPool_DeliversRestockAlert(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &lockedSender{}
	pool := NewPool(rdb)
	pool.Handle(JobRestockAlert, NewRestockAlertWorker(sender, "kitchen@example.com", "THB"))
	pool.Start(ctx, 1)

	require.NoError(t, NewDispatcher(rdb).NotifyRestock(ctx, shortPork()))
	assert.Eventually(t, func() bool { return sender.count() == 1 }, 10*time.Second, 100*time.Millisecond)
}

func TestPool_ParksFailingJobInDLQ(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &lockedSender{stubSender: stubSender{err: errors.New("smtp down")}}
	pool := NewPool(rdb)
	pool.Handle(JobRestockAlert, NewRestockAlertWorker(sender, "kitchen@example.com", "THB"))
	pool.Start(ctx, 1)

	require.NoError(t, NewDispatcher(rdb).NotifyRestock(ctx, shortPork()))
	assert.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueRestock)
		return err == nil && n == 1
	}, 15*time.Second, 100*time.Millisecond)

	entries, err := PeekDLQ(ctx, rdb, QueueRestock, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, MaxAttempts, entries[0].Attempts)
	assert.Contains(t, entries[0].Reason, "smtp down")
}
