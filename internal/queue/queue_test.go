package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := NewRedisQueue(client, "test:email:jobs")
	t.Cleanup(func() { _ = q.Close() })
	return q, mr
}

func TestNewJob_DecodeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	data := WinnerResultData{To: "cap@example.com", TeamName: "Alpha", HackathonTitle: "H", Position: "winner"}

	job, err := NewJob(JobWinnerResult, data, now)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, JobWinnerResult, job.Name)
	assert.Equal(t, now, job.EnqueuedAt)

	var decoded WinnerResultData
	require.NoError(t, job.Decode(&decoded))
	assert.Equal(t, data, decoded)
}

func TestRedisQueue_FIFO(t *testing.T) {
	q, _ := newTestRedisQueue(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second"} {
		job, err := NewJob(JobTeamRegistration, TeamRegistrationData{TeamName: name}, time.Now())
		require.NoError(t, err)
		require.NoError(t, q.Enqueue(ctx, job))
	}

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, want := range []string{"first", "second"} {
		job, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, job)

		var data TeamRegistrationData
		require.NoError(t, job.Decode(&data))
		assert.Equal(t, want, data.TeamName)
	}
}

func TestRedisQueue_DequeueTimeout(t *testing.T) {
	q, _ := newTestRedisQueue(t)

	job, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestRedisQueue_EnqueueFailsWhenServerDown(t *testing.T) {
	q, mr := newTestRedisQueue(t)
	mr.Close()

	job, err := NewJob(JobTeamRegistration, TeamRegistrationData{}, time.Now())
	require.NoError(t, err)
	assert.Error(t, q.Enqueue(context.Background(), job))
}

func TestMemoryQueue(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	job, err := NewJob(JobTeamRegistration, TeamRegistrationData{TeamName: "Alpha"}, time.Now())
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(ctx, job))
	assert.ErrorIs(t, q.Enqueue(ctx, job), ErrQueueFull)
	assert.Equal(t, 1, q.Len())

	got, err := q.Dequeue(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)

	got, err = q.Dequeue(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Enqueue(ctx, job), ErrQueueClosed)
	_, err = q.Dequeue(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrQueueClosed)
}
