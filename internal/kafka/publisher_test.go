package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/db"
	mock_database "gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

type sentMessage struct {
	topic string
	key   []byte
	value []byte
}

type stubProducer struct {
	sent    []sentMessage
	sendErr error
}

func (p *stubProducer) SendMessage(_ context.Context, topic string, key, value []byte) error {
	if p.sendErr != nil {
		return p.sendErr
	}
	p.sent = append(p.sent, sentMessage{topic: topic, key: key, value: value})
	return nil
}

func (p *stubProducer) Close() error {
	return nil
}

type taskStatusUpdate struct {
	id        uuid.UUID
	status    repository.TaskStatus
	attempts  int
	lastError *string
}

type stubTaskRepo struct {
	tasks     []*repository.OutboxTask
	fetchErr  error
	processed []taskStatusUpdate
	finalized []taskStatusUpdate
}

func (r *stubTaskRepo) GetProcessableTasks(_ context.Context, _ db.DB, _ int) ([]*repository.OutboxTask, error) {
	return r.tasks, r.fetchErr
}

func (r *stubTaskRepo) UpdateTaskStatusTx(_ context.Context, _ db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, _ *time.Time) error {
	r.processed = append(r.processed, taskStatusUpdate{id: id, status: status, attempts: attempts, lastError: lastError})
	return nil
}

func (r *stubTaskRepo) UpdateTaskStatus(_ context.Context, _ db.DB, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, _ *time.Time) error {
	r.finalized = append(r.finalized, taskStatusUpdate{id: id, status: status, attempts: attempts, lastError: lastError})
	return nil
}

func newPublisherFixture(t *testing.T, repo *stubTaskRepo, producer *stubProducer) *Publisher {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockDB := mock_database.NewMockDB(ctrl)
	mockTx := mock_database.NewMockTx(ctrl)
	mockDB.EXPECT().BeginTx(gomock.Any()).Return(mockTx, nil).AnyTimes()
	mockTx.EXPECT().Commit(gomock.Any()).Return(nil).AnyTimes()
	mockTx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	return NewPublisher(mockDB, repo, producer, PublisherConfig{
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
		MaxAttempts:  3,
	})
}

func TestProcessBatch(t *testing.T) {
	t.Run("publishes tasks and marks them done", func(t *testing.T) {
		taskID := uuid.New()
		repo := &stubTaskRepo{tasks: []*repository.OutboxTask{
			{ID: taskID, Topic: "fulfillment_events", Payload: []byte(`{"order_id":"o1"}`)},
		}}
		producer := &stubProducer{}
		publisher := newPublisherFixture(t, repo, producer)

		require.NoError(t, publisher.processBatch(context.Background()))

		require.Len(t, producer.sent, 1)
		assert.Equal(t, "fulfillment_events", producer.sent[0].topic)
		assert.Equal(t, taskID.String(), string(producer.sent[0].key))

		require.Len(t, repo.processed, 1)
		assert.Equal(t, repository.TaskStatusProcessing, repo.processed[0].status)

		require.Len(t, repo.finalized, 1)
		assert.Equal(t, repository.TaskStatusDone, repo.finalized[0].status)
	})

	t.Run("send failure increments attempts and records the error", func(t *testing.T) {
		taskID := uuid.New()
		repo := &stubTaskRepo{tasks: []*repository.OutboxTask{
			{ID: taskID, Topic: "fulfillment_events", Payload: []byte(`{}`), Attempts: 1},
		}}
		producer := &stubProducer{sendErr: errors.New("broker unavailable")}
		publisher := newPublisherFixture(t, repo, producer)

		require.NoError(t, publisher.processBatch(context.Background()))

		require.Len(t, repo.finalized, 1)
		assert.Equal(t, repository.TaskStatusFailed, repo.finalized[0].status)
		assert.Equal(t, 2, repo.finalized[0].attempts)
		require.NotNil(t, repo.finalized[0].lastError)
		assert.Equal(t, "broker unavailable", *repo.finalized[0].lastError)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		repo := &stubTaskRepo{}
		producer := &stubProducer{}
		publisher := newPublisherFixture(t, repo, producer)

		require.NoError(t, publisher.processBatch(context.Background()))
		assert.Empty(t, producer.sent)
		assert.Empty(t, repo.processed)
	})
}
